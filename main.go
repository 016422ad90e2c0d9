package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/contacts-rest/cli/api"
	"github.com/oaiiae/contacts-rest/cli/logger"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Flags can also be set with SERVICE_* env vars,
// e.g. SERVICE_PORT or SERVICE_DATAFILE.
type Options struct {
	logger.Options
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
}

func main() {
	var oapi *huma.OpenAPI

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options)

		handler, openapi, err := api.NewRouter(&options.RouterOptions, &options.StoreOptions,
			"Contacts API", version, revision, created, log)
		if err != nil {
			log.Error("could not create router", "err", err)
			os.Exit(1)
		}
		oapi = openapi

		srv := api.NewServer(&options.ServerOptions, handler, log)
		hooks.OnStart(func() {
			log.Info("listening", "addr", srv.Addr, "datafile", options.Datafile)
			err := srv.ListenAndServe()
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
		})
	})

	cli.Root().Use = "contacts"
	cli.Root().Version = version
	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := oapi.YAML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	})

	cli.Run()
}
