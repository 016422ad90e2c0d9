package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/contacts-rest/datastores"
	"github.com/oaiiae/contacts-rest/handlers"
	"github.com/oaiiae/contacts-rest/router"
	"github.com/oaiiae/contacts-rest/services"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                    default:""`
	Port              string        `short:"p" doc:"port to listen on"                    default:"8080"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers" default:"15s"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type StoreOptions struct {
	Datafile string `doc:"JSON file holding the contacts, kept in memory if empty" default:"data/contacts.json"`
	Strict   bool   `doc:"fail on an unreadable or corrupt datafile instead of loading it empty"`
	IDScheme string `doc:"assign new ids by count, sequence or uuid"                default:"sequence"`
}

// NewStore returns the contacts store selected by options.
func NewStore(options *StoreOptions, logger *slog.Logger) datastores.ContactsStore {
	if options.Datafile == "" {
		return datastores.NewContactsInmem()
	}
	return datastores.NewContactsFile(options.Datafile, options.Strict, logger.With("datafile", options.Datafile))
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix" default:"/api"`
}

func NewRouter(
	options *RouterOptions,
	storeOptions *StoreOptions,
	title string,
	version string,
	revision string,
	created string,
	logger *slog.Logger,
) (http.Handler, *huma.OpenAPI, error) {
	newID, err := services.IDScheme(storeOptions.IDScheme)
	if err != nil {
		return nil, nil, err
	}

	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", title,
		",version=", version,
		",revision=", revision,
		",created=", created,
		"} 1\n")
	metriks := metrics.NewSet()
	// Readiness checks load the bare store and stay out of the store metrics.
	store := NewStore(storeOptions, logger)
	metered := datastores.NewContactsMetered(store, metriks)

	var oapi *huma.OpenAPI
	handler := router.New(title, version,
		func(w http.ResponseWriter, r *http.Request) {
			_, err := store.Load(r.Context())
			if err != nil {
				http.Error(w, "contacts store unavailable", http.StatusServiceUnavailable)
			}
		},
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		func(api huma.API) { oapi = api.OpenAPI() },
		router.OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			meterRequests(metriks),
			ctxlog{}.recoverMiddleware(logger),
		),
		router.OptGroup(options.EndpointsPrefix,
			router.OptAutoRegister(&handlers.Contacts{
				Service:      services.NewContacts(metered, newID, logger),
				ErrorHandler: ctxlog{}.errorHandler(logger),
			}),
		),
	)
	return handler, oapi, nil
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
