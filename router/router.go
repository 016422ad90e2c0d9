package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

// New returns a [http.ServeMux] serving the probes and metrics endpoints
// next to a huma API configured by opts.
func New(
	title, version string,
	readiness http.HandlerFunc,
	writeMetrics http.HandlerFunc,
	opts ...func(huma.API),
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("/readiness", readiness)
	mux.HandleFunc("/metrics", writeMetrics)

	// Without the schema link hook responses carry only their own fields.
	config := huma.DefaultConfig(title, version)
	config.CreateHooks = nil
	api := humago.New(mux, config)
	for _, opt := range opts {
		opt(api)
	}

	return mux
}

func OptUseMiddleware(middlewares ...func(huma.Context, func(huma.Context))) func(huma.API) {
	return func(api huma.API) { api.UseMiddleware(middlewares...) }
}

// OptGroup applies opts to a [huma.Group] mounted at prefix.
func OptGroup(prefix string, opts ...func(huma.API)) func(huma.API) {
	return func(api huma.API) {
		group := huma.NewGroup(api, prefix)
		for _, opt := range opts {
			opt(group)
		}
	}
}

// OptAutoRegister calls [huma.AutoRegister] for every server.
func OptAutoRegister(servers ...any) func(huma.API) {
	return func(api huma.API) {
		for _, server := range servers {
			huma.AutoRegister(api, server)
		}
	}
}
