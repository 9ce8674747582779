// Package http wires the procedure transport, operational endpoints, and
// middleware into the server's handler tree.
package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(rpcHandler http.Handler, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	// All procedures travel through the single transport endpoint.
	mux.Handle("POST /api/rpc", rpcHandler)

	// Operational
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metricsHandler)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
