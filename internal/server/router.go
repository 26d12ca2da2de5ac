// Package server assembles the HTTP routes of the friendsplit server.
package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/friendsplit/internal/metrics"
	"github.com/mmynk/friendsplit/internal/middleware"
	"github.com/mmynk/friendsplit/internal/service"
	"github.com/mmynk/friendsplit/internal/token"
	"github.com/mmynk/friendsplit/pkg/api/apiconnect"
)

// Deps are the components the router serves.
type Deps struct {
	Sessions *service.SessionManager
	Tokens   *token.Manager
	Metrics  *metrics.Metrics // nil disables /metrics
}

// Router serves the FriendService under its Connect path, /healthz, and
// /metrics when metrics are enabled.
func Router(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.HTTPLogging)
	r.Use(middleware.CORS)

	path, handler := apiconnect.NewFriendServiceHandler(
		service.NewFriendService(deps.Sessions),
		connect.WithInterceptors(
			middleware.RequireSession(deps.Tokens, apiconnect.FriendServiceStartSessionProcedure),
			middleware.LoggingInterceptor(),
		),
	)
	r.Handle(path+"*", handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	return r
}
