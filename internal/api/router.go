package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chrisrosenlind/atv-bot/internal/api/handler"
	custommiddleware "github.com/chrisrosenlind/atv-bot/internal/api/middleware"
	"github.com/chrisrosenlind/atv-bot/internal/llm"
)

// NewRouter creates the ops HTTP router served alongside the gateway
// connection. It exposes liveness, readiness, and provider introspection;
// nothing user-facing lives here.
func NewRouter(gateway handler.GatewayChecker, redis handler.Pinger, llmRouter *llm.Router) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(gateway, redis))
	r.Get("/v1/providers", handler.ListProviders(llmRouter))

	return r
}
