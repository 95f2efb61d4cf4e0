package handler

import (
	"context"
	"net/http"

	"github.com/chrisrosenlind/atv-bot/internal/api/response"
	"github.com/chrisrosenlind/atv-bot/internal/llm"
)

// GatewayChecker reports whether the Discord gateway connection is up
type GatewayChecker interface {
	Connected() bool
}

// Pinger checks a dependency's connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness including gateway and redis connectivity.
// redis may be nil when rate limiting is disabled.
func ReadyCheck(gateway GatewayChecker, redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !gateway.Connected() {
			response.Error(w, http.StatusServiceUnavailable, "discord gateway not connected")
			return
		}
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "redis not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListProviders returns the registered completion providers
func ListProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
