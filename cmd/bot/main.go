package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chrisrosenlind/atv-bot/internal/api"
	"github.com/chrisrosenlind/atv-bot/internal/api/handler"
	"github.com/chrisrosenlind/atv-bot/internal/bot"
	"github.com/chrisrosenlind/atv-bot/internal/config"
	"github.com/chrisrosenlind/atv-bot/internal/event"
	"github.com/chrisrosenlind/atv-bot/internal/llm"
	"github.com/chrisrosenlind/atv-bot/internal/llm/gemini"
	"github.com/chrisrosenlind/atv-bot/internal/llm/openai"
	"github.com/chrisrosenlind/atv-bot/internal/planner"
	"github.com/chrisrosenlind/atv-bot/internal/repository/redis"
	"github.com/chrisrosenlind/atv-bot/internal/session"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	loc, err := cfg.Event.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve timezone")
	}

	log.Info().
		Str("timezone", cfg.Event.Timezone).
		Str("provider", cfg.LLM.DefaultProvider).
		Msg("Starting atv-bot")

	// Completion providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))

	provider, err := llmRouter.GetProvider(cfg.LLM.DefaultProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve completion provider")
	}

	// Optional Redis-backed turn limiter
	var redisClient *redis.Client
	var limiter *redis.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		limiter = redis.NewRateLimiter(redisClient, cfg.LLM.RateLimit.TurnsPerMinute, cfg.LLM.RateLimit.Burst)
	}

	store := session.NewStore(cfg.Session.TTL())
	rules := event.NewRules(loc, cfg.Event.DefaultDuration())
	pl := planner.New(provider, provider.DefaultModel(), cfg.Event.DefaultDuration())

	b, err := bot.New(cfg.Discord.Token, cfg.Discord.GuildID, store, pl, rules, limiter, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	if err := b.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}
	defer b.Stop()

	// Ops surface
	var redisPinger handler.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(b, redisPinger, llmRouter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Msgf("Ops server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Ops server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Ops server forced to shutdown")
	}

	log.Info().Msg("Stopped")
}
