// cmd/server/main.go
// ------------------------------------------------------------------
// Naru – Conversational Voice Assistant Server
// ------------------------------------------------------------------
// Responsibilities:
//   - Serve the chat/voice HTTP API
//   - Maintain per-user session history in Redis
//   - Call the Groq chat completion backend with time/location/weather
//     context and stream Edge neural TTS audio back to the client
//
// Build:
//
//	go run ./cmd/server            # dev
//	CGO_ENABLED=0 go build -o naru ./cmd/server
//
// Env vars:
//
//	GROQ_API_KEY    (required for AI routes)
//	TMDB_API_KEY    (optional – movie search only)
//	SESSION_SECRET  (optional – ephemeral if absent)
//	REDIS_ADDR      (default "localhost:6379"; "memory" for in-process)
//
// ------------------------------------------------------------------
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nnarayan/naru-server/internal/assistant"
	"github.com/nnarayan/naru-server/internal/config"
	"github.com/nnarayan/naru-server/internal/handler"
	"github.com/nnarayan/naru-server/internal/session"
	"github.com/nnarayan/naru-server/internal/stt"
	"github.com/nnarayan/naru-server/internal/tts"
	"github.com/nnarayan/naru-server/internal/weather"
)

func main() {
	// ----------------------------------------------------------------
	// 1. Configuration & logging
	// ----------------------------------------------------------------
	cfg := config.Load()
	log := newLogger(cfg)

	if cfg.GroqAPIKey == "" {
		log.Error().Msg("GROQ_API_KEY not set – AI routes will answer 500 until it is configured")
	}
	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("TMDB_API_KEY not set – movie search is disabled")
	}
	if cfg.SessionSecretEphemeral {
		log.Warn().Msg("SESSION_SECRET not set – using an ephemeral secret, sessions will not survive a restart")
	}

	// ----------------------------------------------------------------
	// 2. Session store
	// ----------------------------------------------------------------
	var store session.Store
	if cfg.RedisAddr == "memory" {
		store = session.NewMemoryStore()
		log.Warn().Msg("using in-memory session store – state is lost on restart")
	} else {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			MinIdleConns: 4,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	}
	defer store.Close()

	// ----------------------------------------------------------------
	// 3. External clients & orchestrator
	// ----------------------------------------------------------------
	completer := assistant.NewGroqCompleter(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.Model, cfg.CompletionTimeout)
	weatherClient := weather.New(log, weather.WithTimeout(cfg.WeatherTimeout))
	speech := tts.New(log, tts.WithTimeout(cfg.SpeechTimeout))
	recognizer := stt.New(log, stt.WithFFmpeg(cfg.FFmpegPath), stt.WithTimeout(cfg.SpeechTimeout))

	orchestrator := assistant.New(completer, weatherClient, speech, log)

	// ----------------------------------------------------------------
	// 4. HTTP server
	// ----------------------------------------------------------------
	staticDir := ""
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		staticDir = cfg.StaticDir
	} else {
		log.Info().Str("dir", cfg.StaticDir).Msg("static dir not found, serving API routes only")
	}

	srv := handler.NewServer(handler.Config{
		Orchestrator:  orchestrator,
		Store:         store,
		Speech:        speech,
		Recognizer:    recognizer,
		SessionSecret: cfg.SessionSecret,
		StaticDir:     staticDir,
		AIConfigured:  cfg.GroqAPIKey != "",
		Log:           log,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr).Msg("naru server listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("serve failed")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogFormat == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	} else {
		log = zerolog.New(os.Stderr).Level(level)
	}
	return log.With().Timestamp().Logger()
}
