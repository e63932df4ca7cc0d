// Package config collects all environment-driven settings for the server.
//
// Settings are read once at startup. A .env file in the working directory is
// honoured when present so local development matches production env wiring.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads from the environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// GroqAPIKey authorises chat completion calls. Without it the AI
	// routes answer 500 for every request.
	GroqAPIKey string
	// GroqBaseURL points at an OpenAI-compatible completion endpoint.
	GroqBaseURL string
	// Model is the completion model identifier.
	Model string

	// TMDBAPIKey authorises movie search. Optional; only that capability
	// degrades without it.
	TMDBAPIKey string

	// SessionSecret signs the session-ID cookie. When empty an ephemeral
	// secret is generated and sessions do not survive a restart.
	SessionSecret string
	// SessionSecretEphemeral is true when SessionSecret was generated.
	SessionSecretEphemeral bool
	// SessionTTL bounds how long idle session state is kept.
	SessionTTL time.Duration

	RedisAddr string

	// Outbound client timeouts.
	WeatherTimeout    time.Duration
	CompletionTimeout time.Duration
	SpeechTimeout     time.Duration

	// FFmpegPath locates the transcoder used for voice input. Defaults to
	// whatever "ffmpeg" resolves to on PATH.
	FFmpegPath string

	// StaticDir is where the frontend assets live. When the directory is
	// absent the server only exposes the API routes.
	StaticDir string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading a .env file
// if one exists. Missing optional values fall back to defaults; validation
// of required values is left to the caller so it can decide what is fatal.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:              getenv("ADDR", ":5000"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:       getenv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:             getenv("GROQ_MODEL", "llama3-70b-8192"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        getdur("SESSION_TTL", 24*time.Hour),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		WeatherTimeout:    getdur("WEATHER_TIMEOUT", 10*time.Second),
		CompletionTimeout: getdur("COMPLETION_TIMEOUT", 60*time.Second),
		SpeechTimeout:     getdur("SPEECH_TIMEOUT", 30*time.Second),
		FFmpegPath:        getenv("FFMPEG_PATH", "ffmpeg"),
		StaticDir:         getenv("STATIC_DIR", "web"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "console"),
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		cfg.SessionSecretEphemeral = true
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read only fails if the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
