// Package handler exposes the assistant over HTTP: a JSON chat route, a
// multipart voice route, history clearing and landing-page view data.
// Responses are either synthesized audio with the reply echoed in a header,
// or structured JSON; raw errors never reach the client.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/nnarayan/naru-server/internal/assistant"
	"github.com/nnarayan/naru-server/internal/location"
	"github.com/nnarayan/naru-server/internal/session"
)

// Reply text is echoed in this header next to the audio body.
const responseTextHeader = "X-Response-Text"

// Transcriber turns uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Server owns the routes and their collaborators.
type Server struct {
	router       *chi.Mux
	orchestrator *assistant.Orchestrator
	store        session.Store
	speech       assistant.Synthesizer
	recognizer   Transcriber
	cookies      *cookieManager
	aiConfigured bool
	log          zerolog.Logger
}

// Config wires a Server.
type Config struct {
	Orchestrator *assistant.Orchestrator
	Store        session.Store
	Speech       assistant.Synthesizer
	Recognizer   Transcriber
	// SessionSecret signs the session-ID cookie.
	SessionSecret string
	// StaticDir, when non-empty, is served as the frontend at the root
	// path. View data stays available at /regions either way.
	StaticDir string
	// AIConfigured is false when the completion credential is missing;
	// the AI routes then answer 500 for every request.
	AIConfigured bool
	Log          zerolog.Logger
}

// NewServer builds the router and handlers.
func NewServer(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		orchestrator: cfg.Orchestrator,
		store:        cfg.Store,
		speech:       cfg.Speech,
		recognizer:   cfg.Recognizer,
		cookies:      newCookieManager(cfg.SessionSecret),
		aiConfigured: cfg.AIConfigured,
		log:          cfg.Log,
	}

	s.router.Use(cors.Handler(cors.Options{
		// Browsers reject the wildcard for credentialed requests, so the
		// origin is reflected instead. The cookie only carries a signed
		// session ID.
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{responseTextHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		s.router.Get("/", s.handleRegions)
	}
	s.router.Get("/regions", s.handleRegions)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Post("/chat", s.handleChat)
	s.router.Post("/voice_input", s.handleVoiceInput)
	s.router.Post("/clear_history", s.handleClearHistory)
	return s
}

// Router returns the http.Handler to serve.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	// View data for the landing page: selectable regions with the
	// placeholder first, and the available voices.
	s.writeJSON(w, http.StatusOK, map[string]any{
		"states":        location.Regions(),
		"voices":        []string{"male", "female"},
		"default_voice": "male",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sid := s.cookies.sessionID(w, r)
	if err := s.store.ClearHistory(r.Context(), sid); err != nil {
		// Clearing is best-effort; the caller still gets a success so
		// the UI can reset. The failure is only a log line.
		s.log.Error().Err(err).Msg("handler: clearing history")
		s.writeJSON(w, http.StatusOK, map[string]string{"message": "No server-side history to clear"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Server-side history cleared"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("handler: encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeResult emits the orchestrator's outcome: audio with the reply echoed
// in a header when synthesis succeeded, JSON text otherwise. A completion
// failure keeps this shape but reports a server error status.
func (s *Server) writeResult(w http.ResponseWriter, result assistant.Result) {
	status := http.StatusOK
	if result.CompletionFailed {
		status = http.StatusInternalServerError
	}

	if result.Audio != nil {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set(responseTextHeader, sanitizeHeaderValue(result.Text))
		w.WriteHeader(status)
		if _, err := w.Write(result.Audio); err != nil {
			s.log.Error().Err(err).Msg("handler: writing audio body")
		}
		return
	}

	if result.CompletionFailed {
		s.writeError(w, status, result.Text)
		return
	}
	s.writeJSON(w, status, map[string]string{"response_text": result.Text})
}

// speakError answers with a spoken version of msg when synthesis works,
// falling back to a JSON error payload. Used where the turn cannot reach
// the orchestrator (for example when transcription produced no text).
func (s *Server) speakError(ctx context.Context, w http.ResponseWriter, status int, msg, gender string) {
	audio, err := s.speech.Synthesize(ctx, msg, gender)
	if err != nil {
		s.log.Warn().Err(err).Msg("handler: could not speak error message")
		s.writeError(w, status, msg)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set(responseTextHeader, sanitizeHeaderValue(msg))
	w.WriteHeader(status)
	if _, err := w.Write(audio); err != nil {
		s.log.Error().Err(err).Msg("handler: writing audio body")
	}
}

// sanitizeHeaderValue makes reply text safe for an HTTP header: newlines
// become spaces and non-ASCII runes are dropped. When nothing printable
// survives, a generic placeholder is substituted rather than failing the
// response.
func sanitizeHeaderValue(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r >= 32 && r < 128:
			b.WriteRune(r)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "Response generated."
	}
	return b.String()
}
