package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nnarayan/naru-server/internal/session"
)

type chatRequest struct {
	Message       string `json:"message"`
	VoiceGender   string `json:"voice_gender"`
	SelectedState string `json:"selected_state"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.aiConfigured {
		s.writeError(w, http.StatusInternalServerError, "AI Client not initialized. Check API Key.")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if req.VoiceGender == "" {
		req.VoiceGender = "male"
	}

	sid := s.cookies.sessionID(w, r)
	s.respond(w, r, sid, req.Message, req.VoiceGender, req.SelectedState)
}

// respond runs one conversation turn against the caller's session and
// writes the outcome. Shared by the text and voice routes.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sid, input, gender, region string) {
	ctx := r.Context()

	state, err := s.store.Load(ctx, sid)
	if err != nil {
		// A lost session degrades to an empty one; the turn proceeds.
		s.log.Warn().Err(err).Str("session", sid).Msg("handler: loading session state")
		state = session.State{}
	}
	s.log.Debug().Str("session", sid).Int("history", len(state.ConversationHistory)).Msg("handler: session loaded")

	result := s.orchestrator.Respond(ctx, &state, input, gender, region)

	if err := s.store.Save(ctx, sid, state); err != nil {
		s.log.Error().Err(err).Str("session", sid).Msg("handler: saving session state")
	}

	s.writeResult(w, result)
}
