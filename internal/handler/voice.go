package handler

import (
	"io"
	"net/http"
)

// Uploaded audio larger than this is rejected at parse time.
const maxAudioUpload = 16 << 20

func (s *Server) handleVoiceInput(w http.ResponseWriter, r *http.Request) {
	if !s.aiConfigured {
		s.writeError(w, http.StatusInternalServerError, "AI Client not initialized. Check API Key.")
		return
	}

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		s.writeError(w, http.StatusBadRequest, "No audio data found")
		return
	}
	file, _, err := r.FormFile("audio_data")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No audio data found")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No audio data found")
		return
	}

	gender := r.FormValue("voice_gender")
	if gender == "" {
		gender = "male"
	}
	region := r.FormValue("selected_state")

	text, err := s.recognizer.Transcribe(r.Context(), audio)
	if err != nil || text == "" {
		s.log.Warn().Err(err).Msg("handler: transcription produced no text")
		s.speakError(r.Context(), w, http.StatusBadRequest, "Sorry, I couldn't understand the audio.", gender)
		return
	}
	s.log.Debug().Str("transcript", text).Msg("handler: voice input recognised")

	sid := s.cookies.sessionID(w, r)
	s.respond(w, r, sid, text, gender, region)
}
