package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnarayan/naru-server/internal/assistant"
	"github.com/nnarayan/naru-server/internal/session"
	"github.com/nnarayan/naru-server/internal/weather"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(context.Context, []session.Turn) (string, error) {
	return f.reply, f.err
}

type fakeWeather struct{}

func (fakeWeather) Current(context.Context, float64, float64) weather.Snapshot {
	return weather.Snapshot{
		Temperature: "28", Condition: "Clear sky", RainTodayMM: "0",
		TempMaxToday: "31", TempMinToday: "24",
	}
}

type fakeSynth struct {
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(context.Context, string, string) ([]byte, error) {
	return f.audio, f.err
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fixture struct {
	server *Server
	store  session.Store
}

func newFixture(t *testing.T, completer *fakeCompleter, synth *fakeSynth, recognizer *fakeRecognizer) fixture {
	t.Helper()
	store := session.NewMemoryStore()
	orch := assistant.New(completer, fakeWeather{}, synth, zerolog.Nop())
	srv := NewServer(Config{
		Orchestrator:  orch,
		Store:         store,
		Speech:        synth,
		Recognizer:    recognizer,
		SessionSecret: "test-secret",
		AIConfigured:  true,
		Log:           zerolog.Nop(),
	})
	return fixture{server: srv, store: store}
}

func postChat(t *testing.T, srv *Server, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestChatMissingMessage(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "hi"}, &fakeSynth{}, &fakeRecognizer{})

	for _, body := range []string{`{}`, `{"message": ""}`, `not json`} {
		rec := postChat(t, f.server, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "No message provided", payload["error"])
	}
}

func TestChatAudioResponse(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Namaste!"}, &fakeSynth{audio: []byte("mp3-bytes")}, &fakeRecognizer{})

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Namaste!", rec.Header().Get("X-Response-Text"))
	assert.Equal(t, []byte("mp3-bytes"), rec.Body.Bytes())
}

func TestChatTextFallbackWhenSynthesisFails(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hey *bro*!"}, &fakeSynth{err: errors.New("tts down")}, &fakeRecognizer{})

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Hey bro!", payload["response_text"])
}

func TestChatPersistsHistoryAndReusesSession(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "hello!"}, &fakeSynth{err: errors.New("down")}, &fakeRecognizer{})

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Second turn on the same cookie extends the same history.
	rec = postChat(t, f.server, `{"message": "again"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	// Find the one stored session and check the turn sequence.
	sid := sessionIDFromCookie(t, f.server, cookies)
	state, err := f.store.Load(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, state.ConversationHistory, 4)
	assert.Equal(t, session.Turn{Role: session.RoleUser, Content: "hi"}, state.ConversationHistory[0])
	assert.Equal(t, session.Turn{Role: session.RoleAssistant, Content: "hello!"}, state.ConversationHistory[1])
	assert.Equal(t, "again", state.ConversationHistory[2].Content)
}

func sessionIDFromCookie(t *testing.T, srv *Server, cookies []*http.Cookie) string {
	t.Helper()
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			var sid string
			require.NoError(t, srv.cookies.codec.Decode(sessionCookieName, c.Value, &sid))
			return sid
		}
	}
	t.Fatal("no session cookie issued")
	return ""
}

func TestChatCompletionFailureIsSpokenApology(t *testing.T) {
	f := newFixture(t, &fakeCompleter{err: errors.New("llm down")}, &fakeSynth{audio: []byte("apology")}, &fakeRecognizer{})

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, assistant.Apology, rec.Header().Get("X-Response-Text"))
}

func TestChatCompletionAndSynthesisFailure(t *testing.T) {
	f := newFixture(t, &fakeCompleter{err: errors.New("llm down")}, &fakeSynth{err: errors.New("tts down")}, &fakeRecognizer{})

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, assistant.Apology, payload["error"])
}

func TestChatUnconfiguredAI(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "hi"}, &fakeSynth{}, &fakeRecognizer{})
	f.server.aiConfigured = false

	rec := postChat(t, f.server, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func multipartVoiceBody(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withFile {
		fw, err := mw.CreateFormFile("audio_data", "input.webm")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-webm"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("voice_gender", "female"))
	require.NoError(t, mw.WriteField("selected_state", "Tamil Nadu"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestVoiceInputSuccess(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "suna!"}, &fakeSynth{audio: []byte("mp3")}, &fakeRecognizer{text: "kya haal hai"})

	body, contentType := multipartVoiceBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/voice_input", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "suna!", rec.Header().Get("X-Response-Text"))
}

func TestVoiceInputMissingFile(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "x"}, &fakeSynth{}, &fakeRecognizer{})

	body, contentType := multipartVoiceBody(t, false)
	req := httptest.NewRequest(http.MethodPost, "/voice_input", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "No audio data found", payload["error"])
}

func TestVoiceInputTranscriptionFailure(t *testing.T) {
	f := newFixture(t,
		&fakeCompleter{reply: "x"},
		&fakeSynth{audio: []byte("spoken-sorry")},
		&fakeRecognizer{err: errors.New("unintelligible")},
	)

	body, contentType := multipartVoiceBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/voice_input", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	// The failure is spoken back at 400.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Sorry, I couldn't understand the audio.", rec.Header().Get("X-Response-Text"))
}

func TestClearHistoryAlwaysSucceeds(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "hello"}, &fakeSynth{err: errors.New("down")}, &fakeRecognizer{})

	// Clearing with no prior state.
	req := httptest.NewRequest(http.MethodPost, "/clear_history", nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Build some history, clear it, and check a fresh load is empty.
	rec = postChat(t, f.server, `{"message": "hi"}`, nil)
	cookies := rec.Result().Cookies()
	sid := sessionIDFromCookie(t, f.server, cookies)

	req = httptest.NewRequest(http.MethodPost, "/clear_history", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	state, err := f.store.Load(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, state.ConversationHistory)
}

func TestRegionsViewData(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "x"}, &fakeSynth{}, &fakeRecognizer{})

	// Without a static dir the view data also answers at the root.
	for _, path := range []string{"/regions", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		f.server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "path %q", path)
		var payload struct {
			States       []string `json:"states"`
			DefaultVoice string   `json:"default_voice"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "Select State", payload.States[0])
		assert.Contains(t, payload.States, "Tamil Nadu")
		assert.Equal(t, "male", payload.DefaultVoice)
	}
}

func TestStaticFrontendServedWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>naru</html>"), 0o644))

	srv := NewServer(Config{
		Orchestrator:  assistant.New(&fakeCompleter{reply: "x"}, fakeWeather{}, &fakeSynth{}, zerolog.Nop()),
		Store:         session.NewMemoryStore(),
		Speech:        &fakeSynth{},
		Recognizer:    &fakeRecognizer{},
		SessionSecret: "test-secret",
		StaticDir:     dir,
		AIConfigured:  true,
		Log:           zerolog.Nop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "naru")

	// The API routes stay reachable beside the frontend.
	req = httptest.NewRequest(http.MethodGet, "/regions", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCORSReflectsOriginForCredentials(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "x"}, &fakeSynth{}, &fakeRecognizer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://app.example.com")
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	// A wildcard here would make browsers drop the session cookie.
	assert.Equal(t, "http://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSanitizeHeaderValue(t *testing.T) {
	assert.Equal(t, "Hey bro!", sanitizeHeaderValue("Hey bro!"))
	assert.Equal(t, "line one line two", sanitizeHeaderValue("line one\nline two"))
	assert.Equal(t, "namaste ", sanitizeHeaderValue("namaste 🙏"))
	assert.Equal(t, "Response generated.", sanitizeHeaderValue("🙏🙏"))
	assert.Equal(t, "Response generated.", sanitizeHeaderValue(""))
}
