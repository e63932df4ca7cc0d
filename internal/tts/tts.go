// Package tts synthesizes speech through the Microsoft Edge neural TTS
// websocket service. The service streams MP3 frames; Synthesize collects
// them into a single buffer, so callers see one blocking call with either a
// complete audio payload or an error — never partial audio.
package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultEndpoint = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	// Token the Edge browser presents to the read-aloud service.
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	voiceMale   = "en-IN-PrabhatNeural"
	voiceFemale = "en-IN-NeerjaNeural"

	// Speech rate relative to the voice baseline.
	defaultRate = "+12%"

	outputFormat = "audio-24khz-48kbitrate-mono-mp3"
)

// ErrNoAudio is returned when the service closes the turn without sending
// any audio frames.
var ErrNoAudio = errors.New("tts: no audio received")

const defaultTimeout = 30 * time.Second

// Synthesizer converts text into MP3 bytes using one of two fixed voices.
type Synthesizer struct {
	endpoint string
	rate     string
	timeout  time.Duration
	dialer   *websocket.Dialer
	log      zerolog.Logger
}

// Option configures the Synthesizer.
type Option func(*Synthesizer)

// WithEndpoint overrides the websocket endpoint (used in tests).
func WithEndpoint(endpoint string) Option {
	return func(s *Synthesizer) { s.endpoint = endpoint }
}

// WithTimeout bounds the whole synthesis call, handshake included.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.timeout = d }
}

// New returns a synthesizer speaking at the fixed +12% rate.
func New(log zerolog.Logger, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		endpoint: defaultEndpoint,
		rate:     defaultRate,
		timeout:  defaultTimeout,
		dialer:   &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VoiceFor maps a gender selector to a voice identity. Anything other than
// "female" gets the male voice.
func VoiceFor(gender string) string {
	if strings.EqualFold(gender, "female") {
		return voiceFemale
	}
	return voiceMale
}

// Synthesize speaks text with the voice selected by gender and returns the
// concatenated MP3 stream. Any failure returns a nil payload and an error;
// callers fall back to a text-only response.
func (s *Synthesizer) Synthesize(ctx context.Context, text, gender string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("tts: empty text")
	}

	// The caller's context usually carries no deadline, so the call bounds
	// itself; a stalled backend must not hang the request.
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	endpoint := s.endpoint
	if strings.HasPrefix(endpoint, "wss://speech.platform.bing.com") {
		endpoint += "?TrustedClientToken=" + trustedClientToken + "&ConnectionId=" + connectionID()
	}

	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tts dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	requestID := connectionID()
	if err := conn.WriteMessage(websocket.TextMessage, speechConfigMessage()); err != nil {
		return nil, fmt.Errorf("tts config: %w", err)
	}
	ssml := ssmlMessage(requestID, VoiceFor(gender), s.rate, text)
	if err := conn.WriteMessage(websocket.TextMessage, ssml); err != nil {
		return nil, fmt.Errorf("tts ssml: %w", err)
	}

	var audio bytes.Buffer
	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("tts stream: %w", err)
		}
		switch msgType {
		case websocket.BinaryMessage:
			audio.Write(audioPayload(frame))
		case websocket.TextMessage:
			if bytes.Contains(frame, []byte("Path:turn.end")) {
				if audio.Len() == 0 {
					return nil, ErrNoAudio
				}
				return audio.Bytes(), nil
			}
		}
	}
}

func speechConfigMessage() []byte {
	var b bytes.Buffer
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	b.WriteString("Path:speech.config\r\n\r\n")
	b.WriteString(`{"context":{"synthesis":{"audio":{"metadataoptions":` +
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + outputFormat + `"}}}}`)
	return b.Bytes()
}

func ssmlMessage(requestID, voice, rate, text string) []byte {
	var b bytes.Buffer
	b.WriteString("X-RequestId:" + requestID + "\r\n")
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Path:ssml\r\n\r\n")
	fmt.Fprintf(&b,
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
			"<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='+0%%'>%s</prosody></voice></speak>",
		voice, rate, escapeText(text))
	return b.Bytes()
}

// Binary frames carry a big-endian header length, the header itself, and
// the audio payload. Only frames whose header names the audio path carry
// speech data.
func audioPayload(frame []byte) []byte {
	if len(frame) < 2 {
		return nil
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil
	}
	header := frame[2 : 2+headerLen]
	if !bytes.Contains(header, []byte("Path:audio")) {
		return nil
	}
	return frame[2+headerLen:]
}

func escapeText(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
	return r.Replace(text)
}

func connectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}
