// Package assistant turns one user input into one reply. It assembles the
// system prompt from persona, wall-clock time, location and weather, merges
// it with the bounded session history, calls the completion service, and
// routes the reply through speech synthesis with a text-only fallback.
//
// Every external call in the pipeline is attempted exactly once and is
// wrapped so a failure produces a fallback value instead of aborting the
// turn: weather degrades to placeholder text, a completion failure becomes
// a spoken apology, a synthesis failure becomes a text-only response.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnarayan/naru-server/internal/location"
	"github.com/nnarayan/naru-server/internal/session"
	"github.com/nnarayan/naru-server/internal/weather"
)

// Apology is the reply substituted when the completion service fails. It is
// spoken like any other reply.
const Apology = "Sorry, I encountered an error trying to respond."

// Completer produces a model reply for an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, turns []session.Turn) (string, error)
}

// Synthesizer converts reply text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, gender string) ([]byte, error)
}

// WeatherSource fetches current conditions for a coordinate. It never
// fails; degraded lookups return placeholder snapshots.
type WeatherSource interface {
	Current(ctx context.Context, latitude, longitude float64) weather.Snapshot
}

// Result is the outcome of one conversation turn. Audio is nil when
// synthesis failed and the caller should answer with text only.
type Result struct {
	Text  string
	Audio []byte
	// CompletionFailed marks an apology reply; the transport reports it
	// as a server error even though the turn completed.
	CompletionFailed bool
}

// Orchestrator is the request-handling core.
type Orchestrator struct {
	completer Completer
	weather   WeatherSource
	speech    Synthesizer
	persona   string
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithPersona replaces the default persona text.
func WithPersona(persona string) Option {
	return func(o *Orchestrator) { o.persona = persona }
}

// WithClock replaces the wall clock (used in tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires the orchestrator's collaborators.
func New(completer Completer, weatherSrc WeatherSource, speech Synthesizer, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer: completer,
		weather:   weatherSrc,
		speech:    speech,
		persona:   DefaultPersona,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Respond runs one conversation turn. It mutates state (region selection
// and history) in place; the caller persists it afterwards. The returned
// Result is always usable — failures along the pipeline substitute fallback
// values rather than aborting.
func (o *Orchestrator) Respond(ctx context.Context, state *session.State, input, gender, region string) Result {
	// The client is authoritative about geography; a region in the
	// request overwrites whatever the session remembered.
	if region != "" {
		state.SelectedRegion = region
	}

	coord, locationName := location.Resolve(state.SelectedRegion)
	snapshot := o.weather.Current(ctx, coord.Latitude, coord.Longitude)
	systemPrompt := o.buildSystemPrompt(locationName, snapshot)

	messages := make([]session.Turn, 0, len(state.ConversationHistory)+2)
	messages = append(messages, session.Turn{Role: session.RoleSystem, Content: systemPrompt})
	messages = append(messages, state.ConversationHistory...)
	messages = append(messages, session.Turn{Role: session.RoleUser, Content: input})

	reply, err := o.completer.Complete(ctx, messages)
	completionFailed := err != nil
	if completionFailed {
		o.log.Error().Err(err).Msg("assistant: completion failed, substituting apology")
		reply = Apology
	}
	// Strip markdown emphasis so the spoken reply does not read asterisks.
	reply = strings.ReplaceAll(reply, "*", "")

	state.ConversationHistory = session.AppendExchange(state.ConversationHistory, input, reply)

	result := Result{Text: reply, CompletionFailed: completionFailed}
	audio, err := o.speech.Synthesize(ctx, reply, gender)
	if err != nil {
		o.log.Warn().Err(err).Msg("assistant: synthesis failed, falling back to text")
		return result
	}
	result.Audio = audio
	return result
}

func (o *Orchestrator) buildSystemPrompt(locationName string, w weather.Snapshot) string {
	return fmt.Sprintf(
		"%s\nCurrent Time: %s\nCurrent Location Context: %s\nCurrent Temperature: %s°C\nWeather: %s\nChance of rain today: %s mm\nMax temperature today: %s°C\nMin temperature today: %s°C",
		o.persona,
		o.now().Format("Monday, 02 January 2006, 03:04 PM"),
		locationName,
		w.Temperature,
		w.Condition,
		w.RainTodayMM,
		w.TempMaxToday,
		w.TempMinToday,
	)
}
