// Package session holds per-user conversation state in a process-external
// key/value store. The state blob is read once at the start of a turn and
// written once at the end; concurrent turns within one session are
// last-write-wins (a single user is assumed not to overlap requests).
package session

import "context"

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message attributed to a role. Immutable once created;
// ordering within a history is chronological.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is everything the server remembers about one user session. The
// system prompt is never part of ConversationHistory; it is regenerated for
// every request.
type State struct {
	ConversationHistory []Turn `json:"conversation_history"`
	SelectedRegion      string `json:"selected_region,omitempty"`
}

// Store persists session state keyed by session ID.
type Store interface {
	// Load returns the state for id, or a zero State when none exists.
	Load(ctx context.Context, id string) (State, error)
	// Save replaces the state for id.
	Save(ctx context.Context, id string, state State) error
	// ClearHistory drops the conversation history for id, keeping the
	// rest of the state. Clearing an absent session is not an error.
	ClearHistory(ctx context.Context, id string) error
	// Close releases store resources.
	Close() error
}
