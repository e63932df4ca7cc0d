package session

// MaxHistory caps the stored conversation history: 10 user/assistant
// exchanges. The system turn is never stored, so it never counts.
const MaxHistory = 20

// Truncate bounds history to the most recent max turns, dropping the oldest
// first. Relative order of the retained turns is preserved.
func Truncate(history []Turn, max int) []Turn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

// AppendExchange appends one user turn and one assistant turn, then applies
// the MaxHistory bound. Applied after the append, so the newest exchange is
// always retained.
func AppendExchange(history []Turn, userInput, reply string) []Turn {
	history = append(history,
		Turn{Role: RoleUser, Content: userInput},
		Turn{Role: RoleAssistant, Content: reply},
	)
	return Truncate(history, MaxHistory)
}
