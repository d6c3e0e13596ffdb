package llm

// Role constants for Message.Role.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged unit of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of a completion call.
type Result struct {
	Content string
	Usage   *Usage
	// Interrupted is set when a stream stopped early because the call
	// was cancelled or timed out.
	Interrupted bool
}
