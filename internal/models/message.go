package models

type Role string

const (
	RolePlayer    Role = "player"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation. Immutable once created; messages
// are never deleted individually, only as part of a full session reset.
type Message struct {
	// ID is a ULID so that messages sort by creation time.
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
