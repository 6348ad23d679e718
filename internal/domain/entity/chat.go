package entity

import "time"

// SessionID identifies a chat session within a SessionStore
type SessionID string

// MessageID identifies a message; ids are assigned from a store-wide sequence
type MessageID uint64

// Sender is who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Session is a chat session shown in the sidebar
type Session struct {
	ID          SessionID
	DisplayName string
	CreatedAt   time.Time
}

// Message is one entry of a session's log. Messages are immutable once appended.
type Message struct {
	ID       MessageID
	Sender   Sender
	Artifact Artifact
}

// ParseSender maps the sender strings used by the backend ("user", "ai",
// "assistant") to a Sender
func ParseSender(s string) Sender {
	switch s {
	case "user", "human":
		return SenderUser
	default:
		return SenderAssistant
	}
}
