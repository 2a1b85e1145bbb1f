package models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is append-only, most recent turn last.
type Conversation []Message

// Recent returns up to n of the latest turns without copying the backing array.
func (c Conversation) Recent(n int) Conversation {
	if n <= 0 || len(c) <= n {
		return c
	}
	return c[len(c)-n:]
}

// Append returns a new conversation with msg added; the receiver is left untouched.
func (c Conversation) Append(msg Message) Conversation {
	out := make(Conversation, len(c), len(c)+1)
	copy(out, c)
	return append(out, msg)
}
