// Package conversation holds the ordered, append-only sequence of turns for
// the active session.
package conversation

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"noircase/internal/models"
)

// Log is owned by the session engine, which serialises access to it.
type Log struct {
	messages []models.Message
	entropy  io.Reader
}

func NewLog() *Log {
	return &Log{
		// Monotonic entropy keeps message IDs sortable within a millisecond.
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Append creates a message with a fresh ULID and adds it to the end of the log.
func (l *Log) Append(role models.Role, text string) models.Message {
	now := time.Now()
	msg := models.Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		Role:      role,
		Text:      text,
		Timestamp: now.UnixMilli(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// All returns a copy of the log, oldest first.
func (l *Log) All() []models.Message {
	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Window returns a copy of the last n messages, oldest first. It is the
// bounded history handed to the agent gateway.
func (l *Log) Window(n int) []models.Message {
	if n > len(l.messages) {
		n = len(l.messages)
	}
	out := make([]models.Message, n)
	copy(out, l.messages[len(l.messages)-n:])
	return out
}

// Last returns the most recent message, or false when the log is empty.
func (l *Log) Last() (models.Message, bool) {
	if len(l.messages) == 0 {
		return models.Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Replace swaps the whole log for the given messages. Used for session reset
// and for load/import.
func (l *Log) Replace(messages []models.Message) {
	l.messages = make([]models.Message, len(messages))
	copy(l.messages, messages)
}

func (l *Log) Len() int {
	return len(l.messages)
}
