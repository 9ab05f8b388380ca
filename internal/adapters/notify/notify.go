// Package notify collects user-facing messages (alerts and informational
// notices) so the UI can display them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

const defaultCapacity = 100

// Level classifies a message.
type Level string

// Message levels.
const (
	LevelAlert Level = "alert"
	LevelInfo  Level = "info"
)

// Message is one user-facing notice.
type Message struct {
	ID    string    `json:"id"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Alert(ctx context.Context, text string)
	Info(ctx context.Context, text string)
}

// Inbox is an in-memory Notifier. It keeps the most recent messages until
// they are drained.
type Inbox struct {
	mu       sync.Mutex
	messages []Message
	capacity int
	logger   logger.Logger
	now      func() time.Time
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithCapacity bounds the number of retained messages; the oldest are
// dropped first.
func WithCapacity(n int) Option {
	return func(in *Inbox) {
		if n > 0 {
			in.capacity = n
		}
	}
}

// WithLogger sets the logger every message is mirrored to.
func WithLogger(l logger.Logger) Option {
	return func(in *Inbox) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewInbox creates an Inbox.
func NewInbox(opts ...Option) *Inbox {
	in := &Inbox{
		capacity: defaultCapacity,
		logger:   logger.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Alert records an error-style message.
func (in *Inbox) Alert(ctx context.Context, text string) {
	in.add(ctx, LevelAlert, text)
}

// Info records an informational message.
func (in *Inbox) Info(ctx context.Context, text string) {
	in.add(ctx, LevelInfo, text)
}

func (in *Inbox) add(ctx context.Context, lvl Level, text string) {
	msg := Message{ID: uuid.NewString(), Level: lvl, Text: text, At: in.now()}

	in.mu.Lock()
	in.messages = append(in.messages, msg)
	if over := len(in.messages) - in.capacity; over > 0 {
		in.messages = append([]Message(nil), in.messages[over:]...)
	}
	in.mu.Unlock()

	metrics.RecordMessage(string(lvl))
	in.logger.Info(ctx, "user message", logger.String("level", string(lvl)), logger.String("text", text))
}

// Peek returns retained messages without removing them.
func (in *Inbox) Peek() []Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Message(nil), in.messages...)
}

// Drain returns and removes all retained messages.
func (in *Inbox) Drain() []Message {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.messages
	in.messages = nil
	return out
}
