package notify

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Toast struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Buffer queues toasts until the front end drains them. The oldest toast is
// dropped once limit is reached.
type Buffer struct {
	mu     sync.Mutex
	toasts []Toast
	limit  int
	now    func() time.Time
}

func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 50
	}
	return &Buffer{limit: limit, now: time.Now}
}

func (b *Buffer) Success(msg string) { b.push(LevelSuccess, msg) }
func (b *Buffer) Error(msg string)   { b.push(LevelError, msg) }
func (b *Buffer) Info(msg string)    { b.push(LevelInfo, msg) }

func (b *Buffer) push(level Level, msg string) {
	log.Printf("[Toast] %s: %s", level, msg)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.toasts = append(b.toasts, Toast{Level: level, Message: msg, At: b.now()})
	if over := len(b.toasts) - b.limit; over > 0 {
		b.toasts = b.toasts[over:]
	}
}

// Drain returns the queued toasts and empties the queue.
func (b *Buffer) Drain() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.toasts
	b.toasts = nil
	return out
}

func (b *Buffer) Snapshot() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Toast(nil), b.toasts...)
}
