// Package notify surfaces transient success and error messages.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Notifier is the toast sink.
type Notifier interface {
	Success(message, detail string)
	Error(message, detail string)
}

// Level is the severity of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is one transient message.
type Toast struct {
	Level   Level
	Message string
	Detail  string
	At      time.Time
}

// Toaster keeps recent toasts for a front end to render.
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	max    int
	now    func() time.Time
}

// NewToaster creates a Toaster that expires toasts after ttl.
func NewToaster(ttl time.Duration) *Toaster {
	return &Toaster{ttl: ttl, max: 5, now: time.Now}
}

func (t *Toaster) Success(message, detail string) { t.push(LevelSuccess, message, detail) }

func (t *Toaster) Error(message, detail string) { t.push(LevelError, message, detail) }

func (t *Toaster) push(level Level, message, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, Toast{Level: level, Message: message, Detail: detail, At: t.now()})
	if len(t.toasts) > t.max {
		t.toasts = t.toasts[len(t.toasts)-t.max:]
	}
}

// Active drops expired toasts and returns the rest, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if toast.At.After(cutoff) {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
	return append([]Toast(nil), kept...)
}

// Logger writes toasts to a structured log.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a log-backed notifier. A nil logger uses slog.Default.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) Success(message, detail string) {
	l.log.Info(message, "detail", detail, "toast", LevelSuccess)
}

func (l *Logger) Error(message, detail string) {
	l.log.Error(message, "detail", detail, "toast", LevelError)
}

// Multi fans a toast out to several sinks.
type Multi []Notifier

func (m Multi) Success(message, detail string) {
	for _, n := range m {
		n.Success(message, detail)
	}
}

func (m Multi) Error(message, detail string) {
	for _, n := range m {
		n.Error(message, detail)
	}
}
