// Package ui holds the cross-screen UI services: the toast center and the
// global loading indicator.
package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Default display durations per level.
const (
	successDuration = 3200 * time.Millisecond
	errorDuration   = 4500 * time.Millisecond
	infoDuration    = 3500 * time.Millisecond
	warningDuration = 4000 * time.Millisecond
)

// Toast is one dismissible notification.
type Toast struct {
	ID        string
	Level     Level
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// ToastCenter collects toasts for rendering. Errors persist slightly longer
// than the rest so users can actually read them.
type ToastCenter struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

func NewToastCenter() *ToastCenter {
	return &ToastCenter{now: time.Now}
}

func (c *ToastCenter) Success(msg string) Toast { return c.push(LevelSuccess, msg, successDuration) }
func (c *ToastCenter) Error(msg string) Toast   { return c.push(LevelError, msg, errorDuration) }
func (c *ToastCenter) Info(msg string) Toast    { return c.push(LevelInfo, msg, infoDuration) }
func (c *ToastCenter) Warning(msg string) Toast { return c.push(LevelWarning, msg, warningDuration) }

func (c *ToastCenter) push(level Level, msg string, d time.Duration) Toast {
	t := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		Duration:  d,
		CreatedAt: c.now(),
	}
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.mu.Unlock()
	return t
}

// Active returns the toasts still inside their display window, pruning the
// rest.
func (c *ToastCenter) Active() []Toast {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.toasts[:0]
	for _, t := range c.toasts {
		if now.Sub(t.CreatedAt) < t.Duration {
			live = append(live, t)
		}
	}
	c.toasts = live
	out := make([]Toast, len(live))
	copy(out, live)
	return out
}

// Dismiss removes one toast by id before its timer runs out.
func (c *ToastCenter) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}
