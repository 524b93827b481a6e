// Package notify is the transient banner surface. Every error an operation
// produces ends up here as a single user-visible notification; banners
// dismiss themselves after three seconds.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DismissAfter is how long a banner stays visible.
const DismissAfter = 3 * time.Second

// Level is the banner severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one transient banner.
type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Listener is called on every push and every dismissal.
type Listener func([]Notification)

// Center holds the active banners. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	active   []Notification
	listener Listener

	// dismissAfter is swappable for tests
	dismissAfter time.Duration
}

// NewCenter creates a notification center.
func NewCenter() *Center {
	return &Center{
		dismissAfter: DismissAfter,
	}
}

// Subscribe installs the listener notified on every change.
func (c *Center) Subscribe(listener Listener) {
	c.mu.Lock()
	c.listener = listener
	c.mu.Unlock()
}

// Success pushes a success banner.
func (c *Center) Success(message string) { c.push(LevelSuccess, message) }

// Error pushes an error banner.
func (c *Center) Error(message string) { c.push(LevelError, message) }

// Info pushes an info banner.
func (c *Center) Info(message string) { c.push(LevelInfo, message) }

// Active returns a snapshot of the currently visible banners.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active...)
}

func (c *Center) push(level Level, message string) {
	notification := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}

	c.mu.Lock()
	c.active = append(c.active, notification)
	listener := c.listener
	snapshot := append([]Notification(nil), c.active...)
	dismissAfter := c.dismissAfter
	c.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}

	time.AfterFunc(dismissAfter, func() {
		c.dismiss(notification.ID)
	})
}

func (c *Center) dismiss(id string) {
	c.mu.Lock()
	for i, notification := range c.active {
		if notification.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			break
		}
	}
	listener := c.listener
	snapshot := append([]Notification(nil), c.active...)
	c.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}
