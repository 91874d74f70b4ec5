// Package inbox is the topbar notification center: a polled unread badge
// and a dropdown panel of unread notifications with optimistic mark-read.
package inbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const panelLimit = 15

var typeLabels = map[string]string{
	"CITA_PROXIMA":             "Cita próxima",
	"CITA_PENDIENTE_CONFIRMAR": "Pendiente",
	"SISTEMA":                  "Sistema",
}

// TypeLabel maps a notification type to its display label; unknown types
// fall through unchanged.
func TypeLabel(t string) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return t
}

// ExternalAction reports whether an action URL leaves the app.
func ExternalAction(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Center is the notification view-model behind the topbar bell.
type Center struct {
	client *api.Client
	logger *logging.Logger
	every  time.Duration

	mu     sync.Mutex
	open   bool
	items  []api.Notification
	unread int
}

// NewCenter builds the center; every is the badge polling interval and
// falls back to 30s when unset.
func NewCenter(client *api.Client, logger *logging.Logger, every time.Duration) *Center {
	if logger == nil {
		logger = logging.Default()
	}
	if every <= 0 {
		every = 30 * time.Second
	}
	return &Center{client: client, logger: logger, every: every}
}

// Poll refreshes the badge until ctx is cancelled. Errors are logged and
// skipped so a flaky backend never kills the loop.
func (c *Center) Poll(ctx context.Context) {
	ticker := time.NewTicker(c.every)
	defer ticker.Stop()

	c.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

func (c *Center) refresh(ctx context.Context) {
	n, err := c.client.UnreadCount(ctx)
	if err != nil {
		c.logger.Warn("unread count poll failed", "error", err)
		return
	}
	c.mu.Lock()
	c.unread = n
	open := c.open
	c.mu.Unlock()

	if open {
		if err := c.load(ctx); err != nil {
			c.logger.Warn("notification refresh failed", "error", err)
		}
	}
}

// Unread returns the badge count.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Open reports whether the panel is showing.
func (c *Center) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Items returns the panel contents.
func (c *Center) Items() []api.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Toggle opens or closes the panel; opening loads the unread list.
func (c *Center) Toggle(ctx context.Context) error {
	c.mu.Lock()
	c.open = !c.open
	open := c.open
	c.mu.Unlock()

	if !open {
		return nil
	}
	return c.load(ctx)
}

// Close hides the panel, e.g. on an outside click.
func (c *Center) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

func (c *Center) load(ctx context.Context) error {
	unreadOnly := true
	items, err := c.client.ListNotifications(ctx, api.NotificationQuery{
		UnreadOnly: &unreadOnly,
		Limit:      panelLimit,
	})
	if err != nil {
		c.mu.Lock()
		c.items = nil
		c.mu.Unlock()
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// MarkRead marks one notification read, drops it from the panel and
// decrements the badge without waiting for the next poll. It returns the
// notification's action URL, if any, for the caller to navigate to.
func (c *Center) MarkRead(ctx context.Context, id int64) (string, error) {
	if err := c.client.MarkNotificationRead(ctx, id); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	action := ""
	kept := c.items[:0]
	for _, n := range c.items {
		if n.ID == id {
			action = n.ActionURL
			continue
		}
		kept = append(kept, n)
	}
	c.items = kept
	if c.unread > 0 {
		c.unread--
	}
	return action, nil
}

// MarkAllRead clears every notification and closes the panel.
func (c *Center) MarkAllRead(ctx context.Context) error {
	if err := c.client.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = nil
	c.unread = 0
	c.open = false
	c.mu.Unlock()
	return nil
}
