package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// NotificationQuery narrows GET /api/notifications.
type NotificationQuery struct {
	UnreadOnly *bool
	Limit      int
}

// ListNotifications fetches the caller's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, q NotificationQuery) ([]Notification, error) {
	vals := url.Values{}
	if q.UnreadOnly != nil {
		vals.Set("unreadOnly", strconv.FormatBool(*q.UnreadOnly))
	}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/api/notifications"
	if len(vals) > 0 {
		path += "?" + vals.Encode()
	}
	var out []Notification
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// UnreadCount is the lightweight endpoint used for topbar badge polling.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Unread int `json:"unread"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &out); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return out.Unread, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification of the caller as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/notifications/read-all", struct{}{}, nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
