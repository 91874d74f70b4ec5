package api

import (
	"context"
	"fmt"
	"net/http"
)

// GetBill fetches the cobro tied to an appointment. A 404 means no bill has
// been opened yet for that cita.
func (c *Client) GetBill(ctx context.Context, appointmentID int64) (*Bill, error) {
	var out Bill
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/caja/citas/%d/cobro", appointmentID), nil, &out); err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return &out, nil
}

// SaveBill replaces the bill's full item list. There is no partial patch;
// the caller sends every line it wants kept.
func (c *Client) SaveBill(ctx context.Context, appointmentID int64, req BillUpsertRequest) (*Bill, error) {
	var out Bill
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/caja/citas/%d/cobro", appointmentID), req, &out); err != nil {
		return nil, fmt.Errorf("save bill: %w", err)
	}
	return &out, nil
}

// PayBill applies one payment against the bill's balance.
func (c *Client) PayBill(ctx context.Context, appointmentID int64, req PayRequest) (*Bill, error) {
	var out Bill
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/caja/citas/%d/cobro/pagar", appointmentID), req, &out); err != nil {
		return nil, fmt.Errorf("pay bill: %w", err)
	}
	return &out, nil
}
