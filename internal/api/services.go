package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListServices fetches active servicios.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.doJSON(ctx, http.MethodGet, "/api/servicios", nil, &out); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}

// ListAllServices includes inactive servicios.
func (c *Client) ListAllServices(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.doJSON(ctx, http.MethodGet, "/api/servicios/all", nil, &out); err != nil {
		return nil, fmt.Errorf("list all services: %w", err)
	}
	return out, nil
}

// GetService fetches one servicio by id.
func (c *Client) GetService(ctx context.Context, id int64) (*Service, error) {
	var out Service
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/servicios/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &out, nil
}

// CreateService registers a servicio, optionally with an initial price point.
func (c *Client) CreateService(ctx context.Context, req ServiceCreateRequest) (*Service, error) {
	var out Service
	if err := c.doJSON(ctx, http.MethodPost, "/api/servicios", req, &out); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &out, nil
}

// UpdateService edits name/description/active.
func (c *Client) UpdateService(ctx context.Context, id int64, req ServiceUpdateRequest) (*Service, error) {
	var out Service
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/servicios/%d", id), req, &out); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return &out, nil
}

// SetServicePrice opens a new price point; the previous one is closed by the
// backend, never overwritten.
func (c *Client) SetServicePrice(ctx context.Context, id int64, price float64, currency string) (*PricePoint, error) {
	payload := struct {
		Price    float64 `json:"precio"`
		Currency string  `json:"moneda,omitempty"`
	}{Price: price, Currency: currency}
	var out PricePoint
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/servicios/%d/precio", id), payload, &out); err != nil {
		return nil, fmt.Errorf("set service price: %w", err)
	}
	return &out, nil
}

// ServicePriceHistory fetches the versioned price points of a servicio.
func (c *Client) ServicePriceHistory(ctx context.Context, id int64) ([]PricePoint, error) {
	var out []PricePoint
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/servicios/%d/precios", id), nil, &out); err != nil {
		return nil, fmt.Errorf("service price history: %w", err)
	}
	return out, nil
}

// DeactivateService soft-deletes a servicio.
func (c *Client) DeactivateService(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/servicios/%d/inactivar", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	return nil
}

// ReactivateService restores a soft-deleted servicio.
func (c *Client) ReactivateService(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/servicios/%d/reactivar", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("reactivate service: %w", err)
	}
	return nil
}
