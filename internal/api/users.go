package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers fetches active staff accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// ListAllUsers includes inactive staff accounts.
func (c *Client) ListAllUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/all", nil, &out); err != nil {
		return nil, fmt.Errorf("list all users: %w", err)
	}
	return out, nil
}

// GetUser fetches one staff account with its branch assignment.
func (c *Client) GetUser(ctx context.Context, id int64) (*UserDetail, error) {
	var out UserDetail
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &out, nil
}

// CreateUser registers a staff account.
func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPost, "/api/users", req, &out); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// UpdateUser edits a staff account.
func (c *Client) UpdateUser(ctx context.Context, id int64, req UserUpdateRequest) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), req, &out); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &out, nil
}

// AnnulUser disables a staff account (soft delete).
func (c *Client) AnnulUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/users/%d/anular", id), struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("annul user: %w", err)
	}
	return &out, nil
}

// ReactivateUser restores a disabled staff account.
func (c *Client) ReactivateUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/users/%d/reactivar", id), struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("reactivate user: %w", err)
	}
	return &out, nil
}

// ListBranches fetches the clinic locations.
func (c *Client) ListBranches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	if err := c.doJSON(ctx, http.MethodGet, "/api/sucursales", nil, &out); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return out, nil
}

// GetSpecialist fetches the specialist profile for a user id; 404 means the
// ESPECIALISTA user has no profile yet.
func (c *Client) GetSpecialist(ctx context.Context, userID int64) (*Specialist, error) {
	var out Specialist
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/especialistas/%d", userID), nil, &out); err != nil {
		return nil, fmt.Errorf("get specialist: %w", err)
	}
	return &out, nil
}

// UpsertSpecialist creates or replaces the specialist profile for a user id.
func (c *Client) UpsertSpecialist(ctx context.Context, userID int64, specialty string) (*Specialist, error) {
	payload := struct {
		Specialty string `json:"especialidad"`
	}{Specialty: specialty}
	var out Specialist
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/especialistas/%d", userID), payload, &out); err != nil {
		return nil, fmt.Errorf("upsert specialist: %w", err)
	}
	return &out, nil
}
