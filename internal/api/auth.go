package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token and a partial profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

// Me fetches the full profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &out, nil
}

// RequestPasswordReset starts the reset flow: the backend mails a 6-char code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := struct {
		Email string `json:"correo"`
	}{Email: email}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/password-reset/request", payload, nil); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

// ValidatePasswordReset checks the emailed code without consuming it.
func (c *Client) ValidatePasswordReset(ctx context.Context, email, code string) error {
	payload := struct {
		Email string `json:"correo"`
		Code  string `json:"code"`
	}{Email: email, Code: code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/password-reset/validate", payload, nil); err != nil {
		return fmt.Errorf("validate password reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset sets the new password, consuming the code.
func (c *Client) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	payload := struct {
		Email       string `json:"correo"`
		Code        string `json:"code"`
		NewPassword string `json:"nuevaContrasena"`
	}{Email: email, Code: code, NewPassword: newPassword}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/password-reset/confirm", payload, nil); err != nil {
		return fmt.Errorf("confirm password reset: %w", err)
	}
	return nil
}
