package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

// maxResetRequests caps code requests per flow instance. Pure UX throttling;
// the backend applies its own rate limit.
const maxResetRequests = 3

const resetCodeLength = 6

var (
	// ErrResetLimit means the user burned all code requests for this flow.
	ErrResetLimit = errors.New("session: reset code request limit reached")
	// ErrBadResetCode means the code is not 6 characters.
	ErrBadResetCode = errors.New("session: reset code must be 6 characters")
	// ErrWeakPassword means the new password is shorter than 6 characters.
	ErrWeakPassword = errors.New("session: password must be at least 6 characters")
	// ErrPasswordMismatch means password and confirmation differ.
	ErrPasswordMismatch = errors.New("session: passwords do not match")
)

// ResetFlow drives the three-step password reset: request a code, validate
// it, confirm the new password. One instance per forgot-password attempt.
type ResetFlow struct {
	client *api.Client

	mu       sync.Mutex
	requests int
}

func NewResetFlow(client *api.Client) *ResetFlow {
	return &ResetFlow{client: client}
}

// Request asks the backend to email a code. The third call is the last one
// accepted; later calls fail locally without touching the network.
func (f *ResetFlow) Request(ctx context.Context, email string) error {
	f.mu.Lock()
	if f.requests >= maxResetRequests {
		f.mu.Unlock()
		return ErrResetLimit
	}
	f.mu.Unlock()

	if err := f.client.RequestPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		return err
	}

	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	return nil
}

// Remaining reports how many code requests are left.
func (f *ResetFlow) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maxResetRequests - f.requests
}

// Validate checks the emailed code server-side after a local length check.
func (f *ResetFlow) Validate(ctx context.Context, email, code string) error {
	code = strings.TrimSpace(code)
	if len(code) != resetCodeLength {
		return ErrBadResetCode
	}
	return f.client.ValidatePasswordReset(ctx, strings.TrimSpace(email), code)
}

// Confirm sets the new password, enforcing minimum length and confirmation
// match before the network call.
func (f *ResetFlow) Confirm(ctx context.Context, email, code, newPassword, confirmation string) error {
	code = strings.TrimSpace(code)
	if len(code) != resetCodeLength {
		return ErrBadResetCode
	}
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}
	if newPassword != confirmation {
		return ErrPasswordMismatch
	}
	return f.client.ConfirmPasswordReset(ctx, strings.TrimSpace(email), code, newPassword)
}
