package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AppointmentFilter narrows GET /api/citas. Zero-value fields are omitted.
type AppointmentFilter struct {
	BranchID int64
	From     time.Time
	To       time.Time
}

// ListAppointments fetches citas, optionally bounded by branch and date window.
func (c *Client) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	q := url.Values{}
	if filter.BranchID > 0 {
		q.Set("idSucursal", fmt.Sprintf("%d", filter.BranchID))
	}
	if !filter.From.IsZero() {
		q.Set("desde", filter.From.Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		q.Set("hasta", filter.To.Format(time.RFC3339))
	}
	path := "/api/citas"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Appointment
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// CreateAppointment books a new cita.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.doJSON(ctx, http.MethodPost, "/api/citas", req, &out); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &out, nil
}

// UpdateAppointment replaces a cita's editable fields.
func (c *Client) UpdateAppointment(ctx context.Context, id int64, req AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/citas/%d", id), req, &out); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return &out, nil
}

// ChangeAppointmentStatus drives the lifecycle via PATCH /{id}/estado.
func (c *Client) ChangeAppointmentStatus(ctx context.Context, id int64, status AppointmentStatus, note string) (*Appointment, error) {
	payload := struct {
		Status AppointmentStatus `json:"estado"`
		Note   *string           `json:"nota"`
	}{Status: status}
	if note != "" {
		payload.Note = &note
	}
	var out Appointment
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/citas/%d/estado", id), payload, &out); err != nil {
		return nil, fmt.Errorf("change appointment status: %w", err)
	}
	return &out, nil
}

// CancelAppointment is a status change to CANCELADA with an optional reason.
func (c *Client) CancelAppointment(ctx context.Context, id int64, reason string) (*Appointment, error) {
	return c.ChangeAppointmentStatus(ctx, id, StatusCancelled, reason)
}

// AssignSpecialist sets only idEspecialista on a cita. The backend has no
// dedicated endpoint for this; PUT with a single field does the job.
func (c *Client) AssignSpecialist(ctx context.Context, id int64, specialistID *int64) (*Appointment, error) {
	payload := struct {
		SpecialistID *int64 `json:"idEspecialista"`
	}{SpecialistID: specialistID}
	var out Appointment
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/citas/%d", id), payload, &out); err != nil {
		return nil, fmt.Errorf("assign specialist: %w", err)
	}
	return &out, nil
}
