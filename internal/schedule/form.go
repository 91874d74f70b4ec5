package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

const (
	minDurationMinutes  = 5
	maxDurationMinutes  = 210
	durationStepMinutes = 5
	defaultDuration     = 30
	fallbackDuration    = 60
)

// Form holds the booking form state for creating or editing an appointment.
// Date and Time use the layouts "2006-01-02" and "15:04".
type Form struct {
	ID            int64
	BranchID      int64
	PatientID     int64
	ServiceID     int64
	SpecialistID  *int64
	Date          string
	Time          string
	Duration      int
	Status        api.AppointmentStatus
	Channel       api.Channel
	BillingMode   api.BillingMode
	Reason        string
	Notes         string
	originalStart time.Time
}

// NewForm returns a blank form preset for the given day. The time defaults
// to the next quarter hour when the day is today, 09:00 otherwise.
func NewForm(day time.Time, now time.Time) Form {
	hhmm := "09:00"
	if SameDay(day, now) {
		hhmm = roundUpQuarter(now).Format("15:04")
	}
	return Form{
		Date:     day.Format("2006-01-02"),
		Time:     hhmm,
		Duration: defaultDuration,
		Status:   api.StatusPending,
		Channel:  api.ChannelWhatsApp,
	}
}

// EditForm returns a form populated from an existing appointment.
func EditForm(a api.Appointment, loc *time.Location) Form {
	start := a.StartsAt.In(loc)
	f := Form{
		ID:            a.ID,
		BranchID:      a.BranchID,
		PatientID:     a.PatientID,
		ServiceID:     a.ServiceID,
		SpecialistID:  a.SpecialistID,
		Date:          start.Format("2006-01-02"),
		Time:          start.Format("15:04"),
		Duration:      NormalizeDuration(Duration(a)),
		Status:        a.Status,
		Channel:       api.Channel(a.Channel),
		Reason:        a.Reason,
		Notes:         a.Notes,
		originalStart: start,
	}
	if a.BillingMode != nil {
		f.BillingMode = *a.BillingMode
	}
	if f.Channel == "" {
		f.Channel = api.ChannelWhatsApp
	}
	return f
}

// Duration resolves the minutes of an appointment, deriving it from the end
// time when the backend omitted it.
func Duration(a api.Appointment) int {
	if a.DurationMinutes != nil && *a.DurationMinutes > 0 {
		return *a.DurationMinutes
	}
	if a.EndsAt != nil && a.EndsAt.After(a.StartsAt) {
		return int(a.EndsAt.Sub(a.StartsAt) / time.Minute)
	}
	return fallbackDuration
}

// End resolves the end time of an appointment, falling back to start plus
// its duration.
func End(a api.Appointment) time.Time {
	if a.EndsAt != nil && !a.EndsAt.IsZero() {
		return *a.EndsAt
	}
	return a.StartsAt.Add(time.Duration(Duration(a)) * time.Minute)
}

// NormalizeDuration snaps a duration to the 5-minute step within 5..210.
// Non-positive values fall back to 60.
func NormalizeDuration(minutes int) int {
	if minutes <= 0 {
		minutes = fallbackDuration
	}
	steps := (minutes + durationStepMinutes/2) / durationStepMinutes
	minutes = steps * durationStepMinutes
	if minutes < minDurationMinutes {
		minutes = minDurationMinutes
	}
	if minutes > maxDurationMinutes {
		minutes = maxDurationMinutes
	}
	return minutes
}

// Start parses the form date and time in loc.
func (f Form) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", f.Date+" "+f.Time, loc)
}

// Validate checks the form and returns the request to send. Messages are
// user facing.
func (f Form) Validate(loc *time.Location) (api.AppointmentRequest, error) {
	var req api.AppointmentRequest
	if f.BranchID == 0 || f.PatientID == 0 || f.ServiceID == 0 || f.Date == "" || f.Time == "" {
		return req, ui.Invalid("Completa los campos obligatorios.")
	}
	start, err := f.Start(loc)
	if err != nil {
		return req, ui.Invalid("Completa los campos obligatorios.")
	}
	if f.Status == api.StatusFinished && f.BillingMode == "" {
		return req, ui.Invalid("Selecciona el tipo de pago para terminar la cita.")
	}
	if f.ID != 0 && f.Status == api.StatusRescheduled && start.Equal(f.originalStart) {
		return req, ui.Invalid("Para REPROGRAMAR debes cambiar la fecha u hora.")
	}
	dur := NormalizeDuration(f.Duration)
	end := start.Add(time.Duration(dur) * time.Minute)
	status := f.Status
	if status == "" {
		status = api.StatusPending
	}
	channel := f.Channel
	if channel == "" {
		channel = api.ChannelWhatsApp
	}
	req = api.AppointmentRequest{
		BranchID:        f.BranchID,
		PatientID:       f.PatientID,
		ServiceID:       f.ServiceID,
		SpecialistID:    f.SpecialistID,
		StartsAt:        start,
		DurationMinutes: &dur,
		EndsAt:          &end,
		Status:          status,
		Channel:         string(channel),
		Reason:          strings.TrimSpace(f.Reason),
		Notes:           strings.TrimSpace(f.Notes),
	}
	if f.BillingMode != "" {
		bm := f.BillingMode
		req.BillingMode = &bm
	}
	return req, nil
}

// QuickPatientForm is the inline patient capture inside the booking form.
type QuickPatientForm struct {
	FullName string
	Phone    string
	Email    string
}

// Validate checks the quick capture and builds the patient request, splitting
// the full name into given names and surname.
func (q QuickPatientForm) Validate() (api.PatientRequest, error) {
	var req api.PatientRequest
	name := strings.TrimSpace(q.FullName)
	if len([]rune(name)) < 3 {
		return req, ui.Invalid("Ingresa el nombre completo del paciente.")
	}
	phone := strings.TrimSpace(q.Phone)
	if len(phone) < 6 {
		return req, ui.Invalid("Ingresa un teléfono válido.")
	}
	first, last := SplitFullName(name)
	req = api.PatientRequest{
		FirstNames: first,
		LastNames:  last,
		Phone:      phone,
		Email:      strings.TrimSpace(q.Email),
	}
	return req, nil
}

// SplitFullName separates a free-form full name: the last token becomes the
// surname and the rest the given names. A single token has no surname.
func SplitFullName(full string) (firstNames, lastNames string) {
	parts := strings.Fields(full)
	if len(parts) <= 1 {
		return strings.Join(parts, " "), ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// roundUpQuarter rounds t up to the next quarter hour.
func roundUpQuarter(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	if rem := t.Minute() % 15; rem != 0 {
		t = t.Add(time.Duration(15-rem) * time.Minute)
	}
	return t
}

// CajaLink builds the cashier deep link for an appointment.
func CajaLink(a api.Appointment) string {
	return fmt.Sprintf("/caja?idCita=%d&idSucursal=%d&fecha=%s",
		a.ID, a.BranchID, a.StartsAt.Format("2006-01-02"))
}
