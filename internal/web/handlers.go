// Package web is the server-rendered shell: a chi router over the screen
// view-models, with session-backed auth and per-route role guards.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/cashier"
	"github.com/absolutefisio/clinic-admin/internal/config"
	"github.com/absolutefisio/clinic-admin/internal/httperr"
	"github.com/absolutefisio/clinic-admin/internal/inbox"
	"github.com/absolutefisio/clinic-admin/internal/patients"
	"github.com/absolutefisio/clinic-admin/internal/receipt"
	"github.com/absolutefisio/clinic-admin/internal/schedule"
	"github.com/absolutefisio/clinic-admin/internal/services"
	"github.com/absolutefisio/clinic-admin/internal/session"
	"github.com/absolutefisio/clinic-admin/internal/staff"
	"github.com/absolutefisio/clinic-admin/internal/ui"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

// Handlers binds every screen to the router.
type Handlers struct {
	cfg      *config.Config
	logger   *logging.Logger
	loc      *time.Location
	session  *session.Store
	reset    *session.ResetFlow
	toasts   *ui.ToastCenter
	schedule *schedule.Screen
	cashier  *cashier.Screen
	patients *patients.Screen
	dossier  *patients.DossierView
	services *services.Screen
	staff    *staff.Screen
	inbox    *inbox.Center
	receipts *receipt.Builder
}

// HandlersConfig collects the screen dependencies for NewHandlers.
type HandlersConfig struct {
	Config   *config.Config
	Logger   *logging.Logger
	Location *time.Location
	Session  *session.Store
	Reset    *session.ResetFlow
	Toasts   *ui.ToastCenter
	Schedule *schedule.Screen
	Cashier  *cashier.Screen
	Patients *patients.Screen
	Dossier  *patients.DossierView
	Services *services.Screen
	Staff    *staff.Screen
	Inbox    *inbox.Center
	Receipts *receipt.Builder
}

func NewHandlers(c HandlersConfig) *Handlers {
	logger := c.Logger
	if logger == nil {
		logger = logging.Default()
	}
	toasts := c.Toasts
	if toasts == nil {
		toasts = ui.NewToastCenter()
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		cfg:      c.Config,
		logger:   logger,
		loc:      loc,
		session:  c.Session,
		reset:    c.Reset,
		toasts:   toasts,
		schedule: c.Schedule,
		cashier:  c.Cashier,
		patients: c.Patients,
		dossier:  c.Dossier,
		services: c.Services,
		staff:    c.Staff,
		inbox:    c.Inbox,
		receipts: c.Receipts,
	}
}

// flash turns an operation error into a toast: validation messages are
// warnings shown verbatim, everything else goes through the backend error
// translator.
func (h *Handlers) flash(err error, fallback string) {
	if err == nil {
		return
	}
	var v ui.ValidationError
	if errors.As(err, &v) {
		h.toasts.Warning(string(v))
		return
	}
	h.toasts.Error(httperr.Message(err, fallback))
}

// flashCitas is flash with the appointment-specific translator, used by the
// cita mutation handlers so overlap, past-date and transition failures get
// their tailored sentences.
func (h *Handlers) flashCitas(err error, fallback string) {
	if err == nil {
		return
	}
	var v ui.ValidationError
	if errors.As(err, &v) {
		h.toasts.Warning(string(v))
		return
	}
	h.toasts.Error(httperr.AppointmentMessage(err, fallback))
}

// back redirects to the form's return path, defaulting to fallback.
func back(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.FormValue("volver")
	if target == "" || !strings.HasPrefix(target, "/") {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func formInt64(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return n
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

func formFloat(r *http.Request, key string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	return f
}

// formInt64Ptr reads an optional id field; empty or zero means nil.
func formInt64Ptr(r *http.Request, key string) *int64 {
	if n := formInt64(r, key); n != 0 {
		return &n
	}
	return nil
}

func formFloatPtr(r *http.Request, key string) *float64 {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func pathID(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(chiURLParam(r, key), 10, 64)
	return n
}
