package schedule

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/async"
	"github.com/absolutefisio/clinic-admin/internal/catalog"
	"github.com/absolutefisio/clinic-admin/internal/ui"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

// Row is an appointment enriched with the display names the calendar and
// day list render.
type Row struct {
	api.Appointment
	PatientName    string
	PatientPhone   string
	ServiceName    string
	BranchName     string
	SpecialistName string
}

// Filter narrows the visible rows. Zero values mean "all".
type Filter struct {
	BranchID     int64
	SpecialistID *int64
	Status       api.AppointmentStatus
	Query        string
}

// Screen is the appointments view-model: one month of citas across one or
// all branches, enriched against the catalog.
type Screen struct {
	client   *api.Client
	catalogs *catalog.Aggregator
	logger   *logging.Logger
	loc      *time.Location

	guard async.Guard

	mu       sync.Mutex
	grid     Grid
	selected time.Time
	cat      *catalog.Catalog
	idx      *catalog.Index
	rows     []Row
	filter   Filter
}

func NewScreen(client *api.Client, catalogs *catalog.Aggregator, logger *logging.Logger, loc *time.Location) *Screen {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	return &Screen{
		client:   client,
		catalogs: catalogs,
		logger:   logger,
		loc:      loc,
		grid:     NewGrid(now),
		selected: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc),
	}
}

// Load fetches the catalog and the appointments for the current grid window.
// A newer Load supersedes the result of any still-running one.
func (s *Screen) Load(ctx context.Context) error {
	return s.reload(ctx, false)
}

// Refresh forces the catalog and appointment fetch.
func (s *Screen) Refresh(ctx context.Context) error {
	s.catalogs.Invalidate()
	return s.reload(ctx, true)
}

func (s *Screen) reload(ctx context.Context, force bool) error {
	token := s.guard.Begin()

	cat, err := s.catalogs.Get(ctx, force)
	if err != nil {
		return err
	}
	idx := catalog.NewIndex(cat)

	s.mu.Lock()
	grid := s.grid
	filter := s.filter
	s.mu.Unlock()

	from, to := grid.Window()
	appts, err := s.fetchWindow(ctx, cat, filter.BranchID, from, to)
	if err != nil {
		return err
	}

	rows := make([]Row, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, s.enrich(a, idx))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartsAt.Before(rows[j].StartsAt)
	})

	applied := s.guard.Apply(token, func() {
		s.mu.Lock()
		s.cat = cat
		s.idx = idx
		s.rows = rows
		s.mu.Unlock()
	})
	if !applied {
		s.logger.Debug("schedule reload superseded", "appointments", len(rows))
	}
	return nil
}

// fetchWindow lists the window's citas. Branch 0 fans out one list call per
// branch and flattens the results; the first occurrence of a duplicated id
// wins, so an appointment visible from two branches renders once.
func (s *Screen) fetchWindow(ctx context.Context, cat *catalog.Catalog, branchID int64, from, to time.Time) ([]api.Appointment, error) {
	if branchID != 0 {
		return s.client.ListAppointments(ctx, api.AppointmentFilter{BranchID: branchID, From: from, To: to})
	}

	results := make([][]api.Appointment, len(cat.Branches))
	errs := make([]error, len(cat.Branches))
	var wg sync.WaitGroup
	for i, b := range cat.Branches {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i], errs[i] = s.client.ListAppointments(ctx, api.AppointmentFilter{BranchID: id, From: from, To: to})
		}(i, b.ID)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[int64]struct{})
	var merged []api.Appointment
	for _, batch := range results {
		for _, a := range batch {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}
	return merged, nil
}

func (s *Screen) enrich(a api.Appointment, idx *catalog.Index) Row {
	r := Row{
		Appointment:    a,
		PatientName:    idx.PatientName(a.PatientID),
		ServiceName:    idx.ServiceName(a.ServiceID),
		BranchName:     idx.BranchName(a.BranchID),
		SpecialistName: idx.SpecialistName(a.SpecialistID),
	}
	if p, ok := idx.Patient(a.PatientID); ok {
		r.PatientPhone = p.Phone
	}
	return r
}

// Grid returns the current month grid.
func (s *Screen) Grid() Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// SelectedDay returns the day whose list is expanded.
func (s *Screen) SelectedDay() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectDay expands a day. Days outside the grid window are ignored.
func (s *Screen) SelectDay(d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := s.grid.Window()
	if d.Before(from) || !d.Before(to) {
		return
	}
	s.selected = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

// SetMonth jumps the grid to the month containing anchor; the caller
// reloads.
func (s *Screen) SetMonth(anchor time.Time) {
	s.mu.Lock()
	s.grid = NewGrid(anchor.In(s.loc))
	s.selected = s.grid.Anchor
	s.mu.Unlock()
}

// NextMonth moves the grid forward; the caller reloads.
func (s *Screen) NextMonth() {
	s.mu.Lock()
	s.grid = s.grid.Next()
	s.selected = s.grid.Anchor
	s.mu.Unlock()
}

// PrevMonth moves the grid back; the caller reloads.
func (s *Screen) PrevMonth() {
	s.mu.Lock()
	s.grid = s.grid.Prev()
	s.selected = s.grid.Anchor
	s.mu.Unlock()
}

// SetFilter swaps the active filter. Filtering is local; no reload is needed
// unless the branch changed, which the caller decides.
func (s *Screen) SetFilter(f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// FilterState returns the active filter.
func (s *Screen) FilterState() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Catalog exposes the loaded reference data for the form dropdowns.
func (s *Screen) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat
}

// Visible applies the filter to the loaded rows, preserving order. The
// branch filter only matters when the window was fetched across all
// branches.
func (s *Screen) Visible() []Row {
	s.mu.Lock()
	rows := s.rows
	f := s.filter
	s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.BranchID != 0 && r.BranchID != f.BranchID {
			continue
		}
		if f.SpecialistID != nil && (r.Appointment.SpecialistID == nil || *r.Appointment.SpecialistID != *f.SpecialistID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r Row, q string) bool {
	return strings.Contains(strings.ToLower(r.PatientName), q) ||
		strings.Contains(strings.ToLower(r.PatientPhone), q) ||
		strings.Contains(strings.ToLower(r.ServiceName), q)
}

// DayRows returns the visible rows for one day, ordered by start time.
func (s *Screen) DayRows(day time.Time) []Row {
	var out []Row
	for _, r := range s.Visible() {
		if SameDay(r.StartsAt.In(s.loc), day) {
			out = append(out, r)
		}
	}
	return out
}

// CountForDay is the calendar cell badge.
func (s *Screen) CountForDay(day time.Time) int {
	return len(s.DayRows(day))
}

// Find returns the loaded row for an appointment id.
func (s *Screen) Find(id int64) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Appointment.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// CanConfirm reports whether the confirm action applies to a status.
func CanConfirm(status api.AppointmentStatus) bool {
	switch status {
	case api.StatusConfirmed, api.StatusFinished, api.StatusCancelled, api.StatusNoShow:
		return false
	}
	return true
}

// CanCharge reports whether the charge shortcut applies to a status.
func CanCharge(status api.AppointmentStatus) bool {
	return status == api.StatusConfirmed || status == api.StatusFinished
}

// Confirm transitions an appointment to CONFIRMADA.
func (s *Screen) Confirm(ctx context.Context, id int64) error {
	row, ok := s.Find(id)
	if ok && !CanConfirm(row.Status) {
		return ui.Invalid("Esta cita ya no se puede confirmar.")
	}
	updated, err := s.client.ChangeAppointmentStatus(ctx, id, api.StatusConfirmed, "")
	if err != nil {
		return err
	}
	s.applyUpdate(*updated)
	return nil
}

// Finish closes an appointment as TERMINADA, carrying the billing mode the
// backend requires for the transition. An empty mode defaults to immediate
// payment.
func (s *Screen) Finish(ctx context.Context, id int64, mode api.BillingMode) error {
	row, ok := s.Find(id)
	if !ok {
		return ui.Invalid("La cita ya no está en pantalla. Recarga el calendario.")
	}
	if row.Status == api.StatusCancelled || row.Status == api.StatusNoShow {
		return ui.Invalid("Esa cita no se puede terminar.")
	}
	if mode == "" {
		mode = api.BillingImmediate
	}
	f := EditForm(row.Appointment, s.loc)
	f.Status = api.StatusFinished
	f.BillingMode = mode
	req, err := f.Validate(s.loc)
	if err != nil {
		return err
	}
	updated, err := s.client.UpdateAppointment(ctx, id, req)
	if err != nil {
		return err
	}
	s.applyUpdate(*updated)
	return nil
}

// Cancel annuls an appointment. Only PENDIENTE citas can be annulled from
// the calendar; anything further along goes through the edit form.
func (s *Screen) Cancel(ctx context.Context, id int64, reason string) error {
	row, ok := s.Find(id)
	if ok && row.Status != api.StatusPending {
		return ui.Invalid("Solo se pueden anular citas en estado PENDIENTE.")
	}
	updated, err := s.client.CancelAppointment(ctx, id, reason)
	if err != nil {
		return err
	}
	s.applyUpdate(*updated)
	return nil
}

// MarkNoShow transitions an appointment to NO_ASISTIO.
func (s *Screen) MarkNoShow(ctx context.Context, id int64) error {
	updated, err := s.client.ChangeAppointmentStatus(ctx, id, api.StatusNoShow, "")
	if err != nil {
		return err
	}
	s.applyUpdate(*updated)
	return nil
}

// AssignSpecialist sets or clears the specialist on an appointment.
func (s *Screen) AssignSpecialist(ctx context.Context, id int64, specialistID *int64) error {
	updated, err := s.client.AssignSpecialist(ctx, id, specialistID)
	if err != nil {
		return err
	}
	s.applyUpdate(*updated)
	return nil
}

// ChargeLink resolves the cashier deep link for an appointment, or a message
// explaining why it cannot be charged yet.
func (s *Screen) ChargeLink(id int64) (string, error) {
	row, ok := s.Find(id)
	if !ok {
		return "", ui.Invalid("La cita ya no está en pantalla. Recarga el calendario.")
	}
	switch {
	case row.Status == api.StatusCancelled || row.Status == api.StatusNoShow:
		return "", ui.Invalid("Esa cita no se puede cobrar.")
	case row.Status == api.StatusFinished:
		return CajaLink(row.Appointment), nil
	case row.Status != api.StatusConfirmed:
		return "", ui.Invalid("Primero confirma la cita para poder cobrar.")
	}
	return CajaLink(row.Appointment), nil
}

// Save validates the form and creates or updates the appointment.
func (s *Screen) Save(ctx context.Context, f Form) (*api.Appointment, error) {
	req, err := f.Validate(s.loc)
	if err != nil {
		return nil, err
	}
	var saved *api.Appointment
	if f.ID == 0 {
		saved, err = s.client.CreateAppointment(ctx, req)
	} else {
		saved, err = s.client.UpdateAppointment(ctx, f.ID, req)
	}
	if err != nil {
		return nil, err
	}
	s.applyUpdate(*saved)
	return saved, nil
}

// QuickCreatePatient registers a patient from inside the booking form. The
// catalog cache is invalidated so the new patient shows up in dropdowns on
// the next load; the caller selects the returned record immediately.
func (s *Screen) QuickCreatePatient(ctx context.Context, q QuickPatientForm) (*api.Patient, error) {
	req, err := q.Validate()
	if err != nil {
		return nil, err
	}
	created, err := s.client.CreatePatient(ctx, req)
	if err != nil {
		return nil, err
	}
	s.catalogs.Invalidate()
	return created, nil
}

// applyUpdate folds a mutated appointment back into the loaded rows without
// a refetch. New appointments are appended; rows stay sorted by start.
func (s *Screen) applyUpdate(a api.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return
	}
	row := s.enrich(a, s.idx)
	replaced := false
	for i, r := range s.rows {
		if r.Appointment.ID == a.ID {
			s.rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		s.rows = append(s.rows, row)
	}
	sort.SliceStable(s.rows, func(i, j int) bool {
		return s.rows[i].StartsAt.Before(s.rows[j].StartsAt)
	})
}
