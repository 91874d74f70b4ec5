// Package patients is the pacientes screen: the searchable paginated
// roster, the create/edit form with Guatemalan document validation, and the
// expediente (dossier) with its file attachments.
package patients

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const pageSize = 10

// Screen is the roster view-model. Filtering, sorting, and pagination are
// local over the fetched list.
type Screen struct {
	client *api.Client
	logger *logging.Logger

	mu              sync.Mutex
	patients        []api.Patient
	query           string
	includeInactive bool
	page            int
}

func NewScreen(client *api.Client, logger *logging.Logger) *Screen {
	if logger == nil {
		logger = logging.Default()
	}
	return &Screen{client: client, logger: logger, page: 1}
}

// Load fetches the roster, including inactive patients when toggled.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	includeInactive := s.includeInactive
	s.mu.Unlock()

	var (
		list []api.Patient
		err  error
	)
	if includeInactive {
		list, err = s.client.ListAllPatients(ctx)
	} else {
		list, err = s.client.ListPatients(ctx)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.patients = list
	s.mu.Unlock()
	return nil
}

// SetQuery filters locally and resets to the first page.
func (s *Screen) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.page = 1
	s.mu.Unlock()
}

// SetIncludeInactive toggles inactive visibility and resets the page; the
// caller reloads.
func (s *Screen) SetIncludeInactive(v bool) {
	s.mu.Lock()
	s.includeInactive = v
	s.page = 1
	s.mu.Unlock()
}

// IncludeInactive reports the toggle state.
func (s *Screen) IncludeInactive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.includeInactive
}

// filtered applies the text filter and the surname-first A-Z sort.
func (s *Screen) filtered() []api.Patient {
	s.mu.Lock()
	patients := s.patients
	q := strings.ToLower(strings.TrimSpace(s.query))
	s.mu.Unlock()

	out := make([]api.Patient, 0, len(patients))
	for _, p := range patients {
		if q == "" || matches(p, q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortKey(out[i]), sortKey(out[j])
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matches(p api.Patient, q string) bool {
	return strings.Contains(strings.ToLower(Label(p)), q) ||
		strings.Contains(strings.ToLower(p.Phone), q) ||
		strings.Contains(strings.ToLower(p.Email), q) ||
		strings.Contains(strings.ToLower(p.TaxID), q) ||
		strings.Contains(strings.ToLower(p.NationalID), q)
}

func sortKey(p api.Patient) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSpace(p.LastNames) + " " + strings.TrimSpace(p.FirstNames)))
}

// Page returns the current page of filtered patients plus paging state.
func (s *Screen) Page() (view []api.Patient, page, totalPages int) {
	filtered := s.filtered()

	totalPages = (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	s.mu.Lock()
	if s.page > totalPages {
		s.page = totalPages
	}
	if s.page < 1 {
		s.page = 1
	}
	page = s.page
	s.mu.Unlock()

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], page, totalPages
}

// Next advances one page when possible.
func (s *Screen) Next() {
	_, page, total := s.Page()
	if page < total {
		s.mu.Lock()
		s.page++
		s.mu.Unlock()
	}
}

// Prev goes back one page when possible.
func (s *Screen) Prev() {
	s.mu.Lock()
	if s.page > 1 {
		s.page--
	}
	s.mu.Unlock()
}

// Find returns the loaded patient for an id.
func (s *Screen) Find(id int64) (api.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, true
		}
	}
	return api.Patient{}, false
}

// Create validates and registers a patient, then refreshes the roster.
func (s *Screen) Create(ctx context.Context, f Form) (*api.Patient, error) {
	req, err := f.Validate()
	if err != nil {
		return nil, err
	}
	created, err := s.client.CreatePatient(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("roster refresh after create failed", "error", err)
	}
	return created, nil
}

// Update validates and saves edits, then refreshes the roster.
func (s *Screen) Update(ctx context.Context, id int64, f Form) (*api.Patient, error) {
	req, err := f.Validate()
	if err != nil {
		return nil, err
	}
	updated, err := s.client.UpdatePatient(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("roster refresh after update failed", "error", err)
	}
	return updated, nil
}

// Deactivate soft-deletes a patient and refreshes the roster.
func (s *Screen) Deactivate(ctx context.Context, id int64) error {
	if err := s.client.DeactivatePatient(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Reactivate restores a patient and refreshes the roster.
func (s *Screen) Reactivate(ctx context.Context, id int64) error {
	if err := s.client.ReactivatePatient(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Label renders a patient for lists and confirmations.
func Label(p api.Patient) string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstNames) + " " + strings.TrimSpace(p.LastNames))
	if name == "" {
		return fmt.Sprintf("Paciente #%d", p.ID)
	}
	return name
}
