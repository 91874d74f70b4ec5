// Package services is the servicios screen: the catalog of billable
// services with versioned pricing. Editing a service never touches its
// price; prices change only through the dedicated price operation, which
// opens a new history entry.
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const (
	pageSize        = 10
	defaultCurrency = "GTQ"
)

// Screen is the catalog view-model: local filter, active-first sort, and
// 10-per-page pagination.
type Screen struct {
	client *api.Client
	logger *logging.Logger

	mu              sync.Mutex
	services        []api.Service
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

// Load fetches the catalog, including inactive services when toggled, and
// resets to the first page.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	includeInactive := s.includeInactive
	s.mu.Unlock()

	var (
		list []api.Service
		err  error
	)
	if includeInactive {
		list, err = s.client.ListAllServices(ctx)
	} else {
		list, err = s.client.ListServices(ctx)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.services = list
	s.page = 1
	s.mu.Unlock()
	return nil
}

// SetQuery filters locally.
func (s *Screen) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
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

// filtered matches the query against a bag of every display field,
// including the textual active state, then sorts active first, name A-Z.
func (s *Screen) filtered() []api.Service {
	s.mu.Lock()
	services := s.services
	q := strings.ToLower(strings.TrimSpace(s.query))
	s.mu.Unlock()

	out := make([]api.Service, 0, len(services))
	for _, srv := range services {
		if q == "" || strings.Contains(searchBag(srv), q) {
			out = append(out, srv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func searchBag(srv api.Service) string {
	state := "inactivo"
	if srv.Active {
		state = "activo"
	}
	price := ""
	if srv.CurrentPrice != nil {
		price = fmt.Sprintf("%v", *srv.CurrentPrice)
	}
	return strings.ToLower(strings.Join([]string{srv.Name, srv.Description, srv.Currency, price, state}, " "))
}

// Page returns the current page plus paging state.
func (s *Screen) Page() (view []api.Service, page, totalPages int) {
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

// GoPage jumps to a page, clamped to the valid range.
func (s *Screen) GoPage(p int) {
	_, _, total := s.Page()
	if p < 1 {
		p = 1
	}
	if p > total {
		p = total
	}
	s.mu.Lock()
	s.page = p
	s.mu.Unlock()
}

// Find returns the loaded service for an id.
func (s *Screen) Find(id int64) (api.Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, srv := range s.services {
		if srv.ID == id {
			return srv, true
		}
	}
	return api.Service{}, false
}

// Form carries the raw create/edit inputs.
type Form struct {
	Name         string
	Description  string
	InitialPrice *float64
	Currency     string
}

// FromService prefills the edit form. The price fields stay empty; edits
// never change prices.
func FromService(srv api.Service) Form {
	return Form{Name: srv.Name, Description: srv.Description, Currency: srv.Currency}
}

func (f Form) normalized() Form {
	f.Name = collapseSpaces(f.Name)
	f.Description = collapseSpaces(f.Description)
	f.Currency = normCurrency(f.Currency)
	return f
}

// Changed reports whether the normalized name or description differ from
// the stored record.
func (f Form) Changed(srv api.Service) bool {
	n := f.normalized()
	base := FromService(srv).normalized()
	return n.Name != base.Name || n.Description != base.Description
}

func (f Form) validate() (Form, error) {
	n := f.normalized()
	if l := len([]rune(n.Name)); l < 2 || l > 160 {
		return n, ui.Invalid("El nombre debe tener entre 2 y 160 caracteres.")
	}
	if len([]rune(n.Description)) > 500 {
		return n, ui.Invalid("La descripción supera los 500 caracteres.")
	}
	if n.InitialPrice != nil && !(round2(*n.InitialPrice) > 0) {
		return n, ui.Invalid("El precio inicial debe ser mayor a 0")
	}
	return n, nil
}

// Create validates and registers a service, optionally with its first
// price point, then reloads.
func (s *Screen) Create(ctx context.Context, f Form) (*api.Service, error) {
	n, err := f.validate()
	if err != nil {
		return nil, err
	}
	req := api.ServiceCreateRequest{
		Name:        n.Name,
		Description: n.Description,
		Currency:    n.Currency,
	}
	if n.InitialPrice != nil {
		price := round2(*n.InitialPrice)
		req.InitialPrice = &price
	}
	created, err := s.client.CreateService(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("catalog refresh after create failed", "error", err)
	}
	return created, nil
}

// Update saves name and description edits. An unchanged submit is rejected
// locally so the history stays clean.
func (s *Screen) Update(ctx context.Context, id int64, f Form) (*api.Service, error) {
	srv, ok := s.Find(id)
	if ok && !f.Changed(srv) {
		return nil, ui.Invalid("No hay cambios por guardar")
	}
	n, err := f.validate()
	if err != nil {
		return nil, err
	}
	updated, err := s.client.UpdateService(ctx, id, api.ServiceUpdateRequest{
		Name:        n.Name,
		Description: n.Description,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("catalog refresh after update failed", "error", err)
	}
	return updated, nil
}

// SetPrice opens a new price point. The price must be positive and differ
// from the current one (same price and currency is a no-op submit).
func (s *Screen) SetPrice(ctx context.Context, id int64, price float64, currency string) (*api.PricePoint, error) {
	price = round2(price)
	currency = normCurrency(currency)
	if !(price > 0) {
		return nil, ui.Invalid("El precio debe ser mayor a 0")
	}
	if srv, ok := s.Find(id); ok && srv.CurrentPrice != nil {
		if round2(*srv.CurrentPrice) == price && normCurrency(srv.Currency) == currency {
			return nil, ui.Invalid("No hay cambios por guardar")
		}
	}
	point, err := s.client.SetServicePrice(ctx, id, price, currency)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("catalog refresh after price change failed", "error", err)
	}
	return point, nil
}

// PriceHistory fetches a service's price points, newest first.
func (s *Screen) PriceHistory(ctx context.Context, id int64) ([]api.PricePoint, error) {
	hist, err := s.client.ServicePriceHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hist, func(i, j int) bool {
		a, b := hist[i].ValidFrom, hist[j].ValidFrom
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return hist, nil
}

// Deactivate retires a service and reloads.
func (s *Screen) Deactivate(ctx context.Context, id int64) error {
	if err := s.client.DeactivateService(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Reactivate restores a service and reloads.
func (s *Screen) Reactivate(ctx context.Context, id int64) error {
	if err := s.client.ReactivateService(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Money renders a price for display; a missing price shows a dash.
func Money(v *float64, currency string) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%s %.2f", normCurrency(currency), *v)
}

func normCurrency(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return defaultCurrency
	}
	return v
}

func collapseSpaces(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}
