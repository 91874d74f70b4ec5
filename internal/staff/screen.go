// Package staff is the users screen: staff accounts across the five roles,
// with the specialist profile kept in sync for ESPECIALISTA users.
package staff

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const pageSize = 10

// Roles lists the assignable roles in display order.
var Roles = []api.Role{
	api.RoleSuperAdmin,
	api.RoleAdmin,
	api.RoleCashier,
	api.RoleSecretary,
	api.RoleSpecialist,
}

var (
	phone8Re = regexp.MustCompile(`^\d{8}$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	digitRe  = regexp.MustCompile(`\d`)
)

// StrongPassword reports whether a password meets the account policy:
// at least 8 characters with an uppercase letter and a digit.
func StrongPassword(v string) bool {
	return len(v) >= 8 && upperRe.MatchString(v) && digitRe.MatchString(v)
}

// Screen is the staff roster view-model.
type Screen struct {
	client *api.Client
	logger *logging.Logger

	mu              sync.Mutex
	users           []api.User
	branches        []api.Branch
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

// Load fetches the roster and the branch catalog for the form dropdown.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	includeInactive := s.includeInactive
	s.mu.Unlock()

	var (
		users []api.User
		err   error
	)
	if includeInactive {
		users, err = s.client.ListAllUsers(ctx)
	} else {
		users, err = s.client.ListUsers(ctx)
	}
	if err != nil {
		return err
	}

	branches, err := s.client.ListBranches(ctx)
	if err != nil {
		s.logger.Warn("branch catalog load failed", "error", err)
		branches = nil
	}

	s.mu.Lock()
	s.users = users
	if branches != nil {
		s.branches = branches
	}
	s.page = 1
	s.mu.Unlock()
	return nil
}

// Branches returns the branch catalog for the form.
func (s *Screen) Branches() []api.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.branches
}

// SetQuery filters locally.
func (s *Screen) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// SetIncludeInactive toggles inactive accounts; the caller reloads.
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

func (s *Screen) filtered() []api.User {
	s.mu.Lock()
	users := s.users
	q := strings.ToLower(strings.TrimSpace(s.query))
	s.mu.Unlock()

	out := make([]api.User, 0, len(users))
	for _, u := range users {
		if q == "" || strings.Contains(searchBag(u), q) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username)
	})
	return out
}

func searchBag(u api.User) string {
	state := "inactivo"
	if u.Active {
		state = "activo"
	}
	return strings.ToLower(strings.Join([]string{
		u.Username, u.Email, string(u.Role), u.FirstName, u.LastName, u.Phone, state,
	}, " "))
}

// Page returns the current page plus paging state.
func (s *Screen) Page() (view []api.User, page, totalPages int) {
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

// Find returns the loaded user for an id.
func (s *Screen) Find(id int64) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return api.User{}, false
}

// EditContext fetches the detail pieces the edit form needs: the branch
// assignment, and for specialists their especialidad.
func (s *Screen) EditContext(ctx context.Context, id int64) (*api.UserDetail, string, error) {
	detail, err := s.client.GetUser(ctx, id)
	if err != nil {
		return nil, "", err
	}
	var specialty string
	if detail.Role == api.RoleSpecialist {
		if sp, err := s.client.GetSpecialist(ctx, id); err == nil {
			specialty = sp.Specialty
		}
	}
	return detail, specialty, nil
}

// Form carries the raw create/edit inputs. Password is required on create
// and optional on edit; either way it must meet the policy when present.
type Form struct {
	Username  string
	Email     string
	Password  string
	Role      api.Role
	FirstName string
	LastName  string
	Phone     string
	BranchID  int64
	Specialty string
}

func (f Form) normalized() Form {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Password = strings.TrimSpace(f.Password)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Specialty = strings.TrimSpace(f.Specialty)
	return f
}

func (f Form) validate(creating bool) (Form, error) {
	n := f.normalized()
	if l := len([]rune(n.Username)); l < 3 || l > 60 {
		return n, ui.Invalid("El usuario debe tener entre 3 y 60 caracteres.")
	}
	if n.Email == "" || len(n.Email) > 120 || !emailRe.MatchString(n.Email) {
		return n, ui.Invalid("Ingresa un correo válido (máx. 120).")
	}
	if !validRole(n.Role) {
		return n, ui.Invalid("Selecciona un rol válido.")
	}
	if creating && n.Password == "" {
		return n, ui.Invalid("Ingresa una contraseña.")
	}
	if n.Password != "" && !StrongPassword(n.Password) {
		return n, ui.Invalid("La contraseña debe tener al menos 8 caracteres, una mayúscula y un número.")
	}
	if n.Phone != "" && !phone8Re.MatchString(n.Phone) {
		return n, ui.Invalid("El teléfono debe tener exactamente 8 dígitos.")
	}
	if n.BranchID == 0 {
		return n, ui.Invalid("Selecciona una sucursal.")
	}
	if n.Role == api.RoleSpecialist {
		if l := len([]rune(n.Specialty)); l < 3 || l > 120 {
			return n, ui.Invalid("Ingresa la especialidad (3 a 120 caracteres).")
		}
	}
	return n, nil
}

func validRole(r api.Role) bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Create registers an account; for specialists the especialidad is saved
// right after. A specialty failure does not roll the account back, it is
// reported for the caller to surface.
func (s *Screen) Create(ctx context.Context, f Form) (*api.User, error) {
	n, err := f.validate(true)
	if err != nil {
		return nil, err
	}
	created, err := s.client.CreateUser(ctx, api.UserCreateRequest{
		Username:  n.Username,
		Email:     n.Email,
		Password:  n.Password,
		Role:      n.Role,
		FirstName: n.FirstName,
		LastName:  n.LastName,
		Phone:     n.Phone,
		BranchID:  n.BranchID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.syncSpecialty(ctx, created.ID, n); err != nil {
		return created, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("roster refresh after create failed", "error", err)
	}
	return created, nil
}

// Update saves account edits, then the especialidad for specialists.
func (s *Screen) Update(ctx context.Context, id int64, f Form) (*api.User, error) {
	n, err := f.validate(false)
	if err != nil {
		return nil, err
	}
	branch := n.BranchID
	updated, err := s.client.UpdateUser(ctx, id, api.UserUpdateRequest{
		Email:     n.Email,
		Password:  n.Password,
		Role:      n.Role,
		FirstName: n.FirstName,
		LastName:  n.LastName,
		Phone:     n.Phone,
		BranchID:  &branch,
	})
	if err != nil {
		return nil, err
	}
	if err := s.syncSpecialty(ctx, id, n); err != nil {
		return updated, err
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("roster refresh after update failed", "error", err)
	}
	return updated, nil
}

func (s *Screen) syncSpecialty(ctx context.Context, userID int64, n Form) error {
	if n.Role != api.RoleSpecialist {
		return nil
	}
	if _, err := s.client.UpsertSpecialist(ctx, userID, n.Specialty); err != nil {
		return fmt.Errorf("guardar especialidad: %w", err)
	}
	return nil
}

// Annul inactivates an account and reloads.
func (s *Screen) Annul(ctx context.Context, id int64) error {
	if _, err := s.client.AnnulUser(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Reactivate restores an account and reloads.
func (s *Screen) Reactivate(ctx context.Context, id int64) error {
	if _, err := s.client.ReactivateUser(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}
