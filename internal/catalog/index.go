package catalog

import (
	"fmt"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

// Index resolves foreign keys to display names. Built once per catalog
// fetch and shared by every screen, so the join logic lives in one place.
type Index struct {
	branches    map[int64]string
	services    map[int64]api.Service
	patients    map[int64]api.Patient
	specialists map[int64]string
}

func NewIndex(c *Catalog) *Index {
	idx := &Index{
		branches:    make(map[int64]string, len(c.Branches)),
		services:    make(map[int64]api.Service, len(c.Services)),
		patients:    make(map[int64]api.Patient, len(c.Patients)),
		specialists: make(map[int64]string, len(c.Specialists)),
	}
	for _, b := range c.Branches {
		idx.branches[b.ID] = b.Name
	}
	for _, s := range c.Services {
		idx.services[s.ID] = s
	}
	for _, p := range c.Patients {
		idx.patients[p.ID] = p
	}
	for _, u := range c.Specialists {
		idx.specialists[u.ID] = displayUserName(u)
	}
	return idx
}

// BranchName resolves a branch id, falling back to a placeholder label for
// ids missing from the catalog (stale references).
func (i *Index) BranchName(id int64) string {
	if name, ok := i.branches[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Sucursal #%d", id)
}

// ServiceName resolves a service id.
func (i *Index) ServiceName(id int64) string {
	if s, ok := i.services[id]; ok && s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("Servicio #%d", id)
}

// Service returns the full catalog record for a service id.
func (i *Index) Service(id int64) (api.Service, bool) {
	s, ok := i.services[id]
	return s, ok
}

// PatientName resolves a patient id to "Nombres Apellidos".
func (i *Index) PatientName(id int64) string {
	if p, ok := i.patients[id]; ok {
		name := strings.TrimSpace(p.FirstNames + " " + p.LastNames)
		if name != "" {
			return name
		}
	}
	return fmt.Sprintf("Paciente #%d", id)
}

// Patient returns the full catalog record for a patient id.
func (i *Index) Patient(id int64) (api.Patient, bool) {
	p, ok := i.patients[id]
	return p, ok
}

// SpecialistName resolves an optional specialist id; nil means unassigned
// and renders empty.
func (i *Index) SpecialistName(id *int64) string {
	if id == nil {
		return ""
	}
	if name, ok := i.specialists[*id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Esp. #%d", *id)
}
