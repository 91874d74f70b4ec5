package web

import (
	"net/http"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/staff"
)

func (h *Handlers) StaffPage(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar los usuarios.")
	}
	view, pageNum, totalPages := h.staff.Page()
	h.render(w, r, "usuarios.html", "Usuarios", map[string]any{
		"Users":           view,
		"Page":            pageNum,
		"TotalPages":      totalPages,
		"IncludeInactive": h.staff.IncludeInactive(),
		"Branches":        h.staff.Branches(),
		"Roles":           staff.Roles,
	})
}

func (h *Handlers) StaffFilter(w http.ResponseWriter, r *http.Request) {
	h.staff.SetQuery(r.FormValue("buscar"))
	h.staff.SetIncludeInactive(r.FormValue("inactivos") == "1")
	if p := formInt(r, "pagina"); p != 0 {
		h.staff.GoPage(p)
	}
	back(w, r, "/usuarios")
}

func staffForm(r *http.Request) staff.Form {
	return staff.Form{
		Username:  r.FormValue("usuario"),
		Email:     r.FormValue("correo"),
		Password:  r.FormValue("contrasena"),
		Role:      api.Role(r.FormValue("rol")),
		FirstName: r.FormValue("nombre"),
		LastName:  r.FormValue("apellido"),
		Phone:     r.FormValue("telefono"),
		BranchID:  formInt64(r, "sucursal"),
		Specialty: r.FormValue("especialidad"),
	}
}

func (h *Handlers) StaffCreate(w http.ResponseWriter, r *http.Request) {
	created, err := h.staff.Create(r.Context(), staffForm(r))
	switch {
	case err != nil && created != nil:
		// account saved, especialidad upsert failed
		h.toasts.Error("Usuario creado, pero no se pudo guardar la especialidad.")
	case err != nil:
		h.flash(err, "No se pudo crear el usuario.")
	default:
		h.toasts.Success("Usuario creado")
	}
	back(w, r, "/usuarios")
}

func (h *Handlers) StaffUpdate(w http.ResponseWriter, r *http.Request) {
	updated, err := h.staff.Update(r.Context(), pathID(r, "id"), staffForm(r))
	switch {
	case err != nil && updated != nil:
		h.toasts.Error("Usuario actualizado, pero no se pudo guardar la especialidad.")
	case err != nil:
		h.flash(err, "No se pudo actualizar el usuario.")
	default:
		h.toasts.Success("Usuario actualizado")
	}
	back(w, r, "/usuarios")
}

func (h *Handlers) StaffAnnul(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.Annul(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo inactivar el usuario.")
	} else {
		h.toasts.Success("Usuario inactivado")
	}
	back(w, r, "/usuarios")
}

func (h *Handlers) StaffReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.Reactivate(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo reactivar el usuario.")
	} else {
		h.toasts.Success("Usuario reactivado")
	}
	back(w, r, "/usuarios")
}
