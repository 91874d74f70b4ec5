package web

import (
	"net/http"

	"github.com/absolutefisio/clinic-admin/internal/services"
)

func (h *Handlers) ServicesPage(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar los servicios.")
	}
	view, pageNum, totalPages := h.services.Page()
	h.render(w, r, "servicios.html", "Servicios", map[string]any{
		"Services":        view,
		"Page":            pageNum,
		"TotalPages":      totalPages,
		"IncludeInactive": h.services.IncludeInactive(),
	})
}

func (h *Handlers) ServicesFilter(w http.ResponseWriter, r *http.Request) {
	h.services.SetQuery(r.FormValue("buscar"))
	h.services.SetIncludeInactive(r.FormValue("inactivos") == "1")
	if p := formInt(r, "pagina"); p != 0 {
		h.services.GoPage(p)
	}
	back(w, r, "/servicios")
}

func serviceForm(r *http.Request) services.Form {
	return services.Form{
		Name:         r.FormValue("nombre"),
		Description:  r.FormValue("descripcion"),
		InitialPrice: formFloatPtr(r, "precioInicial"),
		Currency:     r.FormValue("moneda"),
	}
}

func (h *Handlers) ServiceCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.services.Create(r.Context(), serviceForm(r)); err != nil {
		h.flash(err, "No se pudo crear el servicio.")
	} else {
		h.toasts.Success("Servicio creado")
	}
	back(w, r, "/servicios")
}

func (h *Handlers) ServiceUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.services.Update(r.Context(), pathID(r, "id"), serviceForm(r)); err != nil {
		h.flash(err, "No se pudo actualizar el servicio.")
	} else {
		h.toasts.Success("Servicio actualizado")
	}
	back(w, r, "/servicios")
}

func (h *Handlers) ServiceSetPrice(w http.ResponseWriter, r *http.Request) {
	_, err := h.services.SetPrice(r.Context(), pathID(r, "id"), formFloat(r, "precio"), r.FormValue("moneda"))
	if err != nil {
		h.flash(err, "No se pudo actualizar el precio.")
	} else {
		h.toasts.Success("Precio actualizado")
	}
	back(w, r, "/servicios")
}

func (h *Handlers) ServiceDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Deactivate(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo inactivar el servicio.")
	} else {
		h.toasts.Success("Servicio inactivado")
	}
	back(w, r, "/servicios")
}

func (h *Handlers) ServiceReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Reactivate(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo reactivar el servicio.")
	} else {
		h.toasts.Success("Servicio reactivado")
	}
	back(w, r, "/servicios")
}
