package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/schedule"
)

// SchedulePage loads and renders the calendar. Query params select the day
// and month so links stay shareable.
func (h *Handlers) SchedulePage(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("mes"); raw != "" {
		if anchor, err := time.ParseInLocation("2006-01", raw, h.loc); err == nil {
			h.schedule.SetMonth(anchor)
		}
	}
	if err := h.schedule.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar las citas.")
	}
	if raw := r.URL.Query().Get("dia"); raw != "" {
		if day, err := time.ParseInLocation("2006-01-02", raw, h.loc); err == nil {
			h.schedule.SelectDay(day)
		}
	}

	day := h.schedule.SelectedDay()
	grid := h.schedule.Grid()
	counts := make(map[string]int, len(grid.Days))
	for _, d := range grid.Days {
		if n := h.schedule.CountForDay(d); n > 0 {
			counts[d.Format("2006-01-02")] = n
		}
	}
	h.render(w, r, "citas.html", "Citas", map[string]any{
		"Grid":     grid,
		"Counts":   counts,
		"Day":      day,
		"Rows":     h.schedule.DayRows(day),
		"All":      h.schedule.Visible(),
		"Filter":   h.schedule.FilterState(),
		"Catalog":  h.schedule.Catalog(),
		"NewForm":  schedule.NewForm(day, time.Now().In(h.loc)),
		"Statuses": []api.AppointmentStatus{api.StatusPending, api.StatusConfirmed, api.StatusFinished, api.StatusCancelled, api.StatusNoShow, api.StatusRescheduled},
		"Channels": []api.Channel{api.ChannelWhatsApp, api.ChannelPhone, api.ChannelWeb, api.ChannelReception, api.ChannelFacebook},
	})
}

// ScheduleMonth moves the calendar month, then returns to the page.
func (h *Handlers) ScheduleMonth(w http.ResponseWriter, r *http.Request) {
	switch r.FormValue("direccion") {
	case "siguiente":
		h.schedule.NextMonth()
	case "anterior":
		h.schedule.PrevMonth()
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleFilter(w http.ResponseWriter, r *http.Request) {
	h.schedule.SetFilter(schedule.Filter{
		BranchID:     formInt64(r, "sucursal"),
		SpecialistID: formInt64Ptr(r, "especialista"),
		Status:       api.AppointmentStatus(r.FormValue("estado")),
		Query:        r.FormValue("buscar"),
	})
	back(w, r, "/citas")
}

// ScheduleSave creates or updates a cita from the booking form.
func (h *Handlers) ScheduleSave(w http.ResponseWriter, r *http.Request) {
	id := formInt64(r, "id")

	var f schedule.Form
	if id != 0 {
		row, ok := h.schedule.Find(id)
		if !ok {
			h.toasts.Warning("La cita ya no está en pantalla. Recarga el calendario.")
			back(w, r, "/citas")
			return
		}
		f = schedule.EditForm(row.Appointment, h.loc)
	}
	f.ID = id
	f.BranchID = formInt64(r, "sucursal")
	f.PatientID = formInt64(r, "paciente")
	f.ServiceID = formInt64(r, "servicio")
	f.SpecialistID = formInt64Ptr(r, "especialista")
	f.Date = strings.TrimSpace(r.FormValue("fecha"))
	f.Time = strings.TrimSpace(r.FormValue("hora"))
	f.Duration = formInt(r, "duracion")
	f.Status = api.AppointmentStatus(r.FormValue("estado"))
	f.Channel = api.Channel(r.FormValue("canal"))
	f.BillingMode = api.BillingMode(r.FormValue("cobro"))
	f.Reason = r.FormValue("motivo")
	f.Notes = r.FormValue("notas")

	if _, err := h.schedule.Save(r.Context(), f); err != nil {
		h.flashCitas(err, "No se pudo guardar la cita.")
	} else if id == 0 {
		h.toasts.Success("Cita creada")
	} else {
		h.toasts.Success("Cita actualizada")
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleQuickPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.schedule.QuickCreatePatient(r.Context(), schedule.QuickPatientForm{
		FullName: r.FormValue("nombre"),
		Phone:    r.FormValue("telefono"),
		Email:    r.FormValue("correo"),
	})
	if err != nil {
		h.flash(err, "No se pudo crear el paciente.")
	} else {
		h.toasts.Success("Paciente creado: " + p.FirstNames + " " + p.LastNames)
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := h.schedule.Confirm(r.Context(), pathID(r, "id")); err != nil {
		h.flashCitas(err, "No se pudo confirmar la cita.")
	} else {
		h.toasts.Success("Cita confirmada")
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleFinish(w http.ResponseWriter, r *http.Request) {
	mode := api.BillingMode(r.FormValue("cobro"))
	if err := h.schedule.Finish(r.Context(), pathID(r, "id"), mode); err != nil {
		h.flashCitas(err, "No se pudo terminar la cita.")
	} else {
		h.toasts.Success("Cita terminada")
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.schedule.Cancel(r.Context(), pathID(r, "id"), r.FormValue("motivo")); err != nil {
		h.flashCitas(err, "No se pudo anular la cita.")
	} else {
		h.toasts.Success("Cita anulada")
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleNoShow(w http.ResponseWriter, r *http.Request) {
	if err := h.schedule.MarkNoShow(r.Context(), pathID(r, "id")); err != nil {
		h.flashCitas(err, "No se pudo marcar la inasistencia.")
	} else {
		h.toasts.Success("Cita marcada como NO ASISTIÓ")
	}
	back(w, r, "/citas")
}

func (h *Handlers) ScheduleAssign(w http.ResponseWriter, r *http.Request) {
	if err := h.schedule.AssignSpecialist(r.Context(), pathID(r, "id"), formInt64Ptr(r, "especialista")); err != nil {
		h.flashCitas(err, "No se pudo asignar el especialista.")
	} else {
		h.toasts.Success("Especialista asignado")
	}
	back(w, r, "/citas")
}

// ScheduleCharge jumps to the caja screen for a chargeable cita.
func (h *Handlers) ScheduleCharge(w http.ResponseWriter, r *http.Request) {
	link, err := h.schedule.ChargeLink(pathID(r, "id"))
	if err != nil {
		h.flash(err, "No se pudo abrir el cobro.")
		back(w, r, "/citas")
		return
	}
	http.Redirect(w, r, link, http.StatusSeeOther)
}
