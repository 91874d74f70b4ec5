package web

import (
	"net/http"

	"github.com/absolutefisio/clinic-admin/internal/inbox"
)

func (h *Handlers) InboxToggle(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.Toggle(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar las notificaciones.")
	}
	back(w, r, "/")
}

// InboxMarkRead marks one notification and follows its action link when it
// points inside the app.
func (h *Handlers) InboxMarkRead(w http.ResponseWriter, r *http.Request) {
	action, err := h.inbox.MarkRead(r.Context(), pathID(r, "id"))
	if err != nil {
		h.flash(err, "No se pudo marcar la notificación.")
		back(w, r, "/")
		return
	}
	if action != "" && !inbox.ExternalAction(action) {
		http.Redirect(w, r, action, http.StatusSeeOther)
		return
	}
	back(w, r, "/")
}

func (h *Handlers) InboxMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.MarkAllRead(r.Context()); err != nil {
		h.flash(err, "No se pudieron marcar las notificaciones.")
	}
	back(w, r, "/")
}
