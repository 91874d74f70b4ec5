package web

import (
	"net/http"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/session"
)

// Health is the liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Home routes the authenticated user to their landing screen.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, session.LandingPath(h.session.Role()), http.StatusSeeOther)
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", "Iniciar sesión", nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("usuario"))
	password := r.FormValue("contrasena")
	if username == "" || password == "" {
		h.toasts.Warning("Ingresa tu usuario y contraseña.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	profile, err := h.session.Login(r.Context(), username, password)
	if err != nil {
		h.flash(err, "No se pudo iniciar sesión.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.toasts.Success("Bienvenido, " + profile.FullName())
	http.Redirect(w, r, session.LandingPath(profile.Role), http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "prohibido.html", "Acceso denegado", nil)
}

func (h *Handlers) ResetRequestPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "recuperar.html", "Recuperar contraseña", map[string]any{
		"Remaining": h.reset.Remaining(),
	})
}

func (h *Handlers) ResetRequest(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("correo"))
	if err := h.reset.Request(r.Context(), email); err != nil {
		h.flash(err, "No se pudo enviar el código.")
	} else {
		h.toasts.Success("Si el correo existe, enviamos un código de recuperación.")
	}
	http.Redirect(w, r, "/recuperar", http.StatusSeeOther)
}

func (h *Handlers) ResetValidate(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("correo"))
	code := strings.TrimSpace(r.FormValue("codigo"))
	if err := h.reset.Validate(r.Context(), email, code); err != nil {
		h.flash(err, "El código no es válido o ya expiró.")
	} else {
		h.toasts.Success("Código válido. Ingresa tu nueva contraseña.")
	}
	http.Redirect(w, r, "/recuperar", http.StatusSeeOther)
}

func (h *Handlers) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	err := h.reset.Confirm(r.Context(),
		strings.TrimSpace(r.FormValue("correo")),
		strings.TrimSpace(r.FormValue("codigo")),
		r.FormValue("contrasena"),
		r.FormValue("confirmacion"),
	)
	if err != nil {
		h.flash(err, "No se pudo cambiar la contraseña.")
		http.Redirect(w, r, "/recuperar", http.StatusSeeOther)
		return
	}
	h.toasts.Success("Contraseña actualizada. Inicia sesión.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
