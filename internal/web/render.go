package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/receipt"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": receipt.Money,
	"moneyp": func(v *float64, currency string) string {
		if v == nil {
			return "—"
		}
		return receipt.Money(*v, currency)
	},
	"fecha":     receipt.SpanishDate,
	"fechaHora": receipt.SpanishDateTime,
	"hora": func(t time.Time) string {
		return t.Format("15:04")
	},
	"dia": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
}).ParseFS(templatesFS, "templates/*.html"))

// page is the envelope every template receives.
type page struct {
	Title   string
	Profile *api.Profile
	Unread  int
	Toasts  []ui.Toast
	Data    any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	var profile *api.Profile
	if h.session != nil {
		profile = h.session.Profile()
	}
	unread := 0
	if h.inbox != nil {
		unread = h.inbox.Unread()
	}
	p := page{
		Title:   title,
		Profile: profile,
		Unread:  unread,
		Toasts:  h.toasts.Active(),
		Data:    data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, p); err != nil {
		h.logger.Error("render failed", "template", name, "error", err)
		http.Error(w, "error interno", http.StatusInternalServerError)
	}
}
