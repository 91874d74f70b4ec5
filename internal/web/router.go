package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/session"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Logger         *logging.Logger
	Session        *session.Store
	Handlers       *Handlers
	MetricsHandler http.Handler
}

// Per-screen role allow-lists. Routes not listed accept any authenticated
// session.
var (
	rolesUsers    = []api.Role{api.RoleSuperAdmin}
	rolesServices = []api.Role{api.RoleSuperAdmin, api.RoleAdmin}
	rolesCashier  = []api.Role{api.RoleSuperAdmin, api.RoleAdmin, api.RoleCashier}
	rolesClinical = []api.Role{api.RoleSuperAdmin, api.RoleAdmin, api.RoleSpecialist, api.RoleSecretary}
)

// NewRouter builds the chi router with the middleware chain and all screen
// routes behind the session guards.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	if cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	}

	// Public: health, metrics, login and password recovery.
	r.Group(func(public chi.Router) {
		public.Get("/health", h.Health)
		public.Handle("/static/*", http.FileServer(http.FS(staticFS)))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/login", h.LoginPage)
		public.Post("/login", h.Login)
		public.Route("/recuperar", func(rec chi.Router) {
			rec.Get("/", h.ResetRequestPage)
			rec.Post("/", h.ResetRequest)
			rec.Post("/validar", h.ResetValidate)
			rec.Post("/confirmar", h.ResetConfirm)
		})
	})

	// Authenticated shell.
	r.Group(func(auth chi.Router) {
		auth.Use(RequireAuth(cfg.Session))

		auth.Get("/", h.Home)
		auth.Post("/logout", h.Logout)
		auth.Get("/prohibido", h.Forbidden)

		auth.Route("/notificaciones", func(n chi.Router) {
			n.Post("/abrir", h.InboxToggle)
			n.Post("/{id}/leer", h.InboxMarkRead)
			n.Post("/leer-todas", h.InboxMarkAllRead)
		})

		auth.Route("/citas", func(c chi.Router) {
			c.Use(RequireRoles(cfg.Session, rolesClinical...))
			c.Get("/", h.SchedulePage)
			c.Post("/", h.ScheduleSave)
			c.Post("/mes", h.ScheduleMonth)
			c.Post("/filtro", h.ScheduleFilter)
			c.Post("/paciente-rapido", h.ScheduleQuickPatient)
			c.Post("/{id}/confirmar", h.ScheduleConfirm)
			c.Post("/{id}/terminar", h.ScheduleFinish)
			c.Post("/{id}/anular", h.ScheduleCancel)
			c.Post("/{id}/no-asistio", h.ScheduleNoShow)
			c.Post("/{id}/especialista", h.ScheduleAssign)
			c.Get("/{id}/cobrar", h.ScheduleCharge)
		})

		auth.Route("/caja", func(c chi.Router) {
			c.Use(RequireRoles(cfg.Session, rolesCashier...))
			c.Get("/", h.CashierPage)
			c.Post("/filtro", h.CashierFilter)
			c.Post("/seleccionar", h.CashierSelect)
			c.Post("/items/agregar", h.CashierAddItem)
			c.Post("/items/{i}/cantidad", h.CashierSetQuantity)
			c.Post("/items/{i}/precio", h.CashierSetPrice)
			c.Post("/items/{i}/quitar", h.CashierRemoveItem)
			c.Post("/guardar", h.CashierSave)
			c.Post("/pagar", h.CashierPay)
			c.Get("/recibo.pdf", h.CashierReceipt)
			c.Get("/recibo/whatsapp", h.CashierWhatsApp)
			c.Get("/recibo/correo", h.CashierMail)
		})

		auth.Route("/pacientes", func(p chi.Router) {
			p.Use(RequireRoles(cfg.Session, rolesClinical...))
			p.Get("/", h.PatientsPage)
			p.Post("/", h.PatientCreate)
			p.Post("/filtro", h.PatientsFilter)
			p.Post("/{id}", h.PatientUpdate)
			p.Post("/{id}/inactivar", h.PatientDeactivate)
			p.Post("/{id}/reactivar", h.PatientReactivate)
			p.Get("/{id}/expediente", h.DossierPage)
			p.Post("/{id}/archivos", h.DossierUpload)
		})

		auth.Route("/archivos", func(f chi.Router) {
			f.Use(RequireRoles(cfg.Session, rolesClinical...))
			f.Get("/{id}", h.FileDownload)
			f.Post("/{id}/anular", h.FileAnnul)
		})

		auth.Route("/servicios", func(s chi.Router) {
			s.Use(RequireRoles(cfg.Session, rolesServices...))
			s.Get("/", h.ServicesPage)
			s.Post("/", h.ServiceCreate)
			s.Post("/filtro", h.ServicesFilter)
			s.Post("/{id}", h.ServiceUpdate)
			s.Post("/{id}/precio", h.ServiceSetPrice)
			s.Post("/{id}/inactivar", h.ServiceDeactivate)
			s.Post("/{id}/reactivar", h.ServiceReactivate)
		})

		auth.Route("/usuarios", func(u chi.Router) {
			u.Use(RequireRoles(cfg.Session, rolesUsers...))
			u.Get("/", h.StaffPage)
			u.Post("/", h.StaffCreate)
			u.Post("/filtro", h.StaffFilter)
			u.Post("/{id}", h.StaffUpdate)
			u.Post("/{id}/anular", h.StaffAnnul)
			u.Post("/{id}/reactivar", h.StaffReactivate)
		})
	})

	return r
}

func chiURLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
