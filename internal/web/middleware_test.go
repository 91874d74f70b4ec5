package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/session"
)

// seedSession writes a persisted token and profile, then loads a store that
// picks them up, the same way a restarted app would.
func seedSession(t *testing.T, role api.Role) *session.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "af_token"), []byte("tok-opaque"), 0o600))
	if role != "" {
		profile := api.Profile{ID: 1, Username: "tester", Role: role}
		raw, err := json.Marshal(profile)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "af_user"), raw, 0o600))
	}
	store, err := session.NewStore(dir, nil)
	require.NoError(t, err)
	return store
}

func emptySession(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsWithoutToken(t *testing.T) {
	guarded := RequireAuth(emptySession(t))(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthPassesWithToken(t *testing.T) {
	guarded := RequireAuth(seedSession(t, api.RoleAdmin))(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/citas", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name    string
		role    api.Role
		allowed []api.Role
		wantLoc string
		wantOK  bool
	}{
		{"empty list admits any role", api.RoleSecretary, nil, "", true},
		{"super admin on users", api.RoleSuperAdmin, rolesUsers, "", true},
		{"admin blocked from users", api.RoleAdmin, rolesUsers, "/prohibido", false},
		{"cashier on caja", api.RoleCashier, rolesCashier, "", true},
		{"cashier blocked from citas", api.RoleCashier, rolesClinical, "/prohibido", false},
		{"secretary on pacientes", api.RoleSecretary, rolesClinical, "", true},
		{"specialist blocked from servicios", api.RoleSpecialist, rolesServices, "/prohibido", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guarded := RequireRoles(seedSession(t, tc.role), tc.allowed...)(okHandler())
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if tc.wantOK {
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.Equal(t, tc.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRequireRolesWithoutProfileGoesToLogin(t *testing.T) {
	guarded := RequireRoles(seedSession(t, ""), api.RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouterGuardsEndToEnd(t *testing.T) {
	store := seedSession(t, api.RoleSecretary)
	h := NewHandlers(HandlersConfig{Session: store})
	router := NewRouter(RouterConfig{Session: store, Handlers: h})

	// role guard fires before the screen handler
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prohibido", rec.Header().Get("Location"))

	// health stays public
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterRedirectsAnonymous(t *testing.T) {
	store := emptySession(t)
	h := NewHandlers(HandlersConfig{Session: store})
	router := NewRouter(RouterConfig{Session: store, Handlers: h})

	for _, path := range []string{"/", "/citas", "/caja", "/pacientes", "/servicios", "/usuarios"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestForbiddenPageRenders(t *testing.T) {
	store := seedSession(t, api.RoleCashier)
	h := NewHandlers(HandlersConfig{Session: store})
	router := NewRouter(RouterConfig{Session: store, Handlers: h})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prohibido", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acceso denegado")
}
