package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) (*Store, string) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	store, err := NewStore(dir, logging.Default())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	client := api.NewClient(ts.URL, store.Token, nil, logging.Default())
	store.Bind(client)
	return store, dir
}

func loginMeHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"tok-1","usuario":{"idUsuario":1,"usuario":"ana","rol":"ADMIN","nombre":"Ana","apellido":"Pérez","correo":"ana@x.com"}}`))
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("me called with Authorization %q", r.Header.Get("Authorization"))
			}
			_, _ = w.Write([]byte(`{"idUsuario":1,"usuario":"ana","rol":"ADMIN","nombre":"Ana","apellido":"Pérez","correo":"ana@x.com","idSucursal":2}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestStoreLoginPersistsAndNotifies(t *testing.T) {
	store, dir := newTestSession(t, loginMeHandler(t))

	var events []bool
	store.Subscribe(func(ok bool) { events = append(events, ok) })

	profile, err := store.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.Role != api.RoleAdmin || profile.FullName() != "Ana Pérez" {
		t.Fatalf("profile = %+v", profile)
	}
	if !store.Authenticated() || store.Role() != api.RoleAdmin {
		t.Fatal("store should be authenticated as ADMIN")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "af_token"))
	if err != nil || string(raw) != "tok-1" {
		t.Fatalf("af_token = %q, err = %v", raw, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "af_user")); err != nil {
		t.Fatalf("af_user not persisted: %v", err)
	}
	if len(events) != 1 || !events[0] {
		t.Fatalf("events = %v, want [true]", events)
	}
}

func TestStoreReloadsPersistedSession(t *testing.T) {
	store, dir := newTestSession(t, loginMeHandler(t))
	if _, err := store.Login(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	reloaded, err := NewStore(dir, logging.Default())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if reloaded.Token() != "tok-1" {
		t.Fatalf("token = %q", reloaded.Token())
	}
	if reloaded.Role() != api.RoleAdmin {
		t.Fatalf("role = %q", reloaded.Role())
	}
}

func TestStoreLogoutClearsState(t *testing.T) {
	store, dir := newTestSession(t, loginMeHandler(t))
	if _, err := store.Login(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var last bool = true
	store.Subscribe(func(ok bool) { last = ok })
	store.Logout()

	if store.Authenticated() || store.Profile() != nil {
		t.Fatal("store should be empty after logout")
	}
	if _, err := os.Stat(filepath.Join(dir, "af_token")); !os.IsNotExist(err) {
		t.Fatal("af_token should be removed")
	}
	if last {
		t.Fatal("subscriber should see authenticated=false")
	}
}

func TestRefreshProfileWithoutToken(t *testing.T) {
	store, _ := newTestSession(t, loginMeHandler(t))
	_, err := store.RefreshProfile(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestRefreshProfileStaleTokenForcesLogout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	// Seed a stored token directly, as if left over from a previous run.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "af_token"), []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(dir, logging.Default())
	if err != nil {
		t.Fatal(err)
	}
	store.Bind(api.NewClient(ts.URL, store.Token, nil, logging.Default()))

	_, err = store.RefreshProfile(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if store.Authenticated() {
		t.Fatal("stale token must force logout")
	}
}

func TestLandingPath(t *testing.T) {
	cases := map[api.Role]string{
		api.RoleSuperAdmin: "/citas",
		api.RoleAdmin:      "/citas",
		api.RoleSpecialist: "/citas",
		api.RoleSecretary:  "/citas",
		api.RoleCashier:    "/caja",
		api.Role("???"):    "/citas",
	}
	for role, want := range cases {
		if got := LandingPath(role); got != want {
			t.Errorf("LandingPath(%s) = %s, want %s", role, got, want)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := TokenExpiry(signed)
	if !ok {
		t.Fatal("expected readable expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
	if !TokenExpired(signed, time.Now()) {
		t.Fatal("token should be expired")
	}
	if TokenExpired("not-a-jwt", time.Now()) {
		t.Fatal("unreadable token must not count as expired")
	}
}
