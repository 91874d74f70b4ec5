package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

func fptr(v float64) *float64 { return &v }

func catalogFixture() []api.Service {
	return []api.Service{
		{ID: 1, Name: "Masaje", Active: true, CurrentPrice: fptr(200), Currency: "GTQ"},
		{ID: 2, Name: "Electroterapia", Active: true, CurrentPrice: fptr(150), Currency: "GTQ"},
		{ID: 3, Name: "Acupuntura", Active: false, Description: "sesión de 40 min"},
	}
}

type fakeBackend struct {
	mux        *http.ServeMux
	priceCalls atomic.Int64
	lastPrice  atomic.Value // map[string]any
}

func newTestScreen(t *testing.T) (*Screen, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	active := func() []api.Service {
		var out []api.Service
		for _, srv := range catalogFixture() {
			if srv.Active {
				out = append(out, srv)
			}
		}
		return out
	}

	b.mux.HandleFunc("GET /api/servicios", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, active())
	})
	b.mux.HandleFunc("GET /api/servicios/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, catalogFixture())
	})
	b.mux.HandleFunc("POST /api/servicios/{id}/precio", func(w http.ResponseWriter, r *http.Request) {
		b.priceCalls.Add(1)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		b.lastPrice.Store(payload)
		writeJSON(w, api.PricePoint{ID: 9, Price: payload["precio"].(float64), Currency: payload["moneda"].(string)})
	})
	b.mux.HandleFunc("GET /api/servicios/{id}/precios", func(w http.ResponseWriter, r *http.Request) {
		from := func(d int) *time.Time {
			ts := time.Date(2025, time.Month(d), 1, 0, 0, 0, 0, time.UTC)
			return &ts
		}
		writeJSON(w, []api.PricePoint{
			{ID: 1, Price: 100, Currency: "GTQ", ValidFrom: from(1), ValidTo: from(3)},
			{ID: 2, Price: 150, Currency: "GTQ", ValidFrom: from(3)},
		})
	})

	ts := httptest.NewServer(b.mux)
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, func() string { return "tok-123" }, nil, nil)
	return NewScreen(client, nil), b
}

func TestLoadSortsActiveFirstThenName(t *testing.T) {
	screen, _ := newTestScreen(t)
	screen.SetIncludeInactive(true)
	require.NoError(t, screen.Load(context.Background()))

	view, _, _ := screen.Page()
	require.Len(t, view, 3)
	assert.Equal(t, "Electroterapia", view[0].Name)
	assert.Equal(t, "Masaje", view[1].Name)
	assert.Equal(t, "Acupuntura", view[2].Name) // inactive last
}

func TestQueryMatchesStateAndPrice(t *testing.T) {
	screen, _ := newTestScreen(t)
	screen.SetIncludeInactive(true)
	require.NoError(t, screen.Load(context.Background()))

	screen.SetQuery("inactivo")
	view, _, _ := screen.Page()
	require.Len(t, view, 1)
	assert.Equal(t, "Acupuntura", view[0].Name)

	screen.SetQuery("200")
	view, _, _ = screen.Page()
	require.Len(t, view, 1)
	assert.Equal(t, "Masaje", view[0].Name)

	screen.SetQuery("40 min")
	view, _, _ = screen.Page()
	require.Len(t, view, 1)
}

func TestFormValidation(t *testing.T) {
	_, err := Form{Name: "X"}.validate()
	require.Error(t, err)
	assert.True(t, ui.IsValidation(err))
	assert.Equal(t, "El nombre debe tener entre 2 y 160 caracteres.", err.Error())

	_, err = Form{Name: "Masaje", InitialPrice: fptr(0)}.validate()
	require.Error(t, err)
	assert.Equal(t, "El precio inicial debe ser mayor a 0", err.Error())

	n, err := Form{Name: "  Masaje   relajante ", Currency: " gtq "}.validate()
	require.NoError(t, err)
	assert.Equal(t, "Masaje relajante", n.Name)
	assert.Equal(t, "GTQ", n.Currency)
}

func TestUpdateRejectsUnchangedSubmit(t *testing.T) {
	screen, _ := newTestScreen(t)
	require.NoError(t, screen.Load(context.Background()))

	srv, ok := screen.Find(1)
	require.True(t, ok)

	_, err := screen.Update(context.Background(), 1, FromService(srv))
	require.Error(t, err)
	assert.Equal(t, "No hay cambios por guardar", err.Error())
}

func TestSetPriceValidatesAndRounds(t *testing.T) {
	screen, backend := newTestScreen(t)
	require.NoError(t, screen.Load(context.Background()))

	_, err := screen.SetPrice(context.Background(), 1, 0, "GTQ")
	require.Error(t, err)
	assert.Equal(t, "El precio debe ser mayor a 0", err.Error())

	// Same price and currency as current: local no-op.
	_, err = screen.SetPrice(context.Background(), 1, 200, "gtq")
	require.Error(t, err)
	assert.Equal(t, "No hay cambios por guardar", err.Error())
	assert.Equal(t, int64(0), backend.priceCalls.Load())

	point, err := screen.SetPrice(context.Background(), 1, 225.999, "")
	require.NoError(t, err)
	assert.Equal(t, 226.0, point.Price)

	payload, _ := backend.lastPrice.Load().(map[string]any)
	assert.Equal(t, 226.0, payload["precio"])
	assert.Equal(t, "GTQ", payload["moneda"])
}

func TestPriceHistoryNewestFirst(t *testing.T) {
	screen, _ := newTestScreen(t)

	hist, err := screen.PriceHistory(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, int64(2), hist[0].ID)
	assert.Nil(t, hist[0].ValidTo) // current price point is open-ended
	assert.Equal(t, int64(1), hist[1].ID)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "—", Money(nil, "GTQ"))
	assert.Equal(t, "GTQ 150.00", Money(fptr(150), ""))
	assert.Equal(t, "USD 9.50", Money(fptr(9.5), "usd"))
}
