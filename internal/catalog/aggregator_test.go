package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

func catalogBackend(t *testing.T, fetches *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(fetches, 1)
		switch r.URL.Path {
		case "/api/sucursales":
			_, _ = w.Write([]byte(`[{"idSucursal":1,"nombre":"Central"},{"idSucursal":2,"nombre":"Zona 10"}]`))
		case "/api/servicios":
			_, _ = w.Write([]byte(`[{"idServicio":1,"nombre":"Fisioterapia","activo":true,"precioActual":150.0,"moneda":"GTQ"}]`))
		case "/api/pacientes":
			_, _ = w.Write([]byte(`[{"idPaciente":4,"nombres":"Luis","apellidos":"Gómez","telefono":"55512345","activo":true}]`))
		case "/api/users":
			_, _ = w.Write([]byte(`[
				{"idUsuario":7,"usuario":"bruno","rol":"ESPECIALISTA","nombre":"Bruno","apellido":"Díaz","correo":"b@x.com","estado":true},
				{"idUsuario":8,"usuario":"alma","rol":"ESPECIALISTA","nombre":"Alma","apellido":"Cruz","correo":"a@x.com","estado":true},
				{"idUsuario":9,"usuario":"inact","rol":"ESPECIALISTA","nombre":"Inés","apellido":"Baja","correo":"i@x.com","estado":false},
				{"idUsuario":10,"usuario":"cata","rol":"CAJA","nombre":"Cata","apellido":"Ruiz","correo":"c@x.com","estado":true}
			]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newAggregator(t *testing.T, handler http.HandlerFunc) *Aggregator {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, nil, nil, logging.Default())
	return NewAggregator(client, logging.Default())
}

func TestAggregatorGetFiltersAndSorts(t *testing.T) {
	var fetches int32
	agg := newAggregator(t, catalogBackend(t, &fetches))

	cat, err := agg.Get(context.Background(), false)
	require.NoError(t, err)

	assert.Len(t, cat.Branches, 2)
	assert.Len(t, cat.Services, 1)
	assert.Len(t, cat.Patients, 1)

	// Only active ESPECIALISTA users survive, sorted A-Z by display name.
	require.Len(t, cat.Specialists, 2)
	assert.Equal(t, "Alma", cat.Specialists[0].FirstName)
	assert.Equal(t, "Bruno", cat.Specialists[1].FirstName)
}

func TestAggregatorReplaysCache(t *testing.T) {
	var fetches int32
	agg := newAggregator(t, catalogBackend(t, &fetches))
	ctx := context.Background()

	_, err := agg.Get(ctx, false)
	require.NoError(t, err)
	first := atomic.LoadInt32(&fetches)

	_, err = agg.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first, atomic.LoadInt32(&fetches), "second Get must replay the cache")

	_, err = agg.Get(ctx, true)
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&fetches), first, "forced Get must refetch")
}

func TestAggregatorInvalidate(t *testing.T) {
	var fetches int32
	agg := newAggregator(t, catalogBackend(t, &fetches))
	ctx := context.Background()

	_, err := agg.Get(ctx, false)
	require.NoError(t, err)
	first := atomic.LoadInt32(&fetches)

	agg.Invalidate()
	_, err = agg.Get(ctx, false)
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&fetches), first)
}

func TestAggregatorSingleFailureFailsJoin(t *testing.T) {
	agg := newAggregator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users" {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := agg.Get(context.Background(), false)
	require.Error(t, err)

	// The failed join must not poison the cache with a partial result.
	agg2 := newAggregator(t, catalogBackend(t, new(int32)))
	cat, err := agg2.Get(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, cat)
}

func TestIndexLookupsAndFallbacks(t *testing.T) {
	idx := NewIndex(&Catalog{
		Branches: []api.Branch{{ID: 1, Name: "Central"}},
		Services: []api.Service{{ID: 2, Name: "Fisioterapia"}},
		Patients: []api.Patient{{ID: 3, FirstNames: "Luis", LastNames: "Gómez"}},
		Specialists: []api.User{
			{ID: 7, FirstName: "Bruno", LastName: "Díaz"},
		},
	})

	assert.Equal(t, "Central", idx.BranchName(1))
	assert.Equal(t, "Sucursal #99", idx.BranchName(99))
	assert.Equal(t, "Fisioterapia", idx.ServiceName(2))
	assert.Equal(t, "Servicio #5", idx.ServiceName(5))
	assert.Equal(t, "Luis Gómez", idx.PatientName(3))
	assert.Equal(t, "Paciente #8", idx.PatientName(8))

	seven := int64(7)
	missing := int64(42)
	assert.Equal(t, "Bruno Díaz", idx.SpecialistName(&seven))
	assert.Equal(t, "Esp. #42", idx.SpecialistName(&missing))
	assert.Equal(t, "", idx.SpecialistName(nil))
}
