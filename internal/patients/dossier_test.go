package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

func TestValidateFile(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mime     string
		size     int64
		wantErr  string
	}{
		{"pdf by mime", "informe.bin", "application/pdf", 1024, ""},
		{"jpeg by mime", "foto", "image/jpeg", 1024, ""},
		{"unknown mime, allowed ext", "rayos.png", "application/octet-stream", 1024, ""},
		{"no mime, allowed ext", "receta.PDF", "", 1024, ""},
		{"exactly at the cap", "grande.pdf", "application/pdf", 20 * 1024 * 1024, ""},
		{"over the cap", "grande.pdf", "application/pdf", 20*1024*1024 + 1, "El archivo supera el límite de 20.0 MB."},
		{"forbidden type", "script.exe", "application/x-msdownload", 10, badFileTypeMsg},
		{"no extension no mime", "archivo", "", 10, badFileTypeMsg},
		{"empty name", "", "application/pdf", 10, "Selecciona un archivo válido."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFile(tc.filename, tc.mime, tc.size)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ui.IsValidation(err))
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "20.0 MB", FormatBytes(20*1024*1024))
}

func dossierBackend(t *testing.T) (*http.ServeMux, *atomic.Int64) {
	t.Helper()
	var fetches atomic.Int64
	day := func(d int) time.Time { return time.Date(2025, time.June, d, 10, 0, 0, 0, time.UTC) }
	cita7 := int64(7)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pacientes/2/expediente", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		created1, created2 := day(1), day(5)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Dossier{
			Patient: api.Patient{ID: 2, FirstNames: "Ana", LastNames: "López", Active: true},
			Appointments: []api.DossierAppointment{
				{ID: 6, StartsAt: day(3), Status: api.StatusFinished},
				{ID: 7, StartsAt: day(9), Status: api.StatusConfirmed},
			},
			Files: []api.PatientFile{
				{ID: 1, PatientID: 2, Filename: "viejo.pdf", Kind: api.FileDocument, Active: true, CreatedAt: &created1},
				{ID: 2, PatientID: 2, AppointmentID: &cita7, Filename: "nuevo.png", Kind: api.FilePhoto, Active: true, CreatedAt: &created2},
			},
		})
	})
	return mux, &fetches
}

func newTestDossier(t *testing.T, mux *http.ServeMux) *DossierView {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, func() string { return "tok-123" }, nil, nil)
	return NewDossierView(client)
}

func TestOpenSortsNewestFirst(t *testing.T) {
	mux, _ := dossierBackend(t)
	view := newTestDossier(t, mux)

	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2, FirstNames: "Ana", LastNames: "López"}))
	assert.Equal(t, "Ana López", view.PatientLabel())
	assert.Equal(t, TabAppointments, view.ActiveTab())

	dos := view.Dossier()
	require.NotNil(t, dos)
	assert.Equal(t, int64(7), dos.Appointments[0].ID)
	assert.Equal(t, int64(6), dos.Appointments[1].ID)
	assert.Equal(t, "nuevo.png", dos.Files[0].Filename)
}

func TestFileFilterByCita(t *testing.T) {
	mux, _ := dossierBackend(t)
	view := newTestDossier(t, mux)
	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2}))

	view.ShowFilesForCita(7)
	assert.Equal(t, TabFiles, view.ActiveTab())
	files := view.VisibleFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "nuevo.png", files[0].Filename)

	view.ShowAllFiles()
	assert.Len(t, view.VisibleFiles(), 2)

	// A filter for a cita missing from the reloaded expediente is dropped.
	view.ShowFilesForCita(999)
	require.NoError(t, view.Reload(context.Background()))
	assert.Len(t, view.VisibleFiles(), 2)
}

func TestUploadValidatesBeforeNetwork(t *testing.T) {
	mux, fetches := dossierBackend(t)
	var uploads atomic.Int64
	mux.HandleFunc("POST /api/pacientes/2/archivos", func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "7", r.FormValue("idCita"))
		assert.Equal(t, "Radiografía", r.FormValue("titulo"))
		assert.Equal(t, "RX", r.FormValue("tipo"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.PatientFile{ID: 3, PatientID: 2, Filename: "rx.png", Active: true})
	})
	view := newTestDossier(t, mux)
	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2}))
	baseline := fetches.Load()

	err := view.Upload(context.Background(), "rx.exe", "", 10, strings.NewReader("x"), UploadForm{})
	require.Error(t, err)
	assert.True(t, ui.IsValidation(err))
	assert.Equal(t, int64(0), uploads.Load())

	cita := int64(7)
	err = view.Upload(context.Background(), "rx.png", "image/png", 10, strings.NewReader("x"), UploadForm{
		Title: " Radiografía ", Kind: api.FileXRay, AppointmentID: &cita,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), uploads.Load())
	assert.Equal(t, baseline+1, fetches.Load()) // reloaded after upload
}

func TestUploadRejectsVanishedCita(t *testing.T) {
	mux, _ := dossierBackend(t)
	view := newTestDossier(t, mux)
	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2}))

	gone := int64(404)
	err := view.Upload(context.Background(), "rx.png", "image/png", 10, strings.NewReader("x"), UploadForm{AppointmentID: &gone})
	require.Error(t, err)
	assert.Equal(t, "La cita seleccionada ya no existe.", err.Error())
}

func TestAnnulFileReloads(t *testing.T) {
	mux, fetches := dossierBackend(t)
	var annuls atomic.Int64
	mux.HandleFunc("PATCH /api/pacientes/2/archivos/1/anular", func(w http.ResponseWriter, r *http.Request) {
		annuls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	view := newTestDossier(t, mux)
	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2}))
	baseline := fetches.Load()

	require.NoError(t, view.AnnulFile(context.Background(), 1))
	assert.Equal(t, int64(1), annuls.Load())
	assert.Equal(t, baseline+1, fetches.Load())
}

func TestReloadDropsLateStaleResponse(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pacientes/2/expediente", func(w http.ResponseWriter, r *http.Request) {
		marker := "fresco.pdf"
		if calls.Add(1) == 1 {
			close(firstArrived)
			<-releaseFirst
			marker = "rancio.pdf"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Dossier{
			Patient: api.Patient{ID: 2, Active: true},
			Files:   []api.PatientFile{{ID: 1, PatientID: 2, Filename: marker, Active: true}},
		})
	})
	view := newTestDossier(t, mux)

	// First reload stalls on the backend while a second one completes.
	done := make(chan error, 1)
	go func() {
		done <- view.Open(context.Background(), api.Patient{ID: 2})
	}()
	<-firstArrived
	require.NoError(t, view.Reload(context.Background()))

	dos := view.Dossier()
	require.NotNil(t, dos)
	require.Equal(t, "fresco.pdf", dos.Files[0].Filename)

	close(releaseFirst)
	require.NoError(t, <-done)

	// The late first response must not replace the newer one.
	dos = view.Dossier()
	require.NotNil(t, dos)
	assert.Equal(t, "fresco.pdf", dos.Files[0].Filename)
}

func TestCloseClearsState(t *testing.T) {
	mux, _ := dossierBackend(t)
	view := newTestDossier(t, mux)
	require.NoError(t, view.Open(context.Background(), api.Patient{ID: 2}))

	view.Close()
	assert.Equal(t, int64(0), view.PatientID())
	assert.Nil(t, view.Dossier())

	err := view.AnnulFile(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, ui.IsValidation(err))
}
