package patients

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/async"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

const (
	maxFileBytes = 20 * 1024 * 1024
	maxTitleLen  = 140
)

var allowedMIMEs = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"text/plain":      {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

var allowedExts = map[string]struct{}{
	"pdf": {}, "jpg": {}, "jpeg": {}, "png": {}, "webp": {},
	"txt": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
}

const badFileTypeMsg = "Tipo de archivo no permitido. Usa PDF o imágenes (JPG/PNG/WEBP) o documentos (DOCX/XLSX)."

// Tab selects which half of the expediente is showing.
type Tab string

const (
	TabAppointments Tab = "CITAS"
	TabFiles        Tab = "ARCHIVOS"
)

// DossierView is the expediente modal's view-model. A slow fetch for a
// previously opened patient must never overwrite the currently open one,
// so every reload runs behind a latest-wins guard.
type DossierView struct {
	client *api.Client

	guard async.Guard

	mu              sync.Mutex
	patientID       int64
	label           string
	includeInactive bool
	tab             Tab
	fileCitaFilter  *int64
	dossier         *api.Dossier
}

func NewDossierView(client *api.Client) *DossierView {
	return &DossierView{client: client, tab: TabAppointments}
}

// Open points the view at a patient and loads their expediente.
func (d *DossierView) Open(ctx context.Context, p api.Patient) error {
	d.mu.Lock()
	d.patientID = p.ID
	d.label = Label(p)
	d.includeInactive = false
	d.tab = TabAppointments
	d.fileCitaFilter = nil
	d.dossier = nil
	d.mu.Unlock()
	return d.Reload(ctx)
}

// Close clears the view and supersedes any fetch still in flight.
func (d *DossierView) Close() {
	d.guard.Begin()
	d.mu.Lock()
	d.patientID = 0
	d.label = ""
	d.dossier = nil
	d.fileCitaFilter = nil
	d.mu.Unlock()
}

// Reload refetches the expediente. Appointments sort newest first by start,
// files newest first by upload time.
func (d *DossierView) Reload(ctx context.Context) error {
	d.mu.Lock()
	id := d.patientID
	includeInactive := d.includeInactive
	d.mu.Unlock()
	if id == 0 {
		return nil
	}

	token := d.guard.Begin()
	dossier, err := d.client.GetDossier(ctx, id, includeInactive)
	if err != nil {
		return err
	}

	sort.SliceStable(dossier.Appointments, func(i, j int) bool {
		return dossier.Appointments[i].StartsAt.After(dossier.Appointments[j].StartsAt)
	})
	sort.SliceStable(dossier.Files, func(i, j int) bool {
		a, b := dossier.Files[i].CreatedAt, dossier.Files[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})

	d.guard.Apply(token, func() {
		d.mu.Lock()
		d.dossier = dossier
		// A cita filter pointing at a cita that no longer exists is dropped.
		if d.fileCitaFilter != nil && !hasAppointment(dossier, *d.fileCitaFilter) {
			d.fileCitaFilter = nil
		}
		d.mu.Unlock()
	})
	return nil
}

func hasAppointment(dos *api.Dossier, citaID int64) bool {
	for _, c := range dos.Appointments {
		if c.ID == citaID {
			return true
		}
	}
	return false
}

// SetIncludeInactive toggles soft-deleted files; the caller reloads.
func (d *DossierView) SetIncludeInactive(v bool) {
	d.mu.Lock()
	d.includeInactive = v
	d.mu.Unlock()
}

// PatientID returns the open patient, 0 when closed.
func (d *DossierView) PatientID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.patientID
}

// PatientLabel returns the modal title.
func (d *DossierView) PatientLabel() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.label
}

// Dossier returns the loaded expediente, nil while loading.
func (d *DossierView) Dossier() *api.Dossier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dossier
}

// ActiveTab returns the showing tab.
func (d *DossierView) ActiveTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// ShowFilesForCita switches to the files tab scoped to one cita.
func (d *DossierView) ShowFilesForCita(citaID int64) {
	d.mu.Lock()
	d.tab = TabFiles
	d.fileCitaFilter = &citaID
	d.mu.Unlock()
}

// ShowAllFiles switches to the files tab without a cita scope.
func (d *DossierView) ShowAllFiles() {
	d.mu.Lock()
	d.tab = TabFiles
	d.fileCitaFilter = nil
	d.mu.Unlock()
}

// ShowAppointments returns to the citas tab and clears the file scope.
func (d *DossierView) ShowAppointments() {
	d.mu.Lock()
	d.tab = TabAppointments
	d.fileCitaFilter = nil
	d.mu.Unlock()
}

// VisibleFiles returns the files under the current cita scope.
func (d *DossierView) VisibleFiles() []api.PatientFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dossier == nil {
		return nil
	}
	if d.fileCitaFilter == nil {
		return d.dossier.Files
	}
	var out []api.PatientFile
	for _, f := range d.dossier.Files {
		if f.AppointmentID != nil && *f.AppointmentID == *d.fileCitaFilter {
			out = append(out, f)
		}
	}
	return out
}

// UploadForm is the attachment metadata next to the file part.
type UploadForm struct {
	Title         string
	Kind          api.FileKind
	AppointmentID *int64
}

// ValidateFile checks size and type against the upload rules. MIME is
// checked when supplied; unknown or missing MIME types fall back to the
// extension allow-list.
func ValidateFile(filename, mime string, size int64) error {
	if filename == "" {
		return ui.Invalid("Selecciona un archivo válido.")
	}
	if size > maxFileBytes {
		return ui.Invalid(fmt.Sprintf("El archivo supera el límite de %s.", FormatBytes(maxFileBytes)))
	}
	if mime != "" {
		if _, ok := allowedMIMEs[mime]; ok {
			return nil
		}
	}
	ext := fileExt(filename)
	if _, ok := allowedExts[ext]; !ok {
		return ui.Invalid(badFileTypeMsg)
	}
	return nil
}

func fileExt(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
	return ext
}

// Upload validates and sends an attachment, then reloads the expediente.
func (d *DossierView) Upload(ctx context.Context, filename, mime string, size int64, content io.Reader, form UploadForm) error {
	d.mu.Lock()
	id := d.patientID
	d.mu.Unlock()
	if id == 0 {
		return ui.Invalid("Abre un expediente primero.")
	}
	if err := ValidateFile(filename, mime, size); err != nil {
		return err
	}
	title := strings.TrimSpace(form.Title)
	if len([]rune(title)) > maxTitleLen {
		return ui.Invalid("El título supera los 140 caracteres.")
	}
	kind := form.Kind
	if kind == "" {
		kind = api.FileDocument
	}
	if form.AppointmentID != nil {
		d.mu.Lock()
		dos := d.dossier
		d.mu.Unlock()
		if dos != nil && !hasAppointment(dos, *form.AppointmentID) {
			return ui.Invalid("La cita seleccionada ya no existe.")
		}
	}

	_, err := d.client.UploadPatientFile(ctx, id, api.FileUpload{
		Filename:      filename,
		Content:       content,
		AppointmentID: form.AppointmentID,
		Title:         title,
		Kind:          kind,
	})
	if err != nil {
		return err
	}
	return d.Reload(ctx)
}

// AnnulFile soft-deletes an attachment and reloads.
func (d *DossierView) AnnulFile(ctx context.Context, fileID int64) error {
	d.mu.Lock()
	id := d.patientID
	d.mu.Unlock()
	if id == 0 {
		return ui.Invalid("Abre un expediente primero.")
	}
	if err := d.client.AnnulPatientFile(ctx, id, fileID); err != nil {
		return err
	}
	return d.Reload(ctx)
}

// DownloadFile fetches an attachment's bytes and content type.
func (d *DossierView) DownloadFile(ctx context.Context, fileID int64) ([]byte, string, error) {
	d.mu.Lock()
	id := d.patientID
	d.mu.Unlock()
	if id == 0 {
		return nil, "", ui.Invalid("Abre un expediente primero.")
	}
	return d.client.DownloadPatientFile(ctx, id, fileID)
}

// FormatBytes renders a byte count with a binary unit, one decimal above
// bytes.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	val := float64(n) / math.Pow(1024, float64(i))
	if i == 0 {
		return fmt.Sprintf("%.0f %s", val, units[i])
	}
	return fmt.Sprintf("%.1f %s", val, units[i])
}
