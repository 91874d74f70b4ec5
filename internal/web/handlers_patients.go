package web

import (
	"fmt"
	"net/http"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/patients"
)

func (h *Handlers) PatientsPage(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Load(r.Context()); err != nil {
		h.flash(err, "No se pudieron cargar los pacientes.")
	}
	view, pageNum, totalPages := h.patients.Page()
	h.render(w, r, "pacientes.html", "Pacientes", map[string]any{
		"Patients":        view,
		"Page":            pageNum,
		"TotalPages":      totalPages,
		"IncludeInactive": h.patients.IncludeInactive(),
	})
}

func (h *Handlers) PatientsFilter(w http.ResponseWriter, r *http.Request) {
	h.patients.SetQuery(r.FormValue("buscar"))
	h.patients.SetIncludeInactive(r.FormValue("inactivos") == "1")
	switch r.FormValue("pagina") {
	case "siguiente":
		h.patients.Next()
	case "anterior":
		h.patients.Prev()
	}
	back(w, r, "/pacientes")
}

func patientForm(r *http.Request) patients.Form {
	return patients.Form{
		FirstNames: r.FormValue("nombres"),
		LastNames:  r.FormValue("apellidos"),
		Phone:      r.FormValue("telefono"),
		Email:      r.FormValue("correo"),
		TaxID:      r.FormValue("nit"),
		NationalID: r.FormValue("dpi"),
		Address:    r.FormValue("direccion"),
	}
}

func (h *Handlers) PatientCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.patients.Create(r.Context(), patientForm(r)); err != nil {
		h.flash(err, "No se pudo crear el paciente.")
	} else {
		h.toasts.Success("Paciente creado")
	}
	back(w, r, "/pacientes")
}

func (h *Handlers) PatientUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.patients.Update(r.Context(), pathID(r, "id"), patientForm(r)); err != nil {
		h.flash(err, "No se pudo actualizar el paciente.")
	} else {
		h.toasts.Success("Paciente actualizado")
	}
	back(w, r, "/pacientes")
}

func (h *Handlers) PatientDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Deactivate(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo inactivar el paciente.")
	} else {
		h.toasts.Success("Paciente inactivado")
	}
	back(w, r, "/pacientes")
}

func (h *Handlers) PatientReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Reactivate(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo reactivar el paciente.")
	} else {
		h.toasts.Success("Paciente reactivado")
	}
	back(w, r, "/pacientes")
}

// DossierPage opens the expediente for one patient.
func (h *Handlers) DossierPage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	p, ok := h.patients.Find(id)
	if !ok {
		h.toasts.Warning("Paciente no encontrado. Recarga la lista.")
		http.Redirect(w, r, "/pacientes", http.StatusSeeOther)
		return
	}
	if err := h.dossier.Open(r.Context(), p); err != nil {
		h.flash(err, "No se pudo abrir el expediente.")
		http.Redirect(w, r, "/pacientes", http.StatusSeeOther)
		return
	}

	switch r.URL.Query().Get("tab") {
	case "archivos":
		if cita := queryInt64(r.URL.Query().Get("idCita")); cita != 0 {
			h.dossier.ShowFilesForCita(cita)
		} else {
			h.dossier.ShowAllFiles()
		}
	default:
		h.dossier.ShowAppointments()
	}

	h.render(w, r, "expediente.html", "Expediente de "+h.dossier.PatientLabel(), map[string]any{
		"Patient": p,
		"Dossier": h.dossier.Dossier(),
		"Files":   h.dossier.VisibleFiles(),
		"Tab":     h.dossier.ActiveTab(),
	})
}

// DossierUpload attaches a file to the open expediente.
func (h *Handlers) DossierUpload(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if h.dossier.PatientID() != id {
		h.toasts.Warning("Abre un expediente primero.")
		back(w, r, "/pacientes")
		return
	}

	file, header, err := r.FormFile("archivo")
	if err != nil {
		h.toasts.Warning("Selecciona un archivo válido.")
		back(w, r, fmt.Sprintf("/pacientes/%d/expediente?tab=archivos", id))
		return
	}
	defer file.Close()

	err = h.dossier.Upload(r.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
		patients.UploadForm{
			Title:         r.FormValue("titulo"),
			Kind:          api.FileKind(r.FormValue("tipo")),
			AppointmentID: formInt64Ptr(r, "idCita"),
		},
	)
	if err != nil {
		h.flash(err, "No se pudo subir el archivo.")
	} else {
		h.toasts.Success("Archivo subido")
	}
	back(w, r, fmt.Sprintf("/pacientes/%d/expediente?tab=archivos", id))
}

// FileDownload streams one expediente file.
func (h *Handlers) FileDownload(w http.ResponseWriter, r *http.Request) {
	content, contentType, err := h.dossier.DownloadFile(r.Context(), pathID(r, "id"))
	if err != nil {
		h.flash(err, "No se pudo descargar el archivo.")
		back(w, r, "/pacientes")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(content)
}

func (h *Handlers) FileAnnul(w http.ResponseWriter, r *http.Request) {
	if err := h.dossier.AnnulFile(r.Context(), pathID(r, "id")); err != nil {
		h.flash(err, "No se pudo anular el archivo.")
	} else {
		h.toasts.Success("Archivo anulado")
	}
	back(w, r, fmt.Sprintf("/pacientes/%d/expediente?tab=archivos", h.dossier.PatientID()))
}
