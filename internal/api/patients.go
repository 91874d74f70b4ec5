package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ListPatients fetches active pacientes.
func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	var out []Patient
	if err := c.doJSON(ctx, http.MethodGet, "/api/pacientes", nil, &out); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

// ListAllPatients includes inactive pacientes.
func (c *Client) ListAllPatients(ctx context.Context) ([]Patient, error) {
	var out []Patient
	if err := c.doJSON(ctx, http.MethodGet, "/api/pacientes/all", nil, &out); err != nil {
		return nil, fmt.Errorf("list all patients: %w", err)
	}
	return out, nil
}

// GetPatient fetches one paciente by id.
func (c *Client) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	var out Patient
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/pacientes/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &out, nil
}

// CreatePatient registers a new paciente.
func (c *Client) CreatePatient(ctx context.Context, req PatientRequest) (*Patient, error) {
	var out Patient
	if err := c.doJSON(ctx, http.MethodPost, "/api/pacientes", req, &out); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &out, nil
}

// UpdatePatient edits a paciente.
func (c *Client) UpdatePatient(ctx context.Context, id int64, req PatientRequest) (*Patient, error) {
	var out Patient
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/pacientes/%d", id), req, &out); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return &out, nil
}

// DeactivatePatient soft-deletes a paciente.
func (c *Client) DeactivatePatient(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/pacientes/%d/inactivar", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("deactivate patient: %w", err)
	}
	return nil
}

// ReactivatePatient restores a soft-deleted paciente.
func (c *Client) ReactivatePatient(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/pacientes/%d/reactivar", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("reactivate patient: %w", err)
	}
	return nil
}

// GetDossier fetches the aggregated expediente (patient + citas + archivos).
// includeInactive also returns soft-deleted files.
func (c *Client) GetDossier(ctx context.Context, patientID int64, includeInactive bool) (*Dossier, error) {
	path := fmt.Sprintf("/api/pacientes/%d/expediente?inactivos=%s", patientID, strconv.FormatBool(includeInactive))
	var out Dossier
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get dossier: %w", err)
	}
	return &out, nil
}

// ListPatientFiles fetches a patient's attachments.
func (c *Client) ListPatientFiles(ctx context.Context, patientID int64, includeInactive bool) ([]PatientFile, error) {
	path := fmt.Sprintf("/api/pacientes/%d/archivos?inactivos=%s", patientID, strconv.FormatBool(includeInactive))
	var out []PatientFile
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list patient files: %w", err)
	}
	return out, nil
}

// FileUpload describes one attachment to send.
type FileUpload struct {
	Filename      string
	Content       io.Reader
	AppointmentID *int64
	Title         string
	Kind          FileKind
}

// UploadPatientFile sends a multipart upload; idCita, titulo and tipo travel
// as form fields next to the file part.
func (c *Client) UploadPatientFile(ctx context.Context, patientID int64, up FileUpload) (*PatientFile, error) {
	fields := map[string]string{}
	if up.AppointmentID != nil {
		fields["idCita"] = strconv.FormatInt(*up.AppointmentID, 10)
	}
	if up.Title != "" {
		fields["titulo"] = up.Title
	}
	if up.Kind != "" {
		fields["tipo"] = string(up.Kind)
	}
	var out PatientFile
	path := fmt.Sprintf("/api/pacientes/%d/archivos", patientID)
	if err := c.doMultipart(ctx, path, up.Filename, up.Content, fields, &out); err != nil {
		return nil, fmt.Errorf("upload patient file: %w", err)
	}
	return &out, nil
}

// AnnulPatientFile soft-deletes an attachment.
func (c *Client) AnnulPatientFile(ctx context.Context, patientID, fileID int64) error {
	path := fmt.Sprintf("/api/pacientes/%d/archivos/%d/anular", patientID, fileID)
	if err := c.doJSON(ctx, http.MethodPatch, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("annul patient file: %w", err)
	}
	return nil
}

// DownloadPatientFile fetches the raw file bytes and content type.
func (c *Client) DownloadPatientFile(ctx context.Context, patientID, fileID int64) ([]byte, string, error) {
	path := fmt.Sprintf("/api/pacientes/%d/archivos/%d/download", patientID, fileID)
	data, contentType, err := c.download(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("download patient file: %w", err)
	}
	return data, contentType, nil
}
