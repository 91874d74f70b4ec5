package patients

import (
	"regexp"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

var (
	nonDigitRe = regexp.MustCompile(`\D+`)
	spacesRe   = regexp.MustCompile(`\s+`)
	nitRe      = regexp.MustCompile(`^\d{1,12}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Form carries the raw create/edit inputs. Clean normalizes them the way
// the inputs do live: digits only for phone and DPI, collapsed spaces in
// names, trimmed everything else.
type Form struct {
	FirstNames string
	LastNames  string
	Phone      string
	Email      string
	TaxID      string
	NationalID string
	Address    string
}

// FromPatient prefills the form for editing.
func FromPatient(p api.Patient) Form {
	return Form{
		FirstNames: p.FirstNames,
		LastNames:  p.LastNames,
		Phone:      p.Phone,
		Email:      p.Email,
		TaxID:      p.TaxID,
		NationalID: p.NationalID,
		Address:    p.Address,
	}
}

// Clean returns the normalized form.
func (f Form) Clean() Form {
	return Form{
		FirstNames: collapseSpaces(f.FirstNames),
		LastNames:  collapseSpaces(f.LastNames),
		Phone:      onlyDigits(f.Phone),
		Email:      strings.TrimSpace(f.Email),
		TaxID:      strings.TrimSpace(f.TaxID),
		NationalID: onlyDigits(f.NationalID),
		Address:    strings.TrimSpace(f.Address),
	}
}

// Changed reports whether the cleaned form differs from the stored record.
// An unchanged edit submit closes without a request.
func (f Form) Changed(p api.Patient) bool {
	return f.Clean() != FromPatient(p).Clean()
}

// Validate cleans and checks the form, returning the request to send.
func (f Form) Validate() (api.PatientRequest, error) {
	var req api.PatientRequest
	c := f.Clean()

	if c.FirstNames == "" || len([]rune(c.FirstNames)) > 120 {
		return req, ui.Invalid("Ingresa los nombres del paciente (máx. 120).")
	}
	if c.LastNames == "" || len([]rune(c.LastNames)) > 120 {
		return req, ui.Invalid("Ingresa los apellidos del paciente (máx. 120).")
	}
	if len(c.Phone) != 8 {
		return req, ui.Invalid("El teléfono debe tener exactamente 8 dígitos.")
	}
	if c.Email != "" && (len(c.Email) > 180 || !emailRe.MatchString(c.Email)) {
		return req, ui.Invalid("Ingresa un correo válido (máx. 180).")
	}
	if c.TaxID != "" && !validNIT(c.TaxID) {
		return req, ui.Invalid("El NIT debe ser \"CF\" o de 1 a 12 dígitos.")
	}
	if c.NationalID != "" && len(c.NationalID) != 13 {
		return req, ui.Invalid("El DPI debe tener exactamente 13 dígitos.")
	}
	if len([]rune(c.Address)) > 180 {
		return req, ui.Invalid("La dirección supera los 180 caracteres.")
	}

	return api.PatientRequest{
		FirstNames: c.FirstNames,
		LastNames:  c.LastNames,
		Phone:      c.Phone,
		Email:      c.Email,
		TaxID:      c.TaxID,
		NationalID: c.NationalID,
		Address:    c.Address,
	}, nil
}

func validNIT(v string) bool {
	if strings.EqualFold(v, "CF") {
		return true
	}
	return nitRe.MatchString(v)
}

func onlyDigits(v string) string {
	return nonDigitRe.ReplaceAllString(v, "")
}

func collapseSpaces(v string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(v, " "))
}
