package patients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/ui"
)

func validForm() Form {
	return Form{
		FirstNames: "Ana María",
		LastNames:  "López",
		Phone:      "55512345",
	}
}

func TestValidateCleansAndBuildsRequest(t *testing.T) {
	f := Form{
		FirstNames: "  Ana   María ",
		LastNames:  " López  Paz ",
		Phone:      " 5551-2345 ",
		Email:      " ana@x.gt ",
		TaxID:      " cf ",
		NationalID: "1234567890123",
		Address:    " zona 10 ",
	}
	req, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Ana María", req.FirstNames)
	assert.Equal(t, "López Paz", req.LastNames)
	assert.Equal(t, "55512345", req.Phone)
	assert.Equal(t, "ana@x.gt", req.Email)
	assert.Equal(t, "cf", req.TaxID)
	assert.Equal(t, "1234567890123", req.NationalID)
	assert.Equal(t, "zona 10", req.Address)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
		want   string
	}{
		{"missing first names", func(f *Form) { f.FirstNames = "   " }, "Ingresa los nombres del paciente (máx. 120)."},
		{"missing surnames", func(f *Form) { f.LastNames = "" }, "Ingresa los apellidos del paciente (máx. 120)."},
		{"short phone", func(f *Form) { f.Phone = "5551234" }, "El teléfono debe tener exactamente 8 dígitos."},
		{"long phone", func(f *Form) { f.Phone = "555123456" }, "El teléfono debe tener exactamente 8 dígitos."},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "Ingresa un correo válido (máx. 180)."},
		{"bad nit", func(f *Form) { f.TaxID = "12AB" }, "El NIT debe ser \"CF\" o de 1 a 12 dígitos."},
		{"nit too long", func(f *Form) { f.TaxID = "1234567890123" }, "El NIT debe ser \"CF\" o de 1 a 12 dígitos."},
		{"short dpi", func(f *Form) { f.NationalID = "12345" }, "El DPI debe tener exactamente 13 dígitos."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			_, err := f.Validate()
			require.Error(t, err)
			assert.True(t, ui.IsValidation(err))
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	req, err := validForm().Validate()
	require.NoError(t, err)
	assert.Empty(t, req.Email)
	assert.Empty(t, req.TaxID)
	assert.Empty(t, req.NationalID)
}

func TestNITAcceptsCFAndDigits(t *testing.T) {
	for _, v := range []string{"CF", "cf", "1", "123456789012"} {
		f := validForm()
		f.TaxID = v
		_, err := f.Validate()
		assert.NoError(t, err, v)
	}
}

func TestChanged(t *testing.T) {
	p := api.Patient{FirstNames: "Ana", LastNames: "López", Phone: "55512345", Email: "ana@x.gt"}
	f := FromPatient(p)
	assert.False(t, f.Changed(p))

	// Cosmetic whitespace is not a change.
	f.FirstNames = "  Ana "
	assert.False(t, f.Changed(p))

	f.Phone = "44411222"
	assert.True(t, f.Changed(p))
}
