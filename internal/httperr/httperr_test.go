package httperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

func TestMessageTransportFailure(t *testing.T) {
	err := errors.New("http request: dial tcp: connection refused")
	got := Message(err, "fallback")
	assert.Contains(t, got, "No se pudo conectar al servidor")
}

func TestMessageStatusTable(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{400, "Solicitud inválida. Revisa los datos enviados."},
		{401, "Tu sesión expiró o no estás autenticado. Inicia sesión nuevamente."},
		{403, "No tienes permisos para realizar esta acción."},
		{404, "No se encontró el recurso (ruta incorrecta o endpoint no existe)."},
		{413, "El contenido enviado es demasiado grande."},
		{422, "Datos inválidos. Revisa campos requeridos y formato."},
		{429, "Demasiadas solicitudes. Intenta de nuevo en unos segundos."},
		{500, "Error interno del servidor. Revisa el backend."},
		{503, "Servicio no disponible. Backend en mantenimiento o caído."},
	}
	for _, tt := range tests {
		got := Message(&api.Error{Status: tt.status}, "fallback")
		assert.Equal(t, tt.want, got, "status %d", tt.status)
	}
}

func TestMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		err  *api.Error
		want string
	}{
		{
			name: "plain text body wins",
			err:  &api.Error{Status: 400, Body: "El usuario ya existe"},
			want: "El usuario ya existe",
		},
		{
			name: "html body falls back to status table",
			err:  &api.Error{Status: 502, Body: "<html><body>Bad Gateway</body></html>"},
			want: "Error de gateway/proxy. Backend no respondió correctamente.",
		},
		{
			name: "first field error with field prefix",
			err: &api.Error{Status: 422, Body: `{"errors":[]}`, Fields: []api.FieldError{
				{Field: "telefono", Message: "debe tener 8 dígitos"},
				{Field: "correo", Message: "inválido"},
			}},
			want: "telefono: debe tener 8 dígitos",
		},
		{
			name: "409 always reports duplicate",
			err:  &api.Error{Status: 409, Body: `{"message":"conflict"}`, Message: "conflict"},
			want: "Ya existe un registro similar.",
		},
		{
			name: "500 with unique-constraint text reports duplicate",
			err:  &api.Error{Status: 500, Body: `{"error":"violates unique constraint servicios_nombre_key"}`},
			want: "Ya existe un servicio similar.",
		},
		{
			name: "server message used when present",
			err:  &api.Error{Status: 400, Body: `{"message":"La sucursal es obligatoria"}`, Message: "La sucursal es obligatoria"},
			want: "La sucursal es obligatoria",
		},
		{
			name: "unknown status uses fallback",
			err:  &api.Error{Status: 418, Body: `{}`},
			want: "fallback",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, "fallback"))
		})
	}
}

func TestMessageNilError(t *testing.T) {
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}

func TestMessageUnknownStatusNoFallback(t *testing.T) {
	got := Message(&api.Error{Status: 418, Body: `{}`}, "")
	assert.Equal(t, "Error inesperado (418)", got)
}

func TestAppointmentMessagePatterns(t *testing.T) {
	tests := []struct {
		name string
		err  *api.Error
		want string
	}{
		{
			name: "409 means overlap",
			err:  &api.Error{Status: 409, Body: `{}`},
			want: "Ese horario ya está ocupado. Elige otra hora, duración o especialista.",
		},
		{
			name: "overlap by text",
			err:  &api.Error{Status: 400, Body: `{"message":"la cita se solapa con otra"}`, Message: "la cita se solapa con otra"},
			want: "Ese horario ya está ocupado. Elige otra hora, duración o especialista.",
		},
		{
			name: "past date",
			err:  &api.Error{Status: 400, Body: `{"message":"no se permite una fecha en el pasado"}`, Message: "no se permite una fecha en el pasado"},
			want: "No puedes agendar una cita en el pasado. Ajusta fecha y hora.",
		},
		{
			name: "bad duration",
			err:  &api.Error{Status: 400, Body: `{"message":"duracionMinutos must be less than 210"}`, Message: "duracionMinutos must be less than 210"},
			want: "Duración inválida. Usa un valor entre 5 y 210 minutos.",
		},
		{
			name: "missing billing mode on finish",
			err:  &api.Error{Status: 400, Body: `{"message":"cancelacionCobro is required"}`, Message: "cancelacionCobro is required"},
			want: "Para marcar como TERMINADA debes seleccionar el tipo de pago (Pago inmediato o Cuenta por cobrar).",
		},
		{
			name: "stale patient",
			err:  &api.Error{Status: 404, Body: `{"message":"paciente not found"}`, Message: "paciente not found"},
			want: "El paciente seleccionado no existe o fue eliminado.",
		},
		{
			name: "stale branch",
			err:  &api.Error{Status: 404, Body: `{"message":"sucursal no encontrada"}`, Message: "sucursal no encontrada"},
			want: "La sucursal seleccionada no existe o ya no está disponible.",
		},
		{
			name: "cannot cancel",
			err:  &api.Error{Status: 400, Body: `{"message":"no se puede cancelar la cita"}`, Message: "no se puede cancelar la cita"},
			want: "No se puede cancelar esta cita por su estado actual.",
		},
		{
			name: "invalid transition",
			err:  &api.Error{Status: 400, Body: `{"message":"invalid state transition"}`, Message: "invalid state transition"},
			want: "No se puede cambiar el estado de la cita en este momento.",
		},
		{
			name: "bill already closed",
			err:  &api.Error{Status: 400, Body: `{"message":"el cobro ya fue cerrado"}`, Message: "el cobro ya fue cerrado"},
			want: "El cobro de esta cita ya fue cerrado o pagado. Revisa el detalle en Caja.",
		},
		{
			name: "403 gets citas wording",
			err:  &api.Error{Status: 403, Body: `{}`},
			want: "No tienes permisos para gestionar citas. Revisa tu rol o inicia sesión con un usuario autorizado.",
		},
		{
			name: "field error with prettified label",
			err: &api.Error{Status: 422, Body: `{"errors":[]}`, Fields: []api.FieldError{
				{Field: "cancelacionCobro", Message: "es obligatorio"},
			}},
			want: "Tipo de pago: es obligatorio",
		},
		{
			name: "unmatched server message passes through",
			err:  &api.Error{Status: 400, Body: `{"message":"algo salió distinto"}`, Message: "algo salió distinto"},
			want: "algo salió distinto",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppointmentMessage(tt.err, ""))
		})
	}
}

func TestAppointmentMessageFallsBackToGeneric(t *testing.T) {
	// No pattern, no message, no plain text: generic status table applies.
	got := AppointmentMessage(&api.Error{Status: 503, Body: `{}`}, "")
	assert.Equal(t, "Servicio no disponible. Backend en mantenimiento o caído.", got)
}

func TestAppointmentMessageTransport(t *testing.T) {
	got := AppointmentMessage(errors.New("http request: timeout"), "")
	assert.Contains(t, got, "No se pudo conectar al servidor")
}

func TestPrettifyFieldUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "notas", prettifyField("notas"))
	assert.Equal(t, "Duración", prettifyField("duracionMinutos"))
}
