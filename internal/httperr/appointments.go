package httperr

import (
	"errors"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

// DefaultAppointmentFallback is used when the caller has no better default.
const DefaultAppointmentFallback = "No se pudo completar la operación de Citas."

// AppointmentMessage layers appointment-specific pattern matching on top of
// the generic translator. Known conditions (overlap, past date, bad duration,
// missing billing mode, stale foreign keys, illegal transitions, closed bill)
// get a tailored sentence; everything else falls through to Message.
func AppointmentMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultAppointmentFallback
	}
	if err == nil {
		return fallback
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return noResponseMsg
	}

	body := strings.TrimSpace(apiErr.Body)
	plainText := ""
	if plain, ok := plainTextBody(body); ok {
		if strings.Contains(strings.ToLower(plain), "<html") {
			return byStatusAppointments(apiErr.Status, fallback)
		}
		plainText = plain
	}

	if msg := firstFieldMessage(apiErr.Fields, prettifyField); msg != "" {
		return msg
	}

	raw := rawLower(apiErr)

	switch {
	case apiErr.Status == 409 || looksLikeOverlap(raw):
		return "Ese horario ya está ocupado. Elige otra hora, duración o especialista."
	case looksLikePastDate(raw):
		return "No puedes agendar una cita en el pasado. Ajusta fecha y hora."
	case looksLikeBadDuration(raw):
		return "Duración inválida. Usa un valor entre 5 y 210 minutos."
	case looksLikeMissingBillingMode(raw):
		return "Para marcar como TERMINADA debes seleccionar el tipo de pago (Pago inmediato o Cuenta por cobrar)."
	case looksLikeNotFound(raw, "paciente"):
		return "El paciente seleccionado no existe o fue eliminado."
	case looksLikeNotFound(raw, "servicio"):
		return "El servicio seleccionado no existe o fue eliminado."
	case looksLikeNotFound(raw, "sucursal"):
		return "La sucursal seleccionada no existe o ya no está disponible."
	case looksLikeNotFound(raw, "especialista"):
		return "El especialista seleccionado no existe o ya no está disponible."
	case looksLikeCannotCancel(raw):
		return "No se puede cancelar esta cita por su estado actual."
	case looksLikeInvalidStatusChange(raw):
		return "No se puede cambiar el estado de la cita en este momento."
	case looksLikeBillClosed(raw):
		return "El cobro de esta cita ya fue cerrado o pagado. Revisa el detalle en Caja."
	case apiErr.Status == 403:
		return "No tienes permisos para gestionar citas. Revisa tu rol o inicia sesión con un usuario autorizado."
	}

	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}
	if plainText != "" {
		return plainText
	}
	return Message(err, fallback)
}

func byStatusAppointments(status int, fallback string) string {
	switch status {
	case 400:
		return "Solicitud inválida. Revisa los datos de la cita."
	case 401:
		return "Tu sesión expiró o no estás autenticado. Inicia sesión nuevamente."
	case 403:
		return "No tienes permisos para gestionar citas."
	case 404:
		return "No se encontró el recurso de citas (endpoint/ruta incorrecta)."
	case 409:
		return "Conflicto: ya existe una cita en ese horario o hay un choque de agenda."
	case 422:
		return "Datos inválidos. Revisa campos requeridos y formato."
	case 500:
		return "Error interno del servidor en Citas. Revisa el backend."
	default:
		return fallback
	}
}

// prettifyField maps backend field names to the labels shown on the form.
func prettifyField(field string) string {
	switch field {
	case "idSucursal", "id_sucursal":
		return "Sucursal"
	case "idPaciente", "id_paciente":
		return "Paciente"
	case "idServicio", "id_servicio":
		return "Servicio"
	case "idEspecialista", "id_especialista":
		return "Especialista"
	case "fechaInicio", "fecha_inicio":
		return "Fecha/Hora"
	case "fecha":
		return "Fecha"
	case "hora":
		return "Hora"
	case "duracionMinutos", "duracion_minutos":
		return "Duración"
	case "estado":
		return "Estado"
	case "canal":
		return "Canal"
	case "cancelacionCobro", "cancelacion_cobro":
		return "Tipo de pago"
	default:
		return field
	}
}

func looksLikeOverlap(raw string) bool {
	return strings.Contains(raw, "solap") ||
		strings.Contains(raw, "overlap") ||
		strings.Contains(raw, "horario ocupado") ||
		strings.Contains(raw, "agenda ocupada") ||
		strings.Contains(raw, "conflicto de horario") ||
		strings.Contains(raw, "already booked") ||
		(strings.Contains(raw, "time slot") && strings.Contains(raw, "busy")) ||
		strings.Contains(raw, "cita en ese horario")
}

func looksLikePastDate(raw string) bool {
	return strings.Contains(raw, "en el pasado") ||
		strings.Contains(raw, "fecha en el pasado") ||
		strings.Contains(raw, "in the past") ||
		strings.Contains(raw, "must be after") ||
		strings.Contains(raw, "before now") ||
		(strings.Contains(raw, "fecha_inicio") && strings.Contains(raw, "past"))
}

func looksLikeBadDuration(raw string) bool {
	return (strings.Contains(raw, "duracion") && (strings.Contains(raw, "max") || strings.Contains(raw, "min") || strings.Contains(raw, "invalid"))) ||
		(strings.Contains(raw, "duration") && (strings.Contains(raw, "max") || strings.Contains(raw, "min") || strings.Contains(raw, "invalid"))) ||
		(strings.Contains(raw, "duracionminutos") && (strings.Contains(raw, "must be") || strings.Contains(raw, "greater") || strings.Contains(raw, "less")))
}

func looksLikeMissingBillingMode(raw string) bool {
	return (strings.Contains(raw, "cancelacioncobro") && (strings.Contains(raw, "required") || strings.Contains(raw, "obligatorio") || strings.Contains(raw, "null"))) ||
		(strings.Contains(raw, "tipo de pago") && (strings.Contains(raw, "requerido") || strings.Contains(raw, "obligatorio"))) ||
		(strings.Contains(raw, "terminada") && strings.Contains(raw, "pago") && (strings.Contains(raw, "required") || strings.Contains(raw, "obligatorio")))
}

func looksLikeNotFound(raw, entity string) bool {
	return strings.Contains(raw, entity) &&
		(strings.Contains(raw, "not found") ||
			strings.Contains(raw, "no encontrado") ||
			strings.Contains(raw, "does not exist"))
}

func looksLikeCannotCancel(raw string) bool {
	return strings.Contains(raw, "no se puede cancelar") ||
		(strings.Contains(raw, "cancel") && strings.Contains(raw, "not allowed")) ||
		(strings.Contains(raw, "cancelar") && strings.Contains(raw, "estado"))
}

func looksLikeInvalidStatusChange(raw string) bool {
	return (strings.Contains(raw, "cambiar estado") && (strings.Contains(raw, "no permitido") || strings.Contains(raw, "not allowed"))) ||
		strings.Contains(raw, "invalid state") ||
		(strings.Contains(raw, "transicion") && strings.Contains(raw, "estado"))
}

func looksLikeBillClosed(raw string) bool {
	return (strings.Contains(raw, "cobro") && (strings.Contains(raw, "cerrado") || strings.Contains(raw, "closed") || strings.Contains(raw, "finalizado"))) ||
		strings.Contains(raw, "ya pagado") ||
		strings.Contains(raw, "already paid")
}
