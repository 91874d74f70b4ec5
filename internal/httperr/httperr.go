// Package httperr turns backend failures into user-facing Spanish sentences.
//
// The backend has no stable machine-readable error codes, so part of this
// package infers business conditions by matching normalized lowercased error
// text. That is inherently fragile: a reworded backend message silently
// downgrades a tailored sentence to the generic one. All string sniffing is
// confined to this package.
package httperr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/absolutefisio/clinic-admin/internal/api"
)

// Connectivity message used when no HTTP response was produced at all.
const noResponseMsg = "No se pudo conectar al servidor. Verifica que el backend esté encendido y que CORS esté configurado."

// Message translates any backend error into a sentence fit for a toast.
// Precedence: transport failure, plain-text body, structured field errors,
// duplicate detection, server-supplied message, status table, fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return noResponseMsg
	}

	body := strings.TrimSpace(apiErr.Body)
	if plain, ok := plainTextBody(body); ok {
		if strings.Contains(strings.ToLower(plain), "<html") {
			return byStatus(apiErr.Status, fallback)
		}
		return plain
	}

	if msg := firstFieldMessage(apiErr.Fields, nil); msg != "" {
		return msg
	}

	if apiErr.Status == 409 {
		return "Ya existe un registro similar."
	}
	if (apiErr.Status == 500 || apiErr.Status == 400) && looksLikeDuplicate(strings.ToLower(body)) {
		return "Ya existe un servicio similar."
	}

	if msg := strings.TrimSpace(apiErr.Message); msg != "" {
		return msg
	}
	return byStatus(apiErr.Status, fallback)
}

func byStatus(status int, fallback string) string {
	switch status {
	case 400:
		return "Solicitud inválida. Revisa los datos enviados."
	case 401:
		return "Tu sesión expiró o no estás autenticado. Inicia sesión nuevamente."
	case 403:
		return "No tienes permisos para realizar esta acción."
	case 404:
		return "No se encontró el recurso (ruta incorrecta o endpoint no existe)."
	case 405:
		return "Método no permitido (revisa GET/POST/PUT y la ruta)."
	case 408:
		return "Tiempo de espera agotado. Intenta de nuevo."
	case 409:
		return "Conflicto: el registro ya existe o hay datos duplicados."
	case 413:
		return "El contenido enviado es demasiado grande."
	case 415:
		return "Formato no soportado (Content-Type incorrecto)."
	case 422:
		return "Datos inválidos. Revisa campos requeridos y formato."
	case 429:
		return "Demasiadas solicitudes. Intenta de nuevo en unos segundos."
	case 500:
		return "Error interno del servidor. Revisa el backend."
	case 502:
		return "Error de gateway/proxy. Backend no respondió correctamente."
	case 503:
		return "Servicio no disponible. Backend en mantenimiento o caído."
	case 504:
		return "El servidor tardó demasiado en responder."
	default:
		if fallback != "" {
			return fallback
		}
		return fmt.Sprintf("Error inesperado (%d)", status)
	}
}

// plainTextBody reports whether the body is usable prose rather than JSON.
func plainTextBody(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return "", false
	}
	return body, true
}

// firstFieldMessage renders the first structured validation error, running
// the field name through prettify when one is supplied.
func firstFieldMessage(fields []api.FieldError, prettify func(string) string) string {
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if first.Message == "" {
		return ""
	}
	field := strings.TrimSpace(first.Field)
	if prettify != nil {
		field = prettify(field)
	}
	if field == "" {
		return first.Message
	}
	return field + ": " + first.Message
}

func looksLikeDuplicate(raw string) bool {
	return strings.Contains(raw, "llave duplicada") ||
		strings.Contains(raw, "duplicate key") ||
		strings.Contains(raw, "unique") ||
		strings.Contains(raw, "violates unique constraint") ||
		strings.Contains(raw, "violates constraint") ||
		(strings.Contains(raw, "constraint") && strings.Contains(raw, "unique"))
}

// rawLower builds the normalized haystack the pattern detectors match on:
// status, code, message and body joined and lowercased.
func rawLower(apiErr *api.Error) string {
	parts := []string{
		strconv.Itoa(apiErr.Status),
		apiErr.Code,
		apiErr.Message,
		apiErr.Body,
	}
	return strings.ToLower(strings.Join(parts, " "))
}
