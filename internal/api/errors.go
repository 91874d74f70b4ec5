package api

import (
	"encoding/json"
	"fmt"
)

// FieldError is one entry of a structured validation error body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a non-2xx response from the backend. Status 0 never occurs here;
// transport failures are returned as plain wrapped errors, not *Error.
type Error struct {
	Status  int
	Body    string
	Message string
	Code    string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// newError parses whatever the backend put in the body. Bodies come in four
// shapes: {errors:[{field,message}...]}, {message|msg|detail|error_description|
// error: "..."}, plain text, or an opaque blob.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: truncate(string(body), 300)}

	var parsed struct {
		Errors           []FieldError    `json:"errors"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Detail           string          `json:"detail"`
		ErrorDescription string          `json:"error_description"`
		Err              json.RawMessage `json:"error"`
		Code             string          `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return e
	}
	e.Fields = parsed.Errors
	e.Code = parsed.Code
	switch {
	case parsed.Message != "":
		e.Message = parsed.Message
	case parsed.Msg != "":
		e.Message = parsed.Msg
	case parsed.Detail != "":
		e.Message = parsed.Detail
	case parsed.ErrorDescription != "":
		e.Message = parsed.ErrorDescription
	case len(parsed.Err) > 0:
		// "error" may be a string or a nested object; only the string form
		// is a usable message.
		var s string
		if json.Unmarshal(parsed.Err, &s) == nil {
			e.Message = s
		}
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
