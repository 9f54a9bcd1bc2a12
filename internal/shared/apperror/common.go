package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Recurso no encontrado",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"No tiene permisos para acceder a este recurso",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"Ocurrió un error inesperado",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Se requiere autenticación",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"Los datos enviados no son válidos",
		http.StatusBadRequest,
	)
)

// RequiredField builds a MISSING_FIELDS error for a single field.
func RequiredField(field string) *AppError {
	return MissingFields(field)
}

// InvalidField builds an INVALID_INPUT error naming the offending field.
func InvalidField(field string) *AppError {
	return New(
		CodeInvalidInput,
		field+" no es válido",
		http.StatusBadRequest,
	).WithDetails(map[string]any{"field": field})
}

// MissingFields lists every absent field in both the message and the details.
func MissingFields(fields ...string) *AppError {
	msg := "Faltan campos obligatorios"
	if len(fields) > 0 {
		msg += ": " + joinFields(fields)
	}
	return New(CodeMissingFields, msg, http.StatusBadRequest).
		WithDetails(map[string]any{"fields": fields})
}

// Storage wraps a database or filesystem failure. The cause stays in the
// chain for logging but never reaches the client.
func Storage(err error) *AppError {
	return Wrap(err, CodeStorageError, "Error al acceder al almacenamiento", http.StatusInternalServerError)
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
