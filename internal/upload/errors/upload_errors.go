package uploaderrors

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
)

var (
	ErrMissingFile = apperror.MissingFields("file")

	ErrFileTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"El archivo supera el tamaño máximo permitido",
		http.StatusRequestEntityTooLarge,
	)

	ErrUnsupportedType = apperror.New(
		apperror.CodeInvalidInput,
		"Tipo de archivo no permitido",
		http.StatusBadRequest,
	)
)
