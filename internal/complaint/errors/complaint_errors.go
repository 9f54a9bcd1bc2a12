package complainterrors

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de usuario no válido",
		http.StatusBadRequest,
	)
	ErrComplaintNotFound = apperror.New(
		apperror.CodeNotFound,
		"Reclamo no encontrado",
		http.StatusNotFound,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Estado no válido, use aprobado o rechazado",
		http.StatusBadRequest,
	)
	ErrNotEligible = apperror.New(
		apperror.CodeNotEligible,
		"La solicitud no admite reclamos en su estado actual",
		http.StatusUnprocessableEntity,
	)
	ErrDuplicateComplaint = apperror.New(
		apperror.CodeDuplicateComplaint,
		"Ya existe un reclamo para esta solicitud",
		http.StatusConflict,
	)
	ErrAlreadyResolved = apperror.New(
		apperror.CodeInvalidState,
		"El reclamo ya fue resuelto",
		http.StatusConflict,
	)
	ErrRequestChanged = apperror.New(
		apperror.CodeConflict,
		"La solicitud fue modificada mientras se resolvía el reclamo, vuelva a intentarlo",
		http.StatusConflict,
	)
)
