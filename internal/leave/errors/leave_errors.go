package leaveerrors

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
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Formato de fecha no válido, se espera AAAA-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"La fecha de inicio debe ser anterior o igual a la fecha de fin",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Estado no válido, use pendiente, aprobada o rechazada",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Solicitud no encontrada",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"La solicitud ya fue resuelta y no puede cambiar a ese estado",
		http.StatusConflict,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"La solicitud fue modificada por otro usuario, vuelva a intentarlo",
		http.StatusConflict,
	)
	ErrExpedienteConflict = apperror.New(
		apperror.CodeConflict,
		"No se pudo asignar un número de expediente, vuelva a intentarlo",
		http.StatusConflict,
	)
	ErrMemoNotAvailable = apperror.New(
		apperror.CodeNotFound,
		"El memorándum no está disponible",
		http.StatusNotFound,
	)
	ErrMemoRequiresApproval = apperror.New(
		apperror.CodeInvalidState,
		"Solo las solicitudes aprobadas tienen memorándum",
		http.StatusConflict,
	)
)
