package notificationerrors

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Notificación no encontrada",
		http.StatusNotFound,
	)
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de notificación no válido",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de usuario no válido",
		http.StatusBadRequest,
	)
	ErrEmptyMessage = apperror.New(
		apperror.CodeMissingFields,
		"La notificación requiere título y mensaje",
		http.StatusBadRequest,
	)
)
