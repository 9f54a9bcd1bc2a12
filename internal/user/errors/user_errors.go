package usererrors

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"Usuario no encontrado",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Ya existe un usuario con ese correo",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de usuario no válido",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Rol no válido, use user o admin",
		http.StatusBadRequest,
	)

	ErrInvalidContractType = apperror.New(
		apperror.CodeInvalidInput,
		"Tipo de contrato no válido",
		http.StatusBadRequest,
	)

	ErrUserInactive = apperror.New(
		apperror.CodeForbidden,
		"Usuario inactivo",
		http.StatusForbidden,
	)

	ErrSelfModification = apperror.New(
		apperror.CodeInvalidState,
		"No puede desactivar ni eliminar su propia cuenta",
		http.StatusConflict,
	)
)
