package contracttypeerrors

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
)

var (
	ErrContractTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Tipo de contrato no encontrado",
		http.StatusNotFound,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"Ya existe un tipo de contrato con ese nombre",
		http.StatusConflict,
	)
	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"ID de tipo de contrato no válido",
		http.StatusBadRequest,
	)
)
