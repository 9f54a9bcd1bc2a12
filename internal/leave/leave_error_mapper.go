package leave

import (
	"errors"
	"strings"

	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const expedienteConstraint = "uq_solicitudes_expediente"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	if isExpedienteConflict(err) {
		return leaveerrors.ErrExpedienteConflict
	}

	return apperror.Storage(err)
}

// isExpedienteConflict recognises a unique violation on the expediente
// number for both postgres and sqlite.
func isExpedienteConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == expedienteConstraint
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, expedienteConstraint) {
		return true
	}
	return strings.Contains(errMsg, "unique constraint failed") && strings.Contains(errMsg, "expediente_number")
}
