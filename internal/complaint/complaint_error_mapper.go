package complaint

import (
	"errors"
	"strings"

	complainterrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/complaint/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const requestUserConstraint = "uq_reclamos_request_user"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return complainterrors.ErrComplaintNotFound
	}

	if isDuplicateComplaint(err) {
		return complainterrors.ErrDuplicateComplaint
	}

	return apperror.Storage(err)
}

func isDuplicateComplaint(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == requestUserConstraint
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, requestUserConstraint) {
		return true
	}
	return strings.Contains(errMsg, "unique constraint failed") && strings.Contains(errMsg, "reclamos.request_id")
}
