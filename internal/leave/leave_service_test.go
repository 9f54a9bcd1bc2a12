package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	memomock "github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo/mock"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	notificationmock "github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification/mock"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	countermock "github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter/mock"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var expedientePattern = regexp.MustCompile(`^EXP-\d{4}-\d{4}$`)

type fakeLeaveRepository struct {
	withTxFn         func(tx *sql.Tx) leave.Repository
	createFn         func(ctx context.Context, l *leave.LeaveRequest) error
	findAllFn        func(ctx context.Context, viewer visibility.Viewer, filter leave.ListFilter) ([]leave.LeaveRequest, error)
	findByIDFn       func(ctx context.Context, id string) (*leave.LeaveRequest, error)
	updateReviewFn   func(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error
	updateMemoURLFn  func(ctx context.Context, id, url string, at time.Time) error
	deleteFn         func(ctx context.Context, id string) error
	findOwnerNamesFn func(ctx context.Context, userIDs []string) (map[string]string, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context, viewer visibility.Viewer, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, viewer, filter)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) UpdateReview(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error {
	if f.updateReviewFn != nil {
		return f.updateReviewFn(ctx, l, fromStatus)
	}
	return nil
}

func (f *fakeLeaveRepository) UpdateMemoURL(ctx context.Context, id, url string, at time.Time) error {
	if f.updateMemoURLFn != nil {
		return f.updateMemoURLFn(ctx, id, url, at)
	}
	return nil
}

func (f *fakeLeaveRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeLeaveRepository) FindOwnerNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	if f.findOwnerNamesFn != nil {
		return f.findOwnerNamesFn(ctx, userIDs)
	}
	return map[string]string{}, nil
}

type fakeOutboxRepository struct {
	createErr error
	events    []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}
func (f *fakeOutboxRepository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type leaveServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service leave.Service
	repo    *fakeLeaveRepository
	counter *countermock.MockRepository
	memos   *memomock.MockGenerator
	sink    *notificationmock.MockSink
	outbox  *fakeOutboxRepository
}

var fixedNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func setupLeaveServiceTest(t *testing.T, opts ...leave.Option) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	deps := &leaveServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    &fakeLeaveRepository{},
		counter: countermock.NewMockRepository(ctrl),
		memos:   memomock.NewMockGenerator(ctrl),
		sink:    notificationmock.NewMockSink(ctrl),
		outbox:  &fakeOutboxRepository{},
	}
	deps.sink.EXPECT().WithTx(gomock.Any()).Return(deps.sink).AnyTimes()

	base := []leave.Option{
		leave.WithLogger(zap.NewNop()),
		leave.WithClock(func() time.Time { return fixedNow }),
		leave.WithOutbox(deps.outbox),
	}
	deps.service = leave.NewService(db, deps.repo, deps.counter, deps.memos, deps.sink, append(base, opts...)...)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest() leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		Type:        "licencia",
		Reason:      "Asuntos familiares",
		StartDate:   "2024-03-11",
		EndDate:     "2024-03-13",
		Phone:       "999888777",
		Email:       "ana@example.com",
		Position:    "Docente",
		Institution: "IE 123",
		PaidLeave:   true,
	}
}

func pendingLeave(id, owner uuid.UUID) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:               id,
		ExpedienteNumber: "EXP-2024-0007",
		UserID:           owner,
		Type:             "licencia",
		Reason:           "Salud",
		StartDate:        time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Email:            "ana@example.com",
		Position:         "Docente",
		Status:           leave.StatusPending,
		CreatedAt:        fixedNow.Add(-time.Hour),
		UpdatedAt:        fixedNow.Add(-time.Hour),
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("success assigns expediente and stays pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(1), nil)
		expectTx(t, deps.sqlMock, true)

		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			assert.Equal(t, "EXP-2024-0001", l.ExpedienteNumber)
			assert.Equal(t, uuid.MustParse(actorID), l.UserID)
			assert.Equal(t, leave.StatusPending, l.Status)
			assert.Nil(t, l.MemoURL)
			return nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, msg notification.Message) (notification.Notification, error) {
				assert.Equal(t, notification.KindRequestCreated, msg.Kind)
				assert.Equal(t, actorID, msg.UserID)
				assert.Contains(t, msg.Message, "EXP-2024-0001")
				return notification.Notification{}, nil
			})

		resp, err := deps.service.Create(ctx, actorID, validCreateRequest())

		assert.NoError(t, err)
		assert.Regexp(t, expedientePattern, resp.ExpedienteNumber)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, "2024-03-11", resp.StartDate)
		assert.Nil(t, resp.MemoURL)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("year follows configured time zone", func(t *testing.T) {
		lima := time.FixedZone("PET", -5*3600)
		deps := setupLeaveServiceTest(t,
			leave.WithClock(func() time.Time { return time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC) }),
			leave.WithLocation(lima),
		)
		defer deps.db.Close()

		deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(42), nil)
		expectTx(t, deps.sqlMock, true)
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(notification.Notification{}, nil)

		resp, err := deps.service.Create(ctx, actorID, validCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, "EXP-2024-0042", resp.ExpedienteNumber)
	})

	t.Run("retries on expediente conflict", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		gomock.InOrder(
			deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(3), nil),
			deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(4), nil),
		)
		expectTx(t, deps.sqlMock, false)
		expectTx(t, deps.sqlMock, true)

		calls := 0
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			calls++
			if calls == 1 {
				return errors.New(`ERROR: duplicate key value violates unique constraint "uq_solicitudes_expediente" (SQLSTATE 23505)`)
			}
			assert.Equal(t, "EXP-2024-0004", l.ExpedienteNumber)
			return nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(notification.Notification{}, nil)

		resp, err := deps.service.Create(ctx, actorID, validCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, "EXP-2024-0004", resp.ExpedienteNumber)
		assert.Equal(t, 2, calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative conflict retries exhausted", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(1), nil).Times(3)
		for i := 0; i < 3; i++ {
			expectTx(t, deps.sqlMock, false)
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			return errors.New("UNIQUE constraint failed: solicitudes.expediente_number")
		}

		_, err := deps.service.Create(ctx, actorID, validCreateRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrExpedienteConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative missing fields are listed", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Phone = ""
		req.Institution = "  "

		_, err := deps.service.Create(ctx, actorID, req)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeMissingFields, appErr.Code)
		assert.Equal(t, map[string]any{"fields": []string{"phone", "institution"}}, appErr.Details)
	})

	t.Run("negative invalid email", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Email = "not-an-email"

		_, err := deps.service.Create(ctx, actorID, req)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	})

	t.Run("negative reason too long for the memo", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Reason = strings.Repeat("ñ", memo.MaxReasonRunes+1)

		_, err := deps.service.Create(ctx, actorID, req)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
		assert.Equal(t, map[string]any{"field": "reason"}, appErr.Details)
	})

	t.Run("reason at the memo limit is accepted by validation", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.Reason = strings.Repeat("ñ", memo.MaxReasonRunes)
		req.StartDate = "2024-01-20"
		req.EndDate = "2024-01-10"

		_, err := deps.service.Create(ctx, actorID, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("negative start after end", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.StartDate = "2024-03-20"

		_, err := deps.service.Create(ctx, actorID, req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("negative bad date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		req := validCreateRequest()
		req.EndDate = "13/03/2024"

		_, err := deps.service.Create(ctx, actorID, req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("negative notification failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.counter.EXPECT().GetNextValue(gomock.Any(), "2024", "expediente").Return(int64(1), nil)
		expectTx(t, deps.sqlMock, false)
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(notification.Notification{}, errors.New("insert failed"))

		_, err := deps.service.Create(ctx, actorID, validCreateRequest())

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeStorageError, appErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_SetStatus(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()
	owner := uuid.New()

	t.Run("approve stores memo and links it", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		memoURL := "http://localhost:3000/pdf/solicitud_" + id.String() + ".pdf"
		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.repo.findOwnerNamesFn = func(ctx context.Context, ids []string) (map[string]string, error) {
			return map[string]string{owner.String(): "Ana Quispe"}, nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, requestID string, s memo.Snapshot) (string, error) {
				assert.Equal(t, "Ana Quispe", s.HolderName)
				assert.Equal(t, "EXP-2024-0007", s.ExpedienteNumber)
				return memoURL, nil
			})
		deps.repo.updateReviewFn = func(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error {
			assert.Equal(t, leave.StatusPending, fromStatus)
			assert.Equal(t, leave.StatusApproved, l.Status)
			assert.Equal(t, memoURL, *l.MemoURL)
			assert.Equal(t, adminID, l.ReviewedBy.String())
			return nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, msg notification.Message) (notification.Notification, error) {
				assert.Equal(t, notification.KindRequestStatusChanged, msg.Kind)
				assert.Equal(t, owner.String(), msg.UserID)
				assert.Equal(t, memoURL, msg.LinkURL)
				return notification.Notification{}, nil
			})

		resp, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: " Aprobada "})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.False(t, resp.MemoPending)
		assert.Equal(t, memoURL, *resp.MemoURL)
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("memo failure commits with memo pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).Return("", errors.New("disk full"))
		deps.repo.updateReviewFn = func(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error {
			assert.Nil(t, l.MemoURL)
			return nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, msg notification.Message) (notification.Notification, error) {
				assert.Empty(t, msg.LinkURL)
				assert.Contains(t, msg.Message, "se generará en breve")
				return notification.Notification{}, nil
			})

		resp, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "aprobada"})

		assert.NoError(t, err)
		assert.True(t, resp.MemoPending)
		assert.Len(t, resp.Warnings, 1)
		assert.Nil(t, resp.MemoURL)
		if assert.Len(t, deps.outbox.events, 1) {
			assert.Equal(t, events.MemoRenderRequestedType, deps.outbox.events[0].EventType)
			assert.Equal(t, id.String(), deps.outbox.events[0].AggregateID)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("memo is stored before the transaction opens", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, requestID string, s memo.Snapshot) (string, error) {
				// Begin is still an unmet expectation while the memo is written.
				assert.Error(t, deps.sqlMock.ExpectationsWereMet())
				return "http://x/pdf/solicitud_" + requestID + ".pdf", nil
			})
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(notification.Notification{}, nil)

		_, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "aprobada"})

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative begin failure discards new memo", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.sqlMock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).Return("http://x/pdf/a.pdf", nil)
		deps.memos.EXPECT().Remove(gomock.Any(), id.String()).Return(nil)

		_, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "aprobada"})

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeStorageError, appErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject with comments skips memo", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, msg notification.Message) (notification.Notification, error) {
				assert.Contains(t, msg.Message, "RECHAZADA")
				assert.Contains(t, msg.Message, "Falta sustento")
				return notification.Notification{}, nil
			})

		comments := "Falta sustento"
		resp, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "rechazada", Comments: &comments})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, comments, *resp.Comments)
	})

	t.Run("negative invalid status", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SetStatus(ctx, adminID, uuid.NewString(), leave.UpdateStatusRequest{Status: "cancelada"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})

	t.Run("negative terminal status cannot flip", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			l := pendingLeave(id, owner)
			l.Status = leave.StatusApproved
			return l, nil
		}

		_, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "rechazada"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.SetStatus(ctx, adminID, uuid.NewString(), leave.UpdateStatusRequest{Status: "rechazada"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent update discards new memo", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).Return("http://x/pdf/a.pdf", nil)
		deps.memos.EXPECT().Remove(gomock.Any(), id.String()).Return(nil)
		deps.repo.updateReviewFn = func(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error {
			return gorm.ErrRecordNotFound
		}

		_, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "aprobada"})

		assert.ErrorIs(t, err, leaveerrors.ErrConcurrentUpdate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("re-approval keeps existing memo on commit failure", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		existing := "http://x/pdf/solicitud_" + id.String() + ".pdf"
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			l := pendingLeave(id, owner)
			l.Status = leave.StatusApproved
			l.MemoURL = &existing
			return l, nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).Return(existing, nil)
		deps.memos.EXPECT().Remove(gomock.Any(), gomock.Any()).Times(0)
		deps.repo.updateReviewFn = func(ctx context.Context, l *leave.LeaveRequest, fromStatus string) error {
			assert.Equal(t, leave.StatusApproved, fromStatus)
			return nil
		}
		deps.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(notification.Notification{}, nil)

		_, err := deps.service.SetStatus(ctx, adminID, id.String(), leave.UpdateStatusRequest{Status: "aprobada"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("user filter ignored for non-admin and names attached", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context, viewer visibility.Viewer, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
			assert.Equal(t, owner.String(), viewer.UserID)
			assert.Empty(t, filter.UserID)
			assert.Equal(t, leave.StatusPending, filter.Status)
			return []leave.LeaveRequest{*pendingLeave(uuid.New(), owner), *pendingLeave(uuid.New(), owner)}, nil
		}
		deps.repo.findOwnerNamesFn = func(ctx context.Context, ids []string) (map[string]string, error) {
			assert.Equal(t, []string{owner.String()}, ids)
			return map[string]string{owner.String(): "Ana Quispe"}, nil
		}

		viewer := visibility.Viewer{UserID: owner.String(), Role: visibility.RoleUser}
		resp, err := deps.service.GetAll(ctx, viewer, leave.ListFilter{Status: "PENDIENTE", UserID: uuid.NewString()})

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "Ana Quispe", resp[0].UserName)
	})

	t.Run("negative invalid status filter", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetAll(ctx, visibility.Viewer{Role: visibility.RoleAdmin}, leave.ListFilter{Status: "x"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context, viewer visibility.Viewer, filter leave.ListFilter) ([]leave.LeaveRequest, error) {
			return nil, errors.New("db error")
		}

		resp, err := deps.service.GetAll(ctx, visibility.Viewer{Role: visibility.RoleAdmin}, leave.ListFilter{})

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()

	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()
	deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
		return pendingLeave(id, owner), nil
	}

	t.Run("owner can read", func(t *testing.T) {
		resp, err := deps.service.GetByID(ctx, visibility.Viewer{UserID: owner.String(), Role: "user"}, id.String())
		assert.NoError(t, err)
		assert.Equal(t, id.String(), resp.ID)
	})

	t.Run("admin can read", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, visibility.Viewer{UserID: uuid.NewString(), Role: "admin"}, id.String())
		assert.NoError(t, err)
	})

	t.Run("negative other user gets not found", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, visibility.Viewer{UserID: uuid.NewString(), Role: "user"}, id.String())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, visibility.Viewer{Role: "admin"}, "abc")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_RegenerateMemo(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("approved request gets memo url", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		reviewedAt := fixedNow.Add(-2 * time.Hour)
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			l := pendingLeave(id, owner)
			l.Status = leave.StatusApproved
			l.ReviewedAt = &reviewedAt
			return l, nil
		}
		deps.memos.EXPECT().Generate(gomock.Any(), id.String(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, requestID string, s memo.Snapshot) (string, error) {
				assert.True(t, reviewedAt.Equal(s.Date))
				return "http://x/pdf/solicitud_" + requestID + ".pdf", nil
			})
		var stored string
		deps.repo.updateMemoURLFn = func(ctx context.Context, target, url string, at time.Time) error {
			stored = url
			return nil
		}

		resp, err := deps.service.RegenerateMemo(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, stored, *resp.MemoURL)
	})

	t.Run("negative not approved", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(uuid.New(), owner), nil
		}

		_, err := deps.service.RegenerateMemo(ctx, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrMemoRequiresApproval)
	})
}

func TestLeaveService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success removes memo file", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		id := uuid.NewString()
		expectTx(t, deps.sqlMock, true)
		deps.repo.deleteFn = func(ctx context.Context, target string) error {
			assert.Equal(t, id, target)
			return nil
		}
		deps.memos.EXPECT().Remove(gomock.Any(), id).Return(nil)

		err := deps.service.Delete(ctx, id)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.deleteFn = func(ctx context.Context, target string) error {
			return gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, uuid.NewString())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_MemoPath(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	memoURL := "http://x/pdf/solicitud_" + id.String() + ".pdf"

	approved := func() *leave.LeaveRequest {
		l := pendingLeave(id, owner)
		l.Status = leave.StatusApproved
		l.MemoURL = &memoURL
		return l
	}

	t.Run("owner downloads existing file", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		file := filepath.Join(t.TempDir(), "solicitud.pdf")
		assert.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))
		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return approved(), nil
		}
		deps.memos.EXPECT().Path(id.String()).Return(file, nil)

		path, err := deps.service.MemoPath(ctx, visibility.Viewer{UserID: owner.String(), Role: "user"}, id.String())

		assert.NoError(t, err)
		assert.Equal(t, file, path)
	})

	t.Run("negative file missing on disk", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return approved(), nil
		}
		deps.memos.EXPECT().Path(id.String()).Return(filepath.Join(t.TempDir(), "missing.pdf"), nil)

		_, err := deps.service.MemoPath(ctx, visibility.Viewer{UserID: owner.String(), Role: "user"}, id.String())

		assert.ErrorIs(t, err, leaveerrors.ErrMemoNotAvailable)
	})

	t.Run("negative pending request has no memo", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, target string) (*leave.LeaveRequest, error) {
			return pendingLeave(id, owner), nil
		}

		_, err := deps.service.MemoPath(ctx, visibility.Viewer{Role: "admin"}, id.String())

		assert.ErrorIs(t, err, leaveerrors.ErrMemoNotAvailable)
	})
}
