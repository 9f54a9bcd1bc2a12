package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/contextutil"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusPending  = "pendiente"
	StatusApproved = "aprobada"
	StatusRejected = "rechazada"

	expedienteCounter = "expediente"
	maxCreateAttempts = 3
	dateLayout        = "2006-01-02"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]LeaveResponse, error)
	GetByID(ctx context.Context, viewer visibility.Viewer, id string) (LeaveResponse, error)
	SetStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (StatusChangeResponse, error)
	RegenerateMemo(ctx context.Context, id string) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	MemoPath(ctx context.Context, viewer visibility.Viewer, id string) (string, error)
}

type Option func(*service)

func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l.Named("leave.service")
		}
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used to pick the expediente year.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithOutbox enables memo retries through memo.render.requested events.
func WithOutbox(outbox kafka.OutboxRepository) Option {
	return func(s *service) {
		s.outbox = outbox
	}
}

type service struct {
	db       *sql.DB
	repo     Repository
	counter  counter.Repository
	memos    memo.Generator
	notifier notification.Sink
	outbox   kafka.OutboxRepository
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	memos memo.Generator,
	notifier notification.Sink,
	opts ...Option,
) Service {
	s := &service{
		db:       db,
		repo:     repo,
		counter:  counter,
		memos:    memos,
		notifier: notifier,
		validate: validator.New(),
		now:      time.Now,
		loc:      time.UTC,
		logger:   zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	startDate, endDate, err := s.validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	year := s.now().In(s.loc).Year()
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		resp, err := s.create(ctx, actorUUID, req, year, startDate, endDate)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, leaveerrors.ErrExpedienteConflict) {
			return LeaveResponse{}, err
		}
		s.logger.Warn("create leave expediente conflict, retrying",
			zap.String("request_id", rid),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Error("create leave expediente retries exhausted", zap.String("request_id", rid))
	return LeaveResponse{}, leaveerrors.ErrExpedienteConflict
}

func (s *service) create(
	ctx context.Context,
	actorID uuid.UUID,
	req CreateLeaveRequest,
	year int,
	startDate, endDate time.Time,
) (LeaveResponse, error) {
	seq, err := s.counter.GetNextValue(ctx, strconv.Itoa(year), expedienteCounter)
	if err != nil {
		s.logger.Error("create leave next expediente failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := s.now().UTC()
	l := &LeaveRequest{
		ID:               uuid.New(),
		ExpedienteNumber: FormatExpediente(year, seq),
		UserID:           actorID,
		Type:             strings.TrimSpace(req.Type),
		Reason:           strings.TrimSpace(req.Reason),
		Description:      strings.TrimSpace(req.Description),
		StartDate:        startDate,
		EndDate:          endDate,
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		Position:         strings.TrimSpace(req.Position),
		Institution:      strings.TrimSpace(req.Institution),
		PaidLeave:        req.PaidLeave,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if v := strings.TrimSpace(req.AttachmentURL); v != "" {
		l.AttachmentURL = &v
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.String("expediente", l.ExpedienteNumber), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if _, err := s.notifier.WithTx(tx).Emit(ctx, notification.RequestCreated(actorID.String(), l.ID.String(), l.ExpedienteNumber)); err != nil {
		s.logger.Error("create leave notification failed", zap.String("leave_id", l.ID.String()), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("expediente", l.ExpedienteNumber),
		zap.String("user_id", actorID.String()),
	)
	return mapToResponse(*l, ""), nil
}

func (s *service) GetAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]LeaveResponse, error) {
	if filter.Status != "" {
		filter.Status = normalizeStatus(filter.Status)
		if !isValidStatus(filter.Status) {
			return nil, leaveerrors.ErrInvalidStatus
		}
	}
	if !viewer.IsAdmin() {
		filter.UserID = ""
	}

	list, err := s.repo.FindAll(ctx, viewer, filter)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	ids := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, l := range list {
		id := l.UserID.String()
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	names, err := s.repo.FindOwnerNames(ctx, ids)
	if err != nil {
		s.logger.Warn("list leaves owner names failed", zap.Error(err))
		names = map[string]string{}
	}

	resp := make([]LeaveResponse, len(list))
	for i, l := range list {
		resp[i] = mapToResponse(l, names[l.UserID.String()])
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, viewer visibility.Viewer, id string) (LeaveResponse, error) {
	l, err := s.findVisible(ctx, viewer, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l, s.ownerName(ctx, s.repo, l.UserID.String())), nil
}

func (s *service) SetStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (StatusChangeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	target := normalizeStatus(req.Status)
	s.logger.Debug("set leave status requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", target),
	)

	if !isValidStatus(target) {
		return StatusChangeResponse{}, leaveerrors.ErrInvalidStatus
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return StatusChangeResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return StatusChangeResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return StatusChangeResponse{}, mapRepositoryError(err)
	}

	fromStatus := l.Status
	if !isAllowedStatusTransition(fromStatus, target) {
		s.logger.Warn("set leave status invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", fromStatus),
			zap.String("to_status", target),
		)
		return StatusChangeResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := s.now().UTC()
	l.Status = target
	if req.Comments != nil {
		c := strings.TrimSpace(*req.Comments)
		l.Comments = &c
	}
	l.ReviewedBy = &actorUUID
	l.ReviewedAt = &now
	l.UpdatedAt = now

	// The memo is written before the transaction opens; UpdateReview only
	// applies while the row still holds fromStatus.
	out := StatusChangeResponse{}
	memoURL := ""
	createdMemo := false
	var memoErr error
	if target == StatusApproved {
		hadMemo := l.MemoURL != nil
		url, err := s.renderMemo(ctx, *l, now)
		if err != nil {
			memoErr = err
		} else {
			l.MemoURL = &url
			memoURL = url
			createdMemo = !hadMemo
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("set leave status begin tx failed", zap.Error(err))
		s.discardMemo(ctx, id, createdMemo)
		return StatusChangeResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if memoErr != nil {
		if err := QueueMemoRender(ctx, s.outbox, tx, id, memoErr.Error(), actorID, now); err != nil {
			s.logger.Error("queue memo render failed", zap.String("leave_id", id), zap.Error(err))
			return StatusChangeResponse{}, apperror.Storage(err)
		}
		out.MemoPending = true
		out.Warnings = append(out.Warnings, memoPendingWarning)
	}

	if err := qtx.UpdateReview(ctx, l, fromStatus); err != nil {
		s.logger.Error("set leave status persist failed", zap.String("leave_id", id), zap.Error(err))
		s.discardMemo(ctx, id, createdMemo)
		if errors.Is(mapRepositoryError(err), leaveerrors.ErrLeaveNotFound) {
			return StatusChangeResponse{}, leaveerrors.ErrConcurrentUpdate
		}
		return StatusChangeResponse{}, mapRepositoryError(err)
	}

	comments := ""
	if l.Comments != nil {
		comments = *l.Comments
	}
	msg := notification.RequestStatusChanged(l.UserID.String(), id, l.ExpedienteNumber, target, comments, memoURL)
	if _, err := s.notifier.WithTx(tx).Emit(ctx, msg); err != nil {
		s.logger.Error("set leave status notification failed", zap.String("leave_id", id), zap.Error(err))
		s.discardMemo(ctx, id, createdMemo)
		return StatusChangeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("set leave status commit failed", zap.String("leave_id", id), zap.Error(err))
		s.discardMemo(ctx, id, createdMemo)
		return StatusChangeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("set leave status success",
		zap.String("leave_id", id),
		zap.String("from_status", fromStatus),
		zap.String("to_status", target),
		zap.Bool("memo_pending", out.MemoPending),
	)

	out.LeaveResponse = mapToResponse(*l, "")
	return out, nil
}

// renderMemo builds and stores the memo outside any transaction. A failure is
// queued for retry by the caller instead of failing the transition.
func (s *service) renderMemo(ctx context.Context, l LeaveRequest, now time.Time) (string, error) {
	snap := MemoSnapshot(l, s.ownerName(ctx, s.repo, l.UserID.String()), now.In(s.loc))
	url, err := s.memos.Generate(ctx, l.ID.String(), snap)
	if err != nil {
		s.logger.Warn("memo generation failed, queueing retry",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return "", err
	}
	return url, nil
}

func (s *service) discardMemo(ctx context.Context, id string, created bool) {
	if !created {
		return
	}
	if err := s.memos.Remove(ctx, id); err != nil {
		s.logger.Warn("discard memo failed", zap.String("leave_id", id), zap.Error(err))
	}
}

func (s *service) RegenerateMemo(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.Status != StatusApproved {
		s.logger.Warn("regenerate memo skipped, request not approved",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrMemoRequiresApproval
	}

	now := s.now().UTC()
	issuedAt := now
	if l.ReviewedAt != nil {
		issuedAt = *l.ReviewedAt
	}
	name := s.ownerName(ctx, s.repo, l.UserID.String())
	url, err := s.memos.Generate(ctx, id, MemoSnapshot(*l, name, issuedAt.In(s.loc)))
	if err != nil {
		return LeaveResponse{}, apperror.Storage(err)
	}

	if err := s.repo.UpdateMemoURL(ctx, id, url, now); err != nil {
		s.logger.Error("regenerate memo persist url failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	l.MemoURL = &url
	l.UpdatedAt = now

	s.logger.Info("memo regenerated", zap.String("leave_id", id), zap.String("memo_url", url))
	return mapToResponse(*l, name), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrLeaveNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage(err)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.memos.Remove(ctx, id); err != nil {
		s.logger.Warn("delete leave memo cleanup failed", zap.String("leave_id", id), zap.Error(err))
	}
	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) MemoPath(ctx context.Context, viewer visibility.Viewer, id string) (string, error) {
	l, err := s.findVisible(ctx, viewer, id)
	if err != nil {
		return "", err
	}
	if l.Status != StatusApproved || l.MemoURL == nil {
		return "", leaveerrors.ErrMemoNotAvailable
	}

	path, err := s.memos.Path(id)
	if err != nil {
		return "", leaveerrors.ErrMemoNotAvailable
	}
	if _, err := os.Stat(path); err != nil {
		s.logger.Warn("memo file missing", zap.String("leave_id", id), zap.String("path", path))
		return "", leaveerrors.ErrMemoNotAvailable
	}
	return path, nil
}

func (s *service) findVisible(ctx context.Context, viewer visibility.Viewer, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !viewer.CanSee(l.UserID.String()) {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	return l, nil
}

func (s *service) ownerName(ctx context.Context, repo Repository, userID string) string {
	names, err := repo.FindOwnerNames(ctx, []string{userID})
	if err != nil {
		s.logger.Warn("owner name lookup failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return names[userID]
}

func (s *service) validateCreateRequest(req CreateLeaveRequest) (time.Time, time.Time, error) {
	required := []struct {
		name  string
		value string
	}{
		{"type", req.Type},
		{"reason", req.Reason},
		{"start_date", req.StartDate},
		{"end_date", req.EndDate},
		{"phone", req.Phone},
		{"email", req.Email},
		{"position", req.Position},
		{"institution", req.Institution},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return time.Time{}, time.Time{}, apperror.MissingFields(missing...)
	}

	if err := s.validate.Var(strings.TrimSpace(req.Email), "email"); err != nil {
		return time.Time{}, time.Time{}, apperror.InvalidField("email")
	}
	if err := s.validate.Var(strings.TrimSpace(req.Reason), fmt.Sprintf("max=%d", memo.MaxReasonRunes)); err != nil {
		return time.Time{}, time.Time{}, apperror.InvalidField("reason")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

// FormatExpediente renders EXP-{year}-{seq:04d}.
func FormatExpediente(year int, seq int64) string {
	return fmt.Sprintf("EXP-%d-%04d", year, seq)
}

// isAllowedStatusTransition lets a pending request move anywhere and lets a
// resolved request be re-applied with the same status (re-approval rebuilds
// the memo). Flipping a resolved request goes through complaints only.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	current := normalizeStatus(currentStatus)
	if current == StatusPending {
		return true
	}
	return current == targetStatus
}

func isValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest, userName string) LeaveResponse {
	resp := LeaveResponse{
		ID:               l.ID.String(),
		ExpedienteNumber: l.ExpedienteNumber,
		UserID:           l.UserID.String(),
		UserName:         userName,
		Type:             l.Type,
		Reason:           l.Reason,
		Description:      l.Description,
		StartDate:        l.StartDate.Format(dateLayout),
		EndDate:          l.EndDate.Format(dateLayout),
		Phone:            l.Phone,
		Email:            l.Email,
		Position:         l.Position,
		Institution:      l.Institution,
		PaidLeave:        l.PaidLeave,
		Status:           l.Status,
		Comments:         l.Comments,
		AttachmentURL:    l.AttachmentURL,
		MemoURL:          l.MemoURL,
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        l.UpdatedAt.Format(time.RFC3339),
	}
	if l.ReviewedBy != nil {
		v := l.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}
