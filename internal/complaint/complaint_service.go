package complaint

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	complainterrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/complaint/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/contextutil"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pendiente"
	StatusApproved = "aprobado"
	StatusRejected = "rechazado"

	memoPendingWarning = "El memorándum no pudo generarse y se reintentará automáticamente"
)

type Service interface {
	Create(ctx context.Context, actorID string, req CreateComplaintRequest) (ComplaintResponse, error)
	CheckEligibility(ctx context.Context, actorID, requestID string) (EligibilityResponse, error)
	GetAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]ComplaintResponse, error)
	GetByID(ctx context.Context, viewer visibility.Viewer, id string) (ComplaintResponse, error)
	Resolve(ctx context.Context, actorID, id string, req ResolveComplaintRequest) (ResolveResponse, error)
}

type Option func(*service)

func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l.Named("complaint.service")
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used for the memo date on cascaded approvals.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithOutbox(outbox kafka.OutboxRepository) Option {
	return func(s *service) {
		s.outbox = outbox
	}
}

type service struct {
	db       *sql.DB
	repo     Repository
	leaves   leave.Repository
	memos    memo.Generator
	notifier notification.Sink
	outbox   kafka.OutboxRepository
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	leaves leave.Repository,
	memos memo.Generator,
	notifier notification.Sink,
	opts ...Option,
) Service {
	s := &service{
		db:       db,
		repo:     repo,
		leaves:   leaves,
		memos:    memos,
		notifier: notifier,
		now:      time.Now,
		loc:      time.UTC,
		logger:   zap.L().Named("complaint.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, actorID string, req CreateComplaintRequest) (ComplaintResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create complaint requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ComplaintResponse{}, complainterrors.ErrInvalidActorID
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ComplaintResponse{}, apperror.MissingFields("message")
	}

	c := &Complaint{
		ID:      uuid.New(),
		UserID:  actorUUID,
		Message: message,
		Status:  StatusPending,
	}
	if v := strings.TrimSpace(req.AttachmentURL); v != "" {
		c.AttachmentURL = &v
	}

	expediente := ""
	if req.RequestID != nil && strings.TrimSpace(*req.RequestID) != "" {
		l, err := s.eligibleRequest(ctx, actorID, strings.TrimSpace(*req.RequestID))
		if err != nil {
			s.logger.Warn("create complaint rejected",
				zap.String("request_id", rid),
				zap.String("actor_id", actorID),
				zap.Error(err),
			)
			return ComplaintResponse{}, err
		}
		c.RequestID = &l.ID
		expediente = l.ExpedienteNumber
	}

	now := s.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create complaint begin tx failed", zap.Error(err))
		return ComplaintResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, c); err != nil {
		mapped := mapRepositoryError(err)
		if !errors.Is(mapped, complainterrors.ErrDuplicateComplaint) {
			s.logger.Error("create complaint persist failed", zap.Error(err))
		}
		return ComplaintResponse{}, mapped
	}

	if _, err := s.notifier.WithTx(tx).Emit(ctx, notification.ComplaintFiled(actorID, c.ID.String(), expediente)); err != nil {
		s.logger.Error("create complaint notification failed", zap.String("complaint_id", c.ID.String()), zap.Error(err))
		return ComplaintResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create complaint commit failed", zap.Error(err))
		return ComplaintResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create complaint success",
		zap.String("complaint_id", c.ID.String()),
		zap.String("expediente", expediente),
		zap.String("user_id", actorID),
	)
	return mapToResponse(*c), nil
}

// eligibleRequest loads the request a complaint targets and applies the
// ownership, eligibility and duplicate rules.
func (s *service) eligibleRequest(ctx context.Context, actorID, requestID string) (*leave.LeaveRequest, error) {
	l, err := s.findOwnRequest(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}

	if ok, reason := Eligibility(l.Status, l.CreatedAt, s.now()); !ok {
		return nil, complainterrors.ErrNotEligible.WithDetails(map[string]any{"reason": reason})
	}

	exists, err := s.repo.ExistsForRequest(ctx, requestID, actorID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if exists {
		return nil, complainterrors.ErrDuplicateComplaint
	}
	return l, nil
}

func (s *service) findOwnRequest(ctx context.Context, actorID, requestID string) (*leave.LeaveRequest, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	l, err := s.leaves.FindByID(ctx, requestID)
	if err != nil {
		return nil, mapLeaveError(err)
	}
	if l.UserID.String() != actorID {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	return l, nil
}

func (s *service) CheckEligibility(ctx context.Context, actorID, requestID string) (EligibilityResponse, error) {
	l, err := s.findOwnRequest(ctx, actorID, requestID)
	if err != nil {
		return EligibilityResponse{}, err
	}

	if ok, reason := Eligibility(l.Status, l.CreatedAt, s.now()); !ok {
		return EligibilityResponse{Eligible: false, Reason: reason}, nil
	}

	exists, err := s.repo.ExistsForRequest(ctx, requestID, actorID)
	if err != nil {
		return EligibilityResponse{}, mapRepositoryError(err)
	}
	if exists {
		return EligibilityResponse{Eligible: false, Reason: reasonDuplicate}, nil
	}
	return EligibilityResponse{Eligible: true}, nil
}

func (s *service) GetAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]ComplaintResponse, error) {
	if filter.Status != "" {
		filter.Status = normalizeStatus(filter.Status)
		if filter.Status != StatusPending && !isValidResolution(filter.Status) {
			return nil, complainterrors.ErrInvalidStatus
		}
	}

	list, err := s.repo.FindAll(ctx, viewer, filter)
	if err != nil {
		s.logger.Error("list complaints failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	resp := make([]ComplaintResponse, len(list))
	for i, c := range list {
		resp[i] = mapToResponse(c)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, viewer visibility.Viewer, id string) (ComplaintResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ComplaintResponse{}, complainterrors.ErrComplaintNotFound
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ComplaintResponse{}, mapRepositoryError(err)
	}
	if !viewer.CanSee(c.UserID.String()) {
		return ComplaintResponse{}, complainterrors.ErrComplaintNotFound
	}
	return mapToResponse(*c), nil
}

func (s *service) Resolve(ctx context.Context, actorID, id string, req ResolveComplaintRequest) (ResolveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	target := normalizeStatus(req.Status)
	s.logger.Debug("resolve complaint requested",
		zap.String("request_id", rid),
		zap.String("complaint_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", target),
	)

	if !isValidResolution(target) {
		return ResolveResponse{}, complainterrors.ErrInvalidStatus
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ResolveResponse{}, complainterrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ResolveResponse{}, complainterrors.ErrComplaintNotFound
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ResolveResponse{}, mapRepositoryError(err)
	}
	if c.Status != StatusPending {
		return ResolveResponse{}, complainterrors.ErrAlreadyResolved
	}

	now := s.now().UTC()
	var cascade *cascadeResult
	if target == StatusApproved && c.RequestID != nil {
		cascade, err = s.prepareCascade(ctx, c.RequestID.String(), actorUUID, now)
		if err != nil {
			return ResolveResponse{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("resolve complaint begin tx failed", zap.Error(err))
		s.discardMemo(ctx, cascade)
		return ResolveResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	out := ResolveResponse{}
	if cascade != nil {
		if err := s.applyCascade(ctx, tx, cascade, actorID, now); err != nil {
			return ResolveResponse{}, err
		}
		out.RequestStatus = leave.StatusApproved
		out.MemoPending = cascade.memoErr != nil
		if out.MemoPending {
			out.Warnings = append(out.Warnings, memoPendingWarning)
		}
	}

	c.Status = target
	if r := strings.TrimSpace(req.Response); r != "" {
		c.Response = &r
	}
	c.ResolvedBy = &actorUUID
	c.ResolvedAt = &now
	c.UpdatedAt = now

	if err := qtx.UpdateResolution(ctx, c, StatusPending); err != nil {
		s.discardMemo(ctx, cascade)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolveResponse{}, complainterrors.ErrAlreadyResolved
		}
		s.logger.Error("resolve complaint persist failed", zap.String("complaint_id", id), zap.Error(err))
		return ResolveResponse{}, mapRepositoryError(err)
	}

	response := ""
	if c.Response != nil {
		response = *c.Response
	}
	if _, err := s.notifier.WithTx(tx).Emit(ctx, notification.ComplaintResolved(c.UserID.String(), id, target, response)); err != nil {
		s.logger.Error("resolve complaint notification failed", zap.String("complaint_id", id), zap.Error(err))
		s.discardMemo(ctx, cascade)
		return ResolveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("resolve complaint commit failed", zap.String("complaint_id", id), zap.Error(err))
		s.discardMemo(ctx, cascade)
		return ResolveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("resolve complaint success",
		zap.String("complaint_id", id),
		zap.String("status", target),
		zap.Bool("request_flipped", cascade != nil),
		zap.Bool("memo_pending", out.MemoPending),
	)

	out.ComplaintResponse = mapToResponse(*c)
	return out, nil
}

type cascadeResult struct {
	requestID   string
	request     *leave.LeaveRequest
	fromStatus  string
	memoURL     string
	memoErr     error
	memoCreated bool
}

// prepareCascade reads the linked request and, when it is rejected, builds
// its approved state and memo before any transaction opens. It returns nil
// when the request is missing or not rejected.
func (s *service) prepareCascade(ctx context.Context, requestID string, actorUUID uuid.UUID, now time.Time) (*cascadeResult, error) {
	l, err := s.leaves.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("complaint cascade skipped, request missing", zap.String("leave_id", requestID))
			return nil, nil
		}
		return nil, apperror.Storage(err)
	}

	fromStatus := l.Status
	if normalizeStatus(fromStatus) != leave.StatusRejected {
		s.logger.Debug("complaint cascade skipped",
			zap.String("leave_id", requestID),
			zap.String("status", fromStatus),
		)
		return nil, nil
	}

	l.Status = leave.StatusApproved
	l.ReviewedBy = &actorUUID
	l.ReviewedAt = &now
	l.UpdatedAt = now

	result := &cascadeResult{requestID: requestID, request: l, fromStatus: fromStatus}
	hadMemo := l.MemoURL != nil

	holder := ""
	if names, err := s.leaves.FindOwnerNames(ctx, []string{l.UserID.String()}); err == nil {
		holder = names[l.UserID.String()]
	}
	url, err := s.memos.Generate(ctx, requestID, leave.MemoSnapshot(*l, holder, now.In(s.loc)))
	if err != nil {
		s.logger.Warn("complaint cascade memo failed, queueing retry", zap.String("leave_id", requestID), zap.Error(err))
		result.memoErr = err
		return result, nil
	}
	l.MemoURL = &url
	result.memoURL = url
	result.memoCreated = !hadMemo
	return result, nil
}

// applyCascade persists a prepared cascade inside tx. UpdateReview only
// applies while the request still holds the status read by prepareCascade.
func (s *service) applyCascade(ctx context.Context, tx *sql.Tx, cascade *cascadeResult, actorID string, now time.Time) error {
	l := cascade.request
	if cascade.memoErr != nil {
		if err := leave.QueueMemoRender(ctx, s.outbox, tx, cascade.requestID, cascade.memoErr.Error(), actorID, now); err != nil {
			return apperror.Storage(err)
		}
	}

	if err := s.leaves.WithTx(tx).UpdateReview(ctx, l, cascade.fromStatus); err != nil {
		s.discardMemo(ctx, cascade)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return complainterrors.ErrRequestChanged
		}
		return apperror.Storage(err)
	}

	msg := notification.RequestApprovedViaComplaint(l.UserID.String(), cascade.requestID, l.ExpedienteNumber, cascade.memoURL)
	if _, err := s.notifier.WithTx(tx).Emit(ctx, msg); err != nil {
		s.discardMemo(ctx, cascade)
		return mapRepositoryError(err)
	}
	return nil
}

func (s *service) discardMemo(ctx context.Context, cascade *cascadeResult) {
	if cascade == nil || !cascade.memoCreated {
		return
	}
	if err := s.memos.Remove(ctx, cascade.requestID); err != nil {
		s.logger.Warn("discard memo failed", zap.String("leave_id", cascade.requestID), zap.Error(err))
	}
}

func mapLeaveError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return apperror.Storage(err)
}

func isValidResolution(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func mapToResponse(c Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:            c.ID.String(),
		UserID:        c.UserID.String(),
		Message:       c.Message,
		AttachmentURL: c.AttachmentURL,
		Status:        c.Status,
		Response:      c.Response,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
	if c.RequestID != nil {
		v := c.RequestID.String()
		resp.RequestID = &v
	}
	if c.ResolvedBy != nil {
		v := c.ResolvedBy.String()
		resp.ResolvedBy = &v
	}
	if c.ResolvedAt != nil {
		v := c.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &v
	}
	return resp
}
