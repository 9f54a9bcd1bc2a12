package complaint_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/complaint"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type complaintStack struct {
	db         *gorm.DB
	sqlDB      *sql.DB
	root       string
	clock      *clock
	leaves     leave.Repository
	notes      notification.Repository
	memos      memo.Generator
	leaveSvc   leave.Service
	complaints complaint.Service
}

func setupComplaintStack(t *testing.T, memos memo.Generator, outbox kafka.OutboxRepository) *complaintStack {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	sqlDB, err := gdb.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, gdb.AutoMigrate(
		&leave.LeaveRequest{},
		&complaint.Complaint{},
		&counter.SequenceCounter{},
		&notification.Notification{},
	))
	assert.NoError(t, gdb.Exec(`CREATE TABLE usuarios (id TEXT PRIMARY KEY, name TEXT)`).Error)

	root := t.TempDir()
	if memos == nil {
		memos = memo.NewGenerator(
			memo.NewRenderer(memo.Config{Layout: memo.LayoutLetter}, zap.NewNop()),
			storage.NewLocalStore(root, "http://localhost:3000"),
			zap.NewNop(),
		)
	}

	clk := &clock{now: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)}
	leaves := leave.NewRepository(gdb)
	notes := notification.NewRepository(gdb)
	sink := notification.NewSink(notes, nil, zap.NewNop())

	leaveSvc := leave.NewService(sqlDB, leaves, counter.NewRepository(gdb), memos, sink,
		leave.WithLogger(zap.NewNop()),
		leave.WithClock(clk.Now),
		leave.WithOutbox(outbox),
	)
	complaints := complaint.NewService(sqlDB, complaint.NewRepository(gdb), leaves, memos, sink,
		complaint.WithLogger(zap.NewNop()),
		complaint.WithClock(clk.Now),
		complaint.WithOutbox(outbox),
	)

	return &complaintStack{
		db:         gdb,
		sqlDB:      sqlDB,
		root:       root,
		clock:      clk,
		leaves:     leaves,
		notes:      notes,
		memos:      memos,
		leaveSvc:   leaveSvc,
		complaints: complaints,
	}
}

func (s *complaintStack) addUser(t *testing.T, name string) string {
	t.Helper()
	id := uuid.NewString()
	assert.NoError(t, s.db.Exec(`INSERT INTO usuarios (id, name) VALUES (?, ?)`, id, name).Error)
	return id
}

// seedRequest inserts a request directly so tests control status and age.
func (s *complaintStack) seedRequest(t *testing.T, owner, status string, createdAt time.Time) string {
	t.Helper()
	l := &leave.LeaveRequest{
		ID:               uuid.New(),
		ExpedienteNumber: "EXP-2024-" + uuid.NewString()[:4],
		UserID:           uuid.MustParse(owner),
		Type:             "salud",
		Reason:           "Control médico",
		StartDate:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Phone:            "999",
		Email:            "ana@example.com",
		Position:         "Docente",
		Institution:      "IE 1",
		Status:           status,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	assert.NoError(t, s.leaves.Create(context.Background(), l))
	return l.ID.String()
}

func (s *complaintStack) notificationCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	assert.NoError(t, s.db.Model(&notification.Notification{}).Count(&n).Error)
	return n
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
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
