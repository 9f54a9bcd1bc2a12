package leave_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type leaveStack struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	root    string
	repo    leave.Repository
	notes   notification.Repository
	service leave.Service
}

func setupLeaveStack(t *testing.T) *leaveStack {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	sqlDB, err := gdb.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, gdb.AutoMigrate(&leave.LeaveRequest{}, &counter.SequenceCounter{}, &notification.Notification{}))
	assert.NoError(t, gdb.Exec(`CREATE TABLE usuarios (id TEXT PRIMARY KEY, name TEXT)`).Error)

	root := t.TempDir()
	repo := leave.NewRepository(gdb)
	notes := notification.NewRepository(gdb)
	gen := memo.NewGenerator(
		memo.NewRenderer(memo.Config{Layout: memo.LayoutOffice, Institution: "UGEL"}, zap.NewNop()),
		storage.NewLocalStore(root, "http://localhost:3000"),
		zap.NewNop(),
	)
	svc := leave.NewService(sqlDB, repo, counter.NewRepository(gdb), gen, notification.NewSink(notes, nil, zap.NewNop()),
		leave.WithLogger(zap.NewNop()),
		leave.WithClock(func() time.Time { return time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC) }),
	)

	return &leaveStack{db: gdb, sqlDB: sqlDB, root: root, repo: repo, notes: notes, service: svc}
}

func (s *leaveStack) addUser(t *testing.T, name string) string {
	t.Helper()
	id := uuid.NewString()
	assert.NoError(t, s.db.Exec(`INSERT INTO usuarios (id, name) VALUES (?, ?)`, id, name).Error)
	return id
}

func (s *leaveStack) countRequests(t *testing.T) int64 {
	t.Helper()
	var n int64
	assert.NoError(t, s.db.Model(&leave.LeaveRequest{}).Count(&n).Error)
	return n
}

func TestLeaveLifecycle_SQLite(t *testing.T) {
	ctx := context.Background()
	stack := setupLeaveStack(t)
	owner := stack.addUser(t, "Ana Quispe")
	other := stack.addUser(t, "Luis Rojas")
	admin := stack.addUser(t, "Admin")

	first, err := stack.service.Create(ctx, owner, validCreateRequest())
	assert.NoError(t, err)
	second, err := stack.service.Create(ctx, other, validCreateRequest())
	assert.NoError(t, err)

	t.Run("expediente numbers are sequential per year", func(t *testing.T) {
		assert.Equal(t, "EXP-2024-0001", first.ExpedienteNumber)
		assert.Equal(t, "EXP-2024-0002", second.ExpedienteNumber)
		assert.Equal(t, leave.StatusPending, first.Status)
	})

	t.Run("user sees only own requests", func(t *testing.T) {
		list, err := stack.service.GetAll(ctx, visibility.Viewer{UserID: owner, Role: "user"}, leave.ListFilter{})
		assert.NoError(t, err)
		if assert.Len(t, list, 1) {
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, "Ana Quispe", list[0].UserName)
		}

		all, err := stack.service.GetAll(ctx, visibility.Viewer{UserID: admin, Role: "admin"}, leave.ListFilter{UserID: other})
		assert.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("approval writes memo and re-approval reuses path", func(t *testing.T) {
		resp, err := stack.service.SetStatus(ctx, admin, first.ID, leave.UpdateStatusRequest{Status: "aprobada"})
		assert.NoError(t, err)
		assert.False(t, resp.MemoPending)
		if assert.NotNil(t, resp.MemoURL) {
			assert.Equal(t, "http://localhost:3000/pdf/solicitud_"+first.ID+".pdf", *resp.MemoURL)
		}
		assert.FileExists(t, filepath.Join(stack.root, "pdf", "solicitud_"+first.ID+".pdf"))

		again, err := stack.service.SetStatus(ctx, admin, first.ID, leave.UpdateStatusRequest{Status: "aprobada"})
		assert.NoError(t, err)
		assert.Equal(t, *resp.MemoURL, *again.MemoURL)
		assert.Equal(t, int64(2), stack.countRequests(t))

		entries, err := os.ReadDir(filepath.Join(stack.root, "pdf"))
		assert.NoError(t, err)
		assert.Len(t, entries, 1)

		path, err := stack.service.MemoPath(ctx, visibility.Viewer{UserID: owner, Role: "user"}, first.ID)
		assert.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("resolved request cannot change to another status", func(t *testing.T) {
		_, err := stack.service.SetStatus(ctx, admin, first.ID, leave.UpdateStatusRequest{Status: "rechazada"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)

		got, err := stack.service.GetByID(ctx, visibility.Viewer{UserID: owner, Role: "user"}, first.ID)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, got.Status)
	})

	t.Run("owner receives created and status notifications", func(t *testing.T) {
		list, err := stack.notes.FindAllByUser(ctx, owner, false)
		assert.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("delete hides the request", func(t *testing.T) {
		assert.NoError(t, stack.service.Delete(ctx, second.ID))
		_, err := stack.service.GetByID(ctx, visibility.Viewer{Role: "admin"}, second.ID)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}
