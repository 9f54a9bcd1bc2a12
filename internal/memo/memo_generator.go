package memo

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	"go.uber.org/zap"
)

// Key is the storage key of a request's memo. It is stable so that a
// re-approval overwrites the previous file.
func Key(requestID string) string {
	return "pdf/solicitud_" + requestID + ".pdf"
}

//go:generate mockgen -source=memo_generator.go -destination=mock/memo_generator_mock.go -package=mock
type Generator interface {
	Generate(ctx context.Context, requestID string, s Snapshot) (string, error)
	Remove(ctx context.Context, requestID string) error
	Path(requestID string) (string, error)
}

type generator struct {
	renderer Renderer
	store    storage.Store
	logger   *zap.Logger
}

func NewGenerator(renderer Renderer, store storage.Store, logger ...*zap.Logger) Generator {
	l := zap.L().Named("memo.generator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("memo.generator")
	}
	return &generator{renderer: renderer, store: store, logger: l}
}

func (g *generator) Generate(ctx context.Context, requestID string, s Snapshot) (string, error) {
	b, err := g.renderer.Render(s)
	if err != nil {
		g.logger.Error("memo render failed",
			zap.String("request_id", requestID),
			zap.String("expediente", s.ExpedienteNumber),
			zap.Error(err),
		)
		return "", err
	}

	url, err := g.store.Put(ctx, Key(requestID), bytes.NewReader(b))
	if err != nil {
		g.logger.Error("memo store failed",
			zap.String("request_id", requestID),
			zap.String("key", Key(requestID)),
			zap.Error(err),
		)
		return "", fmt.Errorf("store memo: %w", err)
	}

	g.logger.Info("memo generated",
		zap.String("request_id", requestID),
		zap.String("expediente", s.ExpedienteNumber),
		zap.Int("bytes", len(b)),
	)
	return url, nil
}

func (g *generator) Remove(ctx context.Context, requestID string) error {
	return g.store.Delete(ctx, Key(requestID))
}

func (g *generator) Path(requestID string) (string, error) {
	return g.store.Path(Key(requestID))
}
