// Package bank locates, fetches and decodes question bank documents.
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/question"
)

// ErrSourceUnavailable is returned when a pool cannot be loaded from any
// location. Sessions on that pool cannot start.
var ErrSourceUnavailable = errors.New("question source unavailable")

// ReviewPoolID identifies the external review bank.
const ReviewPoolID = "review"

// ModulePoolIDs lists the per-module pool ids in order.
var ModulePoolIDs = []string{"module1", "module2", "module3", "module4", "module5", "module6"}

// AllPoolIDs lists every loadable pool.
func AllPoolIDs() []string {
	return append(append([]string{}, ModulePoolIDs...), ReviewPoolID)
}

// FileStem returns the document base name for a pool id.
func FileStem(poolID string) string {
	if poolID == ReviewPoolID {
		return "icai_review"
	}
	return poolID
}

// PoolName returns the display name for a pool id.
func PoolName(poolID string) string {
	if poolID == ReviewPoolID {
		return "ICAI Review Questions"
	}
	if n, ok := strings.CutPrefix(poolID, "module"); ok {
		return "Module " + n
	}
	return poolID
}

// Loader fetches the raw records of a pool.
type Loader interface {
	Load(ctx context.Context, poolID string) (*Document, error)
}

// Chain tries each loader in order and returns the first success.
type Chain []Loader

func (c Chain) Load(ctx context.Context, poolID string) (*Document, error) {
	var errs []error
	for _, l := range c {
		doc, err := l.Load(ctx, poolID)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%s: no loaders configured: %w", poolID, ErrSourceUnavailable)
	}
	return nil, fmt.Errorf("%s: %w", poolID, errors.Join(append([]error{ErrSourceUnavailable}, errs...)...))
}

// LoadResult is a normalized pool plus the records dropped on the way.
type LoadResult struct {
	Pool   *question.Pool
	Drops  []*question.NormalizationError
	Origin string
}

// LoadPool fetches and normalizes one pool. A document with no admissible
// questions is reported as unavailable.
func LoadPool(ctx context.Context, l Loader, poolID string, logger *zap.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := l.Load(ctx, poolID)
	if err != nil {
		logger.Warn("pool load failed", zap.String("pool", poolID), zap.Error(err))
		return nil, err
	}

	name := doc.Name
	if name == "" {
		name = PoolName(poolID)
	}
	pool, drops := question.NormalizePool(poolID, name, doc.Questions)
	for _, d := range drops {
		logger.Debug("question dropped",
			zap.String("pool", poolID),
			zap.Int("index", d.Index),
			zap.String("id", d.ID),
			zap.String("reason", string(d.Reason)),
		)
	}
	if pool.Len() == 0 {
		return nil, fmt.Errorf("%s: no usable questions in %s: %w", poolID, doc.Origin, ErrSourceUnavailable)
	}
	logger.Info("pool loaded",
		zap.String("pool", poolID),
		zap.String("origin", doc.Origin),
		zap.Int("questions", pool.Len()),
		zap.Int("dropped", len(drops)),
	)
	return &LoadResult{Pool: pool, Drops: drops, Origin: doc.Origin}, nil
}
