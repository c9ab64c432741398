package pon

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/sv"
)

// Annotator sets PonCount on every call and adds the PON filter to calls
// seen in at least one normal.
type Annotator struct {
	store  *Store
	margin int
	logger *zap.Logger
}

// NewAnnotator creates an annotator. Breakend intervals are widened by
// margin on both sides before lookup.
func NewAnnotator(store *Store, margin int) *Annotator {
	return &Annotator{store: store, margin: margin, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Name identifies the annotator in logs.
func (a *Annotator) Name() string { return "pon" }

// Annotate looks up every call in variants.
func (a *Annotator) Annotate(ctx context.Context, variants []*sv.Variant) error {
	flagged := 0
	for _, v := range variants {
		var (
			n   int
			err error
		)
		if v.IsSGL() {
			n, err = a.store.CountSGL(ctx, v.Start(), a.margin)
		} else {
			n, err = a.store.CountSV(ctx, v.Start(), v.End(), a.margin)
		}
		if err != nil {
			return fmt.Errorf("annotate %s: %w", v.ID, err)
		}
		v.PonCount = n
		if n > 0 {
			v.AddFilter(sv.FilterPON)
			flagged++
		}
	}
	a.logger.Info("PON annotation complete",
		zap.Int("variants", len(variants)),
		zap.Int("flagged", flagged))
	return nil
}
