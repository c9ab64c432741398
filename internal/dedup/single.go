package dedup

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-sv/internal/config"
	"github.com/inodb/vibe-sv/internal/sv"
)

// KeepPolicy decides between a single-ended call and one breakend of
// another call that duplicates it.
type KeepPolicy interface {
	// KeepSingle returns true to keep sgl and mark candidate's call as the
	// duplicate, false to mark sgl.
	KeepSingle(sgl *sv.Variant, candidate *sv.Breakend) bool
}

// KeepPolicyFunc adapts a function to KeepPolicy.
type KeepPolicyFunc func(sgl *sv.Variant, candidate *sv.Breakend) bool

// KeepSingle calls f.
func (f KeepPolicyFunc) KeepSingle(sgl *sv.Variant, candidate *sv.Breakend) bool {
	return f(sgl, candidate)
}

// PreferOther always prefers the other call (the paired or earlier one) over
// the single-ended call. It is the default policy and is provisional: no
// evidence-based comparison between the two calls has been settled on.
type PreferOther struct{}

// KeepSingle always returns false.
func (PreferOther) KeepSingle(*sv.Variant, *sv.Breakend) bool {
	return false
}

// SingleResolver resolves single-ended calls that duplicate another call's
// breakend.
type SingleResolver struct {
	cfg    config.DedupConfig
	policy KeepPolicy
	logger *zap.Logger
}

// NewSingleResolver creates a resolver. A nil policy means PreferOther.
func NewSingleResolver(cfg config.DedupConfig, policy KeepPolicy) *SingleResolver {
	if policy == nil {
		policy = PreferOther{}
	}
	return &SingleResolver{cfg: cfg, policy: policy, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (r *SingleResolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve checks every unfiltered single-ended call in variants against its
// neighbors in idx. A neighbor is a duplicate when it is unfiltered, has the
// same orientation and lies within the call's confidence interval. If the
// policy rejects the single-ended call for any duplicate, that call is
// marked; otherwise every duplicate's call is. It returns the number of
// calls marked.
func (r *SingleResolver) Resolve(idx *sv.BreakendIndex, variants []*sv.Variant) int {
	marked := 0
	for _, v := range variants {
		if !v.IsSGL() || v.IsFiltered() {
			continue
		}
		dups := r.duplicates(idx, v.Start())
		if len(dups) == 0 {
			continue
		}

		keep := true
		for _, c := range dups {
			if !r.policy.KeepSingle(v, c) {
				keep = false
				break
			}
		}

		if !keep {
			if v.AddFilter(sv.FilterDuplicate) {
				marked++
			}
			r.logger.Debug("single-ended duplicate",
				zap.String("id", v.ID),
				zap.String("chrom", v.Start().Chrom),
				zap.Int("pos", v.Start().Position),
				zap.Int("candidates", len(dups)))
			continue
		}
		for _, c := range dups {
			if c.Variant().AddFilter(sv.FilterDuplicate) {
				marked++
			}
		}
	}
	return marked
}

func (r *SingleResolver) duplicates(idx *sv.BreakendIndex, b *sv.Breakend) []*sv.Breakend {
	var dups []*sv.Breakend
	for _, c := range idx.Nearby(b, r.cfg.SGLAdditional, r.cfg.SGLMaxSeek) {
		if c.Variant().IsFiltered() || c.Orientation != b.Orientation {
			continue
		}
		if c.Position < b.MinPosition() || c.Position > b.MaxPosition() {
			continue
		}
		dups = append(dups, c)
	}
	return dups
}
