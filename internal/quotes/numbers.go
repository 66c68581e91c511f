package quotes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/pkg/config"
)

// NumberGenerator produces the human-facing quote number.
type NumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// RandomNumberGenerator produces PREFIX-YYYYMM-NNNN with NNNN drawn uniformly
// from [1000, 10998]. Two quotes in the same month can receive the same number.
type RandomNumberGenerator struct {
	Prefix string
	IntN   func(n int) int
}

func NewRandomNumberGenerator(prefix string) *RandomNumberGenerator {
	return &RandomNumberGenerator{Prefix: prefix, IntN: rand.IntN}
}

func (g *RandomNumberGenerator) Next(_ context.Context, at time.Time) (string, error) {
	intN := g.IntN
	if intN == nil {
		intN = rand.IntN
	}
	return fmt.Sprintf("%s-%s-%d", g.Prefix, period(at), intN(9999)+1000), nil
}

// Sequencer hands out monotonically increasing per-period counters.
type Sequencer interface {
	NextSequence(ctx context.Context, scope, period string, ttl time.Duration) (int64, error)
}

// sequenceTTL keeps a month's counter around well past the month it numbers.
const sequenceTTL = 62 * 24 * time.Hour

// SequenceNumberGenerator numbers quotes from a shared counter per month, so
// numbers never repeat while the counter survives.
type SequenceNumberGenerator struct {
	Prefix string
	seq    Sequencer
}

func NewSequenceNumberGenerator(prefix string, seq Sequencer) *SequenceNumberGenerator {
	return &SequenceNumberGenerator{Prefix: prefix, seq: seq}
}

func (g *SequenceNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	p := period(at)
	n, err := g.seq.NextSequence(ctx, "quote", p, sequenceTTL)
	if err != nil {
		return "", fmt.Errorf("next quote sequence: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", g.Prefix, p, n), nil
}

// NewNumberGenerator picks the strategy named in cfg. seq may be nil unless
// the sequence strategy is selected.
func NewNumberGenerator(cfg config.PricingConfig, seq Sequencer) (NumberGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Numbering)) {
	case "", config.NumberingRandom:
		return NewRandomNumberGenerator(cfg.QuotePrefix), nil
	case config.NumberingSequence:
		if seq == nil {
			return nil, fmt.Errorf("sequence numbering requires a sequencer")
		}
		return NewSequenceNumberGenerator(cfg.QuotePrefix, seq), nil
	default:
		return nil, fmt.Errorf("unknown quote numbering %q", cfg.Numbering)
	}
}

func period(at time.Time) string {
	return at.Format("200601")
}
