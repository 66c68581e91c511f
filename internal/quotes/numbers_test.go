package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
)

func TestRandomNumberGeneratorRange(t *testing.T) {
	at := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	gen := &RandomNumberGenerator{Prefix: "TAQ", IntN: func(n int) int { return 0 }}
	got, err := gen.Next(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, "TAQ-202503-1000", got)

	gen.IntN = func(n int) int { return n - 1 }
	got, _ = gen.Next(context.Background(), at)
	assert.Equal(t, "TAQ-202503-10998", got)
}

type memSequencer struct {
	counts map[string]int64
	err    error
}

func (m *memSequencer) NextSequence(_ context.Context, scope, period string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[scope+period]++
	return m.counts[scope+period], nil
}

func TestSequenceNumberGeneratorNeverRepeats(t *testing.T) {
	seq := &memSequencer{counts: map[string]int64{}}
	gen := NewSequenceNumberGenerator("TAQ", seq)
	at := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for range 50 {
		n, err := gen.Next(context.Background(), at)
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
	first, _ := gen.Next(context.Background(), at.AddDate(0, 1, 0))
	assert.Equal(t, "TAQ-202601-0001", first)

	seq.err = errors.New("boom")
	_, err := gen.Next(context.Background(), at)
	assert.Error(t, err)
}

func TestNewNumberGenerator(t *testing.T) {
	gen, err := NewNumberGenerator(config.PricingConfig{QuotePrefix: "TAQ"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RandomNumberGenerator{}, gen)

	_, err = NewNumberGenerator(config.PricingConfig{Numbering: config.NumberingSequence}, nil)
	assert.Error(t, err)

	gen, err = NewNumberGenerator(config.PricingConfig{Numbering: "Sequence"}, &memSequencer{counts: map[string]int64{}})
	require.NoError(t, err)
	assert.IsType(t, &SequenceNumberGenerator{}, gen)

	_, err = NewNumberGenerator(config.PricingConfig{Numbering: "uuid"}, nil)
	assert.Error(t, err)
}

func TestSyntheticStatusPicker(t *testing.T) {
	calls := 0
	picker := &SyntheticStatusPicker{IntN: func(n int) int { calls++; return n - 1 }}
	assert.Equal(t, enums.QuoteStatusClosedLost, picker.Pick())
	assert.Equal(t, enums.QuoteStatusPending, picker.Pick(enums.QuoteStatusSent, enums.QuoteStatusPending))
	assert.Equal(t, 2, calls)

	random := NewSyntheticStatusPicker()
	for range 20 {
		assert.True(t, random.Pick().IsValid())
	}
}
