package quotes

import (
	"math/rand/v2"

	"github.com/turboairmx/quotesync/pkg/enums"
)

// SyntheticStatusPicker draws statuses uniformly. It exists for generating
// demo data only; real quotes always carry an explicit status.
type SyntheticStatusPicker struct {
	IntN func(n int) int
}

func NewSyntheticStatusPicker() *SyntheticStatusPicker {
	return &SyntheticStatusPicker{IntN: rand.IntN}
}

// Pick returns one of choices, or one of every known status when none are given.
func (p *SyntheticStatusPicker) Pick(choices ...enums.QuoteStatus) enums.QuoteStatus {
	if len(choices) == 0 {
		choices = enums.QuoteStatuses()
	}
	intN := p.IntN
	if intN == nil {
		intN = rand.IntN
	}
	return choices[intN(len(choices))]
}
