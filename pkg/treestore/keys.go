package treestore

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	keyMu      sync.Mutex
	keyEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewKey returns a chronologically sortable child key, used for pushed
// children and client-generated entity ids.
func NewKey() string {
	return NewKeyAt(time.Now())
}

// NewKeyAt returns a key whose time component is t. Keys minted in the same
// millisecond still sort in creation order.
func NewKeyAt(t time.Time) string {
	keyMu.Lock()
	defer keyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), keyEntropy).String()
}
