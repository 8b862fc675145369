// Package snapshot defines the immutable read model served to clients
// and the builder that folds the remote contract documents into it.
package snapshot

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActionKind tags a context-specific numeric entry on a token.
type ActionKind uint8

const (
	ActionBattlePrice ActionKind = 1
	ActionBreedPrice  ActionKind = 2
	ActionMarketPrice ActionKind = 3
	ActionMarketOrder ActionKind = 4
)

// Context is the sub-index for one secondary activity a token can be
// engaged in (battle, breed or market).
type Context struct {
	// IDs is sorted in ascending numeric order.
	IDs []string
	// Price maps token id to listing price (decimal string).
	Price map[string]string
	// OwnedIDs maps owner address to its token ids in this context,
	// each list sorted in ascending numeric order.
	OwnedIDs map[string][]string
}

// Snapshot is one fully built, immutable bundle of token records and
// derived indices. It is built off to the side and published whole;
// readers must never mutate it.
type Snapshot struct {
	BuildID string
	BuiltAt time.Time

	// AllIDs is every known token id in ascending numeric order.
	AllIDs []string
	// OwnedIDs merges primary ownership with outstanding market
	// listings, so a listed token still counts toward its seller.
	OwnedIDs map[string][]string

	Owner     map[string]string
	Rarity    map[string]uint8
	Strength  map[string]uint16
	Stage     map[string]uint8
	GenImage  map[string]string
	GenBattle map[string]string
	URI       map[string]string
	// Name holds optional display names; absence is not an error.
	Name map[string]string

	Battle Context
	Breed  Context
	Market Context
	// MarketOrderID maps a market-listed token id to its order id.
	MarketOrderID map[string]string
}

// Holder is the single shared slot the refresh scheduler publishes to
// and request handlers read from. One writer, any number of readers.
type Holder struct {
	ptr atomic.Pointer[Snapshot]
}

// Publish atomically replaces the current snapshot.
func (h *Holder) Publish(s *Snapshot) {
	h.ptr.Store(s)
}

// Current returns the published snapshot, or nil before the first
// publish.
func (h *Holder) Current() *Snapshot {
	return h.ptr.Load()
}

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

func newBuildID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
