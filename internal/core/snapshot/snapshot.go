package snapshot

import (
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/driftsync/driftsync/internal/core/entity"
)

// EntityState is the per-entity slice of a world snapshot: the entity kind
// plus a partial attribute diff.
type EntityState struct {
	Kind  string            `json:"kind"`
	Attrs entity.Attributes `json:"attrs"`
}

// WorldState is one server-pushed world snapshot. Immutable once recorded
// into a History.
type WorldState struct {
	Sequence   uint64                 `json:"sequence"`
	RunTime    float64                `json:"runTimeSec"`
	Entities   map[string]EntityState `json:"entities"`
	Aggregates map[string]float64     `json:"aggregates,omitempty"`

	// ReceivedAt is stamped by the receiver on arrival when the source did
	// not supply one.
	ReceivedAt time.Time `json:"-"`

	// Digest identifies the raw payload, used to drop re-delivered
	// snapshots on lossy transports.
	Digest uint64 `json:"-"`
}

// Digest computes the payload digest used for duplicate detection.
func Digest(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}
