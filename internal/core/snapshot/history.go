package snapshot

import (
	"errors"
	"math"
	"time"
)

var ErrDuplicateSnapshot = errors.New("duplicate snapshot")

// HistoryCapacity computes the snapshot buffer capacity for a sync rate.
// The ratio keeps at least two full sync intervals plus slack buffered, so
// interpolation always has a trailing pair to reference.
const capacityRatio = 3.0

func HistoryCapacity(syncRateHz float64) int {
	return int(math.Round(capacityRatio * (1000.0 / syncRateHz)))
}

// History is a capacity-bounded FIFO buffer of world snapshots ordered by
// arrival. The oldest snapshot is evicted first on overflow; the network
// side is never blocked.
type History struct {
	capacity int
	states   []*WorldState
}

func NewHistory(capacity int) *History {
	if capacity < 2 {
		capacity = 2
	}
	return &History{capacity: capacity}
}

// Record stamps the arrival time when the source did not supply one,
// appends, and evicts the oldest entry when over capacity. Snapshots whose
// sequence or payload digest is already buffered are rejected with
// ErrDuplicateSnapshot.
func (h *History) Record(state *WorldState) error {
	for _, existing := range h.states {
		if existing.Sequence == state.Sequence {
			return ErrDuplicateSnapshot
		}
		if state.Digest != 0 && existing.Digest == state.Digest {
			return ErrDuplicateSnapshot
		}
	}
	if state.ReceivedAt.IsZero() {
		state.ReceivedAt = time.Now()
	}
	h.states = append(h.states, state)
	if len(h.states) > h.capacity {
		h.states = h.states[1:]
	}
	return nil
}

// Last returns the most recently recorded snapshot, or nil when empty.
func (h *History) Last() *WorldState {
	if len(h.states) == 0 {
		return nil
	}
	return h.states[len(h.states)-1]
}

// Previous returns the snapshot before Last, or nil when fewer than two are
// buffered.
func (h *History) Previous() *WorldState {
	if len(h.states) < 2 {
		return nil
	}
	return h.states[len(h.states)-2]
}

func (h *History) Size() int {
	return len(h.states)
}

func (h *History) Capacity() int {
	return h.capacity
}

func (h *History) Clear() {
	h.states = nil
}
