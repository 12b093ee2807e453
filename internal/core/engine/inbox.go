package engine

import (
	"sync/atomic"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

// Inbox is the bounded inbound message queue between the network side and
// the tick. The network side only ever appends; the tick drains the queue
// at a single well-defined point, so snapshot application never interleaves
// with component updates.
type Inbox struct {
	queue   chan protocol.Envelope
	dropped atomic.Uint64
	logger  log.Log
}

func NewInbox(capacity int, logger log.Log) *Inbox {
	return &Inbox{
		queue:  make(chan protocol.Envelope, capacity),
		logger: logger.With(log.String("component", "inbox")),
	}
}

// Push enqueues an envelope without blocking. When the queue is full the
// envelope is dropped and counted; the network layer is never backpressured.
func (in *Inbox) Push(env protocol.Envelope) error {
	select {
	case in.queue <- env:
		return nil
	default:
		in.dropped.Add(1)
		in.logger.Warn("inbound queue full, dropping message",
			log.String("type", string(env.Type)),
			log.Uint64("dropped_total", in.dropped.Load()))
		return protocol.ErrQueueFull
	}
}

// Drain hands every queued envelope to fn in arrival order and returns the
// number drained. It never blocks waiting for more.
func (in *Inbox) Drain(fn func(protocol.Envelope)) int {
	drained := 0
	for {
		select {
		case env := <-in.queue:
			fn(env)
			drained++
		default:
			return drained
		}
	}
}

// Size returns the number of queued envelopes.
func (in *Inbox) Size() int {
	return len(in.queue)
}

// Dropped returns how many envelopes were discarded on overflow.
func (in *Inbox) Dropped() uint64 {
	return in.dropped.Load()
}
