// Package netstats estimates round-trip time and packet loss from the
// ping/pong exchange and the snapshot sequence stream.
package netstats

import (
	"time"
)

const (
	// rttGranularity floors reported RTT so jittery sub-10ms readings do
	// not flicker, and the floor doubles as the minimum reported value.
	rttGranularity = 10 * time.Millisecond

	// lossWindowSize is the number of sequence numbers per loss cycle.
	lossWindowSize = 10
)

// PingTracker emits timestamped pings on a tunable cadence and derives RTT
// from the echoed reply.
type PingTracker struct {
	interval time.Duration
	lastSent time.Time
	rtt      time.Duration
}

func NewPingTracker(interval time.Duration) *PingTracker {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &PingTracker{interval: interval}
}

// MaybePing returns the send timestamp for a new ping when the previous one
// has aged past the cadence, and false otherwise.
func (p *PingTracker) MaybePing(now time.Time) (time.Time, bool) {
	if !p.lastSent.IsZero() && now.Sub(p.lastSent) < p.interval {
		return time.Time{}, false
	}
	p.lastSent = now
	return now, true
}

// ObservePong records a pong carrying the echoed send timestamp. The
// reported RTT is floored to the nearest 10ms with a 10ms minimum, so a
// local loopback never displays as zero.
func (p *PingTracker) ObservePong(sentAt, now time.Time) {
	raw := now.Sub(sentAt)
	floored := raw - raw%rttGranularity
	if floored < rttGranularity {
		floored = rttGranularity
	}
	p.rtt = floored
}

// RTT returns the last reported round-trip time, zero until the first pong.
func (p *PingTracker) RTT() time.Duration {
	return p.rtt
}

// LossWindow computes a rolling packet-loss ratio over cycles of 10
// received sequence numbers. The ratio is recomputed whenever a sequence
// divisible by 10 arrives, not continuously.
type LossWindow struct {
	received []uint64
	ratio    float64
}

func NewLossWindow() *LossWindow {
	return &LossWindow{}
}

// Observe records a received sequence number. On a cycle boundary it
// evaluates the window as (expected - received) / expected and clears it
// for the next cycle.
func (w *LossWindow) Observe(sequence uint64) {
	w.received = append(w.received, sequence)
	if len(w.received) > lossWindowSize {
		w.received = w.received[1:]
	}
	if sequence%lossWindowSize != 0 {
		return
	}
	w.ratio = float64(lossWindowSize-len(w.received)) / float64(lossWindowSize)
	w.received = w.received[:0]
}

// Ratio returns the loss ratio computed at the last cycle boundary, in
// [0,1].
func (w *LossWindow) Ratio() float64 {
	return w.ratio
}
