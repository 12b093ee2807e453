package netstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPingTracker(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("PingTracker: respects cadence", func(t *testing.T) {
		p := NewPingTracker(100 * time.Millisecond)

		_, ok := p.MaybePing(base)
		require.True(t, ok)

		_, ok = p.MaybePing(base.Add(50 * time.Millisecond))
		require.False(t, ok)

		sentAt, ok := p.MaybePing(base.Add(100 * time.Millisecond))
		require.True(t, ok)
		require.Equal(t, base.Add(100*time.Millisecond), sentAt)
	})

	t.Run("PingTracker: RTT floored to nearest 10ms", func(t *testing.T) {
		p := NewPingTracker(100 * time.Millisecond)
		p.ObservePong(base, base.Add(37*time.Millisecond))
		require.Equal(t, 30*time.Millisecond, p.RTT())
	})

	t.Run("PingTracker: near-zero RTT reports the 10ms minimum", func(t *testing.T) {
		p := NewPingTracker(100 * time.Millisecond)
		p.ObservePong(base, base.Add(2*time.Millisecond))
		require.Equal(t, 10*time.Millisecond, p.RTT())

		p.ObservePong(base, base)
		require.Equal(t, 10*time.Millisecond, p.RTT())
	})

	t.Run("PingTracker: zero before first pong", func(t *testing.T) {
		p := NewPingTracker(0)
		require.Equal(t, time.Duration(0), p.RTT())
	})
}

func TestLossWindow(t *testing.T) {
	t.Run("LossWindow: all ten received yields zero loss", func(t *testing.T) {
		w := NewLossWindow()
		for seq := uint64(1); seq <= 10; seq++ {
			w.Observe(seq)
		}
		require.Equal(t, 0.0, w.Ratio())
	})

	t.Run("LossWindow: eight of ten yields twenty percent", func(t *testing.T) {
		// Guards the ratio orientation: missing packets over window size,
		// never the inverse.
		w := NewLossWindow()
		for _, seq := range []uint64{1, 2, 3, 5, 6, 7, 8, 10} {
			w.Observe(seq)
		}
		require.InDelta(t, 0.2, w.Ratio(), 1e-9)
	})

	t.Run("LossWindow: window clears per cycle", func(t *testing.T) {
		w := NewLossWindow()
		for _, seq := range []uint64{1, 2, 10} {
			w.Observe(seq)
		}
		require.InDelta(t, 0.7, w.Ratio(), 1e-9)

		// A full second cycle recovers to zero loss.
		for seq := uint64(11); seq <= 20; seq++ {
			w.Observe(seq)
		}
		require.Equal(t, 0.0, w.Ratio())
	})

	t.Run("LossWindow: ratio only updates on cycle boundaries", func(t *testing.T) {
		w := NewLossWindow()
		for seq := uint64(1); seq <= 9; seq++ {
			w.Observe(seq)
		}
		require.Equal(t, 0.0, w.Ratio())
	})
}
