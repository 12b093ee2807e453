// Package interp blends pairs of buffered world snapshots so the render
// loop can show a smooth approximation of remote state between discrete
// network updates.
package interp

import (
	"time"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/snapshot"
)

// Config holds the interpolation tunables, threaded in from the engine
// configuration rather than read from globals.
type Config struct {
	SyncRateHz        float64
	Enabled           bool
	ExtrapolateWindow time.Duration
}

// Engine computes interpolation eligibility, factors, and blended synthetic
// snapshots. It holds no state besides configuration.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.SyncRateHz <= 0 {
		cfg.SyncRateHz = 20
	}
	return &Engine{cfg: cfg}
}

// SyncInterval is the nominal time between server snapshots.
func (e *Engine) SyncInterval() time.Duration {
	return time.Duration(float64(time.Second) / e.cfg.SyncRateHz)
}

// LerpWindow is the render lag applied behind the newest snapshot. Two full
// sync intervals keeps a confirmed pair on both sides of the target time.
func (e *Engine) LerpWindow() time.Duration {
	return 2 * e.SyncInterval()
}

// CanInterpolate reports whether a blended snapshot can be produced: at
// least two snapshots buffered and the newest one older than a full sync
// interval, so the render clock has safely fallen behind confirmed data.
func (e *Engine) CanInterpolate(history *snapshot.History, now time.Time) bool {
	if !e.cfg.Enabled || history.Size() < 2 {
		return false
	}
	return history.Last().ReceivedAt.Before(now.Add(-e.SyncInterval()))
}

// CanExtrapolate reports whether the extrapolation fallback window holds:
// interpolation is ineligible but the newest snapshot is still fresh enough
// to project forward from.
func (e *Engine) CanExtrapolate(history *snapshot.History, now time.Time) bool {
	if e.cfg.ExtrapolateWindow <= 0 || history.Size() == 0 {
		return false
	}
	return now.Sub(history.Last().ReceivedAt) <= e.cfg.ExtrapolateWindow
}

// Factor computes the normalized position of the render target time between
// two snapshots. The target lags lastTick by the lerp window. A zero-width
// snapshot interval yields 1 (use next verbatim) rather than a division
// fault, and the result is clamped to [0,1] so a late tick can never
// silently extrapolate past next.
func (e *Engine) Factor(prev, next *snapshot.WorldState, lastTick time.Time) float64 {
	span := next.ReceivedAt.Sub(prev.ReceivedAt)
	if span <= 0 {
		return 1
	}
	target := lastTick.Add(-e.LerpWindow())
	factor := float64(target.Sub(prev.ReceivedAt)) / float64(span)
	if factor < 0 {
		return 0
	}
	if factor > 1 {
		return 1
	}
	return factor
}

// Blend produces a synthetic snapshot between prev and next at the given
// factor. For every entity present in both, every attribute that is numeric
// in next and present in prev is linearly interpolated; everything else
// passes through with next's value. Entities only present in next (newly
// spawned) are copied verbatim. The result is for this tick's apply step
// only and is never recorded back into history.
func (e *Engine) Blend(prev, next *snapshot.WorldState, factor float64) *snapshot.WorldState {
	blended := &snapshot.WorldState{
		Sequence:   next.Sequence,
		RunTime:    next.RunTime,
		ReceivedAt: next.ReceivedAt,
		Entities:   make(map[string]snapshot.EntityState, len(next.Entities)),
		Aggregates: next.Aggregates,
	}
	for id, nextState := range next.Entities {
		prevState, both := prev.Entities[id]
		if !both {
			blended.Entities[id] = nextState
			continue
		}
		attrs := make(entity.Attributes, len(nextState.Attrs))
		for name, nextValue := range nextState.Attrs {
			nextNum, nextOK := entity.Float64(nextValue)
			prevValue, present := prevState.Attrs[name]
			if !nextOK || !present {
				attrs[name] = nextValue
				continue
			}
			prevNum, prevOK := entity.Float64(prevValue)
			if !prevOK {
				attrs[name] = nextValue
				continue
			}
			attrs[name] = prevNum + (nextNum-prevNum)*factor
		}
		blended.Entities[id] = snapshot.EntityState{Kind: nextState.Kind, Attrs: attrs}
	}
	return blended
}

// Extrapolate is the declared fallback for when interpolation is ineligible
// but the extrapolation window still holds. The full contract is to project
// the last known per-attribute rate of change forward, capped at the window
// to avoid divergence; until that lands it degrades to the last snapshot
// verbatim.
func (e *Engine) Extrapolate(history *snapshot.History, _ time.Time) *snapshot.WorldState {
	return history.Last()
}
