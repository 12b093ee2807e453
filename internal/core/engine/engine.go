// Package engine ties the sync core together: it drains the inbound message
// queue, reconciles the entity directory against buffered world snapshots,
// interpolates between snapshot pairs, and drives component updates from a
// fixed-rate tick.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/interp"
	"github.com/driftsync/driftsync/internal/core/netstats"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
	"github.com/driftsync/driftsync/internal/core/snapshot"
	"github.com/driftsync/driftsync/internal/core/spatial"
)

// EntityBuilder attaches components to a freshly constructed entity. It is
// how the presentation/physics side plugs in without the core ever touching
// rendering primitives.
type EntityBuilder func(ent *entity.Entity, isLocal bool)

// Option configures a SyncEngine beyond its Config.
type Option func(*SyncEngine)

// WithLogger overrides the process logger.
func WithLogger(logger log.Log) Option {
	return func(e *SyncEngine) { e.logger = logger }
}

// WithEntityBuilder installs the component builder invoked for every entity
// the engine constructs.
func WithEntityBuilder(builder EntityBuilder) Option {
	return func(e *SyncEngine) { e.builder = builder }
}

// WithSpatial installs the external spatial registry bodies are mirrored
// into.
func WithSpatial(registry spatial.Registry) Option {
	return func(e *SyncEngine) { e.spatial = registry }
}

// SyncEngine owns the entity directory, the snapshot history, and the
// interpolation engine, and runs the sync protocol state machine. All
// mutation happens on the tick goroutine; the network side only appends to
// the inbox.
type SyncEngine struct {
	cfg       Config
	logger    log.Log
	sessionID string

	directory *entity.Directory
	history   *snapshot.History
	interp    *interp.Engine
	ping      *netstats.PingTracker
	loss      *netstats.LossWindow
	inbox     *Inbox
	source    protocol.Source
	spatial   spatial.Registry
	builder   EntityBuilder

	state     ConnectionState
	localID   string
	winner    string
	lastTick  time.Time
	lastApply uint64

	aggregates map[string]float64
}

// New constructs a SyncEngine from cfg and the transport boundary.
func New(cfg Config, source protocol.Source, opts ...Option) *SyncEngine {
	capacity := cfg.HistoryCapacity
	if capacity == 0 {
		capacity = snapshot.HistoryCapacity(cfg.SyncRateHz)
	}
	e := &SyncEngine{
		cfg:       cfg,
		logger:    log.Provide(),
		sessionID: uuid.NewString(),
		directory: entity.NewDirectory(),
		history:   snapshot.NewHistory(capacity),
		interp: interp.NewEngine(interp.Config{
			SyncRateHz:        cfg.SyncRateHz,
			Enabled:           cfg.Interpolate,
			ExtrapolateWindow: cfg.ExtrapolateWindow(),
		}),
		ping:    netstats.NewPingTracker(cfg.PingInterval()),
		loss:    netstats.NewLossWindow(),
		source:  source,
		spatial: spatial.NewMemoryRegistry(),
		builder: func(*entity.Entity, bool) {},
		state:   StateConnecting,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.inbox = NewInbox(cfg.InboxCapacity, e.logger)
	e.logger = e.logger.With(
		log.String("component", "sync_engine"),
		log.String("session", e.sessionID))
	return e
}

// Push hands an inbound envelope to the engine. Safe to call from the
// network goroutine; the envelope is applied on the next tick.
func (e *SyncEngine) Push(env protocol.Envelope) error {
	return e.inbox.Push(env)
}

// Tick is the fixed-rate simulation step: drain the inbox in arrival order,
// apply the newest (optionally interpolated) snapshot, update every entity,
// and emit a ping when due. now must be monotonically non-decreasing across
// calls.
func (e *SyncEngine) Tick(now time.Time) {
	elapsed := 0.0
	if !e.lastTick.IsZero() {
		elapsed = now.Sub(e.lastTick).Seconds()
	}
	e.lastTick = now

	e.inbox.Drain(e.dispatch)
	e.applyLatest(now)

	e.directory.Each(func(_ string, ent *entity.Entity) {
		ent.Update(elapsed)
	})

	if e.state != StateEnded {
		if sentAt, due := e.ping.MaybePing(now); due {
			e.send(protocol.TypePing, protocol.Ping{SentAt: sentAt.UnixMilli()})
		}
	}
}

// Run drives the engine until ctx is done: one goroutine pumps the source
// into the inbox, another ticks at the configured rate.
func (e *SyncEngine) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case env, ok := <-e.source.Receive():
				if !ok {
					return protocol.ErrSourceClosed
				}
				_ = e.Push(env)
			}
		}
	})

	group.Go(func() error {
		ticker := time.NewTicker(e.cfg.TickInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				e.Tick(now)
			}
		}
	})

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// dispatch routes one inbound envelope to its handler. Unknown types are
// logged and skipped; nothing here is fatal.
func (e *SyncEngine) dispatch(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypePlayerCreate:
		e.handleCreate(env)
	case protocol.TypePlayerLeave:
		e.handleLeave(env)
	case protocol.TypeClientSync:
		e.handleSync(env)
	case protocol.TypePong:
		e.handlePong(env)
	case protocol.TypeGameEnd:
		e.handleGameEnd(env)
	default:
		e.logger.Warn("unhandled message type", log.String("type", string(env.Type)))
	}
}

func (e *SyncEngine) handleCreate(env protocol.Envelope) {
	var msg protocol.PlayerCreate
	if err := env.Decode(&msg); err != nil {
		e.logger.Error("malformed create message", log.Error(err))
		return
	}
	if msg.ID == "" {
		e.logger.Error("create message without id")
		return
	}

	ent := e.spawn(msg.ID, msg.Kind, msg.Attrs, true)

	if e.state == StateConnecting {
		e.localID = ent.ID()
		ent.MarkPredicted(e.cfg.PredictedAttributes...)
		e.state = StateReady
		e.send(protocol.TypeClientReady, protocol.ClientReady{})
		e.logger.Info("local entity constructed, ready signal sent",
			log.String("id", ent.ID()), log.String("kind", ent.Kind()))
	}
}

func (e *SyncEngine) handleLeave(env protocol.Envelope) {
	var msg protocol.PlayerLeave
	if err := env.Decode(&msg); err != nil {
		e.logger.Error("malformed leave message", log.Error(err))
		return
	}
	// Idempotent in every connection state.
	e.retire(msg.ID)
}

func (e *SyncEngine) handleSync(env protocol.Envelope) {
	if e.state == StateEnded {
		return
	}
	var state snapshot.WorldState
	if err := env.Decode(&state); err != nil {
		e.logger.Error("malformed sync message", log.Error(err))
		return
	}
	state.Digest = snapshot.Digest(env.Payload)
	if err := e.history.Record(&state); err != nil {
		e.logger.Debug("snapshot rejected",
			log.Uint64("sequence", state.Sequence), log.Error(err))
		return
	}
	e.loss.Observe(state.Sequence)
}

func (e *SyncEngine) handlePong(env protocol.Envelope) {
	var msg protocol.Pong
	if err := env.Decode(&msg); err != nil {
		e.logger.Error("malformed pong message", log.Error(err))
		return
	}
	e.ping.ObservePong(time.UnixMilli(msg.SentAt), time.Now())
}

func (e *SyncEngine) handleGameEnd(env protocol.Envelope) {
	var msg protocol.GameEnd
	if err := env.Decode(&msg); err != nil {
		e.logger.Error("malformed game end message", log.Error(err))
		return
	}
	e.winner = msg.Winner
	e.retire(e.localID)
	e.state = StateEnded
	e.logger.Info("session ended", log.String("winner", msg.Winner))
}

// applyLatest reads the newest confirmed state, interpolating between the
// trailing snapshot pair when eligible, and forwards per-entity diffs into
// the directory. Runs once per tick; never from a network handler.
func (e *SyncEngine) applyLatest(now time.Time) {
	if e.state != StateReady && e.state != StateSynced {
		return
	}
	next := e.history.Last()
	if next == nil {
		return
	}

	applied := next
	if e.interp.CanInterpolate(e.history, now) {
		prev := e.history.Previous()
		factor := e.interp.Factor(prev, next, e.lastTick)
		applied = e.interp.Blend(prev, next, factor)
	} else if e.interp.CanExtrapolate(e.history, now) {
		applied = e.interp.Extrapolate(e.history, now)
	}

	e.reconcile(applied)

	if e.state == StateReady {
		e.state = StateSynced
		e.logger.Info("first snapshot applied", log.Uint64("sequence", next.Sequence))
	}
	e.lastApply = next.Sequence
	if applied.Aggregates != nil {
		e.aggregates = applied.Aggregates
	}
}

// reconcile merges one (possibly synthetic) snapshot into the directory.
// Unknown ids are created lazily; entities absent from the snapshot are
// left alone, since only an explicit leave retires them.
func (e *SyncEngine) reconcile(state *snapshot.WorldState) {
	for id, entState := range state.Entities {
		ent := e.directory.Get(id)
		if ent == nil {
			ent = e.spawn(id, entState.Kind, nil, false)
		}
		ent.Sync(entState.Attrs)
		e.mirrorBody(ent)
	}
}

// spawn constructs an entity, runs the component builder, applies initial
// attributes, and registers it with the directory and spatial registry.
func (e *SyncEngine) spawn(id, kind string, attrs entity.Attributes, isLocal bool) *entity.Entity {
	ent := entity.New(id, kind)
	e.builder(ent, isLocal)
	if len(attrs) > 0 {
		ent.Attrs().Merge(attrs)
	}
	ent = e.directory.Add(id, ent)
	e.mirrorBody(ent)
	e.logger.Debug("entity spawned",
		log.String("id", id), log.String("kind", kind), log.Bool("local", isLocal))
	return ent
}

// retire removes id from the directory and the spatial registry. No-op for
// unknown or already-retired ids.
func (e *SyncEngine) retire(id string) {
	if id == "" {
		return
	}
	e.directory.Remove(id)
	e.spatial.Unregister(id)
}

// mirrorBody pushes the entity's position into the spatial registry when it
// carries numeric coordinates.
func (e *SyncEngine) mirrorBody(ent *entity.Entity) {
	x, okX := entity.Float64(ent.Attrs().Get("x"))
	y, okY := entity.Float64(ent.Attrs().Get("y"))
	if !okX || !okY {
		return
	}
	e.spatial.Register(spatial.BodyDescriptor{
		ID:   ent.ID(),
		Kind: ent.Kind(),
		X:    x,
		Y:    y,
	})
}

func (e *SyncEngine) send(msgType protocol.MessageType, payload any) {
	if e.source == nil {
		return
	}
	env, err := protocol.NewEnvelope(msgType, payload)
	if err != nil {
		e.logger.Error("encode outbound message failed",
			log.String("type", string(msgType)), log.Error(err))
		return
	}
	if err := e.source.Send(env); err != nil {
		e.logger.Warn("send failed", log.String("type", string(msgType)), log.Error(err))
	}
}

// State returns the current connection state.
func (e *SyncEngine) State() ConnectionState {
	return e.state
}

// LocalID returns the id of the locally-controlled entity, empty before the
// creation message arrives.
func (e *SyncEngine) LocalID() string {
	return e.localID
}

// Winner returns the winner announced by game.end, empty until then.
func (e *SyncEngine) Winner() string {
	return e.winner
}

// Directory exposes the live entity directory.
func (e *SyncEngine) Directory() *entity.Directory {
	return e.directory
}

// History exposes the snapshot history.
func (e *SyncEngine) History() *snapshot.History {
	return e.history
}

// Stats is a point-in-time view of the session used for HUDs and logs.
type Stats struct {
	State         ConnectionState
	Entities      int
	LastSequence  uint64
	RTT           time.Duration
	LossRatio     float64
	Aggregates    map[string]float64
	InboxDropped  uint64
	HistoryStored int
}

// Stats snapshots the session counters.
func (e *SyncEngine) Stats() Stats {
	return Stats{
		State:         e.state,
		Entities:      e.directory.Size(),
		LastSequence:  e.lastApply,
		RTT:           e.ping.RTT(),
		LossRatio:     e.loss.Ratio(),
		Aggregates:    e.aggregates,
		InboxDropped:  e.inbox.Dropped(),
		HistoryStored: e.history.Size(),
	}
}
