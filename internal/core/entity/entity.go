package entity

import (
	"github.com/driftsync/driftsync/pkg/sequence"
)

// Entity is an identity plus a mutable attribute store and an ordered set of
// components. The id is assigned by the authoritative side and echoed in
// every snapshot; components are owned exclusively and never outlive the
// entity.
type Entity struct {
	id         string
	kind       string
	attrs      *Store
	components *sequence.OrderedList[Component]

	// predicted names attributes driven by local input prediction; Sync
	// leaves them alone so the server diff cannot yank a predicted entity
	// backwards. Server-authoritative attributes are everything else.
	predicted map[string]struct{}
}

func New(id, kind string) *Entity {
	return &Entity{
		id:         id,
		kind:       kind,
		attrs:      NewStore(),
		components: sequence.NewOrderedList[Component](),
		predicted:  make(map[string]struct{}),
	}
}

func (e *Entity) ID() string   { return e.id }
func (e *Entity) Kind() string { return e.kind }

// Attrs exposes the entity's attribute store.
func (e *Entity) Attrs() *Store { return e.attrs }

// Attach binds component to this entity and calls Init exactly once if the
// component implements it. Attachment order defines Update invocation order.
func (e *Entity) Attach(component Component) {
	e.components.Add(component)
	if init, ok := component.(Initializer); ok {
		init.Init(e)
	}
}

// Components returns the number of attached components.
func (e *Entity) Components() int {
	return e.components.Size()
}

// MarkPredicted declares attributes as locally predicted: snapshot diffs no
// longer overwrite them. Used for the locally-controlled entity only; which
// attributes are predicted is configuration, not policy baked in here.
func (e *Entity) MarkPredicted(names ...string) {
	for _, name := range names {
		e.predicted[name] = struct{}{}
	}
}

// IsPredicted reports whether name is under local prediction authority.
func (e *Entity) IsPredicted(name string) bool {
	_, ok := e.predicted[name]
	return ok
}

// Update forwards the tick to every attached component implementing Updater,
// in attachment order.
func (e *Entity) Update(elapsed float64) {
	e.components.Each(func(c Component) {
		if up, ok := c.(Updater); ok {
			up.Update(e, elapsed)
		}
	})
}

// Sync merges diff into the attribute store attribute-wise, skipping
// locally-predicted attributes, then notifies every component implementing
// Syncer. Attributes absent from diff are left untouched.
func (e *Entity) Sync(diff Attributes) {
	applied := diff
	if len(e.predicted) > 0 {
		applied = make(Attributes, len(diff))
		for name, value := range diff {
			if !e.IsPredicted(name) {
				applied[name] = value
			}
		}
	}
	e.attrs.Merge(applied)
	e.components.Each(func(c Component) {
		if sy, ok := c.(Syncer); ok {
			sy.Sync(e, applied)
		}
	})
}
