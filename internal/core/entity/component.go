package entity

// Component is a behavior unit owned by exactly one entity. A component
// declares which hooks it implements by satisfying the capability interfaces
// below; the owning entity invokes only the hooks a component exposes.
type Component interface{}

// Initializer is the capability invoked exactly once, at attach time.
type Initializer interface {
	Init(owner *Entity)
}

// Updater is the capability driven by the fixed-rate tick. Updaters run in
// attachment order and may read or write the owner's attribute store, but
// must not detach other components.
type Updater interface {
	Update(owner *Entity, elapsed float64)
}

// Syncer is the capability invoked after a server attribute diff has been
// merged into the owner, so presentation or physics components can react to
// the new values.
type Syncer interface {
	Sync(owner *Entity, diff Attributes)
}

// Capability returns the first attached component of e implementing T.
// Absence is a normal outcome, not an error.
func Capability[T any](e *Entity) (T, bool) {
	var found T
	ok := false
	e.components.Each(func(c Component) {
		if ok {
			return
		}
		if cap, is := c.(T); is {
			found = cap
			ok = true
		}
	})
	return found, ok
}
