package entity

// Directory is the identity-indexed map of live entities. Insertion order is
// preserved for iteration so update order stays deterministic across ticks.
type Directory struct {
	byID  map[string]*Entity
	order []string
}

func NewDirectory() *Directory {
	return &Directory{byID: make(map[string]*Entity)}
}

// Add registers ent under id. Re-adding an existing id is an update-in-place:
// the incumbent keeps its components and absorbs the newcomer's attributes,
// so duplicate creation messages cannot leak component state.
func (d *Directory) Add(id string, ent *Entity) *Entity {
	if existing, ok := d.byID[id]; ok {
		existing.Sync(ent.Attrs().Snapshot())
		return existing
	}
	d.byID[id] = ent
	d.order = append(d.order, id)
	return ent
}

// Get returns the entity for id, or nil when absent.
func (d *Directory) Get(id string) *Entity {
	return d.byID[id]
}

// Remove deletes id from the directory. Removing an unknown or
// already-removed id is a no-op.
func (d *Directory) Remove(id string) {
	if _, ok := d.byID[id]; !ok {
		return
	}
	delete(d.byID, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Each iterates live entities in insertion order. The id list is snapshotted
// first, so fn may remove entities without corrupting the traversal.
func (d *Directory) Each(fn func(id string, ent *Entity)) {
	ids := make([]string, len(d.order))
	copy(ids, d.order)
	for _, id := range ids {
		if ent, ok := d.byID[id]; ok {
			fn(id, ent)
		}
	}
}

// Keys returns a point-in-time snapshot of the live ids, usable to compute a
// removal set against an incoming snapshot's entity set.
func (d *Directory) Keys() []string {
	ids := make([]string, len(d.order))
	copy(ids, d.order)
	return ids
}

// Size returns the number of live entities.
func (d *Directory) Size() int {
	return len(d.byID)
}
