package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory(t *testing.T) {
	t.Run("Directory: add then get returns the entity", func(t *testing.T) {
		d := NewDirectory()
		e := New("p1", "player")
		d.Add("p1", e)
		require.Same(t, e, d.Get("p1"))
		require.Equal(t, 1, d.Size())
	})

	t.Run("Directory: duplicate add is update-in-place", func(t *testing.T) {
		// Duplicate ids merge into the incumbent rather than overwriting
		// or ignoring, so the incumbent's components are never orphaned.
		d := NewDirectory()
		incumbent := New("p1", "player")
		incumbent.Attach(&updateOnly{})
		incumbent.Attrs().Set("x", 1.0)
		d.Add("p1", incumbent)

		newcomer := New("p1", "player")
		newcomer.Attrs().Set("x", 7.0)
		got := d.Add("p1", newcomer)

		require.Same(t, incumbent, got)
		require.Same(t, incumbent, d.Get("p1"))
		require.Equal(t, 7.0, incumbent.Attrs().Get("x"))
		require.Equal(t, 1, incumbent.Components())
		require.Equal(t, 1, d.Size())
	})

	t.Run("Directory: remove is idempotent", func(t *testing.T) {
		d := NewDirectory()
		d.Add("p1", New("p1", "player"))
		d.Remove("p1")
		require.Nil(t, d.Get("p1"))

		// Second remove and remove of a never-existing id are no-ops.
		d.Remove("p1")
		d.Remove("ghost")
		require.Equal(t, 0, d.Size())
	})

	t.Run("Directory: each iterates in insertion order", func(t *testing.T) {
		d := NewDirectory()
		for _, id := range []string{"c", "a", "b"} {
			d.Add(id, New(id, "player"))
		}
		var seen []string
		d.Each(func(id string, _ *Entity) { seen = append(seen, id) })
		require.Equal(t, []string{"c", "a", "b"}, seen)
	})

	t.Run("Directory: removal during each does not corrupt traversal", func(t *testing.T) {
		d := NewDirectory()
		for _, id := range []string{"a", "b", "c"} {
			d.Add(id, New(id, "player"))
		}
		var seen []string
		d.Each(func(id string, _ *Entity) {
			seen = append(seen, id)
			if id == "a" {
				d.Remove("b")
			}
		})
		require.Equal(t, []string{"a", "c"}, seen)
		require.Equal(t, 2, d.Size())
	})

	t.Run("Directory: keys is a point-in-time snapshot", func(t *testing.T) {
		d := NewDirectory()
		d.Add("a", New("a", "player"))
		d.Add("b", New("b", "player"))
		keys := d.Keys()
		d.Remove("a")
		require.Equal(t, []string{"a", "b"}, keys)
		require.Equal(t, []string{"b"}, d.Keys())
	})
}
