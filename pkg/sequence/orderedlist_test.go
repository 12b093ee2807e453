package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedList(t *testing.T) {
	t.Run("OrderedList: insertion order preserved", func(t *testing.T) {
		list := NewOrderedList[int]()
		for i := 1; i <= 5; i++ {
			list.Add(i)
		}
		require.Equal(t, 5, list.Size())

		var seen []int
		list.Each(func(v int) { seen = append(seen, v) })
		require.Equal(t, []int{1, 2, 3, 4, 5}, seen)

		last, ok := list.Last()
		require.True(t, ok)
		require.Equal(t, 5, last)
	})

	t.Run("OrderedList: remove keeps survivor order", func(t *testing.T) {
		list := NewOrderedList[string]()
		list.Add("a")
		list.Add("b")
		list.Add("c")

		require.True(t, list.Remove(func(v string) bool { return v == "b" }))
		require.False(t, list.Remove(func(v string) bool { return v == "b" }))

		var seen []string
		list.Each(func(v string) { seen = append(seen, v) })
		require.Equal(t, []string{"a", "c"}, seen)
	})

	t.Run("OrderedList: removal during iteration is safe", func(t *testing.T) {
		list := NewOrderedList[int]()
		for i := 1; i <= 4; i++ {
			list.Add(i)
		}
		var seen []int
		list.Each(func(v int) {
			seen = append(seen, v)
			if v == 2 {
				list.Remove(func(x int) bool { return x == 3 })
			}
		})
		// The snapshot taken before iterating still yields 3.
		require.Equal(t, []int{1, 2, 3, 4}, seen)
		require.Equal(t, 3, list.Size())
	})

	t.Run("OrderedList: empty and clear", func(t *testing.T) {
		list := NewOrderedList[int]()
		_, ok := list.Last()
		require.False(t, ok)

		list.Add(7)
		list.Clear()
		require.Equal(t, 0, list.Size())
		_, ok = list.Last()
		require.False(t, ok)
	})
}
