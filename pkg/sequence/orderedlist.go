package sequence

// OrderedList is an insertion-ordered sequence. Iteration order is the order
// of Add calls; Remove preserves the relative order of the survivors.
type OrderedList[T any] struct {
	items []T
}

func NewOrderedList[T any]() *OrderedList[T] {
	return &OrderedList[T]{}
}

// Add appends value to the end of the list.
func (l *OrderedList[T]) Add(value T) {
	l.items = append(l.items, value)
}

// Remove deletes the first element for which match returns true and reports
// whether anything was removed.
func (l *OrderedList[T]) Remove(match func(T) bool) bool {
	for i, item := range l.items {
		if match(item) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Each applies fn to every element in insertion order. Iteration runs over a
// snapshot of the backing slice, so fn may call Remove without corrupting the
// remaining traversal.
func (l *OrderedList[T]) Each(fn func(T)) {
	snapshot := make([]T, len(l.items))
	copy(snapshot, l.items)
	for _, item := range snapshot {
		fn(item)
	}
}

func (l *OrderedList[T]) Size() int {
	return len(l.items)
}

// Last returns the most recently added element.
func (l *OrderedList[T]) Last() (T, bool) {
	if len(l.items) == 0 {
		var zero T
		return zero, false
	}
	return l.items[len(l.items)-1], true
}

func (l *OrderedList[T]) Clear() {
	l.items = l.items[:0]
}
