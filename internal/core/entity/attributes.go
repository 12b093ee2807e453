package entity

// Attributes is a partial attribute map, the shape carried by snapshot diffs.
// An attribute absent from the map means "unchanged", never "cleared".
type Attributes map[string]any

// Store is the mutable attribute state owned by an entity. Values are
// scalars (numbers, strings, opaque tokens); an attribute must keep its type
// for the whole session so numeric attributes stay interpolatable.
type Store struct {
	values map[string]any
}

func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Get returns the value for name, or nil when the attribute is unset.
func (s *Store) Get(name string) any {
	return s.values[name]
}

// Lookup returns the value for name and whether it is set.
func (s *Store) Lookup(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// GetAll returns the subset of the store matching names. Unset names are
// omitted from the result.
func (s *Store) GetAll(names ...string) Attributes {
	out := make(Attributes, len(names))
	for _, name := range names {
		if v, ok := s.values[name]; ok {
			out[name] = v
		}
	}
	return out
}

func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

// Merge overwrites the store attribute-wise with diff. Attributes absent
// from diff keep their current value.
func (s *Store) Merge(diff Attributes) {
	for name, value := range diff {
		s.values[name] = value
	}
}

// Snapshot returns a copy of the full attribute map.
func (s *Store) Snapshot() Attributes {
	out := make(Attributes, len(s.values))
	for name, value := range s.values {
		out[name] = value
	}
	return out
}

// Float64 coerces a scalar attribute value to float64. JSON decoding hands
// back float64, but values set locally may be any Go numeric type.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
