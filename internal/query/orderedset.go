package query

// orderedSet keeps the first value seen for each key, in insertion order.
type orderedSet[T any] struct {
	key    func(T) string
	index  map[string]int
	values []T
}

func newOrderedSet[T any](key func(T) string) *orderedSet[T] {
	return &orderedSet[T]{key: key, index: make(map[string]int)}
}

// Add inserts v unless its key is already present. It reports whether v was added.
func (s *orderedSet[T]) Add(v T) bool {
	k := s.key(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.values)
	s.values = append(s.values, v)
	return true
}

func (s *orderedSet[T]) Contains(k string) bool {
	_, ok := s.index[k]
	return ok
}

func (s *orderedSet[T]) Len() int { return len(s.values) }

// Values returns the members in insertion order.
func (s *orderedSet[T]) Values() []T { return s.values }
