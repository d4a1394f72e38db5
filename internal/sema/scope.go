package sema

// Scope tracks first-come claims on a key. Member names, member values and
// ordinals all use one: the first holder wins and later claims get the
// previous holder back for the diagnostic.
type Scope[K comparable, V any] struct {
	entries map[K]V
}

func NewScope[K comparable, V any]() *Scope[K, V] {
	return &Scope[K, V]{entries: make(map[K]V)}
}

// Insert claims key. When the key is taken the previous holder is returned
// and the claim is rejected.
func (s *Scope[K, V]) Insert(key K, v V) (prev V, ok bool) {
	if existing, taken := s.entries[key]; taken {
		return existing, false
	}
	s.entries[key] = v
	return prev, true
}

// Lookup finds the holder of key.
func (s *Scope[K, V]) Lookup(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len counts claimed keys.
func (s *Scope[K, V]) Len() int {
	return len(s.entries)
}
