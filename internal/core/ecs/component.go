package ecs

type storeEntry[T any] struct {
	id   EntityID
	item *T
}

// Store holds one item per entity, looked up by slot index and kept in
// insertion order. Lookups compare the full ID, so an ID from an older
// generation of a slot never resolves.
type Store[T any] struct {
	slots []int32 // slot index -> position in dense, -1 when empty
	dense []storeEntry[T]
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		slots: make([]int32, 0, 64),
		dense: make([]storeEntry[T], 0, 64),
	}
}

// Set stores item under id. Replacing an existing item keeps its position.
func (s *Store[T]) Set(id EntityID, item *T) {
	i := int(id.Index())
	for len(s.slots) <= i {
		s.slots = append(s.slots, -1)
	}
	if p := s.slots[i]; p >= 0 {
		s.dense[p] = storeEntry[T]{id: id, item: item}
		return
	}
	s.slots[i] = int32(len(s.dense))
	s.dense = append(s.dense, storeEntry[T]{id: id, item: item})
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	p, ok := s.pos(id)
	if !ok {
		return nil, false
	}
	return s.dense[p].item, true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.pos(id)
	return ok
}

// Remove drops id and closes the gap, preserving the order of the rest.
func (s *Store[T]) Remove(id EntityID) {
	p, ok := s.pos(id)
	if !ok {
		return
	}
	copy(s.dense[p:], s.dense[p+1:])
	s.dense[len(s.dense)-1] = storeEntry[T]{}
	s.dense = s.dense[:len(s.dense)-1]
	s.slots[id.Index()] = -1
	for j := p; j < len(s.dense); j++ {
		s.slots[s.dense[j].id.Index()] = int32(j)
	}
}

func (s *Store[T]) Len() int { return len(s.dense) }

// Each visits items in insertion order. fn must not modify the store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, e := range s.dense {
		fn(e.id, e.item)
	}
}

func (s *Store[T]) pos(id EntityID) (int, bool) {
	i := int(id.Index())
	if i >= len(s.slots) {
		return 0, false
	}
	p := s.slots[i]
	if p < 0 || s.dense[p].id != id {
		return 0, false
	}
	return int(p), true
}
