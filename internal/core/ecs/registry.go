package ecs

// Hooks observe structural changes of a Registry. Added fires after an item
// joins the active set, Removed after it has left it.
type Hooks[T any] struct {
	Added   func(EntityID, *T)
	Removed func(EntityID, *T)
}

type opKind uint8

const (
	opAdd opKind = iota
	opRemove
)

type pendingOp[T any] struct {
	kind opKind
	id   EntityID
	item *T
}

// Registry is the ordered active set of entities. Iteration follows
// registration order. Add/Remove issued while an Each pass is running are
// queued and applied by Flush, so a pass never observes its own mutations.
type Registry[T any] struct {
	pool    *EntityPool
	items   *Store[T]
	pending []pendingOp[T]
	depth   int // nested Each passes in progress
	hooks   Hooks[T]
}

func NewRegistry[T any](hooks Hooks[T]) *Registry[T] {
	return &Registry[T]{
		pool:    NewEntityPool(),
		items:   NewStore[T](),
		pending: make([]pendingOp[T], 0, 16),
		hooks:   hooks,
	}
}

// Create reserves an ID. The entity is not active until Add.
func (r *Registry[T]) Create() EntityID {
	return r.pool.Create()
}

// Add activates item under id, or queues it when called during Each.
func (r *Registry[T]) Add(id EntityID, item *T) {
	if r.depth > 0 {
		r.pending = append(r.pending, pendingOp[T]{kind: opAdd, id: id, item: item})
		return
	}
	r.insert(id, item)
}

// Remove deactivates id, or queues it when called during Each.
// Removing an absent or already removed entity is a no-op.
func (r *Registry[T]) Remove(id EntityID) {
	if r.depth > 0 {
		r.pending = append(r.pending, pendingOp[T]{kind: opRemove, id: id})
		return
	}
	r.delete(id)
}

// Get returns the active item for id.
func (r *Registry[T]) Get(id EntityID) (*T, bool) {
	return r.items.Get(id)
}

func (r *Registry[T]) Has(id EntityID) bool {
	return r.items.Has(id)
}

// Len returns the number of active entities.
func (r *Registry[T]) Len() int {
	return r.items.Len()
}

// Pending returns the number of queued structural changes.
func (r *Registry[T]) Pending() int {
	return len(r.pending)
}

// Each visits every active entity once in registration order.
func (r *Registry[T]) Each(fn func(EntityID, *T)) {
	r.depth++
	defer func() { r.depth-- }()

	r.items.Each(fn)
}

// Flush applies queued changes in the order they were issued and returns
// how many were applied. Must not be called from inside Each.
func (r *Registry[T]) Flush() int {
	if r.depth > 0 {
		return 0
	}
	n := len(r.pending)
	for i := 0; i < len(r.pending); i++ {
		op := r.pending[i]
		switch op.kind {
		case opAdd:
			r.insert(op.id, op.item)
		case opRemove:
			r.delete(op.id)
		}
		r.pending[i] = pendingOp[T]{}
	}
	r.pending = r.pending[:0]
	return n
}

func (r *Registry[T]) insert(id EntityID, item *T) {
	if !r.pool.Alive(id) || r.items.Has(id) {
		return
	}
	r.items.Set(id, item)
	if r.hooks.Added != nil {
		r.hooks.Added(id, item)
	}
}

func (r *Registry[T]) delete(id EntityID) {
	item, ok := r.items.Get(id)
	if !ok {
		// Reserved but never added: free the slot so it can be reused.
		r.pool.Destroy(id)
		return
	}
	r.items.Remove(id)
	r.pool.Destroy(id)
	if r.hooks.Removed != nil {
		r.hooks.Removed(id, item)
	}
}
