package event

import (
	"sort"
	"sync"
)

// Topic names a bus channel carrying values of type T.
type Topic[T any] struct {
	name string
}

func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

func (t Topic[T]) Name() string { return t.name }

// Event is one published topic value.
type Event struct {
	Topic string
	Value any
}

type handler struct {
	id    uint64
	topic string // "" subscribes to every topic
	fn    func(Event)
}

type delivery struct {
	ev     Event
	target *handler // nil: every subscriber of ev.Topic
}

// Bus is a fire-and-forget topic bus. Publish records the latest value of a
// topic immediately and queues the event; Flush delivers queued events to
// subscribers in publish order. A subscriber joining late receives the
// latest value of its topic on the next Flush.
//
// Publish and Flush are called from the frame goroutine. Subscribe,
// unsubscribe, Latest and Snapshot are safe from any goroutine.
type Bus struct {
	mu       sync.Mutex
	latest   map[string]any
	queue    []delivery
	handlers map[string][]*handler
	wildcard []*handler
	nextID   uint64
}

func NewBus() *Bus {
	return &Bus{
		latest:   make(map[string]any),
		queue:    make([]delivery, 0, 32),
		handlers: make(map[string][]*handler),
	}
}

// Publish sets the latest value of topic t and queues it for delivery.
func Publish[T any](b *Bus, t Topic[T], v T) {
	b.publish(t.name, v)
}

// Subscribe registers fn for topic t and returns a func that removes it.
func Subscribe[T any](b *Bus, t Topic[T], fn func(T)) func() {
	return b.subscribe(t.name, func(ev Event) {
		if v, ok := ev.Value.(T); ok {
			fn(v)
		}
	})
}

// Latest returns the most recent value published on t.
func Latest[T any](b *Bus, t Topic[T]) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero T
	raw, ok := b.latest[t.name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// SubscribeAll registers fn for every topic. On the next Flush it receives
// the latest value of each topic published so far, sorted by topic name.
func (b *Bus) SubscribeAll(fn func(Event)) func() {
	return b.subscribe("", fn)
}

// Snapshot returns the latest value of every topic, sorted by topic name.
func (b *Bus) Snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Flush delivers every queued event and returns how many events were
// delivered to at least one subscriber. Handlers run without the bus lock
// held, so they may publish or subscribe; events they publish are delivered
// on the following Flush.
func (b *Bus) Flush() int {
	b.mu.Lock()
	queue := b.queue
	b.queue = make([]delivery, 0, cap(queue))
	type call struct {
		hs []*handler
		ev Event
	}
	calls := make([]call, 0, len(queue))
	for _, d := range queue {
		if d.target != nil {
			calls = append(calls, call{hs: []*handler{d.target}, ev: d.ev})
			continue
		}
		hs := make([]*handler, 0, len(b.handlers[d.ev.Topic])+len(b.wildcard))
		hs = append(hs, b.handlers[d.ev.Topic]...)
		hs = append(hs, b.wildcard...)
		calls = append(calls, call{hs: hs, ev: d.ev})
	}
	b.mu.Unlock()

	delivered := 0
	for _, c := range calls {
		if len(c.hs) == 0 {
			continue
		}
		delivered++
		for _, h := range c.hs {
			h.fn(c.ev)
		}
	}
	return delivered
}

func (b *Bus) publish(topic string, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest[topic] = v
	b.queue = append(b.queue, delivery{ev: Event{Topic: topic, Value: v}})
}

func (b *Bus) subscribe(topic string, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	h := &handler{id: b.nextID, topic: topic, fn: fn}
	// A topic with a broadcast still queued reaches h through it, and the
	// last one queued carries the latest value, so no replay is needed.
	pending := b.queuedTopicsLocked()
	if topic == "" {
		b.wildcard = append(b.wildcard, h)
		for _, ev := range b.snapshotLocked() {
			if !pending[ev.Topic] {
				b.queue = append(b.queue, delivery{ev: ev, target: h})
			}
		}
	} else {
		b.handlers[topic] = append(b.handlers[topic], h)
		if v, ok := b.latest[topic]; ok && !pending[topic] {
			b.queue = append(b.queue, delivery{ev: Event{Topic: topic, Value: v}, target: h})
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(h) })
	}
}

func (b *Bus) unsubscribe(h *handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h.topic == "" {
		b.wildcard = removeHandler(b.wildcard, h)
	} else {
		b.handlers[h.topic] = removeHandler(b.handlers[h.topic], h)
	}
	// Drop replays still queued for this handler.
	kept := b.queue[:0]
	for _, d := range b.queue {
		if d.target != h {
			kept = append(kept, d)
		}
	}
	b.queue = kept
}

func (b *Bus) queuedTopicsLocked() map[string]bool {
	topics := make(map[string]bool, len(b.queue))
	for _, d := range b.queue {
		if d.target == nil {
			topics[d.ev.Topic] = true
		}
	}
	return topics
}

func (b *Bus) snapshotLocked() []Event {
	out := make([]Event, 0, len(b.latest))
	for name, v := range b.latest {
		out = append(out, Event{Topic: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

func removeHandler(hs []*handler, h *handler) []*handler {
	for i, other := range hs {
		if other == h {
			out := make([]*handler, 0, len(hs)-1)
			out = append(out, hs[:i]...)
			return append(out, hs[i+1:]...)
		}
	}
	return hs
}
