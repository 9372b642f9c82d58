package input

// Queue is a bounded multi-producer, single-consumer event queue. Producers
// never block: when the queue is full the event is dropped.
type Queue struct {
	ch chan Event
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push enqueues ev and reports whether it was accepted.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Drain appends up to max queued events to dst without blocking.
// max <= 0 drains everything currently queued.
func (q *Queue) Drain(dst []Event, max int) []Event {
	for n := 0; max <= 0 || n < max; n++ {
		select {
		case ev := <-q.ch:
			dst = append(dst, ev)
		default:
			return dst
		}
	}
	return dst
}

// Len returns the number of queued events.
func (q *Queue) Len() int { return len(q.ch) }
