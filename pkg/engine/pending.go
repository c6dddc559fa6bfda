package engine

// pendingEvent is a snapshot of an event that arrived while the engine was
// stuck. Arguments are opaque to the scheduler.
type pendingEvent struct {
	object *Object
	event  string
	args   []any
}

// pendingQueue is a FIFO buffer of events deferred during a stuck episode.
type pendingQueue struct {
	events []pendingEvent
}

func (q *pendingQueue) enqueue(obj *Object, event string, args []any) {
	q.events = append(q.events, pendingEvent{object: obj, event: event, args: args})
}

// pop removes and returns the head entry.
func (q *pendingQueue) pop() (pendingEvent, bool) {
	if len(q.events) == 0 {
		return pendingEvent{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

func (q *pendingQueue) len() int {
	return len(q.events)
}

func (q *pendingQueue) clear() {
	q.events = nil
}
