package action

import "sync"

// Queue is the process-wide ordered set of pending actions.
//
// Handlers push concurrently and never block. Exactly one dispatch loop
// drains it with Take, which atomically swaps the backing slice for an
// empty one: a push racing a take lands either in the taken batch or in
// the next one, never in both and never nowhere.
type Queue struct {
	mu      sync.Mutex
	pending []Action
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an action in FIFO order.
func (q *Queue) Push(a Action) {
	q.mu.Lock()
	q.pending = append(q.pending, a)
	q.mu.Unlock()
}

// PushAll appends several actions preserving their order.
func (q *Queue) PushAll(actions ...Action) {
	q.mu.Lock()
	q.pending = append(q.pending, actions...)
	q.mu.Unlock()
}

// Take removes and returns all pending actions in push order.
// The queue is left empty; actions pushed while the caller processes the
// batch are picked up by the next Take.
func (q *Queue) Take() []Action {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	return batch
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
