package handicraft

import (
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// WaitingQueue is the line of customers at the counter: a bounded FIFO of
// customer ids where each id appears at most once.
//
// Not safe for concurrent use; it lives inside SharedState and is only
// touched while the gate is held.
type WaitingQueue struct {
	slots  []int
	queued []bool
	head   int
	size   int
}

// NewWaitingQueue creates an empty queue able to hold every customer once
func NewWaitingQueue(capacity int) WaitingQueue {
	return WaitingQueue{
		slots:  make([]int, capacity),
		queued: make([]bool, capacity),
	}
}

func (q *WaitingQueue) Len() int      { return q.size }
func (q *WaitingQueue) Cap() int      { return len(q.slots) }
func (q *WaitingQueue) IsEmpty() bool { return q.size == 0 }
func (q *WaitingQueue) IsFull() bool  { return q.size == len(q.slots) }

// Enqueue appends a customer id at the tail
func (q *WaitingQueue) Enqueue(customerID int) error {
	if customerID < 0 || customerID >= len(q.queued) {
		return shared.NewInvalidAgentIDError(string(RoleCustomer), customerID, len(q.queued))
	}
	if q.queued[customerID] {
		return shared.NewQueueOverflowError(customerID, "already waiting at the counter")
	}
	if q.IsFull() {
		return shared.NewQueueOverflowError(customerID, "queue is full")
	}

	q.slots[(q.head+q.size)%len(q.slots)] = customerID
	q.queued[customerID] = true
	q.size++
	return nil
}

// Dequeue removes the customer id at the head
func (q *WaitingQueue) Dequeue() (int, error) {
	if q.IsEmpty() {
		return 0, shared.NewInconsistentQueueError("no customer is waiting at the counter")
	}

	id := q.slots[q.head]
	q.queued[id] = false
	q.head = (q.head + 1) % len(q.slots)
	q.size--
	return id, nil
}

// Items returns the waiting ids from head to tail
func (q *WaitingQueue) Items() []int {
	items := make([]int, 0, q.size)
	for i := 0; i < q.size; i++ {
		items = append(items, q.slots[(q.head+i)%len(q.slots)])
	}
	return items
}
