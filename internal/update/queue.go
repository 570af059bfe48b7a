// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package update

import (
	"context"
	"sync"
)

// Update reports the newest output of one item.
type Update struct {
	Position int    // Slot of the item that produced the message.
	Message  string // Output with the trailing line ending removed.
}

// Source is the consumer side of a Queue.
type Source interface {
	// Recv blocks until an update is available. ok is false once every sender
	// has been closed and all pending updates have been received.
	Recv(ctx context.Context) (u Update, ok bool, err error)
	// TryRecv returns a pending update without blocking.
	TryRecv() (u Update, ok bool)
}

var _ Source = (*Queue)(nil)

// Queue is an unbounded many-producer, single-consumer queue of updates.
// Updates from one Sender are received in the order they were sent.
// Sends never block on capacity.
type Queue struct {
	mu      sync.Mutex
	pending []Update
	senders int
	sealed  bool
	wake    chan struct{} // Buffered with capacity 1, signals the consumer.
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Sender registers a new producer that posts updates for position.
// Senders must be registered before Seal is called.
func (q *Queue) Sender(position int) *Sender {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.senders++

	return &Sender{q: q, position: position}
}

// Seal records that no more senders will be registered. Until the queue is sealed,
// Recv keeps waiting even when no senders are alive.
func (q *Queue) Seal() {
	q.mu.Lock()
	q.sealed = true
	q.mu.Unlock()
	q.notify()
}

// Len returns the number of updates waiting to be received.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// Recv implements Source.
func (q *Queue) Recv(ctx context.Context) (Update, bool, error) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			u := q.pending[0]
			q.pending[0] = Update{}
			q.pending = q.pending[1:]
			q.mu.Unlock()

			return u, true, nil
		}

		if q.sealed && q.senders == 0 {
			q.mu.Unlock()
			return Update{}, false, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Update{}, false, ctx.Err()
		case <-q.wake:
		}
	}
}

// TryRecv implements Source.
func (q *Queue) TryRecv() (Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Update{}, false
	}

	u := q.pending[0]
	q.pending[0] = Update{}
	q.pending = q.pending[1:]

	return u, true
}

func (q *Queue) push(u Update) {
	q.mu.Lock()
	q.pending = append(q.pending, u)
	q.mu.Unlock()
	q.notify()
}

func (q *Queue) release() {
	q.mu.Lock()
	q.senders--
	q.mu.Unlock()
	q.notify()
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
}

// Sender posts updates for a single position. It is safe for concurrent use,
// though each item normally owns exactly one Sender.
type Sender struct {
	q        *Queue
	position int
	once     sync.Once
	mu       sync.RWMutex
	closed   bool
}

// Position returns the slot this sender reports for.
func (s *Sender) Position() int {
	return s.position
}

// Send posts message for the sender's position. It returns false if the sender
// has already been closed, in which case the message is dropped.
func (s *Sender) Send(message string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	s.q.push(Update{Position: s.position, Message: message})

	return true
}

// Close drops the sender. It is safe to call more than once.
func (s *Sender) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.q.release()
	})
}
