package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Message identifies a unit of document-processing work.
type Message struct {
	DocumentID string    `json:"documentId"`
	RequestID  string    `json:"requestId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Handler processes one enqueued payload.
type Handler func(ctx context.Context, msg Message, raw []byte) error

// Task is the completion handle returned by Enqueue. Callers that need the
// processing outcome wait on it; the upload path deliberately does not.
type Task struct {
	Msg  Message
	raw  []byte
	done chan struct{}
	err  error
}

// Done is closed when processing finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the processing error, valid after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until processing finishes or the context is cancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client enqueues work and hands back a completion handle.
type Client interface {
	Enqueue(ctx context.Context, msg Message, raw []byte) (*Task, error)
}

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// Queue is an in-process task queue backed by a worker pool. Work outlives
// the request that enqueued it; worker contexts are independent of caller
// contexts.
type Queue struct {
	handler Handler
	tasks   chan *Task

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a queue with the given handler and worker count.
func New(handler Handler, workers int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{
		handler: handler,
		tasks:   make(chan *Task, 64),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Enqueue submits a payload for processing and returns its handle.
func (q *Queue) Enqueue(ctx context.Context, msg Message, raw []byte) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now().UTC()
	}
	task := &Task{Msg: msg, raw: raw, done: make(chan struct{})}
	q.tasks <- task
	q.mu.Unlock()

	return task, nil
}

// Close stops accepting work and waits for in-flight tasks to drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for task := range q.tasks {
		task.err = q.handler(context.Background(), task.Msg, task.raw)
		task.raw = nil
		close(task.done)
	}
}

var _ Client = (*Queue)(nil)
