package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"persondir/person"
)

type Kind int

const (
	Load Kind = iota
	Add
	Delete
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "load"
	case Add:
		return "add"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Task is one directory operation. It is created idle, moves to pending
// when queued and ends committed or failed. Done is closed on the terminal
// transition.
type Task struct {
	ID        uuid.UUID
	Kind      Kind
	Person    person.Person // Add: the record to append. Delete: only ID is set.
	CreatedAt time.Time

	mu         sync.Mutex
	state      State
	err        error
	people     []person.Person
	finishedAt time.Time
	done       chan struct{}
}

func New(kind Kind, p person.Person) *Task {
	return &Task{
		ID:        uuid.New(),
		Kind:      kind,
		Person:    p,
		CreatedAt: time.Now().UTC(),
		done:      make(chan struct{}),
	}
}

// Completed returns a task that is already committed with people as its
// result.
func Completed(kind Kind, people []person.Person) *Task {
	t := New(kind, person.Person{})
	t.Transition(Pending)
	t.Commit(people)
	return t
}

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Transition moves the task to a non-terminal state. Invalid transitions are
// ignored and reported as false.
func (t *Task) Transition(dst State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if dst.Done() || !ValidStateTransition(t.state, dst) {
		return false
	}
	t.state = dst
	return true
}

// Commit finishes the task successfully. people is the list that was
// published as a result.
func (t *Task) Commit(people []person.Person) bool {
	return t.finish(Committed, people, nil)
}

func (t *Task) Fail(err error) bool {
	return t.finish(Failed, nil, err)
}

func (t *Task) finish(dst State, people []person.Person, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !ValidStateTransition(t.state, dst) {
		return false
	}
	t.state, t.people, t.err = dst, people, err
	t.finishedAt = time.Now().UTC()
	close(t.done)
	return true
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Err is the failure cause; nil until the task failed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// People is the published list after the task committed.
func (t *Task) People() []person.Person {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.people
}

func (t *Task) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finishedAt.IsZero() {
		return 0
	}
	return t.finishedAt.Sub(t.CreatedAt)
}

// Wait blocks until the task is done or ctx ends and returns the task error.
// Giving up on ctx does not cancel the task.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
