// Package directory holds the canonical person list of the application.
//
// A Directory publishes the list together with loading and error status and
// applies add/delete operations on it. Every mutation computes the new list,
// persists it through the Adapter and only then publishes it, so a storage
// failure never leaves the published list ahead of durable state.
//
// Loads and mutations run one at a time, in call order, on a single worker
// goroutine. Each mutation therefore starts from the list published by the
// previous one.
package directory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/golang-collections/collections/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"persondir/person"
	"persondir/task"
)

// DefaultFreshFor is how long a load is reused by Initialize.
const DefaultFreshFor = 5 * time.Minute

var (
	ErrClosed      = errors.New("directory: closed")
	ErrDuplicateID = errors.New("directory: duplicate id")
)

// Adapter persists the person list. Load never fails; it returns an empty
// list when nothing usable is stored.
type Adapter interface {
	Load(ctx context.Context) []person.Person
	Save(ctx context.Context, people []person.Person) error
}

type Options struct {
	// FreshFor defaults to DefaultFreshFor.
	FreshFor time.Duration
	Logger   *zap.Logger
	// Metrics receives the directory_* series. A private set is used when nil.
	Metrics *metrics.Set
	// NewID defaults to a UUIDv7 string.
	NewID func() string
	Now   func() time.Time
}

// State is a snapshot of what a Directory publishes.
type State struct {
	People []person.Person
	// IsLoading is true while the first load is pending.
	IsLoading bool
	// IsFetching is true while any load is pending.
	IsFetching bool
	// IsError and Err describe the last failed mutation. A later successful
	// mutation clears them.
	IsError   bool
	Err       error
	UpdatedAt time.Time
}

func (s State) clone() State {
	s.People = slices.Clone(s.People)
	if s.People == nil {
		s.People = []person.Person{}
	}
	return s
}

type Directory struct {
	adapter  Adapter
	freshFor time.Duration
	log      *zap.Logger
	metrics  *metrics.Set
	newID    func() string
	now      func() time.Time

	// ctx is handed to the adapter; it is canceled once the worker exited.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	loaded   bool
	stale    bool
	loadedAt time.Time
	loadTask *task.Task
	subs     map[int]chan State
	nextSub  int
	pending  queue.Queue
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New returns a Directory backed by adapter and starts its worker. Nothing is
// read from storage until the first operation. Close releases the worker.
func New(adapter Adapter, opts Options) *Directory {
	if opts.FreshFor <= 0 {
		opts.FreshFor = DefaultFreshFor
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSet()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Directory{
		adapter:  adapter,
		freshFor: opts.FreshFor,
		log:      opts.Logger.Named("directory"),
		metrics:  opts.Metrics,
		newID:    opts.NewID,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{People: []person.Person{}},
		subs:     make(map[int]chan State),
		pending:  *queue.New(),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.metrics.GetOrCreateGauge("directory_people", nil).Set(0)

	go d.run()
	return d
}

// State returns a snapshot of the published state.
func (d *Directory) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// People is a shortcut for State().People.
func (d *Directory) People() []person.Person {
	return d.State().People
}

// Initialize loads the list from storage unless a load finished less than
// FreshFor ago, in which case the returned task is already committed. A
// pending load is shared by all callers.
func (d *Directory) Initialize() *task.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.enqueueLocked(task.New(task.Load, person.Person{}))
	}
	if d.loadTask != nil {
		return d.loadTask
	}
	if d.freshLocked() {
		return task.Completed(task.Load, slices.Clone(d.state.People))
	}
	return d.queueLoadLocked()
}

// Invalidate marks the loaded list stale so that the next Initialize reads
// storage again.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stale = true
}

// Refetch invalidates and reloads.
func (d *Directory) Refetch() *task.Task {
	d.Invalidate()
	return d.Initialize()
}

// AddPerson assigns a fresh id to fields and queues the append. The id is
// available on the returned task's Person immediately.
func (d *Directory) AddPerson(fields person.Fields) *task.Task {
	t := task.New(task.Add, person.New(d.newID(), fields))

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadFirstLocked()
	return d.enqueueLocked(t)
}

// DeletePerson queues the removal of the person with id. An unknown id
// commits without touching storage.
func (d *Directory) DeletePerson(id string) *task.Task {
	t := task.New(task.Delete, person.Person{ID: id})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadFirstLocked()
	return d.enqueueLocked(t)
}

// Subscribe returns a channel that holds the latest published state. Slow
// readers only miss intermediate states. The channel is closed by cancel or
// by Close.
func (d *Directory) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	d.mu.Lock()
	defer d.mu.Unlock()

	ch <- d.state.clone()
	if d.closed {
		close(ch)
		return ch, func() {}
	}

	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if _, ok := d.subs[id]; ok {
				delete(d.subs, id)
				close(ch)
			}
		})
	}
}

// Close stops the worker. Tasks still queued fail with ErrClosed and later
// operations fail immediately. A running storage call is waited for.
func (d *Directory) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	<-d.done
	d.cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ch := range d.subs {
		delete(d.subs, id)
		close(ch)
	}
	return nil
}

func (d *Directory) freshLocked() bool {
	return d.loaded && !d.stale && d.now().Sub(d.loadedAt) < d.freshFor
}

// loadFirstLocked queues the initial load ahead of a mutation issued before
// anyone called Initialize.
func (d *Directory) loadFirstLocked() {
	if !d.loaded && d.loadTask == nil {
		d.queueLoadLocked()
	}
}

func (d *Directory) queueLoadLocked() *task.Task {
	t := task.New(task.Load, person.Person{})
	if d.closed {
		return d.enqueueLocked(t)
	}

	d.loadTask = t
	d.state.IsFetching = true
	if !d.loaded {
		d.state.IsLoading = true
	}
	d.publishLocked()
	return d.enqueueLocked(t)
}

func (d *Directory) enqueueLocked(t *task.Task) *task.Task {
	if d.closed {
		d.fail(t, ErrClosed)
		return t
	}

	t.Transition(task.Pending)
	d.pending.Enqueue(t)
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return t
}

func (d *Directory) publishLocked() {
	d.metrics.GetOrCreateGauge("directory_people", nil).Set(float64(len(d.state.People)))
	for _, ch := range d.subs {
		select {
		case <-ch:
		default:
		}
		ch <- d.state.clone()
	}
}
