package directory

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"persondir/person"
	"persondir/task"
)

func (d *Directory) run() {
	defer close(d.done)

	for {
		select {
		case <-d.stop:
			d.drain()
			return
		default:
		}

		t := d.next()
		if t == nil {
			select {
			case <-d.wake:
			case <-d.stop:
			}
			continue
		}

		d.execute(t)
	}
}

func (d *Directory) next() *task.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending.Len() == 0 {
		return nil
	}
	return d.pending.Dequeue().(*task.Task)
}

// drain fails everything still queued once the directory is closed.
func (d *Directory) drain() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.pending.Len() > 0 {
		t := d.pending.Dequeue().(*task.Task)
		d.fail(t, ErrClosed)
	}
	if d.loadTask != nil {
		d.loadTask = nil
		d.state.IsLoading, d.state.IsFetching = false, false
		d.publishLocked()
	}
}

func (d *Directory) execute(t *task.Task) {
	switch t.Kind {
	case task.Load:
		d.load(t)
	case task.Add, task.Delete:
		d.mutate(t)
	default:
		d.fail(t, fmt.Errorf("directory: unknown task kind %v", t.Kind))
	}
}

func (d *Directory) load(t *task.Task) {
	people := d.adapter.Load(d.ctx)
	if people == nil {
		people = []person.Person{}
	}

	d.mu.Lock()
	now := d.now()
	d.loaded, d.stale, d.loadedAt = true, false, now
	d.loadTask = nil
	d.state.People = people
	d.state.IsLoading, d.state.IsFetching = false, false
	d.state.UpdatedAt = now
	d.publishLocked()
	d.mu.Unlock()

	d.log.Debug("loaded people", zap.Stringer("task", t.ID), zap.Int("count", len(people)))
	d.commit(t, slices.Clone(people))
}

// mutate runs the compute, persist, publish sequence for one add or delete.
func (d *Directory) mutate(t *task.Task) {
	d.mu.Lock()
	base := d.state.People
	d.mu.Unlock()

	next, changed, err := apply(t, base)
	if err != nil {
		d.log.Warn("rejected mutation", zap.Stringer("task", t.ID), zap.Stringer("kind", t.Kind), zap.String("id", t.Person.ID), zap.Error(err))
		d.fail(t, err)
		return
	}
	if !changed {
		d.log.Debug("nothing to delete", zap.Stringer("task", t.ID), zap.String("id", t.Person.ID))
		d.commit(t, slices.Clone(base))
		return
	}

	start := time.Now()
	err = d.adapter.Save(d.ctx, next)
	d.metrics.GetOrCreateHistogram("directory_save_duration_seconds").UpdateDuration(start)

	if err != nil {
		err = fmt.Errorf("directory: %s %s: %w", t.Kind, t.Person.ID, err)

		d.mu.Lock()
		d.state.IsError, d.state.Err = true, err
		d.publishLocked()
		d.mu.Unlock()

		d.log.Error("mutation failed", zap.Stringer("task", t.ID), zap.Stringer("kind", t.Kind), zap.String("id", t.Person.ID), zap.Error(err))
		d.fail(t, err)
		return
	}

	d.mu.Lock()
	now := d.now()
	d.state.People = next
	d.state.IsError, d.state.Err = false, nil
	d.state.UpdatedAt = now
	// storage now holds exactly what is published
	if d.loaded {
		d.loadedAt = now
	}
	d.publishLocked()
	d.mu.Unlock()

	d.log.Info("mutation committed", zap.Stringer("task", t.ID), zap.Stringer("kind", t.Kind), zap.String("id", t.Person.ID), zap.Int("count", len(next)))
	d.commit(t, slices.Clone(next))
}

// apply computes the list after t without modifying base.
func apply(t *task.Task, base []person.Person) ([]person.Person, bool, error) {
	switch t.Kind {
	case task.Add:
		if person.Index(base, t.Person.ID) >= 0 {
			return nil, false, fmt.Errorf("%w: %s", ErrDuplicateID, t.Person.ID)
		}
		next := make([]person.Person, len(base), len(base)+1)
		copy(next, base)
		return append(next, t.Person), true, nil

	case task.Delete:
		i := person.Index(base, t.Person.ID)
		if i < 0 {
			return base, false, nil
		}
		return slices.Delete(slices.Clone(base), i, i+1), true, nil
	}
	return nil, false, fmt.Errorf("directory: %v is not a mutation", t.Kind)
}

func (d *Directory) commit(t *task.Task, people []person.Person) {
	if t.Commit(people) {
		d.count(t)
	}
}

func (d *Directory) fail(t *task.Task, err error) {
	if t.Fail(err) {
		d.count(t)
	}
}

func (d *Directory) count(t *task.Task) {
	d.metrics.GetOrCreateCounter(fmt.Sprintf(`directory_tasks_total{kind=%q,state=%q}`, t.Kind, t.State())).Inc()
}
