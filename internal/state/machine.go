package state

import (
	"context"
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// Machine applies transitions to stored snapshots. Updates for the same
// visitor are serialized so each one replaces the snapshot atomically.
type Machine struct {
	store Store
	locks [lockStripes]sync.Mutex
}

// NewMachine wraps a store.
func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

func (m *Machine) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &m.locks[h.Sum32()%lockStripes]
}

// Current returns the visitor's snapshot.
func (m *Machine) Current(ctx context.Context, id string) (Snapshot, error) {
	return m.store.Load(ctx, id)
}

// Update loads the visitor's snapshot, applies fn and saves the result when
// fn reports a change. It returns the snapshot now in effect.
func (m *Machine) Update(ctx context.Context, id string, fn func(Snapshot) (Snapshot, bool)) (Snapshot, bool, error) {
	mu := m.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	cur, err := m.store.Load(ctx, id)
	if err != nil {
		return Snapshot{}, false, err
	}
	next, changed := fn(cur)
	if !changed {
		return cur, false, nil
	}
	if err := m.store.Save(ctx, id, next); err != nil {
		return cur, false, err
	}
	return next, true, nil
}

// Ping checks the backing store.
func (m *Machine) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
