package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store with the same semantics as the SQLite
// gateway. It backs tests and short-lived tooling that has no database file.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]*memCollection
}

type memCollection struct {
	spec  Collection
	next  int64
	order []Key
	recs  map[Key]Record
}

var _ Store = (*Memory)(nil)

func NewMemory(schema Schema) (*Memory, error) {
	m := &Memory{cols: map[string]*memCollection{}}
	for _, col := range schema.Collections {
		if err := col.validate(); err != nil {
			return nil, err
		}
		m.cols[col.Name] = &memCollection{
			spec: col,
			recs: map[Key]Record{},
		}
	}
	return m, nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) resolve(collection string) (*memCollection, error) {
	mc, ok := m.cols[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchCollection, collection)
	}
	return mc, nil
}

func (m *Memory) Create(_ context.Context, collection string, rec Record) (Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, err := m.resolve(collection)
	if err != nil {
		return nil, err
	}
	rec, err = cloneRecord(mc.spec, rec)
	if err != nil {
		return nil, err
	}

	var key Key
	if mc.spec.AutoKey {
		mc.next++
		key = mc.next
		rec[mc.spec.KeyField] = key
	} else {
		key, err = recordKey(mc.spec, rec)
		if err != nil {
			return nil, err
		}
		if _, exists := mc.recs[key]; exists {
			return nil, fmt.Errorf("%w: %s[%v]", ErrDuplicateKey, collection, key)
		}
	}

	mc.recs[key] = rec
	mc.order = append(mc.order, key)
	return key, nil
}

func (m *Memory) Get(_ context.Context, collection string, key Key) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mc, err := m.resolve(collection)
	if err != nil {
		return nil, err
	}
	key, err = normalizeKey(mc.spec, key)
	if err != nil {
		return nil, err
	}

	rec, ok := mc.recs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%v]", ErrNotFound, collection, key)
	}
	return cloneRecord(mc.spec, rec)
}

func (m *Memory) GetAll(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mc, err := m.resolve(collection)
	if err != nil {
		return nil, err
	}

	recs := []Record{}
	for _, key := range mc.order {
		rec, err := cloneRecord(mc.spec, mc.recs[key])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (m *Memory) Update(_ context.Context, collection string, rec Record) (Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, err := m.resolve(collection)
	if err != nil {
		return nil, err
	}
	rec, err = cloneRecord(mc.spec, rec)
	if err != nil {
		return nil, err
	}
	key, err := recordKey(mc.spec, rec)
	if err != nil {
		return nil, err
	}
	rec[mc.spec.KeyField] = key

	if _, exists := mc.recs[key]; !exists {
		mc.order = append(mc.order, key)
		if mc.spec.AutoKey {
			if n, ok := key.(int64); ok && n > mc.next {
				mc.next = n
			}
		}
	}
	mc.recs[key] = rec
	return key, nil
}

func (m *Memory) Delete(_ context.Context, collection string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, err := m.resolve(collection)
	if err != nil {
		return err
	}
	key, err = normalizeKey(mc.spec, key)
	if err != nil {
		return err
	}

	if _, exists := mc.recs[key]; !exists {
		return nil
	}
	delete(mc.recs, key)
	for i, k := range mc.order {
		if k == key {
			mc.order = append(mc.order[:i], mc.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Query(ctx context.Context, collection string, predicate map[string]any) ([]Record, error) {
	recs, err := m.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := []Record{}
	for _, rec := range recs {
		if matches(rec, predicate) {
			out = append(out, rec)
		}
	}
	return out, nil
}
