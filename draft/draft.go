// Package draft is the lower-durability key-value slot backing in-progress
// answer drafts and role assignment maps. It is deliberately separate from
// the structured store: a plain JSON file, rewritten on every change,
// that starts empty again if missing or unreadable.
package draft

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmorenog/bancalocal/log"
)

type Slot struct {
	path  string
	mu    sync.Mutex
	items map[string]json.RawMessage
}

// Open loads the slot file at path. A missing or corrupt file is not an
// error: the slot starts empty.
func Open(path string) (*Slot, error) {
	slot := &Slot{path: path, items: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return slot, nil
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(raw, &slot.items); err != nil {
		log.Warnf("draft.open: discarding unreadable slot file %s: %s", path, err)
		slot.items = map[string]json.RawMessage{}
	}
	return slot, nil
}

func (s *Slot) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = raw
	return s.flush()
}

// Get unmarshals the value under key into out and reports whether the key
// was present.
func (s *Slot) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.items[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *Slot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)
	return s.flush()
}

func (s *Slot) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	return keys
}

// flush rewrites the whole file through a temp-and-rename so a crash
// mid-write never leaves a half-written slot. Caller holds the lock.
func (s *Slot) flush() error {
	raw, err := json.MarshalIndent(s.items, "", "\t")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".draft-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
