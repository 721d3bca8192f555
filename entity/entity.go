// Package entity binds one business entity (collection name, key field,
// typed field list) to list/detail/create/edit operations over the store
// gateway. Entity definitions are configuration records; the behavior lives
// here once.
package entity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmorenog/bancalocal/store"
)

type Type string

const (
	String  Type = "STRING"
	Integer Type = "INTEGER"
	Decimal Type = "DECIMAL"
	Boolean Type = "BOOLEAN"
)

type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

type Spec struct {
	Collection string  `json:"collection"`
	KeyField   string  `json:"keyField"`
	AutoKey    bool    `json:"autoKey"`
	Fields     []Field `json:"fields"`
}

func (s Spec) storeCollection() store.Collection {
	return store.Collection{Name: s.Collection, KeyField: s.KeyField, AutoKey: s.AutoKey}
}

func (s Spec) keyType() Type {
	for _, f := range s.Fields {
		if f.Name == s.KeyField {
			return f.Type
		}
	}
	return String
}

type Manager struct {
	Spec  Spec
	store store.Store
}

func NewManager(spec Spec, st store.Store) *Manager {
	return &Manager{Spec: spec, store: st}
}

// ParseKey converts a URL-carried key string to the entity's key type.
func (m *Manager) ParseKey(raw string) (store.Key, error) {
	if m.Spec.AutoKey || m.Spec.keyType() == Integer {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s key %q is not an integer", store.ErrValidationFailed, m.Spec.Collection, raw)
		}
		return n, nil
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: %s key is empty", store.ErrValidationFailed, m.Spec.Collection)
	}
	return raw, nil
}

func (m *Manager) List(ctx context.Context) ([]store.Record, error) {
	return m.store.GetAll(ctx, m.Spec.Collection)
}

func (m *Manager) Get(ctx context.Context, rawKey string) (store.Record, error) {
	key, err := m.ParseKey(rawKey)
	if err != nil {
		return nil, err
	}
	return m.store.Get(ctx, m.Spec.Collection, key)
}

// Create converts raw form values to typed fields and inserts the record.
// A numeric field that does not parse rejects the whole submission.
func (m *Manager) Create(ctx context.Context, form map[string]string) (store.Key, error) {
	rec, err := m.coerceForm(form)
	if err != nil {
		return nil, err
	}
	return m.store.Create(ctx, m.Spec.Collection, rec)
}

// Update replaces the record under rawKey with the converted form values.
// The key field always comes from rawKey: an assigned key is immutable.
func (m *Manager) Update(ctx context.Context, rawKey string, form map[string]string) (store.Key, error) {
	key, err := m.ParseKey(rawKey)
	if err != nil {
		return nil, err
	}
	rec, err := m.coerceForm(form)
	if err != nil {
		return nil, err
	}
	rec[m.Spec.KeyField] = key
	return m.store.Update(ctx, m.Spec.Collection, rec)
}

func (m *Manager) Delete(ctx context.Context, rawKey string) error {
	key, err := m.ParseKey(rawKey)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, m.Spec.Collection, key)
}

// Seed inserts the given rows once: only when the collection is empty.
func (m *Manager) Seed(ctx context.Context, rows []store.Record) error {
	existing, err := m.store.GetAll(ctx, m.Spec.Collection)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, row := range rows {
		if _, err = m.store.Create(ctx, m.Spec.Collection, row); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) coerceForm(form map[string]string) (store.Record, error) {
	rec := store.Record{}
	for _, f := range m.Spec.Fields {
		if m.Spec.AutoKey && f.Name == m.Spec.KeyField {
			continue
		}
		value, err := Coerce(f, form[f.Name])
		if err != nil {
			return nil, err
		}
		rec[f.Name] = value
	}
	return rec, nil
}

// Coerce converts one raw form string to the field's declared type. Numeric
// parse failures reject the value instead of falling back to zero, so a
// data-entry error surfaces instead of storing a silent 0.
func Coerce(f Field, raw string) (any, error) {
	switch f.Type {
	case Boolean:
		return raw == "true", nil
	case Integer:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s wants an integer, got %q", store.ErrValidationFailed, f.Name, raw)
		}
		return n, nil
	case Decimal:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s wants a decimal, got %q", store.ErrValidationFailed, f.Name, raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}
