// Package store implements the local persistent-store gateway: a versioned
// SQLite database holding named record collections, each declared with a
// primary-key field and a key mode (auto-increment or caller-supplied).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Record is a single stored document. Values carry JSON types after a round
// trip through the store (string, float64, bool, nested maps/slices); the
// primary-key field of an auto-increment collection is normalized to int64.
type Record = map[string]any

// Key is a record's primary key: int64 for auto-increment collections,
// string for explicit-key collections.
type Key = any

type Collection struct {
	Name     string
	KeyField string
	AutoKey  bool
}

type Schema struct {
	Version     int
	Collections []Collection
}

type Store interface {
	Create(ctx context.Context, collection string, rec Record) (Key, error)
	Get(ctx context.Context, collection string, key Key) (Record, error)
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Update(ctx context.Context, collection string, rec Record) (Key, error)
	Delete(ctx context.Context, collection string, key Key) error
	Query(ctx context.Context, collection string, predicate map[string]any) ([]Record, error)
	Close() error
}

// Collection names double as table names; the leading-letter rule keeps them
// clear of the gateway's own underscore-prefixed meta tables.
var reCollectionName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func (c Collection) validate() error {
	if !reCollectionName.MatchString(c.Name) {
		return fmt.Errorf("%w: bad collection name %q", ErrValidationFailed, c.Name)
	}
	if c.KeyField == "" {
		return fmt.Errorf("%w: collection %s has no key field", ErrValidationFailed, c.Name)
	}
	return nil
}

// normalizeKey coerces a caller-supplied key to the collection's canonical
// key type. URL-derived keys arrive as strings even for integer-keyed
// collections, so numeric strings are accepted for auto-increment keys.
func normalizeKey(col Collection, key Key) (Key, error) {
	if col.AutoKey {
		switch k := key.(type) {
		case int64:
			return k, nil
		case int:
			return int64(k), nil
		case float64:
			return int64(k), nil
		case json.Number:
			n, err := k.Int64()
			if err == nil {
				return n, nil
			}
		case string:
			var n int64
			if _, err := fmt.Sscanf(k, "%d", &n); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("%w: %s wants an integer key, got %v", ErrValidationFailed, col.Name, key)
	}

	if k, ok := key.(string); ok && k != "" {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %s wants a non-empty string key, got %v", ErrValidationFailed, col.Name, key)
}

// recordKey extracts and normalizes the primary key from a record.
func recordKey(col Collection, rec Record) (Key, error) {
	raw, ok := rec[col.KeyField]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s record is missing key field %s", ErrValidationFailed, col.Name, col.KeyField)
	}
	return normalizeKey(col, raw)
}

func encodeRecord(rec Record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: record not serializable: %s", ErrValidationFailed, err)
	}
	return raw, nil
}

func decodeRecord(col Collection, raw []byte) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", col.Name, err)
	}
	if col.AutoKey {
		if key, err := recordKey(col, rec); err == nil {
			rec[col.KeyField] = key
		}
	}
	return rec, nil
}

// cloneRecord round-trips a record through JSON so every caller observes the
// same value types whether the record came from memory or from disk.
func cloneRecord(col Collection, rec Record) (Record, error) {
	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	return decodeRecord(col, raw)
}
