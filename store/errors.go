package store

import "errors"

// Gateway error taxonomy. Operations wrap these sentinels with context, so
// callers classify failures with errors.Is and decide the user-facing
// surface themselves.
var (
	// ErrStorageUnavailable: the host has no usable storage engine.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrSchemaConflict: an existing collection's key configuration cannot
	// be reconciled with the requested one. Key config is never migrated.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrNoSuchCollection: the collection is not part of the opened schema.
	// Applied uniformly across all operations (strict policy).
	ErrNoSuchCollection = errors.New("no such collection")
	// ErrNotFound: no record under the given key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey: explicit-key insert collided with an existing record.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrValidationFailed: a record or key does not fit the collection's
	// declared shape.
	ErrValidationFailed = errors.New("validation failed")
)
