package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Gateway is the SQLite-backed Store. Open it once at startup and inject it
// into every manager; it owns the only database handle.
type Gateway struct {
	db   *sql.DB
	cols map[string]Collection
}

var _ Store = (*Gateway)(nil)

// Open opens (or creates) the database at path and reconciles it with the
// requested schema: meta tables are migrated, missing collections are
// created, existing ones are checked against their registered key
// configuration. Open is idempotent.
func Open(path string, schema Schema) (*Gateway, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	// One connection: a single-user local tool, and it keeps :memory:
	// databases coherent across the pool.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}

	if err = migrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.migrate: %w", err)
	}

	g := &Gateway{db: db, cols: map[string]Collection{}}
	if err = g.reconcile(schema); err != nil {
		db.Close()
		return nil, err
	}
	return g, nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

// reconcile adds missing collections and verifies registered ones. It never
// alters an existing collection's key configuration.
func (g *Gateway) reconcile(schema Schema) error {
	tx, err := g.db.Begin()
	if err != nil {
		return fmt.Errorf("store.reconcile: %w", err)
	}
	defer tx.Rollback()

	var stored int
	err = tx.QueryRow("SELECT version FROM _schema_version WHERE id = 0").Scan(&stored)
	if err != nil {
		return fmt.Errorf("store.reconcile.version: %w", err)
	}
	if stored > schema.Version {
		return fmt.Errorf("%w: database is at version %d, requested %d", ErrSchemaConflict, stored, schema.Version)
	}

	registered := map[string]Collection{}
	rows, err := tx.Query("SELECT name, key_field, auto_key FROM _collections")
	if err != nil {
		return fmt.Errorf("store.reconcile.registry: %w", err)
	}
	for rows.Next() {
		var col Collection
		if err = rows.Scan(&col.Name, &col.KeyField, &col.AutoKey); err != nil {
			rows.Close()
			return fmt.Errorf("store.reconcile.registry.scan: %w", err)
		}
		registered[col.Name] = col
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("store.reconcile.registry: %w", err)
	}

	for _, col := range schema.Collections {
		if err = col.validate(); err != nil {
			return err
		}

		if prev, ok := registered[col.Name]; ok {
			if prev.KeyField != col.KeyField || prev.AutoKey != col.AutoKey {
				return fmt.Errorf("%w: collection %s is keyed by %s (auto=%v), requested %s (auto=%v)",
					ErrSchemaConflict, col.Name, prev.KeyField, prev.AutoKey, col.KeyField, col.AutoKey)
			}
			g.cols[col.Name] = col
			continue
		}

		keyType := "TEXT PRIMARY KEY"
		if col.AutoKey {
			keyType = "INTEGER PRIMARY KEY AUTOINCREMENT"
		}
		_, err = tx.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (key %s, record TEXT NOT NULL)`, col.Name, keyType))
		if err != nil {
			return fmt.Errorf("store.reconcile.create %s: %w", col.Name, err)
		}
		_, err = tx.Exec("INSERT INTO _collections (name, key_field, auto_key) VALUES (?, ?, ?)",
			col.Name, col.KeyField, col.AutoKey)
		if err != nil {
			return fmt.Errorf("store.reconcile.register %s: %w", col.Name, err)
		}
		g.cols[col.Name] = col
	}

	if stored < schema.Version {
		if _, err = tx.Exec("UPDATE _schema_version SET version = ? WHERE id = 0", schema.Version); err != nil {
			return fmt.Errorf("store.reconcile.bump: %w", err)
		}
	}

	return tx.Commit()
}

func (g *Gateway) resolve(collection string) (Collection, error) {
	col, ok := g.cols[collection]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrNoSuchCollection, collection)
	}
	return col, nil
}

func (g *Gateway) Create(ctx context.Context, collection string, rec Record) (Key, error) {
	col, err := g.resolve(collection)
	if err != nil {
		return nil, err
	}
	rec, err = cloneRecord(col, rec)
	if err != nil {
		return nil, err
	}

	if col.AutoKey {
		return g.createAuto(ctx, col, rec)
	}

	key, err := recordKey(col, rec)
	if err != nil {
		return nil, err
	}
	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	_, err = g.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %q (key, record) VALUES (?, ?)`, col.Name), key, raw)
	if isConstraintErr(err) {
		return nil, fmt.Errorf("%w: %s[%v]", ErrDuplicateKey, col.Name, key)
	}
	if err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}
	return key, nil
}

// createAuto lets the engine assign the key, then writes it back into the
// stored record so reads always carry the key field.
func (g *Gateway) createAuto(ctx context.Context, col Collection, rec Record) (Key, error) {
	delete(rec, col.KeyField)
	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %q (record) VALUES (?)`, col.Name), raw)
	if err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}
	key, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}

	rec[col.KeyField] = key
	raw, err = encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %q SET record = ? WHERE key = ?`, col.Name), raw, key); err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("store.create %s: %w", col.Name, err)
	}
	return key, nil
}

func (g *Gateway) Get(ctx context.Context, collection string, key Key) (Record, error) {
	col, err := g.resolve(collection)
	if err != nil {
		return nil, err
	}
	key, err = normalizeKey(col, key)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = g.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT record FROM %q WHERE key = ?`, col.Name), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s[%v]", ErrNotFound, col.Name, key)
	}
	if err != nil {
		return nil, fmt.Errorf("store.get %s: %w", col.Name, err)
	}
	return decodeRecord(col, raw)
}

func (g *Gateway) GetAll(ctx context.Context, collection string) ([]Record, error) {
	col, err := g.resolve(collection)
	if err != nil {
		return nil, err
	}

	rows, err := g.db.QueryContext(ctx, fmt.Sprintf(`SELECT record FROM %q ORDER BY rowid`, col.Name))
	if err != nil {
		return nil, fmt.Errorf("store.get_all %s: %w", col.Name, err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var raw []byte
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("store.get_all %s: %w", col.Name, err)
		}
		rec, err := decodeRecord(col, raw)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store.get_all %s: %w", col.Name, err)
	}
	return recs, nil
}

// Update is a full-record upsert keyed by the record's primary-key field.
func (g *Gateway) Update(ctx context.Context, collection string, rec Record) (Key, error) {
	col, err := g.resolve(collection)
	if err != nil {
		return nil, err
	}
	rec, err = cloneRecord(col, rec)
	if err != nil {
		return nil, err
	}
	key, err := recordKey(col, rec)
	if err != nil {
		return nil, err
	}
	rec[col.KeyField] = key
	raw, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	_, err = g.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %q (key, record) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record`, col.Name), key, raw)
	if err != nil {
		return nil, fmt.Errorf("store.update %s: %w", col.Name, err)
	}
	return key, nil
}

// Delete is idempotent; deleting an absent key is not an error.
func (g *Gateway) Delete(ctx context.Context, collection string, key Key) error {
	col, err := g.resolve(collection)
	if err != nil {
		return err
	}
	key, err = normalizeKey(col, key)
	if err != nil {
		return err
	}

	if _, err = g.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, col.Name), key); err != nil {
		return fmt.Errorf("store.delete %s: %w", col.Name, err)
	}
	return nil
}

// Query equality-filters GetAll results by every predicate field. An empty
// predicate returns all records.
func (g *Gateway) Query(ctx context.Context, collection string, predicate map[string]any) ([]Record, error) {
	recs, err := g.GetAll(ctx, collection)
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

func isConstraintErr(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
