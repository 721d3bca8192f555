package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

var testSchema = Schema{
	Version: 1,
	Collections: []Collection{
		{Name: "CLIENTES", KeyField: "id_cliente", AutoKey: true},
		{Name: "CUENTAS", KeyField: "numero_cuenta", AutoKey: false},
		{Name: "RESPUESTAS_CUESTIONARIO", KeyField: "id", AutoKey: false},
	},
}

// both backends must satisfy the same contract
func testStores(t *testing.T) map[string]Store {
	t.Helper()

	gw, err := Open(filepath.Join(t.TempDir(), "test.sqlite"), testSchema)
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	mem, err := NewMemory(testSchema)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}

	return map[string]Store{"sqlite": gw, "memory": mem}
}

func TestAutoIncrementKeys(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for i, nombre := range []string{"María", "Carlos", "Lucía"} {
				key, err := st.Create(ctx, "CLIENTES", Record{"nombre": nombre})
				if err != nil {
					t.Fatalf("create: %v", err)
				}
				if key != int64(i+1) {
					t.Fatalf("create %d: key = %v, want %d", i, key, i+1)
				}
			}

			recs, err := st.GetAll(ctx, "CLIENTES")
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			if len(recs) != 3 {
				t.Fatalf("got %d records, want 3", len(recs))
			}

			if err = st.Delete(ctx, "CLIENTES", int64(2)); err != nil {
				t.Fatalf("delete: %v", err)
			}
			recs, err = st.GetAll(ctx, "CLIENTES")
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			keys := map[int64]bool{}
			for _, rec := range recs {
				keys[rec["id_cliente"].(int64)] = true
			}
			if len(recs) != 2 || !keys[1] || !keys[3] {
				t.Fatalf("after delete(2): keys = %v, want {1,3}", keys)
			}
		})
	}
}

func TestExplicitKeyDuplicate(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			rec := Record{"numero_cuenta": "cuenta_1", "saldo": 100.0}
			if _, err := st.Create(ctx, "CUENTAS", rec); err != nil {
				t.Fatalf("create: %v", err)
			}
			_, err := st.Create(ctx, "CUENTAS", Record{"numero_cuenta": "cuenta_1"})
			if !errors.Is(err, ErrDuplicateKey) {
				t.Fatalf("duplicate create: err = %v, want ErrDuplicateKey", err)
			}
		})
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			key, err := st.Create(ctx, "CUENTAS", Record{
				"numero_cuenta": "cuenta_9",
				"saldo":         1250.50,
				"activa":        true,
				"tipo_cuenta":   "caja_ahorro",
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			rec, err := st.Get(ctx, "CUENTAS", key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if rec["numero_cuenta"] != "cuenta_9" || rec["saldo"] != 1250.50 ||
				rec["activa"] != true || rec["tipo_cuenta"] != "caja_ahorro" {
				t.Fatalf("round trip mismatch: %v", rec)
			}
		})
	}
}

func TestGetAbsent(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(ctx, "CUENTAS", "no_such")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUpdateUpsert(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			// insert-if-absent
			key, err := st.Update(ctx, "CUENTAS", Record{"numero_cuenta": "cuenta_up", "saldo": 1.0})
			if err != nil {
				t.Fatalf("upsert insert: %v", err)
			}
			if key != "cuenta_up" {
				t.Fatalf("key = %v, want cuenta_up", key)
			}

			// last write wins, full replace
			if _, err = st.Update(ctx, "CUENTAS", Record{"numero_cuenta": "cuenta_up", "saldo": 2.0}); err != nil {
				t.Fatalf("upsert replace: %v", err)
			}
			rec, err := st.Get(ctx, "CUENTAS", "cuenta_up")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if rec["saldo"] != 2.0 {
				t.Fatalf("saldo = %v, want 2.0", rec["saldo"])
			}
		})
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Create(ctx, "CUENTAS", Record{"numero_cuenta": "cuenta_del"}); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := st.Delete(ctx, "CUENTAS", "cuenta_del"); err != nil {
				t.Fatalf("first delete: %v", err)
			}
			if _, err := st.Get(ctx, "CUENTAS", "cuenta_del"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
			}
			if err := st.Delete(ctx, "CUENTAS", "cuenta_del"); err != nil {
				t.Fatalf("second delete: %v", err)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, rec := range []Record{
				{"nombre": "a", "sucursal": "Centro", "nivel": 5},
				{"nombre": "b", "sucursal": "Centro", "nivel": 2},
				{"nombre": "c", "sucursal": "Norte", "nivel": 5},
			} {
				if _, err := st.Create(ctx, "CLIENTES", rec); err != nil {
					t.Fatalf("create: %v", err)
				}
			}

			// empty predicate returns everything
			all, err := st.GetAll(ctx, "CLIENTES")
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			everything, err := st.Query(ctx, "CLIENTES", nil)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(everything) != len(all) {
				t.Fatalf("empty predicate: %d records, want %d", len(everything), len(all))
			}

			// AND of all fields
			both, err := st.Query(ctx, "CLIENTES", map[string]any{"sucursal": "Centro", "nivel": 5})
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(both) != 1 || both[0]["nombre"] != "a" {
				t.Fatalf("AND predicate: %v", both)
			}

			// loose equality: numeric 5 matches string "5"
			loose, err := st.Query(ctx, "CLIENTES", map[string]any{"nivel": "5"})
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(loose) != 2 {
				t.Fatalf("loose predicate: %d records, want 2", len(loose))
			}
		})
	}
}

func TestQueryResponsesByQuizName(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for i, quiz := range []string{"quiz_conocimientos", "quiz_conocimientos", "quiz_otro"} {
				_, err := st.Create(ctx, "RESPUESTAS_CUESTIONARIO", Record{
					"id":                  string(rune('a' + i)),
					"nombre_cuestionario": quiz,
				})
				if err != nil {
					t.Fatalf("create: %v", err)
				}
			}

			matched, err := st.Query(ctx, "RESPUESTAS_CUESTIONARIO",
				map[string]any{"nombre_cuestionario": "quiz_conocimientos"})
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(matched) != 2 {
				t.Fatalf("got %d responses, want 2", len(matched))
			}
			for _, rec := range matched {
				if rec["nombre_cuestionario"] != "quiz_conocimientos" {
					t.Fatalf("stray response: %v", rec)
				}
			}
		})
	}
}

func TestNoSuchCollection(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.GetAll(ctx, "NADA"); !errors.Is(err, ErrNoSuchCollection) {
				t.Fatalf("get all: err = %v, want ErrNoSuchCollection", err)
			}
			if _, err := st.Create(ctx, "NADA", Record{}); !errors.Is(err, ErrNoSuchCollection) {
				t.Fatalf("create: err = %v, want ErrNoSuchCollection", err)
			}
			if err := st.Delete(ctx, "NADA", "x"); !errors.Is(err, ErrNoSuchCollection) {
				t.Fatalf("delete: err = %v, want ErrNoSuchCollection", err)
			}
		})
	}
}

func TestStringKeyForAutoCollection(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			key, err := st.Create(ctx, "CLIENTES", Record{"nombre": "x"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			// URL-derived keys arrive as strings
			rec, err := st.Get(ctx, "CLIENTES", "1")
			if err != nil {
				t.Fatalf("get by string key: %v", err)
			}
			if rec["id_cliente"] != key {
				t.Fatalf("id_cliente = %v, want %v", rec["id_cliente"], key)
			}
		})
	}
}

func TestOpenReconcile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconcile.sqlite")

	gw, err := Open(path, testSchema)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err = gw.Create(context.Background(), "CLIENTES", Record{"nombre": "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	gw.Close()

	// idempotent reopen keeps data
	gw, err = Open(path, testSchema)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	recs, err := gw.GetAll(context.Background(), "CLIENTES")
	if err != nil || len(recs) != 1 {
		t.Fatalf("after reopen: recs = %v, err = %v", recs, err)
	}
	gw.Close()

	// higher version adds the missing collection
	grown := testSchema
	grown.Version = 2
	grown.Collections = append([]Collection{}, testSchema.Collections...)
	grown.Collections = append(grown.Collections, Collection{Name: "PRESTAMOS", KeyField: "id_prestamo", AutoKey: true})
	gw, err = Open(path, grown)
	if err != nil {
		t.Fatalf("upgrade open: %v", err)
	}
	if _, err = gw.GetAll(context.Background(), "PRESTAMOS"); err != nil {
		t.Fatalf("new collection: %v", err)
	}
	gw.Close()

	// requesting an older version conflicts
	if _, err = Open(path, testSchema); !errors.Is(err, ErrSchemaConflict) {
		t.Fatalf("downgrade open: err = %v, want ErrSchemaConflict", err)
	}
}

func TestOpenKeyConfigConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflict.sqlite")

	gw, err := Open(path, testSchema)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	gw.Close()

	changed := Schema{
		Version: 1,
		Collections: []Collection{
			{Name: "CLIENTES", KeyField: "id_cliente", AutoKey: false},
		},
	}
	if _, err = Open(path, changed); !errors.Is(err, ErrSchemaConflict) {
		t.Fatalf("err = %v, want ErrSchemaConflict", err)
	}
}
