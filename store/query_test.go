package store

import "testing"

func TestLooseEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"same strings", "abc", "abc", true},
		{"different strings", "abc", "abd", false},
		{"number vs numeric string", float64(5), "5", true},
		{"numeric string vs number", "5", int64(5), true},
		{"decimal vs string", 2.5, "2.5", true},
		{"number mismatch", float64(5), "6", false},
		{"bool vs token", true, "true", true},
		{"bool vs wrong token", false, "true", false},
		{"both nil", nil, nil, true},
		{"nil vs value", nil, "x", false},
		{"int vs float", 5, 5.0, true},
		{"padded numeric string", " 5 ", 5, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := LooseEqual(c.a, c.b); got != c.want {
				t.Fatalf("LooseEqual(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	rec := Record{"nombre": "a", "nivel": float64(5), "activo": true}

	if !matches(rec, nil) {
		t.Fatal("nil predicate must match")
	}
	if !matches(rec, map[string]any{"nivel": "5", "activo": "true"}) {
		t.Fatal("loose AND predicate must match")
	}
	if matches(rec, map[string]any{"nivel": "5", "nombre": "b"}) {
		t.Fatal("one failing field must reject")
	}
	if matches(rec, map[string]any{"ausente": "x"}) {
		t.Fatal("absent field must reject")
	}
}
