package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogParses(t *testing.T) {
	c := Default()
	name, ok := c.NameFor("A28581882")
	if !ok || name != "ALCAMPO S.A." {
		t.Errorf("NameFor(A28581882) = %q, %v", name, ok)
	}
	if _, ok := c.NameFor("Z9999999Z"); ok {
		t.Error("unknown ID must not resolve")
	}
	if ids := c.MultiIDBrands()["REPSOL"]; len(ids) != 2 {
		t.Errorf("REPSOL multi-ID group = %v, want 2 ids", ids)
	}
	if id, ok := c.AliasID("ALCAMPO"); !ok || id != "A28581882" {
		t.Errorf("AliasID(ALCAMPO) = %q, %v", id, ok)
	}
}

func TestLoadValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{
		"entries": {"b-11.111.111": "EJEMPLO S.L."},
		"aliases": {"Ejémplo": "B11111111"},
		"own": {"tax_ids": ["12345678Z"], "name_tokens": ["MI GESTORIA"]}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// entry keys are canonicalized on load
	if name, ok := c.NameFor("B11111111"); !ok || name != "EJEMPLO S.L." {
		t.Errorf("NameFor(B11111111) = %q, %v", name, ok)
	}
	// alias keys are accent-stripped and uppercased
	if id, ok := c.AliasID("EJEMPLO"); !ok || id != "B11111111" {
		t.Errorf("AliasID(EJEMPLO) = %q, %v", id, ok)
	}
	if !c.IsOwnID("12345678Z") {
		t.Error("own tax ID not recognized")
	}
	if !c.MatchesOwnName("FACTURAR A MI GESTORIA SL") {
		t.Error("own name token not recognized")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing entries", data: `{"aliases": {}}`},
		{name: "wrong entry type", data: `{"entries": {"A1": 42}}`},
		{name: "unknown top key", data: `{"entries": {}, "vendors": {}}`},
		{name: "override without name", data: `{"entries": {}, "overrides": [{"pattern": "X"}]}`},
		{name: "not json", data: `{{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted invalid catalog")
			}
		})
	}
}

func TestLoadRejectsBadOverridePattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"entries": {}, "overrides": [{"pattern": "([", "name": "X"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted unparseable override regexp")
	}
}
