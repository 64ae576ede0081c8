// Package catalog holds the vendor reference data used by the resolver and
// the vendor-specific parsers: canonical tax-ID -> legal-name entries, brand
// aliases, multi-ID brand groups, hard name overrides and the operator's own
// identifiers (so the buyer is never mistaken for the seller). The data is
// plain JSON, an embedded default swappable with -catalog, validated against
// a schema at load time so a bad file fails the run before any extraction
// starts.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/facturas-tools/extractor/internal/normalize"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

//go:embed schema.json
var schemaJSON string

// Override forces a canonical vendor name when Pattern matches the document
// text. TaxID optionally forces the identifier too; empty means "do not
// impose" so the ID actually present in the document is preserved (needed for
// multi-ID brands).
type Override struct {
	Pattern string `json:"pattern"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`

	re *regexp.Regexp
}

// Matches reports whether the override pattern matches the (case-insensitive)
// document text.
func (o *Override) Matches(text string) bool {
	return o.re != nil && o.re.MatchString(text)
}

type catalogFile struct {
	Entries   map[string]string   `json:"entries"`
	Aliases   map[string]string   `json:"aliases"`
	MultiID   map[string][]string `json:"multi_id_brands"`
	Overrides []Override          `json:"overrides"`
	Own       struct {
		TaxIDs     []string `json:"tax_ids"`
		NameTokens []string `json:"name_tokens"`
	} `json:"own"`
}

// Catalog is the read-only vendor reference data. Safe to share across
// goroutines and to copy into worker processes; nothing mutates it after
// Load.
type Catalog struct {
	entries   map[string]string
	aliases   map[string]string
	multiID   map[string][]string
	overrides []Override
	ownIDs    map[string]struct{}
	ownNames  []string
}

// Default returns the embedded catalog. The embedded data is validated at
// init-test time, not here; Default panics only if the build itself shipped
// broken data.
func Default() *Catalog {
	c, err := parse(defaultCatalogJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads and validates a catalog JSON file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func parse(raw []byte) (*Catalog, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var f catalogFile
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	c := &Catalog{
		entries:  make(map[string]string, len(f.Entries)),
		aliases:  make(map[string]string, len(f.Aliases)),
		multiID:  make(map[string][]string, len(f.MultiID)),
		ownIDs:   make(map[string]struct{}, len(f.Own.TaxIDs)),
		ownNames: f.Own.NameTokens,
	}
	for id, name := range f.Entries {
		c.entries[normalize.CanonicalID(id)] = name
	}
	for brand, id := range f.Aliases {
		c.aliases[normalize.CleanCompany(brand)] = normalize.CanonicalID(id)
	}
	for brand, ids := range f.MultiID {
		canon := make([]string, 0, len(ids))
		for _, id := range ids {
			canon = append(canon, normalize.CanonicalID(id))
		}
		c.multiID[normalize.CleanCompany(brand)] = canon
	}
	for _, id := range f.Own.TaxIDs {
		c.ownIDs[normalize.CanonicalID(id)] = struct{}{}
	}
	for i := range f.Overrides {
		re, err := regexp.Compile("(?i)" + f.Overrides[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("override pattern %q: %w", f.Overrides[i].Pattern, err)
		}
		f.Overrides[i].re = re
	}
	c.overrides = f.Overrides
	return c, nil
}

func validateSchema(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog-schema.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		return fmt.Errorf("schema resource: %w", err)
	}
	schema, err := compiler.Compile("catalog-schema.json")
	if err != nil {
		return fmt.Errorf("schema compile: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// NameFor looks up the canonical legal name for a canonical tax ID.
func (c *Catalog) NameFor(taxID string) (string, bool) {
	name, ok := c.entries[taxID]
	return name, ok
}

// AliasID resolves a cleaned brand token to a tax ID.
func (c *Catalog) AliasID(brand string) (string, bool) {
	id, ok := c.aliases[brand]
	return id, ok
}

// AliasBrands returns the cleaned brand tokens of the alias table.
func (c *Catalog) AliasBrands() []string {
	out := make([]string, 0, len(c.aliases))
	for b := range c.aliases {
		out = append(out, b)
	}
	return out
}

// MultiIDBrands returns brand token -> known tax IDs for brands that invoice
// under several company identifiers.
func (c *Catalog) MultiIDBrands() map[string][]string {
	return c.multiID
}

// Overrides returns the hard name overrides in file order.
func (c *Catalog) Overrides() []Override {
	return c.overrides
}

// IsOwnID reports whether a canonical tax ID belongs to the operator (the
// buyer), which must never be reported as the vendor.
func (c *Catalog) IsOwnID(taxID string) bool {
	_, ok := c.ownIDs[taxID]
	return ok
}

// MatchesOwnName reports whether a cleaned text line contains one of the
// operator's own name tokens.
func (c *Catalog) MatchesOwnName(cleanLine string) bool {
	for _, tok := range c.ownNames {
		if tok != "" && containsToken(cleanLine, normalize.CleanCompany(tok)) {
			return true
		}
	}
	return false
}

func containsToken(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
