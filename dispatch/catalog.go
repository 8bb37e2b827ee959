package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"

	"github.com/machinefabric/objbridge-go/obj"
)

// SelectorDef declares one named selector: the interned id the foreign
// runtime knows it by, and optionally an inline JSON Schema (Draft-7) that
// payloads for this selector must satisfy.
type SelectorDef struct {
	Name        string `toml:"name"`
	ID          uint64 `toml:"id"`
	Description string `toml:"description,omitempty"`
	// Schema is an inline JSON Schema document validating the payload
	// value array. Empty means no payload validation for this selector.
	Schema string `toml:"schema,omitempty"`
}

// catalogFile is the TOML manifest layout:
//
//	[[selector]]
//	name = "counter.increment"
//	id = 12
//	schema = '{"type": "array", "maxItems": 1}'
type catalogFile struct {
	Selectors []SelectorDef `toml:"selector"`
}

// Catalog maps selector names to interned selector ids. Selector interning
// itself belongs to the foreign runtime; the catalog only records the
// outcome so calling code can use names, and carries the optional payload
// schema per selector. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]SelectorDef
	byID    map[obj.Selector]SelectorDef
	schemas map[obj.Selector]*gojsonschema.Schema
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName:  make(map[string]SelectorDef),
		byID:    make(map[obj.Selector]SelectorDef),
		schemas: make(map[obj.Selector]*gojsonschema.Schema),
	}
}

// LoadCatalog reads a TOML selector manifest from path.
func LoadCatalog(path string) (*Catalog, error) {
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse selector manifest %s: %w", path, err)
	}
	return catalogFromFile(&file)
}

// ParseCatalog reads a TOML selector manifest from memory.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse selector manifest: %w", err)
	}
	return catalogFromFile(&file)
}

func catalogFromFile(file *catalogFile) (*Catalog, error) {
	c := NewCatalog()
	for _, def := range file.Selectors {
		if err := c.Define(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Define adds a selector definition. The name and id must both be unique
// within the catalog, and a declared schema must compile.
func (c *Catalog) Define(def SelectorDef) error {
	if def.Name == "" {
		return fmt.Errorf("selector definition has no name")
	}
	if def.ID == 0 {
		return fmt.Errorf("selector '%s' uses reserved id 0", def.Name)
	}

	var schema *gojsonschema.Schema
	if def.Schema != "" {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(def.Schema))
		if err != nil {
			return fmt.Errorf("invalid schema for selector '%s': %w", def.Name, err)
		}
		schema = compiled
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[def.Name]; exists {
		return fmt.Errorf("duplicate selector name '%s'", def.Name)
	}
	if prev, exists := c.byID[obj.Selector(def.ID)]; exists {
		return fmt.Errorf("selector id %d already taken by '%s'", def.ID, prev.Name)
	}

	c.byName[def.Name] = def
	c.byID[obj.Selector(def.ID)] = def
	if schema != nil {
		c.schemas[obj.Selector(def.ID)] = schema
	}
	return nil
}

// Selector returns the interned id for a selector name.
func (c *Catalog) Selector(name string) (obj.Selector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return obj.Selector(def.ID), true
}

// Lookup returns the full definition for a selector id.
func (c *Catalog) Lookup(sel obj.Selector) (SelectorDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byID[sel]
	return def, ok
}

// PayloadSchema returns the compiled payload schema for a selector id, if
// one was declared.
func (c *Catalog) PayloadSchema(sel obj.Selector) (*gojsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	schema, ok := c.schemas[sel]
	return schema, ok
}

// Names returns all defined selector names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
