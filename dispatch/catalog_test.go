package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/objbridge-go/obj"
)

const testManifest = `
[[selector]]
name = "counter.increment"
id = 12
description = "Add the payload amount to the counter"
schema = '{"type": "array", "items": {"type": "integer"}, "maxItems": 1}'

[[selector]]
name = "counter.value"
id = 13
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testManifest))
	require.NoError(t, err)

	sel, ok := catalog.Selector("counter.increment")
	require.True(t, ok)
	assert.Equal(t, obj.Selector(12), sel)

	def, ok := catalog.Lookup(obj.Selector(13))
	require.True(t, ok)
	assert.Equal(t, "counter.value", def.Name)
	assert.Empty(t, def.Schema)

	_, ok = catalog.Selector("counter.reset")
	assert.False(t, ok)

	assert.Equal(t, []string{"counter.increment", "counter.value"}, catalog.Names())
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.toml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	_, ok := catalog.PayloadSchema(obj.Selector(12))
	assert.True(t, ok, "declared schema must be compiled on load")
	_, ok = catalog.PayloadSchema(obj.Selector(13))
	assert.False(t, ok)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDefineRejectsBadDefinitions(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.Define(SelectorDef{Name: "a", ID: 1}))

	assert.Error(t, catalog.Define(SelectorDef{Name: "", ID: 2}), "missing name")
	assert.Error(t, catalog.Define(SelectorDef{Name: "b", ID: 0}), "reserved id")
	assert.Error(t, catalog.Define(SelectorDef{Name: "a", ID: 3}), "duplicate name")
	assert.Error(t, catalog.Define(SelectorDef{Name: "c", ID: 1}), "duplicate id")
	assert.Error(t, catalog.Define(SelectorDef{Name: "d", ID: 4, Schema: `{"type":`}), "broken schema")
}
