package schemaset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/sparsetuple"
)

const defs = `
types:
  - name: Person
    fields: [username, first, middle, last, city, state, zip, bday]
  - name: Name
    fields: "first middle last age iq"
  - name: Point
    fields: x, y
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(defs))
	require.NoError(t, err)
	assert.Equal(t, []string{"Person", "Name", "Point"}, s.Names())
	assert.Equal(t, 3, s.Len())

	person, ok := s.Lookup("Person")
	require.True(t, ok)
	assert.Equal(t, []string{"username", "first", "middle", "last", "city", "state", "zip", "bday"}, person.Fields())

	name, ok := s.Lookup("Name")
	require.True(t, ok)
	assert.Equal(t, []string{"first", "middle", "last", "age", "iq"}, name.Fields())

	point, ok := s.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, point.Fields())

	_, ok = s.Lookup("Missing")
	assert.False(t, ok)
}

func TestLoadedTypeMatchesDefine(t *testing.T) {
	s, err := Load(strings.NewReader(defs))
	require.NoError(t, err)
	person, _ := s.Lookup("Person")
	direct := sparsetuple.MustDefine("Person", "username", "first", "middle", "last", "city", "state", "zip", "bday")

	a, err := person.New(sparsetuple.F("username", "ada"), sparsetuple.F("state", "NY"))
	require.NoError(t, err)
	b, err := direct.New(sparsetuple.F("username", "ada"), sparsetuple.F("state", "NY"))
	require.NoError(t, err)
	assert.Equal(t, b.String(), a.String())
	assert.Equal(t, b.Storage(), a.Storage())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("types:\n  - name: X\n    fields: [a, a]\n"))
	require.ErrorIs(t, err, sparsetuple.ErrDuplicateField)
	assert.Contains(t, err.Error(), `"X"`)

	_, err = Load(strings.NewReader("types:\n  - name: X\n    fields: [a]\n  - name: X\n    fields: [b]\n"))
	require.ErrorIs(t, err, ErrDuplicateType)

	_, err = Load(strings.NewReader("types:\n  - name: X\n    fields: {a: 1}\n"))
	require.Error(t, err)

	_, err = Load(strings.NewReader("types:\n  - fields: [a]\n"))
	require.ErrorIs(t, err, sparsetuple.ErrInvalidName)

	_, err = Load(strings.NewReader("types: [\n"))
	require.Error(t, err)
}

func TestLoadRename(t *testing.T) {
	const doc = `
types:
  - name: Row
    rename: true
    fields: [id, "first name", id, _private]
  - name: Strict
    fields: [id, "first name"]
`
	_, err := Load(strings.NewReader(doc))
	require.ErrorIs(t, err, sparsetuple.ErrInvalidName)
	assert.Contains(t, err.Error(), `"Strict"`)

	s, err := Load(strings.NewReader(doc[:strings.Index(doc, "  - name: Strict")]))
	require.NoError(t, err)
	row, ok := s.Lookup("Row")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "_1", "_2", "_3"}, row.Fields())
}

func TestLoadEmpty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Names())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defs), 0o600))
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
