// Package schemaset loads sparsetuple definitions from YAML.
//
//	types:
//	  - name: Person
//	    fields: [username, first, middle, last]
//	  - name: Point
//	    fields: "x, y"
//	  - name: Row
//	    rename: true
//	    fields: [id, "first name", id, _private]
package schemaset

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/sparsetuple"
)

var ErrDuplicateType = errors.New("duplicate type name")

// Set holds definitions in document order.
type Set struct {
	names []string
	types map[string]*sparsetuple.Type
}

type document struct {
	Types []typeDef `yaml:"types"`
}

type typeDef struct {
	Name   string    `yaml:"name"`
	Fields fieldList `yaml:"fields"`
	Rename bool      `yaml:"rename"`
}

// fieldList accepts a YAML sequence or a single comma/space separated string.
type fieldList []string

func (f *fieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = strings.Fields(strings.ReplaceAll(node.Value, ",", " "))
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*f = names
		return nil
	default:
		return errors.Errorf("line %d: fields must be a list or a string", node.Line)
	}
}

// Load parses a YAML document and defines every type in it.
func Load(r io.Reader) (*Set, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to parse definitions")
	}
	s := &Set{types: make(map[string]*sparsetuple.Type, len(doc.Types))}
	for _, d := range doc.Types {
		if _, ok := s.types[d.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateType, "%q", d.Name)
		}
		t, err := sparsetuple.DefineWith(d.Name, sparsetuple.DefineOpts{Rename: d.Rename}, d.Fields...)
		if err != nil {
			return nil, errors.Wrapf(err, "defining %q", d.Name)
		}
		s.names = append(s.names, d.Name)
		s.types[d.Name] = t
	}
	return s, nil
}

// LoadFile reads definitions from a file.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read definitions")
	}
	defer f.Close()
	return Load(f)
}

func (s *Set) Lookup(name string) (*sparsetuple.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names returns the type names in document order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Set) Len() int { return len(s.names) }
