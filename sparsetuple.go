// Package sparsetuple provides fixed-schema records that store only their
// populated fields.
//
// A Type is created once with Define and names an ordered set of fields.
// Records of that type keep the populated values in field order together with
// the ascending list of populated field indices. The dense view, one slot per
// field with Empty where nothing is stored, is rebuilt on demand.
//
//	Person := sparsetuple.MustDefine("Person", "username", "first", "last", "state")
//	p, _ := Person.New(sparsetuple.F("username", "ada"), sparsetuple.F("state", "NY"))
//	p.String() // Person(username="ada", first=nil, last=nil, state="NY")
//
// Types and records are immutable and safe to share between goroutines.
package sparsetuple

import (
	"fmt"
	"go/token"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrUnknownField    = errors.New("unknown field")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrArity           = errors.New("wrong number of values")
	ErrInvalidName     = errors.New("invalid name")
	ErrNotStruct       = errors.New("expected struct")
	ErrNotStructPtr    = errors.New("expected pointer to struct")
	ErrTypeMismatch    = errors.New("value type does not match field")
)

// Empty marks a field that holds no value. It is the nil interface value and
// must not be reassigned: the package itself always tests against nil.
var Empty any = nil

// IsEmpty reports whether v is the Empty marker, i.e. the nil interface.
// A typed nil pointer is a value, not Empty.
func IsEmpty(v any) bool { return v == nil }

// Field is a name/value pair used for construction and replacement.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for Field{name, value}.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Type is a record definition. Its schema is immutable once created.
type Type struct {
	name   string
	fields []string
	lookup map[string]int

	// struct plans for FromStruct/Decode, owned by the type
	mu    sync.RWMutex
	plans map[reflect.Type]*structPlan
}

// DefineOpts tunes Define.
type DefineOpts struct {
	// Rename replaces invalid, keyword, underscore-led and duplicate field
	// names with _<index> instead of failing.
	Rename bool
}

// Define creates a record type with the given ordered field names.
// Type and field names must be Go identifiers, field names must not start
// with an underscore and must be unique.
func Define(name string, fields ...string) (*Type, error) {
	return DefineWith(name, DefineOpts{}, fields...)
}

// DefineWith is Define with options.
func DefineWith(name string, opts DefineOpts, fields ...string) (*Type, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidName, "empty type name")
	}
	if !token.IsIdentifier(name) {
		return nil, errors.Wrapf(ErrInvalidName, "type name %q", name)
	}
	t := &Type{
		name:   name,
		fields: slices.Clone(fields),
		lookup: make(map[string]int, len(fields)),
		plans:  make(map[reflect.Type]*structPlan),
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range t.fields {
		_, dup := seen[f]
		seen[f] = struct{}{}
		if opts.Rename && (dup || !validField(f)) {
			f = fmt.Sprintf("_%d", i)
			t.fields[i] = f
			t.lookup[f] = i
			continue
		}
		if f == "" {
			return nil, errors.Wrapf(ErrInvalidName, "%s: empty field name at position %d", name, i)
		}
		if dup {
			return nil, errors.Wrapf(ErrDuplicateField, "%s: %q", name, f)
		}
		if !validField(f) {
			return nil, errors.Wrapf(ErrInvalidName, "%s: field name %q", name, f)
		}
		t.lookup[f] = i
	}
	return t, nil
}

// validField: an identifier that is not a keyword and not underscore-led.
func validField(f string) bool {
	return token.IsIdentifier(f) && !strings.HasPrefix(f, "_")
}

// MustDefine is like Define but panics on error.
func MustDefine(name string, fields ...string) *Type {
	t, err := Define(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Type) Name() string { return t.name }

// Fields returns a copy of the field names in schema order.
func (t *Type) Fields() []string { return slices.Clone(t.fields) }

func (t *Type) NumField() int { return len(t.fields) }

// Index returns the position of the named field.
func (t *Type) Index(name string) (int, bool) {
	i, ok := t.lookup[name]
	return i, ok
}

func (t *Type) String() string {
	return t.name + "(" + strings.Join(t.fields, ", ") + ")"
}

func (t *Type) index(name string) (int, error) {
	i, ok := t.lookup[name]
	if !ok {
		return -1, errors.Wrapf(ErrUnknownField, "%s has no field %q", t.name, name)
	}
	return i, nil
}

// New builds a record from the supplied fields. Fields that are not supplied
// are empty. Supplied values are stored as given, Empty included.
func (t *Type) New(fields ...Field) (*Record, error) {
	slots := make([]slot, 0, len(fields))
	for _, f := range fields {
		i, err := t.index(f.Name)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot{idx: i, val: f.Value})
	}
	return t.fromSlots(slots)
}

// FromMap is New with map input.
func (t *Type) FromMap(m map[string]any) (*Record, error) {
	slots := make([]slot, 0, len(m))
	for name, v := range m {
		i, err := t.index(name)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot{idx: i, val: v})
	}
	return t.fromSlots(slots)
}

// Make builds a record from one value per field in schema order. Positions
// holding Empty are not stored.
func (t *Type) Make(values []any) (*Record, error) {
	if len(values) != len(t.fields) {
		return nil, errors.Wrapf(ErrArity, "%s expects %d values, got %d", t.name, len(t.fields), len(values))
	}
	return t.sparsify(values), nil
}

type slot struct {
	idx int
	val any
}

func (t *Type) fromSlots(slots []slot) (*Record, error) {
	if !isSortedByIdx(slots) {
		slices.SortFunc(slots, func(a, b slot) int { return a.idx - b.idx })
	}
	r := &Record{
		typ:  t,
		vals: make([]any, len(slots)),
		idx:  make([]int, len(slots)),
	}
	for j, s := range slots {
		if j > 0 && slots[j-1].idx == s.idx {
			return nil, errors.Wrapf(ErrDuplicateField, "%s: %q supplied twice", t.name, t.fields[s.idx])
		}
		r.vals[j] = s.val
		r.idx[j] = s.idx
	}
	return r, nil
}

// sparsify keeps every non-empty position of a dense view.
func (t *Type) sparsify(dense []any) *Record {
	k := 0
	for _, v := range dense {
		if !IsEmpty(v) {
			k++
		}
	}
	r := &Record{
		typ:  t,
		vals: make([]any, 0, k),
		idx:  make([]int, 0, k),
	}
	for i, v := range dense {
		if IsEmpty(v) {
			continue
		}
		r.vals = append(r.vals, v)
		r.idx = append(r.idx, i)
	}
	return r
}

func isSortedByIdx(slots []slot) bool {
	for i := 1; i < len(slots); i++ {
		if slots[i-1].idx > slots[i].idx {
			return false
		}
	}
	return true
}
