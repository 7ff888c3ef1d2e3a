package sparsetuple

import (
	"iter"
	"reflect"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/sparsetuple/internal/common"
)

// Record is an immutable instance of a Type.
//
// Storage layout: vals holds the populated values in ascending field order,
// idx holds their field indices. len(vals) == len(idx).
type Record struct {
	typ  *Type
	vals []any
	idx  []int
}

// Type returns the definition r was built from.
func (r *Record) Type() *Type { return r.typ }

// Len returns the number of fields in the dense view.
func (r *Record) Len() int { return len(r.typ.fields) }

// NumPopulated returns the number of stored values.
func (r *Record) NumPopulated() int { return len(r.idx) }

// Get returns the value at position i. Negative positions count from the end.
func (r *Record) Get(i int) (any, error) {
	n := len(r.typ.fields)
	pos := i
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos >= n {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "%s: index %d with %d fields", r.typ.name, i, n)
	}
	return r.at(pos), nil
}

// Field returns the value of the named field.
func (r *Record) Field(name string) (any, error) {
	i, err := r.typ.index(name)
	if err != nil {
		return nil, err
	}
	return r.at(i), nil
}

// Has reports whether the named field is stored.
func (r *Record) Has(name string) bool {
	i, ok := r.typ.lookup[name]
	return ok && common.Search(r.idx, i) >= 0
}

func (r *Record) at(i int) any {
	if j := common.Search(r.idx, i); j >= 0 {
		return r.vals[j]
	}
	return nil
}

// Values returns the dense view: one entry per field, Empty where unset.
func (r *Record) Values() []any {
	out := make([]any, len(r.typ.fields))
	for j, i := range r.idx {
		out[i] = r.vals[j]
	}
	return out
}

// All iterates the dense view in field order.
func (r *Record) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		j := 0
		for i := range r.typ.fields {
			var v any
			if j < len(r.idx) && r.idx[j] == i {
				v = r.vals[j]
				j++
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Storage returns the compact form: the stored values followed by one
// trailing []int with their field indices.
func (r *Record) Storage() []any {
	out := make([]any, 0, len(r.vals)+1)
	out = append(out, r.vals...)
	return append(out, slices.Clone(r.idx))
}

// Populated returns the stored field indices as a bitmap.
func (r *Record) Populated() *roaring.Bitmap {
	rb := roaring.New()
	for _, i := range r.idx {
		rb.Add(uint32(i))
	}
	return rb
}

func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	return common.Repr(r.typ.name, r.typ.fields, r.Values())
}

// AsMapping returns every field with its value in schema order.
func (r *Record) AsMapping() []Field {
	out := make([]Field, 0, len(r.typ.fields))
	for i, v := range r.All() {
		out = append(out, Field{Name: r.typ.fields[i], Value: v})
	}
	return out
}

// AsMap returns the dense view keyed by field name.
func (r *Record) AsMap() map[string]any {
	out := make(map[string]any, len(r.typ.fields))
	for i, v := range r.All() {
		out[r.typ.fields[i]] = v
	}
	return out
}

// MarshalYAML implements yaml.Marshaler. Keys keep schema order.
func (r *Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, v := range r.All() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.typ.fields[i]}
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return nil, errors.Wrapf(err, "encoding field %s", r.typ.fields[i])
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Replace returns a new record with the given fields overridden. The result
// stores exactly the positions whose final value is not Empty, so overriding
// a field with Empty removes it.
func (r *Record) Replace(fields ...Field) (*Record, error) {
	dense := r.Values()
	seen := make([]bool, len(dense))
	for _, f := range fields {
		i, err := r.typ.index(f.Name)
		if err != nil {
			return nil, err
		}
		if seen[i] {
			return nil, errors.Wrapf(ErrDuplicateField, "%s: %q supplied twice", r.typ.name, f.Name)
		}
		seen[i] = true
		dense[i] = f.Value
	}
	return r.typ.sparsify(dense), nil
}

// Equal compares dense views. Field names and type names are not compared.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Len() != o.Len() {
		return false
	}
	a, b := r.Values(), o.Values()
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
