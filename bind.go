package sparsetuple

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// Struct fields map to schema fields by name, or by a `sparse:"name"` tag.
// `sparse:"-"` skips a field. Pointer fields are dereferenced on the way in
// and allocated on the way out, so *T is the natural Go shape of a sparse
// field.
const tagName = "sparse"

type structPlan struct {
	fields []fieldPlan
}

type fieldPlan struct {
	idx     int // struct field index
	pos     int // schema position
	kind    reflect.Kind
	nilable bool
}

func (t *Type) getPlan(st reflect.Type) *structPlan {
	t.mu.RLock()
	if p, ok := t.plans[st]; ok {
		t.mu.RUnlock()
		return p
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double-check
	if p, ok := t.plans[st]; ok {
		return p
	}

	p := &structPlan{}
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup(tagName); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		pos, ok := t.lookup[name]
		if !ok {
			continue
		}
		k := sf.Type.Kind()
		p.fields = append(p.fields, fieldPlan{
			idx:     i,
			pos:     pos,
			kind:    k,
			nilable: isNilable(k),
		})
	}
	t.plans[st] = p
	return p
}

// FromStruct builds a record from the matching exported fields of v, which
// must be a struct or a pointer to one. Nil pointers, interfaces, slices,
// maps, funcs and chans are empty. Every other field is stored.
func (t *Type) FromStruct(v any) (*Record, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrNotStruct, "%s: got %T", t.name, v)
	}
	plan := t.getPlan(rv.Type())

	dense := make([]any, len(t.fields))
	for _, f := range plan.fields {
		fv := rv.Field(f.idx)
		if f.nilable && fv.IsNil() {
			continue
		}
		if f.kind == reflect.Pointer {
			fv = fv.Elem()
		}
		dense[f.pos] = fv.Interface()
	}
	return t.sparsify(dense), nil
}

// Decode copies the record into the struct pointed to by out. Fields whose
// value is Empty are reset to their zero value.
func (r *Record) Decode(out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.Wrapf(ErrNotStructPtr, "%s: got %T", r.typ.name, out)
	}
	dst := rv.Elem()
	plan := r.typ.getPlan(dst.Type())

	for _, f := range plan.fields {
		fv := dst.Field(f.idx)
		val := r.at(f.pos)
		if IsEmpty(val) {
			fv.SetZero()
			continue
		}
		if err := setField(fv, reflect.ValueOf(val)); err != nil {
			return errors.Wrapf(err, "%s.%s: %T into %s", r.typ.name, r.typ.fields[f.pos], val, fv.Type())
		}
	}
	return nil
}

func setField(fv, val reflect.Value) error {
	ft := fv.Type()
	switch {
	case val.Type().AssignableTo(ft):
		fv.Set(val)
	case isNumeric(val.Kind()) && isNumeric(ft.Kind()):
		if !convertible(val, ft) {
			return ErrTypeMismatch
		}
		fv.Set(val.Convert(ft))
	case ft.Kind() == reflect.Pointer:
		elem := reflect.New(ft.Elem())
		if err := setField(elem.Elem(), val); err != nil {
			return err
		}
		fv.Set(elem)
	default:
		return ErrTypeMismatch
	}
	return nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// convertible reports whether the numeric val fits ft without loss of range
// or, for float to integer, of a fractional part.
func convertible(val reflect.Value, ft reflect.Type) bool {
	dst := reflect.New(ft).Elem()
	switch {
	case isInt(ft.Kind()):
		switch {
		case isInt(val.Kind()):
			return !dst.OverflowInt(val.Int())
		case isUint(val.Kind()):
			u := val.Uint()
			return u <= math.MaxInt64 && !dst.OverflowInt(int64(u))
		default:
			f := val.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return false
			}
			return !dst.OverflowInt(int64(f))
		}
	case isUint(ft.Kind()):
		switch {
		case isInt(val.Kind()):
			i := val.Int()
			return i >= 0 && !dst.OverflowUint(uint64(i))
		case isUint(val.Kind()):
			return !dst.OverflowUint(val.Uint())
		default:
			f := val.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return false
			}
			return !dst.OverflowUint(uint64(f))
		}
	default:
		if isInt(val.Kind()) || isUint(val.Kind()) {
			return true
		}
		f := val.Float()
		return math.IsNaN(f) || math.IsInf(f, 0) || !dst.OverflowFloat(f)
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}
