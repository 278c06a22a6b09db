package codec

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/signadot/graphcodec/ir"
)

// Category is the dispatch class of a type.
type Category int

const (
	CategoryUnsupported Category = iota
	CategoryNode
	CategoryString
	CategoryEnum
	CategoryMap
	CategorySequence
	CategoryObject
	CategoryPrimitive
	CategoryInterface
)

var categoryNames = [...]string{
	CategoryUnsupported: "unsupported",
	CategoryNode:        "node",
	CategoryString:      "string",
	CategoryEnum:        "enum",
	CategoryMap:         "map",
	CategorySequence:    "sequence",
	CategoryObject:      "object",
	CategoryPrimitive:   "primitive",
	CategoryInterface:   "interface",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

var (
	nodePtrType = reflect.TypeFor[*ir.Node]()
	nodeType    = reflect.TypeFor[ir.Node]()
)

// Categorize classifies t. Pointers take the category of what they point
// to, except *ir.Node which is CategoryNode.
func Categorize(t reflect.Type) Category {
	if t == nil {
		return CategoryUnsupported
	}
	if t == nodePtrType || t == nodeType {
		return CategoryNode
	}
	if isEnum(t) {
		return CategoryEnum
	}
	switch t.Kind() {
	case reflect.String:
		return CategoryString
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return CategoryPrimitive
	case reflect.Map:
		return CategoryMap
	case reflect.Slice, reflect.Array:
		return CategorySequence
	case reflect.Struct:
		return CategoryObject
	case reflect.Interface:
		return CategoryInterface
	case reflect.Pointer:
		return Categorize(t.Elem())
	}
	return CategoryUnsupported
}

// TypeDescriptor is the resolved shape of a type. Members is only
// populated for objects.
type TypeDescriptor struct {
	Type     reflect.Type
	Category Category
	Members  []*MemberDescriptor
}

// Lookup resolves a document member name: exact name or alias first, then
// the same ignoring case.
func (d *TypeDescriptor) Lookup(name string) *MemberDescriptor {
	for _, m := range d.Members {
		if m.Name == name || slices.Contains(m.Aliases, name) {
			return m
		}
	}
	for _, m := range d.Members {
		if strings.EqualFold(m.Name, name) {
			return m
		}
		for _, a := range m.Aliases {
			if strings.EqualFold(a, name) {
				return m
			}
		}
	}
	return nil
}

// MemberDescriptor describes one member of an object type: an exported
// field (possibly promoted from an embedded struct) or a property formed by
// a SetX method and an X or GetX method on the pointer type.
type MemberDescriptor struct {
	Name    string
	Type    reflect.Type
	Aliases []string

	Readable bool
	Writable bool
	Omit     bool

	// Default is a JSON literal applied when a fresh instance is seeded.
	Default    string
	HasDefault bool

	index  []int
	getter string
	setter string
}

// Names are the names the member is emitted under.
func (m *MemberDescriptor) Names() []string {
	if len(m.Aliases) > 0 {
		return m.Aliases
	}
	return []string{m.Name}
}

// IsProperty reports whether the member is accessed through methods.
func (m *MemberDescriptor) IsProperty() bool {
	return m.setter != ""
}

// Get returns the member's value in the struct value v. Properties need v
// to be addressable. A field behind a nil embedded pointer reads as zero.
func (m *MemberDescriptor) Get(v reflect.Value) reflect.Value {
	if m.IsProperty() {
		if !v.CanAddr() {
			cp := reflect.New(v.Type())
			cp.Elem().Set(v)
			v = cp.Elem()
		}
		return v.Addr().MethodByName(m.getter).Call(nil)[0]
	}
	f, err := v.FieldByIndexErr(m.index)
	if err != nil {
		return reflect.Zero(m.Type)
	}
	return f
}

// Set stores x into the member of the addressable struct value v,
// allocating nil embedded pointers on the way.
func (m *MemberDescriptor) Set(v reflect.Value, x reflect.Value) error {
	if !v.CanAddr() {
		return fmt.Errorf("%w: %s is not addressable", ErrUnsupported, v.Type())
	}
	if m.IsProperty() {
		out := v.Addr().MethodByName(m.setter).Call([]reflect.Value{x})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
	f := v
	for i, idx := range m.index {
		if i > 0 && f.Kind() == reflect.Pointer {
			if f.IsNil() {
				f.Set(reflect.New(f.Type().Elem()))
			}
			f = f.Elem()
		}
		f = f.Field(idx)
	}
	f.Set(x)
	return nil
}

var errorType = reflect.TypeFor[error]()

// Catalog resolves the descriptor of t. Resolution happens on every call so
// that types need no registration; pointers to structs are described by
// their element type.
func Catalog(t reflect.Type) (*TypeDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupported)
	}
	res := &TypeDescriptor{Type: t, Category: Categorize(t)}
	if res.Category != CategoryObject {
		return res, nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	res.Type = t
	seen := map[string]bool{}
	if err := collectFields(t, nil, seen, &res.Members); err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	collectProperties(t, seen, &res.Members)
	return res, nil
}

// collectFields appends the fields of t in declaration order. Fields of
// embedded structs are flattened; a name already taken at a shallower
// depth shadows the deeper one.
func collectFields(t reflect.Type, index []int, seen map[string]bool, dst *[]*MemberDescriptor) error {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, err := parseMemberTag(f.Tag.Get(tagName))
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if f.Anonymous && len(tag.aliases) == 0 {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				if !f.IsExported() {
					continue
				}
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && Categorize(ft) == CategoryObject {
				if !tag.omit {
					embedded = append(embedded, f)
				}
				continue
			}
		}
		if !f.IsExported() || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		*dst = append(*dst, &MemberDescriptor{
			Name:       f.Name,
			Type:       f.Type,
			Aliases:    tag.aliases,
			Readable:   true,
			Writable:   !tag.readonly,
			Omit:       tag.omit,
			Default:    tag.def,
			HasDefault: tag.hasDef,
			index:      append(append([]int(nil), index...), f.Index...),
		})
	}
	for _, f := range embedded {
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if err := collectFields(ft, append(append([]int(nil), index...), f.Index...), seen, dst); err != nil {
			return err
		}
	}
	return nil
}

// collectProperties appends getter/setter pairs of *t not shadowed by a
// field.
func collectProperties(t reflect.Type, seen map[string]bool, dst *[]*MemberDescriptor) {
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		set := pt.Method(i)
		name, ok := strings.CutPrefix(set.Name, "Set")
		if !ok || name == "" || seen[name] {
			continue
		}
		// receiver plus one argument, returning nothing or an error
		st := set.Type
		if st.NumIn() != 2 || st.NumOut() > 1 || (st.NumOut() == 1 && st.Out(0) != errorType) {
			continue
		}
		vt := st.In(1)
		getter := ""
		for _, gn := range []string{name, "Get" + name} {
			get, ok := pt.MethodByName(gn)
			if ok && get.Type.NumIn() == 1 && get.Type.NumOut() == 1 && get.Type.Out(0) == vt {
				getter = gn
				break
			}
		}
		if getter == "" {
			continue
		}
		seen[name] = true
		*dst = append(*dst, &MemberDescriptor{
			Name:     name,
			Type:     vt,
			Readable: true,
			Writable: true,
			getter:   getter,
			setter:   set.Name,
		})
	}
}
