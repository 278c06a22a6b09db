package codec

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/signadot/graphcodec/debug"
	"github.com/signadot/graphcodec/ir"
)

// Serialize converts v into a document. declared is the static type of v
// and is only consulted when v is the zero Value. Problems that leave part
// of the value unrepresented are recorded in diag; only converter failures
// and panics are returned as errors.
func (c *Codec) Serialize(v reflect.Value, declared reflect.Type, diag *Diagnostics) (res *ir.Node, err error) {
	if diag == nil {
		diag = &Diagnostics{}
	}
	if !v.IsValid() && declared != nil {
		v = reflect.Zero(declared)
	}
	defer recoverPanic(&err)
	return c.serialize(v, ir.Root, diag)
}

func (c *Codec) serialize(v reflect.Value, path string, diag *Diagnostics) (*ir.Node, error) {
	// values held by interfaces are resolved by their dynamic type
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ir.Null(), nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ir.Null(), nil
	}
	t := v.Type()
	if debug.Encode() {
		debug.Logf("serialize %s at %s\n", t, path)
	}
	switch t {
	case nodePtrType:
		if v.IsNil() {
			return ir.Null(), nil
		}
		return v.Interface().(*ir.Node).Clone(), nil
	case nodeType:
		n := v.Interface().(ir.Node)
		return n.Clone(), nil
	}
	if conv := lookupConverter(c.converters, t, writePhase); conv != nil {
		if nillable(t) && v.IsNil() {
			return ir.Null(), nil
		}
		if debug.Convert() {
			debug.Logf("converter %s writes %s at %s\n", conv.Name(), t, path)
		}
		node, err := conv.Write(v)
		if err != nil {
			return nil, &ConverterError{Converter: conv.Name(), FieldPath: path, Err: err}
		}
		if node == nil {
			return ir.Null(), nil
		}
		return node, nil
	}
	if nillable(t) && v.IsNil() {
		return ir.Null(), nil
	}
	if t.Kind() == reflect.Pointer {
		return c.serialize(v.Elem(), path, diag)
	}

	switch Categorize(t) {
	case CategoryPrimitive:
		return serializePrimitive(v, path, diag), nil
	case CategoryString:
		return ir.FromString(v.String()), nil
	case CategoryEnum:
		return serializeEnum(v, path, diag), nil
	case CategoryMap:
		return c.serializeMap(v, path, diag)
	case CategorySequence:
		return c.serializeSequence(v, path, diag)
	case CategoryObject:
		return c.serializeObject(v, path, diag)
	}
	diag.Warnf(path, "%s serialized as text", t)
	if v.CanInterface() {
		return ir.FromString(fmt.Sprint(v.Interface())), nil
	}
	return ir.FromString(v.String()), nil
}

func serializePrimitive(v reflect.Value, path string, diag *Diagnostics) *ir.Node {
	switch v.Kind() {
	case reflect.Bool:
		return ir.FromBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ir.FromInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ir.FromUint(v.Uint())
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		// documents have no non-finite numbers; the text reads back through
		// number coercion
		diag.Warnf(path, "non-finite %v serialized as text", f)
		return ir.FromString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	if v.Kind() == reflect.Float32 {
		// shortest text of the float32 value, not of its float64 widening
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', -1, 32), 64)
	}
	return ir.FromFloat(f)
}

func serializeEnum(v reflect.Value, path string, diag *Diagnostics) *ir.Node {
	if name, ok := enumName(v); ok {
		return ir.FromString(name)
	}
	diag.Warnf(path, "%v is not a named value of %s", v, v.Type())
	switch v.Kind() {
	case reflect.String:
		return ir.FromString(v.String())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ir.FromUint(v.Uint())
	}
	return ir.FromInt(v.Int())
}

// serializeMap emits entries sorted by key text. Nil values are replaced by
// an empty value of the element type so they read back well typed.
func (c *Codec) serializeMap(v reflect.Value, path string, diag *Diagnostics) (*ir.Node, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKeyText(iter.Key())
		if err != nil {
			diag.Warnf(path, "key %v: %v", iter.Key(), err)
			continue
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	et := v.Type().Elem()
	res := ir.NewObject()
	for _, e := range entries {
		val := e.val
		if nillable(et) && val.IsNil() {
			val = emptyValue(et)
		}
		node, err := c.serialize(val, ir.FieldPath(path, e.key), diag)
		if err != nil {
			return nil, err
		}
		res.Set(e.key, node)
	}
	return res, nil
}

// emptyValue is the stand-in for a nil map value of type t.
func emptyValue(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Pointer:
		return reflect.New(t.Elem())
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	}
	return reflect.Zero(t)
}

func mapKeyText(k reflect.Value) (string, error) {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if isEnum(k.Type()) {
		if name, ok := enumName(k); ok {
			return name, nil
		}
	}
	if m, ok := k.Interface().(encoding.TextMarshaler); ok {
		d, err := m.MarshalText()
		if err != nil {
			return "", err
		}
		return string(d), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), nil
	}
	return "", fmt.Errorf("unsupported key type %s", k.Type())
}

func (c *Codec) serializeSequence(v reflect.Value, path string, diag *Diagnostics) (*ir.Node, error) {
	vals := make([]*ir.Node, v.Len())
	for i := range vals {
		node, err := c.serialize(v.Index(i), ir.IndexPath(path, i), diag)
		if err != nil {
			return nil, err
		}
		vals[i] = node
	}
	return ir.FromSlice(vals), nil
}

// serializeObject emits readable, non-omitted members in catalog order. A
// member with aliases is emitted once per alias and never under its own
// name.
func (c *Codec) serializeObject(v reflect.Value, path string, diag *Diagnostics) (*ir.Node, error) {
	t := v.Type()
	desc, err := Catalog(t)
	if err != nil {
		return nil, &MarshalError{FieldPath: path, Message: "invalid type", Err: err}
	}
	if !v.CanAddr() {
		cp := reflect.New(t).Elem()
		cp.Set(v)
		v = cp
	}
	res := ir.NewObject()
	for _, m := range desc.Members {
		if !m.Readable || m.Omit {
			continue
		}
		names := m.Names()
		node, err := c.serialize(m.Get(v), ir.FieldPath(path, names[0]), diag)
		if err != nil {
			return nil, err
		}
		for i, name := range names {
			if i > 0 {
				node = node.Clone()
			}
			res.Set(name, node)
		}
	}
	if w, ok := hookTarget(v).(NodeWriter); ok {
		if err := w.WriteNode(res); err != nil {
			diag.Warnf(path, "%s write hook: %v", t, err)
		}
	}
	return res, nil
}
