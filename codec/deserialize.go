package codec

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/signadot/graphcodec/debug"
	"github.com/signadot/graphcodec/ir"
	"github.com/signadot/graphcodec/parse"
)

// Deserialize converts node into a value of type t, merging onto existing.
// Object targets keep every member the node does not mention; maps and
// sequences are rebuilt from the node. Per-member problems are recorded in
// diag and leave the prior value in place; only converter failures and
// panics are returned as errors.
func (c *Codec) Deserialize(node *ir.Node, t reflect.Type, existing reflect.Value, diag *Diagnostics) (res reflect.Value, err error) {
	if diag == nil {
		diag = &Diagnostics{}
	}
	defer recoverPanic(&err)
	return c.deserialize(node, t, existing, ir.Root, diag)
}

func (c *Codec) deserialize(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	if !existing.IsValid() {
		existing = reflect.Zero(t)
	}
	if debug.Decode() {
		debug.Logf("deserialize %s into %s\n", path, t)
	}
	switch t {
	case nodePtrType:
		if node == nil {
			return existing, nil
		}
		return reflect.ValueOf(node), nil
	case nodeType:
		if node == nil {
			return existing, nil
		}
		return reflect.ValueOf(node.Clone()).Elem(), nil
	}
	if node == nil {
		return existing, nil
	}
	if node.Type == ir.NullType {
		if nillable(t) {
			return reflect.Zero(t), nil
		}
		return existing, nil
	}
	if conv := lookupConverter(c.converters, t, readPhase); conv != nil {
		return c.readConverter(conv, node, t, existing, path)
	}
	if t.Kind() == reflect.Pointer {
		return c.deserializePointer(node, t, existing, path, diag)
	}

	switch Categorize(t) {
	case CategoryString:
		return deserializeString(node, t, existing, path, diag), nil
	case CategoryEnum:
		return deserializeEnum(node, t, existing, path, diag), nil
	case CategoryMap:
		return c.deserializeMap(node, t, existing, path, diag)
	case CategorySequence:
		return c.deserializeSequence(node, t, existing, path, diag)
	case CategoryObject:
		return c.deserializeObject(node, t, existing, path, diag)
	case CategoryPrimitive:
		return deserializePrimitive(node, t, existing, path, diag), nil
	case CategoryInterface:
		return c.deserializeInterface(node, t, existing, path, diag)
	}
	diag.Warnf(path, "cannot deserialize into %s", t)
	return existing, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	}
	return false
}

func (c *Codec) readConverter(conv Converter, node *ir.Node, t reflect.Type, existing reflect.Value, path string) (reflect.Value, error) {
	if debug.Convert() {
		debug.Logf("converter %s reads %s at %s\n", conv.Name(), t, path)
	}
	v, err := conv.Read(node, t, existing)
	if err != nil {
		return existing, &ConverterError{Converter: conv.Name(), FieldPath: path, Err: err}
	}
	if !v.IsValid() {
		return existing, nil
	}
	if v.Type() != t {
		if !v.Type().ConvertibleTo(t) {
			return existing, &ConverterError{
				Converter: conv.Name(),
				FieldPath: path,
				Err:       fmt.Errorf("produced %s, want %s", v.Type(), t),
			}
		}
		v = v.Convert(t)
	}
	return v, nil
}

// deserializePointer reuses the existing pointee, allocating a seeded one
// when the pointer is nil.
func (c *Codec) deserializePointer(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	p := existing
	if p.IsNil() {
		sv, err := c.seed(t.Elem(), path, diag)
		if err != nil {
			return existing, err
		}
		p = reflect.New(t.Elem())
		p.Elem().Set(sv)
	}
	v, err := c.deserialize(node, t.Elem(), p.Elem(), path, diag)
	if err != nil {
		return existing, err
	}
	p.Elem().Set(v)
	return p, nil
}

func deserializeString(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) reflect.Value {
	text, ok := node.Text()
	if !ok {
		diag.Warnf(path, "expected text for %s, got %s", t, node.Type)
		return existing
	}
	res := reflect.New(t).Elem()
	res.SetString(text)
	return res
}

func deserializeEnum(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) reflect.Value {
	vals := enumValues(t)
	switch node.Type {
	case ir.StringType:
		if ev, ok := enumLookup(vals, node.String); ok {
			return enumSet(t, ev)
		}
	case ir.NumberType:
		if node.Int64 != nil && t.Kind() != reflect.String {
			for _, ev := range vals {
				if ev.Value == *node.Int64 {
					return enumSet(t, ev)
				}
			}
		}
	}
	text, _ := node.Text()
	diag.Warnf(path, "%q is not a value of %s", text, t)
	return existing
}

func (c *Codec) deserializeMap(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	if node.Type != ir.ObjectType {
		diag.Warnf(path, "expected object for %s, got %s", t, node.Type)
		return existing, nil
	}
	res := reflect.MakeMapWithSize(t, len(node.Fields))
	for i, f := range node.Fields {
		kp := ir.FieldPath(path, f.String)
		key, err := mapKey(f.String, t.Key())
		if err != nil {
			diag.Warnf(kp, "invalid key: %v", err)
			continue
		}
		var prior reflect.Value
		if !existing.IsNil() {
			prior = existing.MapIndex(key)
		}
		if !prior.IsValid() {
			if prior, err = c.seed(t.Elem(), kp, diag); err != nil {
				return existing, err
			}
		} else {
			cp := reflect.New(t.Elem()).Elem()
			cp.Set(prior)
			prior = cp
		}
		v, err := c.deserialize(node.Values[i], t.Elem(), prior, kp, diag)
		if err != nil {
			return existing, err
		}
		res.SetMapIndex(key, v)
	}
	return res, nil
}

// mapKey converts document member name k into a key of type kt.
func mapKey(k string, kt reflect.Type) (reflect.Value, error) {
	res := reflect.New(kt).Elem()
	if isEnum(kt) {
		ev, ok := enumLookup(enumValues(kt), k)
		if !ok {
			return res, fmt.Errorf("%q is not a value of %s", k, kt)
		}
		return enumSet(kt, ev), nil
	}
	if u, ok := res.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(k)); err != nil {
			return res, err
		}
		return res, nil
	}
	switch kt.Kind() {
	case reflect.String:
		res.SetString(k)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(k, 10, kt.Bits())
		if err != nil {
			return res, err
		}
		res.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(k, 10, kt.Bits())
		if err != nil {
			return res, err
		}
		res.SetUint(u)
	case reflect.Bool:
		b, err := strconv.ParseBool(k)
		if err != nil {
			return res, err
		}
		res.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(k, kt.Bits())
		if err != nil {
			return res, err
		}
		res.SetFloat(f)
	case reflect.Interface:
		kv := reflect.ValueOf(k)
		if !kv.Type().AssignableTo(kt) {
			return res, fmt.Errorf("unsupported key type %s", kt)
		}
		res.Set(kv)
	default:
		return res, fmt.Errorf("unsupported key type %s", kt)
	}
	return res, nil
}

// deserializeSequence builds a new slice or array; elements are seeded fresh
// rather than merged onto prior elements.
func (c *Codec) deserializeSequence(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	if node.Type != ir.ArrayType {
		diag.Warnf(path, "expected array for %s, got %s", t, node.Type)
		return existing, nil
	}
	n := len(node.Values)
	var res reflect.Value
	if t.Kind() == reflect.Array {
		res = reflect.New(t).Elem()
		if n != t.Len() {
			diag.Warnf(path, "array of %d elements read into %s", n, t)
			n = min(n, t.Len())
		}
	} else {
		res = reflect.MakeSlice(t, n, n)
	}
	for i := 0; i < n; i++ {
		ep := ir.IndexPath(path, i)
		sv, err := c.seed(t.Elem(), ep, diag)
		if err != nil {
			return existing, err
		}
		v, err := c.deserialize(node.Values[i], t.Elem(), sv, ep, diag)
		if err != nil {
			return existing, err
		}
		res.Index(i).Set(v)
	}
	return res, nil
}

func (c *Codec) deserializeObject(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	if node.Type != ir.ObjectType {
		diag.Warnf(path, "expected object for %s, got %s", t, node.Type)
		return existing, nil
	}
	desc, err := Catalog(t)
	if err != nil {
		return existing, &UnmarshalError{FieldPath: path, Message: "invalid type", Err: err}
	}
	res := reflect.New(t).Elem()
	res.Set(existing)
	for i, f := range node.Fields {
		mp := ir.FieldPath(path, f.String)
		m := desc.Lookup(f.String)
		switch {
		case m == nil || m.Omit:
			diag.Warnf(mp, "member %q not found in %s", f.String, t)
			continue
		case !m.Writable:
			diag.Warnf(mp, "member %q of %s is read-only", f.String, t)
			continue
		}
		v, err := c.deserialize(node.Values[i], m.Type, m.Get(res), mp, diag)
		if err != nil {
			return existing, err
		}
		if err := m.Set(res, v); err != nil {
			diag.Warnf(mp, "set %s: %v", m.Name, err)
		}
	}
	if r, ok := hookTarget(res).(NodeReader); ok {
		if err := r.ReadNode(node); err != nil {
			diag.Warnf(path, "%s read hook: %v", t, err)
		}
	}
	return res, nil
}

func deserializePrimitive(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) reflect.Value {
	res := reflect.New(t).Elem()
	text, ok := node.Text()
	if !ok {
		diag.Warnf(path, "expected scalar for %s, got %s", t, node.Type)
		return existing
	}
	var err error
	switch t.Kind() {
	case reflect.Bool:
		var b bool
		if node.Type == ir.BoolType {
			b = node.Bool
		} else {
			b, err = strconv.ParseBool(text)
		}
		res.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		i, err = nodeInt(node, text)
		if err == nil && res.OverflowInt(i) {
			err = fmt.Errorf("%d overflows %s", i, t)
		}
		res.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		u, err = nodeUint(node, text)
		if err == nil && res.OverflowUint(u) {
			err = fmt.Errorf("%d overflows %s", u, t)
		}
		res.SetUint(u)
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = nodeFloat(node, text)
		if err == nil && t.Kind() == reflect.Float32 && !math.IsInf(f, 0) && res.OverflowFloat(f) {
			err = fmt.Errorf("%v overflows %s", f, t)
		}
		res.SetFloat(f)
	}
	if err != nil {
		diag.Warnf(path, "cannot convert %s %q to %s: %v", node.Type, text, t, err)
		return existing
	}
	return res
}

func nodeInt(node *ir.Node, text string) (int64, error) {
	switch {
	case node.Type == ir.NumberType && node.Int64 != nil:
		return *node.Int64, nil
	case node.Type == ir.NumberType && node.Float64 != nil:
		f := *node.Float64
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("not an integer")
		}
		return int64(f), nil
	case node.Type == ir.BoolType:
		return 0, fmt.Errorf("not a number")
	}
	return strconv.ParseInt(text, 10, 64)
}

func nodeUint(node *ir.Node, text string) (uint64, error) {
	switch {
	case node.Type == ir.NumberType && node.Int64 != nil:
		if *node.Int64 < 0 {
			return 0, fmt.Errorf("negative value")
		}
		return uint64(*node.Int64), nil
	case node.Type == ir.NumberType && node.Float64 != nil:
		f := *node.Float64
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("not an unsigned integer")
		}
		return uint64(f), nil
	case node.Type == ir.BoolType:
		return 0, fmt.Errorf("not a number")
	}
	return strconv.ParseUint(text, 10, 64)
}

func nodeFloat(node *ir.Node, text string) (float64, error) {
	switch {
	case node.Type == ir.NumberType && node.Float64 != nil:
		return *node.Float64, nil
	case node.Type == ir.NumberType && node.Int64 != nil:
		return float64(*node.Int64), nil
	case node.Type == ir.BoolType:
		return 0, fmt.Errorf("not a number")
	}
	return strconv.ParseFloat(text, 64)
}

// deserializeInterface merges onto an existing object-like dynamic value;
// otherwise the dynamic type is inferred from the node.
func (c *Codec) deserializeInterface(node *ir.Node, t reflect.Type, existing reflect.Value, path string, diag *Diagnostics) (reflect.Value, error) {
	if !existing.IsNil() {
		cur := existing.Elem()
		switch Categorize(cur.Type()) {
		case CategoryObject, CategoryMap:
			v, err := c.deserialize(node, cur.Type(), cur, path, diag)
			if err != nil {
				return existing, err
			}
			res := reflect.New(t).Elem()
			res.Set(v)
			return res, nil
		}
	}
	g, err := c.inferValue(node, path, diag)
	if err != nil {
		return existing, err
	}
	res := reflect.New(t).Elem()
	if g == nil {
		return res, nil
	}
	gv := reflect.ValueOf(g)
	if !gv.Type().AssignableTo(t) {
		diag.Warnf(path, "%s value does not implement %s", gv.Type(), t)
		return existing, nil
	}
	res.Set(gv)
	return res, nil
}

func (c *Codec) inferValue(node *ir.Node, path string, diag *Diagnostics) (any, error) {
	switch node.Type {
	case ir.NullType:
		return nil, nil
	case ir.StringType:
		return node.String, nil
	case ir.BoolType:
		return node.Bool, nil
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			return *node.Int64, nil
		case node.Float64 != nil:
			return *node.Float64, nil
		}
		if u, err := strconv.ParseUint(node.Number, 10, 64); err == nil {
			return u, nil
		}
		diag.Warnf(path, "number %s is out of range", node.Number)
		return node.Number, nil
	case ir.ArrayType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			g, err := c.inferValue(v, ir.IndexPath(path, i), diag)
			if err != nil {
				return nil, err
			}
			res[i] = g
		}
		return res, nil
	case ir.ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			g, err := c.inferValue(node.Values[i], ir.FieldPath(path, f.String), diag)
			if err != nil {
				return nil, err
			}
			res[f.String] = g
		}
		return res, nil
	}
	return nil, fmt.Errorf("unknown node type %s", node.Type)
}

// seed returns a fresh value of t: structs (directly or behind a pointer)
// get their tag defaults, recursively through struct-valued members.
func (c *Codec) seed(t reflect.Type, path string, diag *Diagnostics) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() != reflect.Struct || Categorize(t) != CategoryObject {
			return reflect.Zero(t), nil
		}
		sv, err := c.seed(t.Elem(), path, diag)
		if err != nil {
			return reflect.Zero(t), err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(sv)
		return p, nil
	case reflect.Struct:
		res := reflect.New(t).Elem()
		if Categorize(t) != CategoryObject || lookupConverter(c.converters, t, readPhase) != nil {
			return res, nil
		}
		desc, err := Catalog(t)
		if err != nil {
			return res, &UnmarshalError{FieldPath: path, Message: "invalid type", Err: err}
		}
		for _, m := range desc.Members {
			if m.IsProperty() || !m.Writable {
				continue
			}
			mp := ir.FieldPath(path, m.Name)
			if m.HasDefault {
				if err := c.applyDefault(res, m, mp, diag); err != nil {
					return res, err
				}
				continue
			}
			if m.Type.Kind() != reflect.Struct {
				continue
			}
			sv, err := c.seed(m.Type, mp, diag)
			if err != nil {
				return res, err
			}
			if err := m.Set(res, sv); err != nil {
				diag.Warnf(mp, "set %s: %v", m.Name, err)
			}
		}
		return res, nil
	}
	return reflect.Zero(t), nil
}

func (c *Codec) applyDefault(v reflect.Value, m *MemberDescriptor, path string, diag *Diagnostics) error {
	// text that is not a JSON literal is taken as a string
	node, err := parse.Parse([]byte(m.Default))
	if err != nil || node == nil {
		node = ir.FromString(m.Default)
	}
	dv, err := c.deserialize(node, m.Type, m.Get(v), path, diag)
	if err != nil {
		return err
	}
	if err := m.Set(v, dv); err != nil {
		diag.Warnf(path, "set %s: %v", m.Name, err)
	}
	return nil
}
