package codec

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"image/color"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/signadot/graphcodec/ir"
)

// DefaultConverters returns a fresh list of the shipped converters in
// priority order.
func DefaultConverters() []Converter {
	return []Converter{
		ColorConverter{},
		TimeConverter{},
		DurationConverter{},
		StringSetConverter{},
		BytesConverter{},
		TextConverter{},
	}
}

var (
	rgbaType            = reflect.TypeFor[color.RGBA]()
	nrgbaType           = reflect.TypeFor[color.NRGBA]()
	timeType            = reflect.TypeFor[time.Time]()
	durationType        = reflect.TypeFor[time.Duration]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// readWrite is embedded by converters handling both phases.
type readWrite struct{}

func (readWrite) CanRead() bool  { return true }
func (readWrite) CanWrite() bool { return true }

// ColorConverter maps color.RGBA and color.NRGBA to "#rrggbbaa" text. It
// reads "#rrggbb", "#rrggbbaa" or an object with r, g, b and optional a
// members; object members not present keep the existing channel values.
type ColorConverter struct{ readWrite }

func (ColorConverter) Name() string { return "color" }

func (ColorConverter) CanConvert(t reflect.Type) bool {
	return t == rgbaType || t == nrgbaType
}

func (ColorConverter) Read(node *ir.Node, t reflect.Type, existing reflect.Value) (reflect.Value, error) {
	var ch [4]uint8
	ch[3] = 0xff
	if existing.IsValid() && !existing.IsZero() {
		ch = colorChannels(existing)
	}
	switch node.Type {
	case ir.StringType:
		s := strings.TrimPrefix(node.String, "#")
		if len(s) != 6 && len(s) != 8 {
			return reflect.Value{}, fmt.Errorf("invalid color %q", node.String)
		}
		ch[3] = 0xff
		for i := 0; i < len(s)/2; i++ {
			b, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("invalid color %q: %w", node.String, err)
			}
			ch[i] = uint8(b)
		}
	case ir.ObjectType:
		for i, f := range node.Fields {
			idx := strings.Index("rgba", strings.ToLower(f.String))
			if len(f.String) != 1 || idx < 0 {
				return reflect.Value{}, fmt.Errorf("invalid color channel %q", f.String)
			}
			v := node.Values[i]
			if v.Int64 == nil || *v.Int64 < 0 || *v.Int64 > 0xff {
				return reflect.Value{}, fmt.Errorf("invalid value for color channel %q", f.String)
			}
			ch[idx] = uint8(*v.Int64)
		}
	default:
		return reflect.Value{}, fmt.Errorf("cannot read color from %s", node.Type)
	}
	if t == nrgbaType {
		return reflect.ValueOf(color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}), nil
	}
	return reflect.ValueOf(color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}), nil
}

func (ColorConverter) Write(v reflect.Value) (*ir.Node, error) {
	ch := colorChannels(v)
	return ir.FromString(fmt.Sprintf("#%02x%02x%02x%02x", ch[0], ch[1], ch[2], ch[3])), nil
}

func colorChannels(v reflect.Value) [4]uint8 {
	switch c := v.Interface().(type) {
	case color.RGBA:
		return [4]uint8{c.R, c.G, c.B, c.A}
	case color.NRGBA:
		return [4]uint8{c.R, c.G, c.B, c.A}
	}
	return [4]uint8{0, 0, 0, 0xff}
}

// TimeConverter maps time.Time to RFC 3339 text in UTC. Numbers are read as
// Unix seconds.
type TimeConverter struct{ readWrite }

func (TimeConverter) Name() string { return "time" }

func (TimeConverter) CanConvert(t reflect.Type) bool { return t == timeType }

func (TimeConverter) Read(node *ir.Node, _ reflect.Type, _ reflect.Value) (reflect.Value, error) {
	switch node.Type {
	case ir.StringType:
		tm, err := time.Parse(time.RFC3339Nano, node.String)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(tm), nil
	case ir.NumberType:
		if node.Int64 != nil {
			return reflect.ValueOf(time.Unix(*node.Int64, 0).UTC()), nil
		}
		if node.Float64 != nil {
			sec := int64(*node.Float64)
			nsec := int64((*node.Float64 - float64(sec)) * 1e9)
			return reflect.ValueOf(time.Unix(sec, nsec).UTC()), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot read time from %s", node.Type)
}

func (TimeConverter) Write(v reflect.Value) (*ir.Node, error) {
	tm := v.Interface().(time.Time)
	return ir.FromString(tm.UTC().Format(time.RFC3339Nano)), nil
}

// DurationConverter maps time.Duration to its String form. Integers are
// read as nanoseconds.
type DurationConverter struct{ readWrite }

func (DurationConverter) Name() string { return "duration" }

func (DurationConverter) CanConvert(t reflect.Type) bool { return t == durationType }

func (DurationConverter) Read(node *ir.Node, _ reflect.Type, _ reflect.Value) (reflect.Value, error) {
	switch node.Type {
	case ir.StringType:
		d, err := time.ParseDuration(node.String)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	case ir.NumberType:
		if node.Int64 != nil {
			return reflect.ValueOf(time.Duration(*node.Int64)), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot read duration from %s", node.Type)
}

func (DurationConverter) Write(v reflect.Value) (*ir.Node, error) {
	return ir.FromString(time.Duration(v.Int()).String()), nil
}

// StringSetConverter maps sets of the form map[~string]struct{} to a sorted
// array of their members. Reading replaces the set.
type StringSetConverter struct{ readWrite }

func (StringSetConverter) Name() string { return "stringset" }

func (StringSetConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String &&
		t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

func (StringSetConverter) Read(node *ir.Node, t reflect.Type, _ reflect.Value) (reflect.Value, error) {
	var keys []string
	switch node.Type {
	case ir.ArrayType:
		for _, v := range node.Values {
			if v.Type != ir.StringType {
				return reflect.Value{}, fmt.Errorf("set member is %s, not string", v.Type)
			}
			keys = append(keys, v.String)
		}
	case ir.ObjectType:
		for _, f := range node.Fields {
			keys = append(keys, f.String)
		}
	default:
		return reflect.Value{}, fmt.Errorf("cannot read set from %s", node.Type)
	}
	res := reflect.MakeMapWithSize(t, len(keys))
	empty := reflect.New(t.Elem()).Elem()
	for _, k := range keys {
		res.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), empty)
	}
	return res, nil
}

func (StringSetConverter) Write(v reflect.Value) (*ir.Node, error) {
	keys := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	slices.Sort(keys)
	vals := make([]*ir.Node, len(keys))
	for i, k := range keys {
		vals[i] = ir.FromString(k)
	}
	return ir.FromSlice(vals), nil
}

// BytesConverter maps byte slices to standard base64 text.
type BytesConverter struct{ readWrite }

func (BytesConverter) Name() string { return "bytes" }

func (BytesConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (BytesConverter) Read(node *ir.Node, t reflect.Type, _ reflect.Value) (reflect.Value, error) {
	if node.Type != ir.StringType {
		return reflect.Value{}, fmt.Errorf("cannot read bytes from %s", node.Type)
	}
	d, err := base64.StdEncoding.DecodeString(node.String)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(d).Convert(t), nil
}

func (BytesConverter) Write(v reflect.Value) (*ir.Node, error) {
	return ir.FromString(base64.StdEncoding.EncodeToString(v.Bytes())), nil
}

// TextConverter handles types implementing both encoding.TextMarshaler and
// encoding.TextUnmarshaler (the latter possibly on the pointer).
type TextConverter struct{ readWrite }

func (TextConverter) Name() string { return "text" }

func (TextConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface &&
		t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (TextConverter) Read(node *ir.Node, t reflect.Type, _ reflect.Value) (reflect.Value, error) {
	text, ok := node.Text()
	if !ok || node.Type == ir.NullType {
		return reflect.Value{}, fmt.Errorf("cannot read %s from %s", t, node.Type)
	}
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		return reflect.Value{}, err
	}
	return p.Elem(), nil
}

func (TextConverter) Write(v reflect.Value) (*ir.Node, error) {
	d, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, err
	}
	return ir.FromString(string(d)), nil
}
