package codec

import (
	"reflect"
	"strings"
)

// EnumValue describes one member of an enumeration.
type EnumValue struct {
	Name    string
	Value   int64
	Aliases []string
}

// Enum is implemented by integer or string kinded types with a closed set
// of named values. String kinded enums hold Name as their value.
//
// Deserialization accepts an alias (case-insensitive), the name
// (case-insensitive) or, for integer kinds, the numeric value.
// Serialization always emits the name.
type Enum interface {
	EnumValues() []EnumValue
}

var enumType = reflect.TypeFor[Enum]()

func isEnum(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
	default:
		return false
	}
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}

func enumValues(t reflect.Type) []EnumValue {
	p := reflect.New(t)
	if e, ok := p.Elem().Interface().(Enum); ok {
		return e.EnumValues()
	}
	return p.Interface().(Enum).EnumValues()
}

// enumLookup resolves text against aliases first, then names.
func enumLookup(vals []EnumValue, text string) (EnumValue, bool) {
	for _, ev := range vals {
		for _, a := range ev.Aliases {
			if strings.EqualFold(a, text) {
				return ev, true
			}
		}
	}
	for _, ev := range vals {
		if strings.EqualFold(ev.Name, text) {
			return ev, true
		}
	}
	return EnumValue{}, false
}

// enumSet returns a value of enum type t holding ev.
func enumSet(t reflect.Type, ev EnumValue) reflect.Value {
	res := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		res.SetString(ev.Name)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		res.SetUint(uint64(ev.Value))
	default:
		res.SetInt(ev.Value)
	}
	return res
}

// enumName finds the canonical name of v.
func enumName(v reflect.Value) (string, bool) {
	for _, ev := range enumValues(v.Type()) {
		switch v.Kind() {
		case reflect.String:
			if v.String() == ev.Name {
				return ev.Name, true
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if ev.Value >= 0 && v.Uint() == uint64(ev.Value) {
				return ev.Name, true
			}
		default:
			if v.Int() == ev.Value {
				return ev.Name, true
			}
		}
	}
	return "", false
}
