package codec

import (
	"reflect"

	"github.com/signadot/graphcodec/ir"
)

// Converter fully owns the conversion of the types it claims, bypassing the
// built-in dispatch. Converters must not keep per-call state: one instance
// serves every recursive step of a call and concurrent calls alike.
type Converter interface {
	Name() string
	CanRead() bool
	CanWrite() bool
	CanConvert(t reflect.Type) bool

	// Read produces a value of type t from node. existing holds the value
	// currently stored at the target and may be the zero Value.
	Read(node *ir.Node, t reflect.Type, existing reflect.Value) (reflect.Value, error)
	Write(v reflect.Value) (*ir.Node, error)
}

type phase int

const (
	readPhase phase = iota
	writePhase
)

func (p phase) String() string {
	if p == readPhase {
		return "read"
	}
	return "write"
}

// lookupConverter returns the first converter claiming t for the phase, or
// nil.
func lookupConverter(convs []Converter, t reflect.Type, p phase) Converter {
	for _, conv := range convs {
		switch p {
		case readPhase:
			if !conv.CanRead() {
				continue
			}
		case writePhase:
			if !conv.CanWrite() {
				continue
			}
		}
		if conv.CanConvert(t) {
			return conv
		}
	}
	return nil
}
