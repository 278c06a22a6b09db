package codec

import (
	"reflect"

	"github.com/signadot/graphcodec/ir"
)

// NodeReader is consulted after the members of an object have been
// deserialized, with the object node they came from. An error is recorded
// as a warning.
type NodeReader interface {
	ReadNode(node *ir.Node) error
}

// NodeWriter is consulted after the members of an object have been
// serialized and may add or override entries of node. An error is recorded
// as a warning.
type NodeWriter interface {
	WriteNode(node *ir.Node) error
}

// hookTarget returns v or, when addressable, its address so that hooks with
// pointer receivers are found.
func hookTarget(v reflect.Value) any {
	if v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}
