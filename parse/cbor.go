package parse

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/signadot/graphcodec/ir"
)

// cborDec reads CBOR maps as map[string]any; documents never carry
// non-string keys.
var cborDec cbor.DecMode

func init() {
	var err error
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("parse: CBOR decoder initialization failed: " + err.Error())
	}
}

func parseCBOR(d []byte) (*ir.Node, error) {
	var v any
	if err := cborDec.Unmarshal(d, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return fromGeneric(v)
}
