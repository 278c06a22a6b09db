package parse

import (
	"bytes"
	"fmt"

	"github.com/signadot/graphcodec/debug"
	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"
)

// Parse reads one document. Empty (or whitespace only) text input yields a
// nil node and no error. Malformed input yields an error wrapping ErrParse.
func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	pOpts := &parseOpts{format: format.JSONFormat}
	for _, f := range opts {
		f(pOpts)
	}
	if !pOpts.format.Binary() && len(bytes.TrimSpace(d)) == 0 {
		return nil, nil
	}
	if len(d) == 0 {
		return nil, nil
	}
	var (
		res *ir.Node
		err error
	)
	switch pOpts.format {
	case format.JSONFormat:
		res, err = parseJSON(d)
	case format.JSONCFormat:
		res, err = parseJSONC(d)
	case format.YAMLFormat:
		res, err = parseYAML(d)
	case format.CBORFormat:
		res, err = parseCBOR(d)
	default:
		return nil, fmt.Errorf("%w: %w", errInternal, format.ErrBadFormat)
	}
	if debug.Parse() {
		debug.Logf("parse %s (%d bytes): %v err=%v\n", pOpts.format, len(d), res, err)
	}
	return res, err
}

// fromGeneric converts decoded generic values (as produced by the YAML and
// CBOR decoders) into nodes.
func fromGeneric(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case nil:
		return ir.Null(), nil
	case bool:
		return ir.FromBool(x), nil
	case string:
		return ir.FromString(x), nil
	case []byte:
		return ir.FromString(string(x)), nil
	case int:
		return ir.FromInt(int64(x)), nil
	case int8:
		return ir.FromInt(int64(x)), nil
	case int16:
		return ir.FromInt(int64(x)), nil
	case int32:
		return ir.FromInt(int64(x)), nil
	case int64:
		return ir.FromInt(x), nil
	case uint:
		return ir.FromUint(uint64(x)), nil
	case uint8:
		return ir.FromUint(uint64(x)), nil
	case uint16:
		return ir.FromUint(uint64(x)), nil
	case uint32:
		return ir.FromUint(uint64(x)), nil
	case uint64:
		return ir.FromUint(x), nil
	case float32:
		return ir.FromFloat(float64(x)), nil
	case float64:
		return ir.FromFloat(x), nil
	case []any:
		vals := make([]*ir.Node, len(x))
		for i := range x {
			n, err := fromGeneric(x[i])
			if err != nil {
				return nil, err
			}
			vals[i] = n
		}
		return ir.FromSlice(vals), nil
	case map[string]any:
		m := make(map[string]*ir.Node, len(x))
		for k, kv := range x {
			n, err := fromGeneric(kv)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return ir.FromMap(m), nil
	default:
		return fromYAMLValue(v)
	}
}
