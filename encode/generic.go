package encode

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"

	"github.com/signadot/graphcodec/ir"
)

var cborEnc cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborEnc = em
}

func encodeYAML(node *ir.Node, w io.Writer) error {
	v, err := toGeneric(node, true)
	if err != nil {
		return err
	}
	d, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	_, err = w.Write(d)
	return err
}

func encodeCBOR(node *ir.Node, w io.Writer) error {
	v, err := toGeneric(node, false)
	if err != nil {
		return err
	}
	d, err := cborEnc.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	_, err = w.Write(d)
	return err
}

// toGeneric converts a node into values understood by the YAML and CBOR
// libraries. Objects become yaml.MapSlice when ordered is set so member
// order survives; CBOR uses deterministic key ordering instead.
func toGeneric(node *ir.Node, ordered bool) (any, error) {
	switch node.Type {
	case ir.NullType:
		return nil, nil
	case ir.BoolType:
		return node.Bool, nil
	case ir.StringType:
		return node.String, nil
	case ir.NumberType:
		return genericNumber(node)
	case ir.ArrayType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			g, err := toGeneric(v, ordered)
			if err != nil {
				return nil, err
			}
			res[i] = g
		}
		return res, nil
	case ir.ObjectType:
		if ordered {
			res := make(yaml.MapSlice, 0, len(node.Fields))
			for i, f := range node.Fields {
				g, err := toGeneric(node.Values[i], ordered)
				if err != nil {
					return nil, err
				}
				res = append(res, yaml.MapItem{Key: f.String, Value: g})
			}
			return res, nil
		}
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			g, err := toGeneric(node.Values[i], ordered)
			if err != nil {
				return nil, err
			}
			res[f.String] = g
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: unknown node type %s", ErrEncoding, node.Type)
}

func genericNumber(node *ir.Node) (any, error) {
	switch {
	case node.Int64 != nil:
		return *node.Int64, nil
	case node.Float64 != nil:
		if _, err := numberText(node); err != nil {
			return nil, err
		}
		return *node.Float64, nil
	}
	if u, err := strconv.ParseUint(node.Number, 10, 64); err == nil {
		return u, nil
	}
	return nil, fmt.Errorf("%w: number %q at %s is out of range", ErrEncoding, node.Number, node.Path())
}
