package encode

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"
)

type EncState struct {
	col           int
	depth, indent int

	format format.Format
	wire   bool

	Color func(ir.Type, ColorAttr, string) string
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	if node == nil {
		node = ir.Null()
	}
	switch es.format {
	case format.YAMLFormat:
		return encodeYAML(node, w)
	case format.CBORFormat:
		return encodeCBOR(node, w)
	}
	if err := encode(node, w, es); err != nil {
		return err
	}
	if es.wire {
		return nil
	}
	return writeString(w, "\n")
}

// Helper functions for writing
func writeNL(w io.Writer, es *EncState) error {
	if es.wire {
		return nil
	}
	indentString := strings.Repeat(strings.Repeat(" ", es.indent), es.depth)
	if err := writeString(w, "\n"+indentString); err != nil {
		return err
	}
	es.col = len(indentString)
	return nil
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

func quoteString(v string) (string, error) {
	d, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return string(d), nil
}

func applyColor(es *EncState, nodeType ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(nodeType, attr, v)
}

func encode(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.ObjectType:
		return encodeObject(node, w, es)
	case ir.ArrayType:
		return encodeArray(node, w, es)
	case ir.StringType:
		return encodeString(node, w, es)
	case ir.NumberType:
		return encodeNumber(node, w, es)
	case ir.BoolType:
		return encodeBool(node, w, es)
	case ir.NullType:
		return encodeNull(w, es)
	}
	return fmt.Errorf("%w: unknown node type %s", ErrEncoding, node.Type)
}

func writeSep(w io.Writer, es *EncState, cType ir.Type, sep string) error {
	v := applyColor(es, cType, SepColor, sep)
	es.col += len(sep)
	return writeString(w, v)
}

func encodeObject(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Fields) != len(node.Values) {
		return fmt.Errorf("%w: object at %s has %d fields and %d values", ErrEncoding, node.Path(), len(node.Fields), len(node.Values))
	}
	if err := writeSep(w, es, ir.ObjectType, "{"); err != nil {
		return err
	}
	if len(node.Fields) == 0 {
		return writeSep(w, es, ir.ObjectType, "}")
	}
	es.depth++
	for i, yField := range node.Fields {
		if i > 0 {
			if err := writeSep(w, es, ir.ObjectType, ","); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		if err := writeField(w, yField.String, es); err != nil {
			return err
		}
		if err := encode(node.Values[i], w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeSep(w, es, ir.ObjectType, "}")
}

func writeField(w io.Writer, f string, es *EncState) error {
	q, err := quoteString(f)
	if err != nil {
		return err
	}
	es.col += len(q)
	if err := writeString(w, applyColor(es, ir.ObjectType, FieldColor, q)); err != nil {
		return err
	}
	sep := ": "
	if es.wire {
		sep = ":"
	}
	return writeSep(w, es, ir.ObjectType, sep)
}

func encodeArray(node *ir.Node, w io.Writer, es *EncState) error {
	if err := writeSep(w, es, ir.ArrayType, "["); err != nil {
		return err
	}
	if len(node.Values) == 0 {
		return writeSep(w, es, ir.ArrayType, "]")
	}
	es.depth++
	for i, yVal := range node.Values {
		if i > 0 {
			if err := writeSep(w, es, ir.ArrayType, ","); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		if err := encode(yVal, w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeSep(w, es, ir.ArrayType, "]")
}

func encodeString(node *ir.Node, w io.Writer, es *EncState) error {
	v, err := quoteString(node.String)
	if err != nil {
		return err
	}
	es.col += len(v)
	return writeString(w, applyColor(es, ir.StringType, ValueColor, v))
}

// Number encoding

func numberText(node *ir.Node) (string, error) {
	switch {
	case node.Int64 != nil:
		return strconv.FormatInt(*node.Int64, 10), nil
	case node.Float64 != nil:
		f := *node.Float64
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %v at %s is not representable", ErrEncoding, f, node.Path())
		}
		abs := math.Abs(f)
		fmtByte := byte('f')
		if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
			fmtByte = 'e'
		}
		v := strconv.FormatFloat(f, fmtByte, -1, 64)
		// integral floats keep a fraction so they read back as floats
		if fmtByte == 'f' && !strings.ContainsRune(v, '.') {
			v += ".0"
		}
		return v, nil
	case node.Number != "":
		return node.Number, nil
	}
	return "", fmt.Errorf("%w: number at %s has no value", ErrEncoding, node.Path())
}

func encodeNumber(node *ir.Node, w io.Writer, es *EncState) error {
	v, err := numberText(node)
	if err != nil {
		return err
	}
	es.col += len(v)
	return writeString(w, applyColor(es, ir.NumberType, ValueColor, v))
}

// Bool encoding

func encodeBool(node *ir.Node, w io.Writer, es *EncState) error {
	v := strconv.FormatBool(node.Bool)
	es.col += len(v)
	return writeString(w, applyColor(es, ir.BoolType, ValueColor, v))
}

// Null encoding

func encodeNull(w io.Writer, es *EncState) error {
	es.col += 4
	return writeString(w, applyColor(es, ir.NullType, ValueColor, "null"))
}
