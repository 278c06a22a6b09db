package parse

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/signadot/graphcodec/ir"
)

func parseJSONC(d []byte) (*ir.Node, error) {
	return parseJSON(jsonc.ToJSON(d))
}

func parseJSON(d []byte) (*ir.Node, error) {
	// the token stream below is lenient about some malformations, so a
	// full syntax check runs first.
	var check any
	if err := json.Unmarshal(d, &check); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	res, err := jsonValue(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, ErrTrailing
		}
		return nil, fmt.Errorf("%w: %w", ErrTrailing, err)
	}
	return res, nil
}

func jsonValue(dec *json.Decoder, tok json.Token) (*ir.Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrParse, rune(v))
		}
	case string:
		return ir.FromString(v), nil
	case json.Number:
		return ir.FromNumber(string(v)), nil
	case float64:
		return ir.FromFloat(v), nil
	case bool:
		return ir.FromBool(v), nil
	case nil:
		return ir.Null(), nil
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
}

func jsonObject(dec *json.Decoder) (*ir.Node, error) {
	obj := ir.NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v is not a string", ErrParse, kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		val, err := jsonValue(dec, vt)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if err := jsonClose(dec, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func jsonArray(dec *json.Decoder) (*ir.Node, error) {
	arr := &ir.Node{Type: ir.ArrayType}
	for dec.More() {
		vt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		val, err := jsonValue(dec, vt)
		if err != nil {
			return nil, err
		}
		arr.Append(val)
	}
	if err := jsonClose(dec, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func jsonClose(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: unbalanced document, expected %q", ErrParse, rune(want))
	}
	return nil
}
