package parse

import (
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/signadot/graphcodec/ir"
)

func parseYAML(d []byte) (*ir.Node, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return fromGeneric(v)
}

// fromYAMLValue handles the ordered and typed values only the YAML decoder
// produces.
func fromYAMLValue(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case yaml.MapSlice:
		obj := ir.NewObject()
		for _, item := range x {
			key, err := yamlKey(item.Key)
			if err != nil {
				return nil, err
			}
			val, err := fromGeneric(item.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil
	case map[any]any:
		m := make(map[string]*ir.Node, len(x))
		for k, kv := range x {
			key, err := yamlKey(k)
			if err != nil {
				return nil, err
			}
			n, err := fromGeneric(kv)
			if err != nil {
				return nil, err
			}
			m[key] = n
		}
		return ir.FromMap(m), nil
	case time.Time:
		return ir.FromString(x.Format(time.RFC3339Nano)), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrValueType, v)
}

func yamlKey(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case nil:
		return "null", nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("%w: %T", ErrMapKey, k)
}
