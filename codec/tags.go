package codec

import (
	"fmt"
	"strings"
)

const tagName = "codec"

// ParseStructTag parses a struct tag string and returns a map of key-value
// pairs. Parts are comma or space separated: `codec:"key1=value1,flag"`.
// Values may be quoted to hold separators: `codec:"default='a b'"`.
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)
	if tag == "" {
		return result, nil
	}

	var parts []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}
	for i := 0; i < len(tag); i++ {
		char := tag[i]
		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			current.WriteByte(char)
		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			current.WriteByte(char)
		case (char == ',' || char == ' ') && !inSingleQuote && !inDoubleQuote:
			flush()
		default:
			current.WriteByte(char)
		}
	}
	if inSingleQuote || inDoubleQuote {
		return nil, fmt.Errorf("invalid tag %q: unterminated quote", tag)
	}
	flush()

	for _, part := range parts {
		key, value, isKV := strings.Cut(part, "=")
		if !isKV {
			result[part] = ""
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid tag: empty key in %q", part)
		}
		result[key] = unquoteValue(strings.TrimSpace(value))
	}
	return result, nil
}

// unquoteValue removes surrounding single or double quotes from a value.
func unquoteValue(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// memberTag is the interpretation of a member's codec tag.
type memberTag struct {
	aliases  []string
	omit     bool
	readonly bool
	def      string
	hasDef   bool
}

func parseMemberTag(tag string) (*memberTag, error) {
	res := &memberTag{}
	if tag == "-" {
		res.omit = true
		return res, nil
	}
	parsed, err := ParseStructTag(tag)
	if err != nil {
		return nil, err
	}
	for k, v := range parsed {
		switch k {
		case "field":
			for _, a := range strings.Split(v, "|") {
				if a = strings.TrimSpace(a); a != "" {
					res.aliases = append(res.aliases, a)
				}
			}
		case "omit":
			res.omit = true
		case "readonly":
			res.readonly = true
		case "default":
			res.def = v
			res.hasDef = true
		default:
			return nil, fmt.Errorf("invalid tag %q: unknown key %q", tag, k)
		}
	}
	return res, nil
}
