package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Root is the path of a document's root node.
const Root = "$"

// ErrPath is wrapped by all path parse and lookup errors.
var ErrPath = errors.New("path")

// Path returns the location of y within its document, for example
// "$.items[2].name". Fields that are not plain identifiers are quoted.
func (y *Node) Path() string {
	if y.Parent == nil {
		return Root
	}
	if y.Parent.Type == ArrayType {
		return IndexPath(y.Parent.Path(), y.ParentIndex)
	}
	return FieldPath(y.Parent.Path(), y.ParentField)
}

// FieldPath extends parent with an object member.
func FieldPath(parent, field string) string {
	return parent + "." + quoteField(field)
}

// IndexPath extends parent with an array index.
func IndexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func quoteField(f string) string {
	if f != "" && !strings.ContainsAny(f, "'.*$[] ") {
		return f
	}
	return "'" + strings.ReplaceAll(f, "'", `\'`) + "'"
}

// StepKind discriminates the components of a parsed path.
type StepKind int

const (
	FieldStep StepKind = iota
	IndexStep
	AnyIndexStep
	SubtreeStep
)

// Step is one component of a parsed path.
type Step struct {
	Kind  StepKind
	Field string
	Index int
}

// Steps is a parsed path. The empty Steps denotes the root.
type Steps []Step

func (p Steps) String() string {
	var sb strings.Builder
	sb.WriteString(Root)
	for i, s := range p {
		switch s.Kind {
		case FieldStep:
			if i == 0 || p[i-1].Kind != SubtreeStep {
				sb.WriteByte('.')
			}
			sb.WriteString(quoteField(s.Field))
		case IndexStep:
			fmt.Fprintf(&sb, "[%d]", s.Index)
		case AnyIndexStep:
			sb.WriteString("[*]")
		case SubtreeStep:
			sb.WriteString("..")
		}
	}
	return sb.String()
}

// ParsePath parses paths of the form produced by Path, plus the wildcards
// "[*]" (every element of an array) and ".." (every container in a subtree).
func ParsePath(s string) (Steps, error) {
	if !strings.HasPrefix(s, Root) {
		return nil, fmt.Errorf("%w %q: must start with %q", ErrPath, s, Root)
	}
	var res Steps
	rest := s[len(Root):]
	for rest != "" {
		var (
			st  Step
			err error
		)
		switch {
		case strings.HasPrefix(rest, ".."):
			res = append(res, Step{Kind: SubtreeStep})
			rest = rest[2:]
			if rest == "" || rest[0] == '[' {
				continue
			}
			st.Field, rest, err = scanField(rest)
		case rest[0] == '.':
			st.Field, rest, err = scanField(rest[1:])
		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w %q: unterminated index", ErrPath, s)
			}
			st, err = scanIndex(rest[1:end])
			rest = rest[end+1:]
		default:
			return nil, fmt.Errorf("%w %q: expected '.' or '[' at %q", ErrPath, s, rest)
		}
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrPath, s, err)
		}
		res = append(res, st)
	}
	return res, nil
}

func scanIndex(s string) (Step, error) {
	if s == "*" {
		return Step{Kind: AnyIndexStep}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Step{}, fmt.Errorf("bad index %q", s)
	}
	return Step{Kind: IndexStep, Index: n}, nil
}

// scanField reads a bare or quoted field from the front of s.
func scanField(s string) (field, rest string, err error) {
	if s == "" {
		return "", "", errors.New("missing field")
	}
	if s[0] != '\'' {
		end := strings.IndexAny(s, ".[")
		if end < 0 {
			return s, "", nil
		}
		return s[:end], s[end:], nil
	}
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			sb.WriteByte(s[i])
		case c == '\'':
			return sb.String(), s[i+1:], nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", "", errors.New("unterminated quoted field")
}

// GetPath returns a clone of the single node at path, or nil if an object
// member along the way is missing. Wildcards are rejected.
func (y *Node) GetPath(path string) (*Node, error) {
	steps, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	cur := y
	for _, st := range steps {
		switch st.Kind {
		case FieldStep:
			if cur.Type != ObjectType {
				return nil, fmt.Errorf("%w %q: field %q of %s", ErrPath, path, st.Field, cur.Type)
			}
			cur = Get(cur, st.Field)
			if cur == nil {
				return nil, nil
			}
		case IndexStep:
			if cur.Type != ArrayType {
				return nil, fmt.Errorf("%w %q: index into %s", ErrPath, path, cur.Type)
			}
			if st.Index >= len(cur.Values) {
				return nil, fmt.Errorf("%w %q: index %d out of bounds (%d)", ErrPath, path, st.Index, len(cur.Values))
			}
			cur = cur.Values[st.Index]
		default:
			return nil, fmt.Errorf("%w %q: wildcard in single lookup", ErrPath, path)
		}
	}
	return cur.Clone(), nil
}

// ListPath appends clones of every node matched by path to dst.
func (y *Node) ListPath(dst []*Node, path string) ([]*Node, error) {
	steps, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return y.collect(dst, steps), nil
}

func (y *Node) collect(dst []*Node, steps Steps) []*Node {
	if len(steps) == 0 {
		return append(dst, y.Clone())
	}
	st, rest := steps[0], steps[1:]
	switch st.Kind {
	case FieldStep:
		if y.Type != ObjectType {
			return dst
		}
		if v := Get(y, st.Field); v != nil {
			return v.collect(dst, rest)
		}
	case IndexStep:
		if y.Type == ArrayType && st.Index < len(y.Values) {
			return y.Values[st.Index].collect(dst, rest)
		}
	case AnyIndexStep:
		if y.Type != ArrayType {
			return dst
		}
		for _, v := range y.Values {
			dst = v.collect(dst, rest)
		}
	case SubtreeStep:
		if y.Type != ObjectType && y.Type != ArrayType {
			return dst
		}
		dst = y.collect(dst, rest)
		for _, v := range y.Values {
			dst = v.collect(dst, steps)
		}
	}
	return dst
}
