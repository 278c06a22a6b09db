package ir

// Truth reports whether node holds a truthy value: true, a non-zero number,
// a non-empty string or a non-empty container. Null, a nil node and
// unknown types are false.
func Truth(node *Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case BoolType:
		return node.Bool
	case StringType:
		return node.String != ""
	case ObjectType, ArrayType:
		return len(node.Values) > 0
	case NumberType:
		switch {
		case node.Int64 != nil:
			return *node.Int64 != 0
		case node.Float64 != nil:
			return *node.Float64 != 0
		}
		// out of range text is never zero
		return node.Number != ""
	}
	return false
}
