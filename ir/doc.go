// Package ir provides the in-memory document tree exchanged between the
// wire format collaborators (parse, encode) and the codec.
//
// # Node Structure
//
// A Node represents a single value of a JSON-like document:
//
//   - Atomic types: null, boolean, number, string
//   - Composite types: object (key-value pairs), array (ordered list)
//
// The IR works as a recursive tagged union structure, where values are placed
// in fields depending on the node type.
//
// ## Objects
//
// For ObjectType nodes, Fields[i] is the key for the value at Values[i], so
// there will always be the same number of fields as values. Fields are string
// typed and unique within a node; Set keeps this invariant (last write wins).
//
// ## Numbers
//
// Number values are placed under:
//   - Int64: if it is an integer (64-bit signed)
//   - Float64: if it is a floating point number (64-bit IEEE float)
//   - Number: as a decimal string fallback if neither can represent it
//
// # Creating Nodes
//
//	obj := ir.NewObject().
//	    Set("name", ir.FromString("Alice")).
//	    Set("age", ir.FromInt(30))
//	arr := ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromInt(2)})
//
// # Navigating Nodes
//
// Nodes maintain parent-child relationships (Parent, ParentIndex,
// ParentField). Path returns a JSONPath-style location such as "$.foo[0]",
// and GetPath/ListPath resolve such paths.
//
// # Thread Safety
//
// Node structures are not thread-safe. A document is created for one
// conversion and discarded afterwards; clone nodes before handing them to
// other goroutines.
package ir
