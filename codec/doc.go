// Package codec converts between documents (ir.Node) and Go values by
// reflecting on the target types.
//
// # Deserialization merges
//
// Deserializing onto an existing value only overwrites the object members
// the document mentions:
//
//	cfg := &Config{Name: "a", Port: 80}
//	cfg, ok := codec.DeserializeObjectInto(`{"Port": 8080}`, cfg)
//	// cfg.Name is still "a"
//
// Maps and sequences are rebuilt from the document. Map values are merged
// onto the entries previously held under the same key.
//
// # Members
//
// Members are exported fields, fields promoted from embedded structs, and
// properties formed by SetX and X (or GetX) methods on the pointer type.
// The codec struct tag adjusts them:
//
//	type Person struct {
//	    Name  string `codec:"field=name"`
//	    Color Color  `codec:"field=color|colour"`  // emitted twice
//	    ID    string `codec:"readonly"`            // emitted, never read
//	    Cache []byte `codec:"-"`
//	    Port  int    `codec:"default=8080"`        // applied to fresh values
//	}
//
// Document names match member names or aliases exactly first, then
// ignoring case.
//
// # Failures
//
// Unknown members, values of the wrong shape and failed coercions are
// warnings: the prior value is kept and the warnings of a call are logged
// once through slog when the call returns. Only converter errors and panics
// fail a call, reported as a false result by the package level functions.
//
// # Extension
//
// Converters claim types and fully own their conversion; DefaultConverters
// lists the shipped ones. Types may also implement NodeReader or NodeWriter
// to adjust the result of the built-in object conversion, and Enum to be
// read and written by name.
package codec
