// Package parse reads document text into ir nodes.
//
// JSON is the default format; JSONC (JSON with comments and trailing
// commas), YAML and CBOR are selected with ParseFormat. Object member order
// of the input is preserved for JSON, JSONC and YAML. CBOR maps are read
// into sorted order.
package parse
