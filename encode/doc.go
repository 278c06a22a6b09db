// Package encode renders ir nodes as document text.
//
// JSON is the default format, rendered indented unless EncodeWire is set.
// YAML and CBOR are rendered through their respective libraries; colors
// apply to JSON only.
package encode
