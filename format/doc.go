// Package format names the wire formats documents are read from and written
// to.
package format
