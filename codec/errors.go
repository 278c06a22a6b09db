package codec

import (
	"errors"
	"fmt"
)

// ErrUnsupported is reported for targets the codec cannot address, such as
// a nil or non-pointer destination.
var ErrUnsupported = errors.New("unsupported target")

// UnmarshalError represents an error during deserialization
type UnmarshalError struct {
	FieldPath string // Field path (e.g., "$.person.address")
	Message   string
	Err       error
}

func (e *UnmarshalError) Error() string {
	if e.FieldPath != "" {
		return fmt.Sprintf("unmarshal error at %s: %s", e.FieldPath, e.Message)
	}
	return fmt.Sprintf("unmarshal error: %s", e.Message)
}

func (e *UnmarshalError) Unwrap() error {
	return e.Err
}

// MarshalError represents an error during serialization
type MarshalError struct {
	FieldPath string
	Message   string
	Err       error
}

func (e *MarshalError) Error() string {
	if e.FieldPath != "" {
		return fmt.Sprintf("marshal error at %s: %s", e.FieldPath, e.Message)
	}
	return fmt.Sprintf("marshal error: %s", e.Message)
}

func (e *MarshalError) Unwrap() error {
	return e.Err
}

// ConverterError is returned when a converter fails. It aborts the whole
// call.
type ConverterError struct {
	Converter string
	FieldPath string
	Err       error
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("converter %s failed at %s: %v", e.Converter, e.FieldPath, e.Err)
}

func (e *ConverterError) Unwrap() error {
	return e.Err
}

// PanicError holds a panic recovered at the boundary of a top-level call.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
