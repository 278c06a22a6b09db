package parse

import (
	"errors"
	"fmt"
)

var (
	errInternal  = errors.New("internal parse error")
	ErrParse     = errors.New("parse error")
	ErrTrailing  = fmt.Errorf("%w: trailing data after document", ErrParse)
	ErrMapKey    = fmt.Errorf("%w: unsupported map key", ErrParse)
	ErrValueType = fmt.Errorf("%w: unsupported value", ErrParse)
)
