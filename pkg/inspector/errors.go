package inspector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-validgen/pkg/inspector/types"
)

var (
	// ErrNoValidator is returned when no registered factory handles a type.
	ErrNoValidator = errors.New("inspector: no validator registered")
	// ErrValidatorType is returned when a factory result does not validate the
	// requested Go type.
	ErrValidatorType = errors.New("inspector: validator type mismatch")
	// ErrTypeArgCount is returned by generic validator constructors when the
	// type token slice does not match the declared type parameters.
	ErrTypeArgCount = errors.New("inspector: type argument count mismatch")
	// ErrNoAccessor is returned by qualified lookups for unknown accessors.
	ErrNoAccessor = errors.New("inspector: no such accessor")
)

// ValidationError describes a failed property check.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   strings.TrimSpace(field),
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field == "" {
		return "validation failed: " + msg
	}
	return fmt.Sprintf("validation failed for %q: %s", e.Field, msg)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TypeArgCountError reports a type token slice of the wrong length.
func TypeArgCountError(typeName string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d type arguments, got %d", ErrTypeArgCount, typeName, want, got)
}

// NoAccessorError reports a qualified lookup for an accessor missing from the
// generated accessor table.
func NoAccessorError(typeName, accessor string) error {
	return fmt.Errorf("%w: %s has no accessor named %q", ErrNoAccessor, typeName, accessor)
}

// CheckTypeArgs verifies that typeArgs carries exactly want non-nil tokens.
func CheckTypeArgs(typeName string, typeArgs []types.Type, want int) error {
	if len(typeArgs) != want {
		return TypeArgCountError(typeName, want, len(typeArgs))
	}
	for i, arg := range typeArgs {
		if arg == nil {
			return fmt.Errorf("%w: %s type argument %d is nil", ErrTypeArgCount, typeName, i)
		}
	}
	return nil
}
