package inspector

import (
	"reflect"
	"unicode/utf8"
)

// Number lists the operand types accepted by RequireRange.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// RequireNonZero fails when value is the zero value of its type.
func RequireNonZero[T any](field string, value T) error {
	if reflect.ValueOf(&value).Elem().IsZero() {
		return NewValidationError(field, "is required")
	}
	return nil
}

// RequireRange fails when value lies outside [min, max].
func RequireRange[N Number](field string, value, min, max N) error {
	if value < min || value > max {
		return NewValidationError(field, "must be between %v and %v, got %v", min, max, value)
	}
	return nil
}

// RequireLength fails when the length of a string, slice, array or map lies
// outside [min, max]. A negative max disables the upper bound. Strings are
// measured in runes.
func RequireLength[T any](field string, value T, min, max int) error {
	n, ok := lengthOf(value)
	if !ok {
		return NewValidationError(field, "has no length (%T)", value)
	}
	if n < min {
		return NewValidationError(field, "length must be at least %d, got %d", min, n)
	}
	if max >= 0 && n > max {
		return NewValidationError(field, "length must be at most %d, got %d", max, n)
	}
	return nil
}

func lengthOf(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), true
	case reflect.Invalid:
		return 0, true
	default:
		return 0, false
	}
}
