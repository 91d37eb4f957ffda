// Package inspector is the runtime library targeted by generated validators.
// Generated code obtains per-property validators from an Inspector, composes
// explicit overrides with Composite and reports failures as *ValidationError.
package inspector

// Validator validates values of type T. Validate returns nil when value is
// valid and an error, usually a *ValidationError, otherwise.
type Validator[T any] interface {
	Validate(value T) error
}

// Func adapts a plain function into a Validator.
type Func[T any] func(value T) error

// Validate calls f(value).
func (f Func[T]) Validate(value T) error {
	if f == nil {
		return nil
	}
	return f(value)
}

// Noop returns a validator that accepts every value.
func Noop[T any]() Validator[T] {
	return Func[T](func(T) error { return nil })
}

type composite[T any] struct {
	validators []Validator[T]
}

// Composite chains validators in the given order. Validation stops at the
// first member that fails and that member's error is returned unchanged.
func Composite[T any](validators ...Validator[T]) Validator[T] {
	members := make([]Validator[T], 0, len(validators))
	for _, v := range validators {
		if v != nil {
			members = append(members, v)
		}
	}
	return &composite[T]{validators: members}
}

func (c *composite[T]) Validate(value T) error {
	for _, v := range c.validators {
		if err := v.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// Members returns the composed validators in invocation order.
func (c *composite[T]) Members() []Validator[T] {
	return append([]Validator[T](nil), c.validators...)
}
