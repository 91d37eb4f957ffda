package inspector

import "github.com/goliatone/go-validgen/pkg/inspector/types"

// Accessor records the declared type and qualifier markers of one accessor.
// Generated validators populate an AccessorTable at package load time so
// qualified lookups never need reflection.
type Accessor struct {
	Type       types.Type
	Qualifiers []string
}

// AccessorTable maps accessor names to their metadata.
type AccessorTable map[string]Accessor

// Lookup returns the entry for accessor or an ErrNoAccessor error naming the
// owning type.
func (t AccessorTable) Lookup(typeName, accessor string) (Accessor, error) {
	entry, ok := t[accessor]
	if !ok {
		return Accessor{}, NoAccessorError(typeName, accessor)
	}
	return entry, nil
}
