package model

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-validgen/pkg/typedesc"
)

// StrategyKind names a Strategy shape for logging and diagnostics.
type StrategyKind string

const (
	KindExplicitOverride    StrategyKind = "explicit-override"
	KindQualifiedLookup     StrategyKind = "qualified-lookup"
	KindGenericSubstitution StrategyKind = "generic-substitution"
	KindDefaultTypeLookup   StrategyKind = "default-type-lookup"
)

// Strategy decides how a property's validator is obtained. It is implemented
// only by the four shapes below.
type Strategy interface {
	Kind() StrategyKind
	isStrategy()
}

// ExplicitOverride constructs the named validator types directly. More than
// one reference yields a fail-fast composite in listed order.
type ExplicitOverride struct {
	Validators []string
}

// QualifiedLookup defers to the host's qualifier-aware lookup keyed by the
// accessor name and the captured qualifier markers.
type QualifiedLookup struct {
	Accessor   string
	Qualifiers []Marker
}

// GenericSubstitution requests the validator for the caller-supplied type
// token at Index. When Wrap is set the token is first wrapped as
// Wrap[token, WrapArgs...].
type GenericSubstitution struct {
	Index    int
	Wrap     string
	WrapArgs []typedesc.Descriptor
}

// DefaultTypeLookup requests the validator for Type's token through the
// host's default lookup.
type DefaultTypeLookup struct {
	Type typedesc.Descriptor
}

func (ExplicitOverride) Kind() StrategyKind    { return KindExplicitOverride }
func (QualifiedLookup) Kind() StrategyKind     { return KindQualifiedLookup }
func (GenericSubstitution) Kind() StrategyKind { return KindGenericSubstitution }
func (DefaultTypeLookup) Kind() StrategyKind   { return KindDefaultTypeLookup }

func (ExplicitOverride) isStrategy()    {}
func (QualifiedLookup) isStrategy()     {}
func (GenericSubstitution) isStrategy() {}
func (DefaultTypeLookup) isStrategy()   {}

// QualifierNames returns the captured qualifier marker names.
func (s QualifiedLookup) QualifierNames() []string {
	out := make([]string, len(s.Qualifiers))
	for i, q := range s.Qualifiers {
		out[i] = q.Name
	}
	return out
}

// Describe renders a strategy for logs.
func Describe(s Strategy) string {
	switch x := s.(type) {
	case ExplicitOverride:
		return string(x.Kind()) + "(" + strings.Join(x.Validators, ", ") + ")"
	case QualifiedLookup:
		return string(x.Kind()) + "(" + strings.Join(x.QualifierNames(), ", ") + ")"
	case GenericSubstitution:
		if x.Wrap != "" {
			return string(x.Kind()) + "(" + x.Wrap + "[#" + strconv.Itoa(x.Index) + "])"
		}
		return string(x.Kind()) + "(#" + strconv.Itoa(x.Index) + ")"
	case DefaultTypeLookup:
		if x.Type == nil {
			return string(x.Kind())
		}
		return string(x.Kind()) + "(" + x.Type.String() + ")"
	default:
		return "none"
	}
}
