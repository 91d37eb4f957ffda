// Package openapi exposes the OpenAPI front end: component object schemas
// become type declarations whose properties become accessors. The parser
// implementation lives under internal/openapi to keep kin-openapi out of the
// public API.
//
// Validation keywords map onto built-in extension markers:
//
//	required              NonZero
//	minimum + maximum     Range(min, max)
//	minLength, maxLength  Length(min, max)
//	minItems, maxItems    Length(min, max)
//
// The x-validgen extension tunes a schema or property:
//
//	x-validgen:
//	  ignore: true            # drop the property (or the whole schema)
//	  skip: true              # keep the property but emit no check
//	  validatedBy: [Trimmed]  # explicit validator override
//	  qualifiers: [Email]     # qualified lookup markers
package openapi
