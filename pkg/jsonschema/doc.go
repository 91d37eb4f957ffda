// Package jsonschema adapts JSON Schema documents (draft-07 through 2020-12)
// to the declaration model. Object schemas under $defs, and the root schema
// when it declares properties, become type declarations.
//
// Documents are rewritten into OpenAPI components and handed to an
// OpenAPI parser, so keyword mapping and the x-validgen extension behave
// exactly as they do for OpenAPI input:
//
//	"$ref": "#/$defs/Address"   -> "#/components/schemas/Address"
//	"exclusiveMinimum": 0       -> "minimum": 0, "exclusiveMinimum": true
//	"type": ["string", "null"]  -> "type": "string"
//	"const": "a"                -> "enum": ["a"]
//
// Only local references are resolved. Keywords without an OpenAPI
// counterpart are dropped.
package jsonschema
