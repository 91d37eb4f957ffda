// Package decl loads the YAML or JSON declaration documents describing the
// types a validator is generated for. A document names the target package,
// the import table for qualified type references, the qualifier markers and
// one entry per type listing its accessors in declaration order:
//
//	package: people
//	qualifiers: [Email]
//	types:
//	  - name: Person
//	    accessors:
//	      - name: ID
//	        returns: int
//	        markers: [NonZero]
//	      - name: Age
//	        returns: int
//	        markers: ["Range(0, 150)"]
//
// Markers accept the `Name(arg, ...)` shorthand or a mapping with name, args
// and qualifier keys.
package decl
