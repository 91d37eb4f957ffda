// Package template defines the template engine seam used by code generation
// back-ends to lay out generated declarations. Back-ends depend on
// TemplateRenderer rather than a concrete engine; gotemplate provides the
// pongo2 implementation.
package template
