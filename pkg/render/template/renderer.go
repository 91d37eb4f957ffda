package template

import (
	"io"
)

// TemplateRenderer is the engine contract back-ends lay out generated
// declarations through. Templates are addressed by name without extension.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
