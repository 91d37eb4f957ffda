package codegen

// Backend renders a File into source text. Implementations must be safe for
// concurrent use since one back-end serves every synthesis run.
type Backend interface {
	Name() string
	Render(file File) ([]byte, error)
}
