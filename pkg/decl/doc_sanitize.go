package decl

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	docPolicyOnce sync.Once
	docPolicy     *bluemonday.Policy
)

// CleanDoc strips markup from declaration doc text so it can be emitted as a
// Go comment. Lines are trimmed and blank runs collapse to one empty line.
func CleanDoc(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := html.UnescapeString(docSanitizer().Sanitize(trimmed))
	// Block comment terminators would end a generated comment early.
	cleaned = strings.ReplaceAll(cleaned, "*/", "* /")

	var lines []string
	blank := false
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func docSanitizer() *bluemonday.Policy {
	docPolicyOnce.Do(func() {
		docPolicy = bluemonday.StrictPolicy()
	})
	return docPolicy
}
