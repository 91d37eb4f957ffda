// Package validation checks declaration, OpenAPI and JSON Schema documents
// without rendering anything, reporting problems as JSON-friendly issues.
package validation

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-validgen/pkg/model"
	"github.com/goliatone/go-validgen/pkg/orchestrator"
	"github.com/goliatone/go-validgen/pkg/schema"
)

// Issue represents a validation problem with optional location metadata.
type Issue struct {
	Severity model.Severity `json:"severity"`
	Path     string         `json:"path,omitempty"`
	Field    string         `json:"field,omitempty"`
	Message  string         `json:"message"`
}

// Result captures validation outcomes for editor previews and linting.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Options configures validation behaviour.
type Options struct {
	// Format forces an adapter; empty detects it from the payload.
	Format string
	// Orchestrator runs loading and synthesis. Defaults to orchestrator.New().
	Orchestrator *orchestrator.Orchestrator
}

// ValidateDocument normalizes raw into declarations and synthesizes every
// type, collecting format errors and synthesis diagnostics. Warnings leave
// the result valid.
func ValidateDocument(ctx context.Context, src schema.Source, raw []byte, opts Options) Result {
	result := Result{Valid: true}
	if src == nil {
		src = schema.SourceInline("document")
	}

	doc, err := schema.NewDocument(src, raw)
	if err != nil {
		return invalid(issueFromError(err))
	}

	orch := opts.Orchestrator
	if orch == nil {
		orch = orchestrator.New()
	}
	decls, err := orch.Load(ctx, orchestrator.Request{Document: &doc, Format: opts.Format})
	if err != nil {
		return invalid(issueFromError(err))
	}

	for _, t := range decls.Types {
		_, diags, err := orch.Synthesize(decls, t)
		for _, d := range diags {
			result.Issues = append(result.Issues, issueFromDiagnostic(d))
			if d.Severity == model.SeverityError {
				result.Valid = false
			}
		}
		if err != nil {
			result.Valid = false
			issue := issueFromError(err)
			if issue.Field == "" {
				issue.Field = t.Name
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

func invalid(issue Issue) Result {
	return Result{Valid: false, Issues: []Issue{issue}}
}

func issueFromDiagnostic(d model.Diagnostic) Issue {
	field := d.Type
	if d.Property != "" {
		field += "." + d.Property
	}
	return Issue{Severity: d.Severity, Field: field, Message: d.Message}
}

var messagePrefixes = []string{
	"jsonschema adapter: ",
	"openapi parser: ",
	"jsonschema: ",
	"orchestrator: ",
	"schema: ",
	"decl: ",
}

func issueFromError(err error) Issue {
	if err == nil {
		return Issue{Severity: model.SeverityError, Message: "unknown error"}
	}
	var diag model.Diagnostic
	if errors.As(err, &diag) {
		return issueFromDiagnostic(diag)
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	for trimmed := true; trimmed; {
		trimmed = false
		for _, prefix := range messagePrefixes {
			if strings.HasPrefix(msg, prefix) {
				msg = strings.TrimPrefix(msg, prefix)
				trimmed = true
			}
		}
		// orchestrator: normalize <format> document: <cause>
		if strings.HasPrefix(msg, "normalize ") {
			if i := strings.Index(msg, " document: "); i >= 0 {
				msg = msg[i+len(" document: "):]
				trimmed = true
			}
		}
	}

	return Issue{
		Severity: model.SeverityError,
		Path:     path,
		Field:    fieldPathFromPointer(path),
		Message:  strings.TrimSpace(msg),
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, " at #"); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if end := strings.IndexAny(candidate, " ,"); end >= 0 {
			candidate = candidate[:end]
		}
		return trimPointer(candidate)
	}
	return ""
}

func trimPointer(pointer string) string {
	if pointer == "" {
		return ""
	}
	trimmed := strings.TrimRight(pointer, ".)];,")
	return strings.TrimSpace(trimmed)
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescape(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescape(parts[idx+1]))
				idx++
			}
		case "items":
			out = append(out, "items")
		case "oneOf", "anyOf", "allOf":
			if idx+1 < len(parts) && isNumeric(parts[idx+1]) {
				idx++
			}
		case "$defs", "definitions":
			if idx+1 < len(parts) {
				out = append(out, unescape(parts[idx+1]))
				idx++
			}
		default:
			if segment == "" {
				continue
			}
			out = append(out, segment)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

func unescape(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
