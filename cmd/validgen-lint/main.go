// Command validgen-lint checks the x-validgen extensions of OpenAPI component
// schemas without generating anything. With -deep every document, whatever
// its format, is also normalized and synthesized.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-validgen/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
	"github.com/goliatone/go-validgen/pkg/schema"
	"github.com/goliatone/go-validgen/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	set := flag.NewFlagSet("validgen-lint", flag.ContinueOnError)
	set.SetOutput(stderr)
	set.Usage = func() {
		fmt.Fprintf(set.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(set.Output(), "\nLint OpenAPI documents for invalid %s extensions.\n\n", pkgopenapi.ExtensionKey)
		set.PrintDefaults()
	}
	deep := set.Bool("deep", false, "also normalize every document and synthesize its validators")
	if err := set.Parse(args); err != nil {
		return 2
	}
	paths := set.Args()
	if len(paths) == 0 {
		set.Usage()
		return 2
	}

	var violations []violation
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "lint %s: read file: %v\n", path, err)
			return 1
		}
		if isOpenAPI(raw) {
			linted, err := lintDocument(ctx, path, raw)
			if err != nil {
				fmt.Fprintf(stderr, "lint %s: %v\n", path, err)
				return 1
			}
			violations = append(violations, linted...)
		}
		if *deep {
			violations = append(violations, checkDocument(ctx, path, raw)...)
		}
	}
	if len(violations) == 0 {
		return 0
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return 1
}

func lintDocument(ctx context.Context, path string, raw []byte) ([]violation, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.Components == nil {
		return nil, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []violation
	for _, name := range names {
		result = append(result, lintSchema(path, []string{"components", "schemas", name}, doc.Components.Schemas[name])...)
	}
	return result, nil
}

// checkDocument runs the full normalization and synthesis pipeline over raw.
func checkDocument(ctx context.Context, path string, raw []byte) []violation {
	result := validation.ValidateDocument(ctx, schema.SourceFromFile(path), raw, validation.Options{})
	var out []violation
	for _, issue := range result.Issues {
		location := issue.Field
		if location == "" {
			location = "document"
		}
		out = append(out, violation{
			file:     path,
			location: location,
			message:  fmt.Sprintf("%s: %s", issue.Severity, issue.Message),
		})
	}
	return out
}

func isOpenAPI(raw []byte) bool {
	var probe map[string]any
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe["openapi"]
	return ok
}

// lintSchema walks inline schemas only. Referenced components are linted at
// their own location.
func lintSchema(file string, path []string, ref *openapi3.SchemaRef) []violation {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value

	result := lintExtensions(file, path, s.Extensions)

	keys := make([]string, 0, len(s.Properties))
	for key := range s.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		prop := s.Properties[key]
		if prop != nil && prop.Ref != "" {
			// Markers still apply to the property itself.
			result = append(result, lintExtensions(file, appendPath(path, "properties."+key), prop.Extensions)...)
			continue
		}
		result = append(result, lintSchema(file, appendPath(path, "properties."+key), prop)...)
	}

	if s.Items != nil && s.Items.Ref == "" {
		result = append(result, lintSchema(file, appendPath(path, "items"), s.Items)...)
	}
	if extra := s.AdditionalProperties.Schema; extra != nil && extra.Ref == "" {
		result = append(result, lintSchema(file, appendPath(path, "additionalProperties"), extra)...)
	}
	for i, member := range s.AllOf {
		if member != nil && member.Ref == "" {
			result = append(result, lintSchema(file, appendPath(path, fmt.Sprintf("allOf.%d", i)), member)...)
		}
	}
	return result
}

func lintExtensions(file string, path []string, extensions map[string]any) []violation {
	if len(extensions) == 0 {
		return nil
	}

	var result []violation
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, pkgopenapi.ExtensionKey+"-") {
			result = append(result, violation{
				file:     file,
				location: formatLocation(path),
				message:  fmt.Sprintf("%s is not read; nest %q under %s", key, strings.TrimPrefix(key, pkgopenapi.ExtensionKey+"-"), pkgopenapi.ExtensionKey),
			})
		}
	}

	if err := parser.CheckExtension(extensions); err != nil {
		result = append(result, violation{
			file:     file,
			location: formatLocation(path),
			message:  err.Error(),
		})
	}
	return result
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
