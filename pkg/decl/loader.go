package decl

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes one YAML or JSON declaration document and checks its type
// level structure. Accessor level problems are left to extraction, which
// reports them as diagnostics.
func Parse(data []byte, source string) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("decl: file %s is empty", source)
	}

	// yaml.v3 also accepts JSON documents.
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decl: parse %s: %w", source, err)
	}
	doc.Source = source

	if err := doc.validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d *Document) validate() error {
	d.Package = strings.TrimSpace(d.Package)
	if d.Package == "" {
		return fmt.Errorf("decl: file %s does not name a package", d.Source)
	}
	seen := make(map[string]struct{}, len(d.Types))
	for i := range d.Types {
		t := &d.Types[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return fmt.Errorf("decl: file %s type %d has an empty name", d.Source, i)
		}
		if _, exists := seen[t.Name]; exists {
			return fmt.Errorf("decl: duplicate type %q (file %s)", t.Name, d.Source)
		}
		seen[t.Name] = struct{}{}

		params := make(map[string]struct{}, len(t.TypeParams))
		for _, p := range t.TypeParams {
			if strings.TrimSpace(p.Name) == "" {
				return fmt.Errorf("decl: type %q (file %s) declares an empty type parameter", t.Name, d.Source)
			}
			if _, exists := params[p.Name]; exists {
				return fmt.Errorf("decl: type %q (file %s) repeats type parameter %q", t.Name, d.Source, p.Name)
			}
			params[p.Name] = struct{}{}
		}
	}
	return nil
}

// LoadFS walks fsys and parses every .yaml, .yml and .json file. Type names
// must be unique across the loaded documents.
func LoadFS(fsys fs.FS) ([]Document, error) {
	if fsys == nil {
		return nil, nil
	}

	var docs []Document
	owners := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsDeclarationFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("decl: read %s: %w", path, err)
		}
		doc, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, t := range doc.Types {
			if owner, exists := owners[t.Name]; exists {
				return fmt.Errorf("decl: type %q declared in %s and %s", t.Name, owner, path)
			}
			owners[t.Name] = path
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// IsDeclarationFile reports whether path has a declaration file extension.
func IsDeclarationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ImportPath resolves a package qualifier through the import table.
func (d Document) ImportPath(qualifier string) string {
	if path, ok := d.Imports[qualifier]; ok && strings.TrimSpace(path) != "" {
		return path
	}
	return qualifier
}

// IsQualifier reports whether name is declared as a qualifier marker.
func (d Document) IsQualifier(name string) bool {
	for _, q := range d.Qualifiers {
		if strings.TrimSpace(q) == name {
			return true
		}
	}
	return false
}

// Type returns the declaration named name.
func (d Document) Type(name string) (TypeDecl, bool) {
	for _, t := range d.Types {
		if t.Name == name {
			return t, true
		}
	}
	return TypeDecl{}, false
}
