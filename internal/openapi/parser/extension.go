package parser

import (
	"fmt"
	"strings"

	pkgopenapi "github.com/goliatone/go-validgen/pkg/openapi"
)

// extension is the decoded x-validgen payload of a schema or property.
type extension struct {
	Ignore      bool
	Skip        bool
	ValidatedBy []string
	Qualifiers  []string
	Markers     []string
}

func readExtension(raw map[string]any) (extension, error) {
	var ext extension
	value, ok := raw[pkgopenapi.ExtensionKey]
	if !ok || value == nil {
		return ext, nil
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return ext, fmt.Errorf("%s must be an object, got %T", pkgopenapi.ExtensionKey, value)
	}

	var err error
	for key, v := range fields {
		switch key {
		case "ignore":
			ext.Ignore, err = boolValue(key, v)
		case "skip":
			ext.Skip, err = boolValue(key, v)
		case "validatedBy":
			ext.ValidatedBy, err = stringList(key, v)
		case "qualifiers":
			ext.Qualifiers, err = stringList(key, v)
		case "markers":
			ext.Markers, err = stringList(key, v)
		default:
			err = fmt.Errorf("%s: unknown key %q", pkgopenapi.ExtensionKey, key)
		}
		if err != nil {
			return extension{}, err
		}
	}
	return ext, nil
}

func boolValue(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s.%s must be a boolean, got %T", pkgopenapi.ExtensionKey, key, v)
	}
	return b, nil
}

// stringList accepts a single string or a list of strings.
func stringList(key string, v any) ([]string, error) {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s entries must be strings, got %T", pkgopenapi.ExtensionKey, key, item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return append([]string(nil), x...), nil
	default:
		return nil, fmt.Errorf("%s.%s must be a string or list, got %T", pkgopenapi.ExtensionKey, key, v)
	}
}

// CheckExtension reports whether the x-validgen payload in extensions would be
// accepted by the parser, including marker syntax.
func CheckExtension(extensions map[string]any) error {
	ext, err := readExtension(extensions)
	if err != nil {
		return err
	}
	_, err = extensionMarkers(ext)
	return err
}
