package jsonschema

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

const componentPrefix = "#/components/schemas/"

var supportedDialects = map[string]struct{}{
	"https://json-schema.org/draft/2020-12/schema": {},
	"http://json-schema.org/draft/2020-12/schema":  {},
	"https://json-schema.org/draft/2019-09/schema": {},
	"http://json-schema.org/draft/2019-09/schema":  {},
	"http://json-schema.org/draft-07/schema":       {},
	"https://json-schema.org/draft-07/schema":      {},
}

// passthroughKeys are copied unchanged. Keywords handled in convert and x-
// extensions are not listed.
var passthroughKeys = map[string]struct{}{
	"title":         {},
	"description":   {},
	"format":        {},
	"enum":          {},
	"default":       {},
	"required":      {},
	"minLength":     {},
	"maxLength":     {},
	"pattern":       {},
	"minItems":      {},
	"maxItems":      {},
	"uniqueItems":   {},
	"minProperties": {},
	"maxProperties": {},
	"multipleOf":    {},
	"readOnly":      {},
	"writeOnly":     {},
	"deprecated":    {},
}

var inclusiveBound = map[string]string{
	"exclusiveMinimum": "minimum",
	"exclusiveMaximum": "maximum",
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

type converter struct {
	root string
	defs map[string]struct{}
}

// toOpenAPI rewrites a JSON Schema document into an OpenAPI 3.0 document
// whose component schemas are the root schema and its $defs, in source
// order.
func toOpenAPI(raw []byte, rootName string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("jsonschema: schema must be an object")
	}
	if err := validateDialect(root); err != nil {
		return nil, err
	}

	c := converter{defs: make(map[string]struct{})}
	defs := lookup(root, "$defs")
	if defs == nil {
		defs = lookup(root, "definitions")
	}
	if defs != nil && defs.Kind != yaml.MappingNode {
		return nil, errors.New("jsonschema: $defs must be an object")
	}
	for _, key := range keys(defs) {
		c.defs[key] = struct{}{}
	}
	if lookup(root, "properties") != nil || lookup(root, "allOf") != nil {
		c.root = rootName
		if c.root == "" {
			c.root = rootTypeName(root)
		}
		if _, clash := c.defs[c.root]; clash {
			return nil, fmt.Errorf("jsonschema: root schema name %q collides with a $defs entry", c.root)
		}
	}

	schemas := mapping()
	if c.root != "" {
		converted, err := c.convert(root, "#")
		if err != nil {
			return nil, err
		}
		schemas.Content = append(schemas.Content, str(c.root), converted)
	}
	for i := 0; defs != nil && i+1 < len(defs.Content); i += 2 {
		name := defs.Content[i].Value
		converted, err := c.convert(defs.Content[i+1], "#/$defs/"+name)
		if err != nil {
			return nil, err
		}
		schemas.Content = append(schemas.Content, str(name), converted)
	}
	if len(schemas.Content) == 0 {
		return nil, errors.New("jsonschema: document defines no schemas")
	}

	title := scalar(root, "title")
	if title == "" {
		title = "schema"
	}
	out := mapping(
		str("openapi"), str("3.0.3"),
		str("info"), mapping(str("title"), str(title), str("version"), str("0.0.0")),
		str("paths"), mapping(),
		str("components"), mapping(str("schemas"), schemas),
	)
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: encode components: %w", err)
	}
	return data, nil
}

func validateDialect(root *yaml.Node) error {
	value := strings.TrimSuffix(strings.TrimSpace(scalar(root, "$schema")), "#")
	if value == "" {
		return nil
	}
	if _, ok := supportedDialects[value]; !ok {
		return fmt.Errorf("jsonschema: unsupported $schema %q", value)
	}
	return nil
}

// rootTypeName derives a type name from the root title, then from the last
// path segment of $id without extensions.
func rootTypeName(root *yaml.Node) string {
	if title := strings.TrimSpace(scalar(root, "title")); title != "" {
		return title
	}
	if id := strings.TrimSpace(scalar(root, "$id")); id != "" {
		p := id
		if u, err := url.Parse(id); err == nil && u.Path != "" {
			p = u.Path
		}
		base := path.Base(p)
		if i := strings.IndexByte(base, '.'); i > 0 {
			base = base[:i]
		}
		if base != "" && base != "/" && base != "." {
			return base
		}
	}
	return "Root"
}

func (c *converter) convert(node *yaml.Node, at string) (*yaml.Node, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		// true accepts anything; false has no OpenAPI 3.0 spelling.
		return mapping(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("jsonschema: schema must be an object at %s", at)
	}

	exclusiveMin := numeric(lookup(node, "exclusiveMinimum"))
	exclusiveMax := numeric(lookup(node, "exclusiveMaximum"))

	out := mapping()
	add := func(key string, value *yaml.Node) {
		out.Content = append(out.Content, str(key), value)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "$ref":
			ref, err := c.ref(value.Value, at)
			if err != nil {
				return nil, err
			}
			add(key, str(ref))
		case "type":
			if t := typeNode(value); t != nil {
				add(key, t)
			}
		case "const":
			add("enum", &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{value}})
		case "minimum":
			if !exclusiveMin {
				add(key, value)
			}
		case "maximum":
			if !exclusiveMax {
				add(key, value)
			}
		case "exclusiveMinimum", "exclusiveMaximum":
			if numeric(value) {
				add(inclusiveBound[key], value)
				add(key, boolean(true))
				continue
			}
			add(key, value)
		case "properties":
			if value.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("jsonschema: properties must be an object at %s", at)
			}
			props := mapping()
			for j := 0; j+1 < len(value.Content); j += 2 {
				name := value.Content[j].Value
				converted, err := c.convert(value.Content[j+1], at+"/properties/"+name)
				if err != nil {
					return nil, err
				}
				props.Content = append(props.Content, str(name), converted)
			}
			add(key, props)
		case "items", "not":
			if value.Kind == yaml.SequenceNode {
				// Tuple form; prefixItems has no OpenAPI 3.0 counterpart.
				continue
			}
			converted, err := c.convert(value, at+"/"+key)
			if err != nil {
				return nil, err
			}
			add(key, converted)
		case "additionalProperties":
			if value.Kind == yaml.ScalarNode {
				add(key, value)
				continue
			}
			converted, err := c.convert(value, at+"/"+key)
			if err != nil {
				return nil, err
			}
			add(key, converted)
		case "allOf", "anyOf", "oneOf":
			if value.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("jsonschema: %s must be an array at %s", key, at)
			}
			members := &yaml.Node{Kind: yaml.SequenceNode}
			for j, member := range value.Content {
				converted, err := c.convert(member, fmt.Sprintf("%s/%s/%d", at, key, j))
				if err != nil {
					return nil, err
				}
				members.Content = append(members.Content, converted)
			}
			add(key, members)
		default:
			if _, ok := passthroughKeys[key]; ok || strings.HasPrefix(key, "x-") {
				add(key, value)
			}
		}
	}
	return out, nil
}

// ref rewrites local references into component references.
func (c *converter) ref(ref, at string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "#" {
		if c.root == "" {
			return "", fmt.Errorf("jsonschema: $ref %q at %s points to a root schema without properties", ref, at)
		}
		return componentPrefix + c.root, nil
	}
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		name := pointerUnescaper.Replace(strings.TrimPrefix(ref, prefix))
		if _, ok := c.defs[name]; !ok || strings.Contains(name, "/") {
			return "", fmt.Errorf("jsonschema: unresolved $ref %q at %s", ref, at)
		}
		return componentPrefix + name, nil
	}
	return "", fmt.Errorf("jsonschema: unsupported $ref %q at %s, only local $defs references are resolved", ref, at)
}

// typeNode drops "null" from a type list. Several remaining types leave
// the schema untyped.
func typeNode(value *yaml.Node) *yaml.Node {
	if value.Kind != yaml.SequenceNode {
		return value
	}
	var kept []*yaml.Node
	for _, item := range value.Content {
		if item.Value != "null" {
			kept = append(kept, item)
		}
	}
	if len(kept) != 1 {
		return nil
	}
	return kept[0]
}

func numeric(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && (node.Tag == "!!int" || node.Tag == "!!float")
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalar(node *yaml.Node, key string) string {
	if v := lookup(node, key); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func keys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, node.Content[i].Value)
	}
	return out
}

func mapping(content ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: content}
}

func str(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func boolean(value bool) *yaml.Node {
	v := "false"
	if value {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}
