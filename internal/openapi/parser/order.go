package parser

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const componentSchemaPrefix = "#/components/schemas/"

// documentOrder records the key order of component schemas and their
// properties as written in the source. kin-openapi keeps both in Go maps.
type documentOrder struct {
	schemas    []string
	properties map[string][]string
}

func recoverOrder(raw []byte) documentOrder {
	order := documentOrder{properties: make(map[string][]string)}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return order
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	schemas := mappingValue(mappingValue(doc, "components"), "schemas")
	order.schemas = mappingKeys(schemas)
	for _, name := range order.schemas {
		props := mappingValue(mappingValue(schemas, name), "properties")
		order.properties[name] = mappingKeys(props)
	}
	return order
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
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

func mappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// ordered lists the keys of present, first in known order and then the
// remaining ones sorted.
func ordered[V any](known []string, present map[string]V) []string {
	out := make([]string, 0, len(present))
	seen := make(map[string]struct{}, len(present))
	for _, key := range known {
		if _, ok := present[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	var rest []string
	for key := range present {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// componentName returns the schema name of a local component reference.
func componentName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, componentSchemaPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, componentSchemaPrefix)
	return name, name != "" && !strings.Contains(name, "/")
}
