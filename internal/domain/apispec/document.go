package apispec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a declared API specification: path templates mapped to HTTP
// methods mapped to the set of expected response status codes. Templates keep
// their declaration order, which the matcher uses as the tie-break for
// overlapping templates.
type Document struct {
	templates []string
	ops       map[string]map[string][]int
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{
		ops: make(map[string]map[string][]int),
	}
}

// Add declares statuses for a template/method pair. Methods are normalized to
// lower case; duplicate statuses are ignored.
func (d *Document) Add(template, method string, statuses ...int) {
	method = strings.ToLower(method)

	byMethod, ok := d.ops[template]
	if !ok {
		byMethod = make(map[string][]int)
		d.ops[template] = byMethod
		d.templates = append(d.templates, template)
	}

	for _, status := range statuses {
		if !containsInt(byMethod[method], status) {
			byMethod[method] = append(byMethod[method], status)
		}
	}
	sort.Ints(byMethod[method])
}

// Templates returns the declared path templates in declaration order.
func (d *Document) Templates() []string {
	out := make([]string, len(d.templates))
	copy(out, d.templates)
	return out
}

// Methods returns the declared methods for a template, sorted.
func (d *Document) Methods(template string) []string {
	byMethod := d.ops[template]
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Statuses returns the declared status codes for a template/method pair,
// sorted ascending.
func (d *Document) Statuses(template, method string) []int {
	statuses := d.ops[template][strings.ToLower(method)]
	out := make([]int, len(statuses))
	copy(out, statuses)
	return out
}

// Declares reports whether the (template, method, status) combo is declared.
func (d *Document) Declares(template, method string, status int) bool {
	return containsInt(d.ops[template][strings.ToLower(method)], status)
}

// Len returns the number of declared path templates.
func (d *Document) Len() int {
	return len(d.templates)
}

// ComboCount returns the total number of declared (template, method, status)
// combinations.
func (d *Document) ComboCount() int {
	total := 0
	for _, byMethod := range d.ops {
		for _, statuses := range byMethod {
			total += len(statuses)
		}
	}
	return total
}

// MarshalJSON serializes the document to the interchange shape
// { "<template>": { "<method>": [codes...] } }. The object is assembled by
// hand because templates must appear in declaration order: a parsed snapshot
// has to match overlapping templates with the same tie-break as the original.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, template := range d.templates {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(template)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":{")

		byMethod := d.ops[template]
		for j, method := range d.Methods(template) {
			if j > 0 {
				buf.WriteByte(',')
			}
			statuses, err := json.Marshal(byMethod[method])
			if err != nil {
				return nil, err
			}
			buf.WriteString(strconv.Quote(method))
			buf.WriteByte(':')
			buf.Write(statuses)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a specification document from YAML or JSON text. Parsing goes
// through the yaml node tree so that template declaration order survives
// (JSON is valid YAML, so both formats take the same path).
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse specification: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("specification document is empty")
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("specification must be a mapping of path templates, got %s", kindName(top.Kind))
	}

	doc := NewDocument()
	for i := 0; i+1 < len(top.Content); i += 2 {
		template := top.Content[i].Value
		methodsNode := top.Content[i+1]
		if methodsNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("template %q: expected mapping of methods, got %s", template, kindName(methodsNode.Kind))
		}

		for j := 0; j+1 < len(methodsNode.Content); j += 2 {
			method := methodsNode.Content[j].Value
			statuses, err := decodeStatuses(methodsNode.Content[j+1])
			if err != nil {
				return nil, fmt.Errorf("template %q method %q: %w", template, method, err)
			}
			doc.Add(template, method, statuses...)
		}
	}
	return doc, nil
}

func decodeStatuses(node *yaml.Node) ([]int, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected sequence of status codes, got %s", kindName(node.Kind))
	}
	statuses := make([]int, 0, len(node.Content))
	for _, item := range node.Content {
		status, err := strconv.Atoi(item.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", item.Value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
