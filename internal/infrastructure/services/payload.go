package services

import (
	"encoding/json"
	"strings"

	"github.com/antchfx/xmlquery"
)

// CapturePayload converts a captured body into the value stored on a traffic
// record: structured data when the body parses, the raw text when it does
// not, nil when there is no body. Parse failure is never an error here; the
// raw fallback keeps the record useful.
func CapturePayload(contentType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}

	switch {
	case isJSONContent(contentType, body):
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	case isXMLContent(contentType, body):
		if doc, err := xmlquery.Parse(strings.NewReader(string(body))); err == nil {
			if v := xmlValue(doc); v != nil {
				return v
			}
		}
	}

	return string(body)
}

func isJSONContent(contentType string, body []byte) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	if contentType != "" {
		return false
	}
	trimmed := strings.TrimLeft(string(body), " \t\r\n")
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func isXMLContent(contentType string, body []byte) bool {
	if strings.Contains(contentType, "xml") {
		return true
	}
	if contentType != "" {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(string(body), " \t\r\n"), "<")
}

// xmlValue reduces an XML node tree to a JSON-like structure: elements become
// maps keyed by child name (repeated names collect into slices), text-only
// elements become strings.
func xmlValue(node *xmlquery.Node) any {
	children := make(map[string][]any)
	order := make([]string, 0)

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		if _, seen := children[child.Data]; !seen {
			order = append(order, child.Data)
		}
		children[child.Data] = append(children[child.Data], xmlValue(child))
	}

	if len(children) == 0 {
		text := strings.TrimSpace(node.InnerText())
		if text == "" {
			return nil
		}
		return text
	}

	out := make(map[string]any, len(order))
	for _, name := range order {
		values := children[name]
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out
}
