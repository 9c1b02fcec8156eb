package apispec

import "strings"

// Match maps a concrete request path to a declared path template. The query
// component is stripped first. An exact string match wins immediately;
// otherwise templates are tried segment-wise in declaration order and the
// first structural match wins. Placeholder segments ({param}) match exactly
// one non-empty concrete segment, so trailing slashes are significant.
func Match(concretePath string, doc *Document) (string, bool) {
	path := StripQuery(concretePath)

	if _, ok := doc.ops[path]; ok {
		return path, true
	}

	pathSegments := strings.Split(path, "/")
	for _, template := range doc.templates {
		if segmentsMatch(pathSegments, strings.Split(template, "/")) {
			return template, true
		}
	}
	return "", false
}

// StripQuery removes the query component from a request target.
func StripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func segmentsMatch(path, template []string) bool {
	if len(path) != len(template) {
		return false
	}
	for i, seg := range template {
		if isPlaceholder(seg) {
			if path[i] == "" {
				return false
			}
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

func isPlaceholder(segment string) bool {
	return len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}
