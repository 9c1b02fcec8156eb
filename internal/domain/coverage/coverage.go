package coverage

import (
	"math"
	"sort"
	"strings"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/domain/traffic"
)

// Combo is the unit of coverage accounting: one declared
// (template, method, status) triple. Method is lower-cased.
type Combo struct {
	Template string
	Method   string
	Status   int
}

// MethodStatus is a (method, status) pair missing from coverage.
type MethodStatus struct {
	Method string
	Status int
}

// MissingPath pairs a declared template with the exact declared combos that
// saw no traffic.
type MissingPath struct {
	Template string
	Missing  []MethodStatus
}

// Result is the outcome of comparing recorded traffic against a
// specification. It is derived state, recomputed on every audit run.
type Result struct {
	// TestedPaths holds declared templates with at least one matching record.
	TestedPaths map[string]bool
	// TestedCombos holds declared combos present in both specification and traffic.
	TestedCombos map[Combo]bool
	// Undocumented maps "METHOD concrete-path" keys of unmatched records to
	// their observed status codes, sorted ascending.
	Undocumented map[string][]int
	// MissingEntirely lists declared templates with zero matching traffic, in
	// declaration order.
	MissingEntirely []MissingPath
	// PartiallyMissing lists tested templates with at least one declared
	// combo uncovered, in declaration order.
	PartiallyMissing []MissingPath

	TrafficCount int
	PathsTotal   int
	CombosTotal  int
}

// PathsTested returns the number of declared templates that saw traffic.
func (r *Result) PathsTested() int { return len(r.TestedPaths) }

// CombosTested returns the number of declared combos that saw traffic.
func (r *Result) CombosTested() int { return len(r.TestedCombos) }

// Percent computes tested/total as a percentage rounded to the nearest
// integer. ok is false when total is zero: the ratio is undefined and callers
// must report it as not applicable instead.
func Percent(tested, total int) (pct int, ok bool) {
	if total == 0 {
		return 0, false
	}
	return int(math.Round(float64(tested) / float64(total) * 100)), true
}

// Compute compares traffic records against the specification.
func Compute(doc *apispec.Document, records []traffic.Record) *Result {
	result := &Result{
		TestedPaths:  make(map[string]bool),
		TestedCombos: make(map[Combo]bool),
		Undocumented: make(map[string][]int),
		TrafficCount: len(records),
		PathsTotal:   doc.Len(),
		CombosTotal:  doc.ComboCount(),
	}

	undocumented := make(map[string]map[int]bool)

	for _, rec := range records {
		method := strings.ToLower(rec.Method)

		template, ok := apispec.Match(rec.URL, doc)
		if !ok {
			key := strings.ToUpper(rec.Method) + " " + apispec.StripQuery(rec.URL)
			if undocumented[key] == nil {
				undocumented[key] = make(map[int]bool)
			}
			undocumented[key][rec.Status] = true
			continue
		}

		// Traffic on a declared template counts for path-level coverage even
		// when the status itself is undeclared; only declared combos count
		// toward combo-level coverage.
		result.TestedPaths[template] = true
		if doc.Declares(template, method, rec.Status) {
			result.TestedCombos[Combo{Template: template, Method: method, Status: rec.Status}] = true
		}
	}

	for key, statuses := range undocumented {
		result.Undocumented[key] = sortedStatuses(statuses)
	}

	for _, template := range doc.Templates() {
		if !result.TestedPaths[template] {
			result.MissingEntirely = append(result.MissingEntirely, MissingPath{
				Template: template,
				Missing:  allCombos(doc, template),
			})
			continue
		}
		missing := missingCombos(doc, template, result.TestedCombos)
		if len(missing) > 0 {
			result.PartiallyMissing = append(result.PartiallyMissing, MissingPath{
				Template: template,
				Missing:  missing,
			})
		}
	}

	return result
}

func allCombos(doc *apispec.Document, template string) []MethodStatus {
	var pairs []MethodStatus
	for _, method := range doc.Methods(template) {
		for _, status := range doc.Statuses(template, method) {
			pairs = append(pairs, MethodStatus{Method: method, Status: status})
		}
	}
	return pairs
}

func missingCombos(doc *apispec.Document, template string, tested map[Combo]bool) []MethodStatus {
	var pairs []MethodStatus
	for _, method := range doc.Methods(template) {
		for _, status := range doc.Statuses(template, method) {
			if !tested[Combo{Template: template, Method: method, Status: status}] {
				pairs = append(pairs, MethodStatus{Method: method, Status: status})
			}
		}
	}
	return pairs
}

func sortedStatuses(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
