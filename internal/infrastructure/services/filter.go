package services

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/domain/traffic"
)

// filterEnv is the environment visible to exclusion expressions.
type filterEnv struct {
	Method string `expr:"method"`
	Path   string `expr:"path"`
	Status int    `expr:"status"`
}

// RecordFilter excludes traffic records from coverage accounting based on a
// compiled Expr expression, e.g. `method == "OPTIONS"` to drop CORS
// preflights. A nil filter excludes nothing.
type RecordFilter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles an exclusion expression. The expression sees
// `method` (upper case), `path` (query stripped), and `status`, and must
// evaluate to a boolean.
func CompileFilter(expression string) (*RecordFilter, error) {
	program, err := expr.Compile(expression, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile exclusion filter %q: %w", expression, err)
	}
	return &RecordFilter{source: expression, program: program}, nil
}

// Excludes reports whether the record should be dropped from accounting.
// Evaluation errors keep the record: losing coverage data to a filter bug is
// worse than an unfiltered record.
func (f *RecordFilter) Excludes(rec traffic.Record) bool {
	if f == nil {
		return false
	}
	env := filterEnv{
		Method: strings.ToUpper(rec.Method),
		Path:   apispec.StripQuery(rec.URL),
		Status: rec.Status,
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	excluded, _ := out.(bool)
	return excluded
}

// Apply returns the records not excluded by the filter.
func (f *RecordFilter) Apply(records []traffic.Record) []traffic.Record {
	if f == nil {
		return records
	}
	kept := make([]traffic.Record, 0, len(records))
	for _, rec := range records {
		if !f.Excludes(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// String returns the filter's source expression.
func (f *RecordFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
