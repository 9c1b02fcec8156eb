package services

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/domain/coverage"
)

//go:embed report.tpl
var reportTemplateSrc string

//go:embed placeholder.tpl
var placeholderTemplateSrc string

// endpointView is one report subsection: an endpoint heading and its detail lines.
type endpointView struct {
	Name  string
	Lines []string
}

// ReportGenerator renders coverage results into the audit report document.
// Output is deterministic: all section ordering is fixed before the template
// runs.
type ReportGenerator struct {
	report      *pongo2.Template
	placeholder *pongo2.Template
}

// NewReportGenerator compiles the embedded report templates.
func NewReportGenerator() (*ReportGenerator, error) {
	report, err := pongo2.FromString(reportTemplateSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile report template: %w", err)
	}
	placeholder, err := pongo2.FromString(placeholderTemplateSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile placeholder template: %w", err)
	}
	return &ReportGenerator{report: report, placeholder: placeholder}, nil
}

// Render produces the report text. With zero traffic it renders the short
// placeholder document instead of the full structure.
func (g *ReportGenerator) Render(doc *apispec.Document, result *coverage.Result, generatedAt time.Time, runID string) (string, error) {
	ctx := pongo2.Context{
		"generated_at": generatedAt.UTC().Format(time.RFC3339),
		"run_id":       runID,
		"paths_total":  result.PathsTotal,
		"combos_total": result.CombosTotal,
	}

	if result.TrafficCount == 0 {
		out, err := g.placeholder.Execute(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to render placeholder report: %w", err)
		}
		return out, nil
	}

	ctx["paths_tested"] = result.PathsTested()
	ctx["combos_tested"] = result.CombosTested()
	ctx["path_percent"] = percentLabel(result.PathsTested(), result.PathsTotal)
	ctx["combo_percent"] = percentLabel(result.CombosTested(), result.CombosTotal)
	ctx["traffic_count"] = result.TrafficCount
	ctx["undocumented_count"] = len(result.Undocumented)
	ctx["undocumented"] = undocumentedViews(result)
	ctx["tested"] = testedViews(result)
	ctx["missing_entirely"] = missingViews(result.MissingEntirely)
	ctx["partially_missing"] = missingViews(result.PartiallyMissing)

	out, err := g.report.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

// percentLabel guards the zero-denominator case: with nothing declared the
// ratio is undefined and reported as not applicable.
func percentLabel(tested, total int) string {
	pct, ok := coverage.Percent(tested, total)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", pct)
}

func undocumentedViews(result *coverage.Result) []endpointView {
	keys := make([]string, 0, len(result.Undocumented))
	for key := range result.Undocumented {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	views := make([]endpointView, 0, len(keys))
	for _, key := range keys {
		lines := make([]string, 0, len(result.Undocumented[key]))
		for _, status := range result.Undocumented[key] {
			lines = append(lines, strconv.Itoa(status))
		}
		views = append(views, endpointView{Name: key, Lines: lines})
	}
	return views
}

func testedViews(result *coverage.Result) []endpointView {
	statusesByMethod := make(map[string]map[string][]int)
	for combo := range result.TestedCombos {
		if statusesByMethod[combo.Template] == nil {
			statusesByMethod[combo.Template] = make(map[string][]int)
		}
		byMethod := statusesByMethod[combo.Template]
		byMethod[combo.Method] = append(byMethod[combo.Method], combo.Status)
	}

	templates := make([]string, 0, len(result.TestedPaths))
	for template := range result.TestedPaths {
		templates = append(templates, template)
	}
	sort.Strings(templates)

	views := make([]endpointView, 0, len(templates))
	for _, template := range templates {
		byMethod := statusesByMethod[template]
		methods := make([]string, 0, len(byMethod))
		for method := range byMethod {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		lines := make([]string, 0, len(methods))
		for _, method := range methods {
			statuses := byMethod[method]
			sort.Ints(statuses)
			lines = append(lines, method+": "+joinStatuses(statuses))
		}
		views = append(views, endpointView{Name: template, Lines: lines})
	}
	return views
}

func missingViews(missing []coverage.MissingPath) []endpointView {
	views := make([]endpointView, 0, len(missing))
	for _, mp := range missing {
		byMethod := make(map[string][]int)
		methods := make([]string, 0)
		for _, pair := range mp.Missing {
			if _, seen := byMethod[pair.Method]; !seen {
				methods = append(methods, pair.Method)
			}
			byMethod[pair.Method] = append(byMethod[pair.Method], pair.Status)
		}
		sort.Strings(methods)

		lines := make([]string, 0, len(methods))
		for _, method := range methods {
			statuses := byMethod[method]
			sort.Ints(statuses)
			lines = append(lines, method+": "+joinStatuses(statuses))
		}
		views = append(views, endpointView{Name: mp.Template, Lines: lines})
	}
	return views
}

func joinStatuses(statuses []int) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}
