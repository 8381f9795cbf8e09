package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
)

// Severity grades a lint finding.
type Severity string

const (
	// SeverityError marks definitions that cannot play as authored.
	SeverityError Severity = "error"
	// SeverityWarning marks rules the runtime will silently skip.
	SeverityWarning Severity = "warning"
)

// Issue is one lint finding.
type Issue struct {
	Severity Severity `json:"severity"`
	PageID   string   `json:"pageId,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.PageID == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] page %q: %s", i.Severity, i.PageID, i.Message)
}

// Report collects the findings of Lint, in page order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any finding is an error.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns nil when the report has no errors, or one error listing them.
func (r *Report) Err() error {
	var lines []string
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			lines = append(lines, i.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

func (r *Report) add(sev Severity, pageID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, PageID: pageID, Message: fmt.Sprintf(format, args...)})
}

// Lint checks a definition for authoring mistakes the runtime tolerates:
// dangling targets, duplicate ids, conditions on unknown elements and pages
// no navigation path reaches.
func Lint(f *domain.Funnel) *Report {
	r := &Report{}
	if len(f.Pages) == 0 {
		r.add(SeverityError, "", "funnel has no pages")
		return r
	}

	pageIDs := make(map[string]bool)
	elementIDs := make(map[string]string) // element id -> first page
	for _, p := range f.Pages {
		if pageIDs[p.ID] {
			r.add(SeverityError, p.ID, "duplicate page id; navigation always resolves to the first page with this id")
		}
		pageIDs[p.ID] = true

		for _, el := range p.AllElements() {
			if first, ok := elementIDs[el.ID]; ok {
				r.add(SeverityWarning, p.ID, "element id %q already used on page %q; both share one form value", el.ID, first)
				continue
			}
			elementIDs[el.ID] = p.ID
			if _, err := el.Content(); err != nil {
				r.add(SeverityWarning, p.ID, "%v", err)
			}
		}
	}

	for _, p := range f.Pages {
		for i, c := range p.Conditions {
			if !pageIDs[c.TargetPageID] {
				r.add(SeverityWarning, p.ID, "condition %d targets unknown page %q", i, c.TargetPageID)
			}
			if _, ok := elementIDs[c.ElementID]; !ok {
				r.add(SeverityWarning, p.ID, "condition %d reads unknown element %q", i, c.ElementID)
			}
		}
		for _, route := range p.ConditionalRouting.Routes() {
			if !pageIDs[route.TargetPageID] {
				r.add(SeverityWarning, p.ID, "route %q targets unknown page %q", route.Value, route.TargetPageID)
			}
		}
		if p.NextPageID != "" && !pageIDs[p.NextPageID] {
			r.add(SeverityWarning, p.ID, "nextPageId targets unknown page %q", p.NextPageID)
		}
	}

	reachable := Reachable(f)
	for i, p := range f.Pages {
		if !reachable[i] {
			r.add(SeverityWarning, p.ID, "page is unreachable")
		}
	}
	return r
}

// Successors returns the page indices navigation can move to from page i,
// without knowing the form values: every resolvable condition and route
// target, plus the explicit next page when it resolves, else the linear one.
func Successors(f *domain.Funnel, i int) []int {
	p := f.PageAt(i)
	if p == nil {
		return nil
	}

	var out []int
	seen := make(map[int]bool)
	add := func(idx int) {
		if idx >= 0 && !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}

	for _, c := range p.Conditions {
		add(f.IndexOf(c.TargetPageID))
	}
	for _, route := range p.ConditionalRouting.Routes() {
		add(f.IndexOf(route.TargetPageID))
	}
	if next := f.IndexOf(p.NextPageID); next >= 0 {
		add(next)
	} else if i+1 < len(f.Pages) {
		add(i + 1)
	}
	return out
}

// Reachable crawls navigation from the first page and reports which page
// indices some path reaches.
func Reachable(f *domain.Funnel) map[int]bool {
	visited := make(map[int]bool)
	if len(f.Pages) == 0 {
		return visited
	}

	queue := []int{0}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range Successors(f, current) {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}
