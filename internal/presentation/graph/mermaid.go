package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedPages []string
	CurrentPage  string
}

// OverlayFromState marks the pages of a session's history as visited and its
// current page as current.
func OverlayFromState(f *domain.Funnel, s *domain.State) *GraphOverlay {
	if s == nil {
		return nil
	}
	o := &GraphOverlay{}
	for _, idx := range s.History {
		if p := f.PageAt(idx); p != nil {
			o.VisitedPages = append(o.VisitedPages, p.ID)
		}
	}
	if p := f.PageAt(s.CurrentPageIndex); p != nil {
		o.CurrentPage = p.ID
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the funnel's navigation.
// Page shapes follow their role:
// - First page: ((Circle))
// - Lead capture: [[Subroutine]]
// - Question pages: [/Parallelogram/]
// - Thank-you pages: ([Stadium])
// - Default: [Rectangle]
// Conditions and routes are labeled edges, an explicit next page is a solid
// edge and linear fallthrough is dotted. Targets that do not resolve are
// drawn to a placeholder node so authors can spot them.
func GenerateMermaid(f *domain.Funnel, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	missing := make(map[string]bool)
	edge := func(from, to, arrow string) {
		if f.IndexOf(to) < 0 {
			missing[to] = true
			to = "missing:" + to
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from), arrow, sanitizeMermaidID(to))
	}

	for i, page := range f.Pages {
		safeID := sanitizeMermaidID(page.ID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case page.CapturesLead():
			opener, closer = "[[", "]]"
		case page.Type == domain.PageQuestion || page.Type == domain.PageMultiChoice:
			opener, closer = "[/", "/]"
		case page.Type == domain.PageThankYou:
			opener, closer = "([", "])"
		}

		label := page.ID
		if page.Title != "" {
			label = fmt.Sprintf("%s <br/> %s", page.ID, escapeLabel(page.Title))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, c := range page.Conditions {
			cond := fmt.Sprintf("%s %s %s", c.ElementID, c.Operator, c.Value)
			if c.Operator == domain.OpIsEmpty {
				cond = fmt.Sprintf("%s %s", c.ElementID, c.Operator)
			}
			edge(page.ID, c.TargetPageID, fmt.Sprintf("-- \"%s\" -->", escapeLabel(cond)))
		}
		for _, r := range page.ConditionalRouting.Routes() {
			edge(page.ID, r.TargetPageID, fmt.Sprintf("-- \"= %s\" -->", escapeLabel(r.Value)))
		}
		switch {
		case page.NextPageID != "" && f.IndexOf(page.NextPageID) >= 0:
			edge(page.ID, page.NextPageID, "-->")
		case page.NextPageID != "":
			edge(page.ID, page.NextPageID, "-- \"next\" -->")
			fallthrough
		default:
			if i+1 < len(f.Pages) {
				edge(page.ID, f.Pages[i+1].ID, "-.->")
			}
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    %% Dangling targets\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, id := range slices.Sorted(maps.Keys(missing)) {
			safe := sanitizeMermaidID("missing:" + id)
			fmt.Fprintf(&sb, "    %s{{\"%s ?\"}}\n", safe, escapeLabel(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", safe)
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedPages {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentPage != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentPage))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "__", " ", "_")
	return r.Replace(id)
}
