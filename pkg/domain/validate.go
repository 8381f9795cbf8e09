package domain

import (
	"fmt"
	"strings"
)

// ShapeError represents a single malformed field of a funnel definition.
type ShapeError struct {
	Path   string // e.g. pages[2].conditions[0].operator
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ShapeErrors aggregates every shape violation found in a definition.
type ShapeErrors struct {
	Errors []error
}

func (e *ShapeErrors) Error() string {
	if len(e.Errors) == 1 {
		return "invalid funnel: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid funnel: %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate checks the definition shape at the boundary. It does not check
// that navigation targets exist; dangling targets are tolerated at runtime.
func (f *Funnel) Validate() error {
	var errs []error
	add := func(path, reason string) {
		errs = append(errs, &ShapeError{Path: path, Reason: reason})
	}

	for i, p := range f.Pages {
		base := fmt.Sprintf("pages[%d]", i)
		if p.ID == "" {
			add(base+".id", "is required")
		}
		for j, c := range p.Conditions {
			cpath := fmt.Sprintf("%s.conditions[%d]", base, j)
			if c.ElementID == "" {
				add(cpath+".elementId", "is required")
			}
			if !c.Operator.Valid() {
				add(cpath+".operator", fmt.Sprintf("unknown operator %q", c.Operator))
			}
			if c.TargetPageID == "" {
				add(cpath+".targetPageId", "is required")
			}
		}
		for _, r := range p.ConditionalRouting.Routes() {
			if r.TargetPageID == "" {
				add(fmt.Sprintf("%s.conditionalRouting[%q]", base, r.Value), "target is required")
			}
		}
		for j, e := range p.AllElements() {
			if e.ID == "" {
				add(fmt.Sprintf("%s.elements[%d].id", base, j), "is required")
			}
		}
	}

	if len(errs) > 0 {
		return &ShapeErrors{Errors: errs}
	}
	return nil
}
