package runtime

import (
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
)

// ResolveNext computes where the visitor goes when leaving the page at
// current. It is a pure function of its inputs.
//
// Precedence, first applicable tier wins:
//  1. Conditions, in declared order (first match).
//  2. ConditionalRouting, in insertion order, matched against every entered value.
//  3. NextPageID.
//  4. The following page, or terminal on the last page.
//
// A target id that does not resolve to a page never stops resolution; the
// rule is treated as non-matching and evaluation continues.
func ResolveNext(funnel *domain.Funnel, current int, values map[string]string) domain.NextResult {
	page := funnel.PageAt(current)
	if page == nil {
		return domain.Terminal()
	}

	// Priority 1: Conditions
	for _, c := range page.Conditions {
		if !EvaluateCondition(c, values) {
			continue
		}
		if idx := funnel.IndexOf(c.TargetPageID); idx >= 0 {
			return domain.Target(idx, domain.TierCondition)
		}
	}

	// Priority 2: Routing map (any field)
	for _, route := range page.ConditionalRouting.Routes() {
		if !anyValueEquals(values, route.Value) {
			continue
		}
		if idx := funnel.IndexOf(route.TargetPageID); idx >= 0 {
			return domain.Target(idx, domain.TierRouting)
		}
	}

	// Priority 3: Explicit next
	if page.NextPageID != "" {
		if idx := funnel.IndexOf(page.NextPageID); idx >= 0 {
			return domain.Target(idx, domain.TierNext)
		}
	}

	// Priority 4: Linear fallthrough
	if current+1 < len(funnel.Pages) {
		return domain.Target(current+1, domain.TierLinear)
	}
	return domain.Terminal()
}

// EvaluateCondition tests a single condition against the entered values.
// A field with no recorded value only matches isEmpty.
func EvaluateCondition(c domain.NavigationCondition, values map[string]string) bool {
	value, recorded := values[c.ElementID]

	if c.Operator == domain.OpIsEmpty {
		return !recorded || strings.TrimSpace(value) == ""
	}
	if !recorded {
		return false
	}

	switch c.Operator {
	case domain.OpEquals:
		return value == c.Value
	case domain.OpNotEquals:
		return value != c.Value
	case domain.OpContains:
		return strings.Contains(value, c.Value)
	default:
		return false
	}
}

func anyValueEquals(values map[string]string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
