package domain

// Operator is the comparison applied by a NavigationCondition.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpContains  Operator = "contains"
	OpIsEmpty   Operator = "isEmpty"
)

// Valid reports whether op is one of the known operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpIsEmpty:
		return true
	}
	return false
}

// NavigationCondition jumps to TargetPageID when the value entered for
// ElementID satisfies Operator against Value. Conditions of a page are
// evaluated in order and the first match wins.
type NavigationCondition struct {
	ElementID    string   `json:"elementId" yaml:"elementId"`
	Operator     Operator `json:"operator" yaml:"operator"`
	Value        string   `json:"value,omitempty" yaml:"value,omitempty"`
	TargetPageID string   `json:"targetPageId" yaml:"targetPageId"`
}
