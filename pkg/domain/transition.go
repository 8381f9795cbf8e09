package domain

// Tier identifies which navigation rule produced a NextResult.
type Tier string

const (
	TierCondition Tier = "condition"
	TierRouting   Tier = "routing"
	TierNext      Tier = "next"
	TierLinear    Tier = "linear"
	TierTerminal  Tier = "terminal"
)

// NextResult is the outcome of resolving navigation from a page: either a
// concrete target index or the terminal marker.
type NextResult struct {
	Index    int  `json:"index"`
	Terminal bool `json:"terminal"`
	Tier     Tier `json:"tier"`
}

// Target builds a non-terminal result.
func Target(index int, tier Tier) NextResult {
	return NextResult{Index: index, Tier: tier}
}

// Terminal builds the end-of-funnel result.
func Terminal() NextResult {
	return NextResult{Index: -1, Terminal: true, Tier: TierTerminal}
}
