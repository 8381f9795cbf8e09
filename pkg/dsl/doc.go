/*
Package dsl builds funnel definitions in Go instead of JSON or YAML files.

It is handy for tests, generated funnels and anything that wants the
compiler to check page wiring.

Example usage:

	b := dsl.New("lead-magnet").Name("Lead magnet")

	b.Page("q1", domain.PageMultiChoice).
		Title("Pick a size").
		Choice("size", domain.ElementRadio, "Size", "small", "large").
		When("size", domain.OpEquals, "large", "contact").
		Button("Next")

	b.Page("info", domain.PageQuestion).
		Text("Small plans ship today.").
		Button("Continue")

	b.Page("contact", domain.PageContact).
		Field("email", domain.ElementEmail, "Email").
		Go("thanks").
		Button("Send")

	b.Page("thanks", domain.PageThankYou).
		Heading("Thanks!")

	f, err := b.Build()
*/
package dsl
