/*
Package funnel plays marketing funnels back to anonymous visitors.

A funnel is an ordered list of pages (welcome, question, contact, calendar,
thank-you). Playback is a deterministic state machine: the current page index
and the visitor's form values are the whole session state, and every action
resolves the next page through a layered precedence.

# Navigation

On advance, the first rule that yields a page present in the funnel wins:

 1. The page's conditions, in order. A condition compares one form field
    (equals, notEquals, contains, isEmpty) and names a target page.
 2. The page's routing map, in insertion order. A route matches when any
    recorded form value equals the route's value.
 3. The page's explicit nextPageId.
 4. The following page in order.

When none applies the session is at its end and advancing is a no-op.
Rules pointing at pages that do not exist are skipped, never fatal.

# Usage

	eng := funnel.New(funnel.WithSource(httpadapter.NewClient("https://api.example.com")))

	player, err := eng.Play(ctx, "3f0c...")
	if err != nil {
		log.Println(domain.VisitorMessage(err))
		return
	}

	player.UpdateFormValue("email", "ada@example.com")
	player.SubmitLead(ctx)

Analytics and leads are reported through a ports.Reporter on a detached
goroutine. Reporting never blocks or fails a transition.
*/
package funnel
