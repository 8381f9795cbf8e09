package funnel_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/pkg/adapters/memory"
	"github.com/aretw0/funnel/pkg/domain"
)

// ExampleEngine_Play demonstrates playing a funnel held in memory.
// A routing map sends visitors who pick "yes" straight to the contact page.
func ExampleEngine_Play() {
	source, err := memory.NewFromFunnels(&domain.Funnel{
		UUID: "demo",
		Pages: []domain.Page{
			{
				ID: "ask",
				ConditionalRouting: domain.NewRoutingMap(
					domain.Route{Value: "yes", TargetPageID: "contact"},
				),
			},
			{ID: "info"},
			{ID: "contact", Type: domain.PageContact},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	eng := funnel.New(funnel.WithSource(source))
	ctx := context.Background()

	player, err := eng.Play(ctx, "demo")
	if err != nil {
		log.Fatal(domain.VisitorMessage(err))
	}

	player.UpdateFormValue("interested", "yes")
	player.Advance(ctx)
	fmt.Println(player.CurrentPage().ID)

	player.GoBack(ctx)
	fmt.Println(player.CurrentPage().ID)

	// Output:
	// contact
	// info
}
