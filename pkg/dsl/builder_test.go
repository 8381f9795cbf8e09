package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/funnel"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demo() *dsl.Builder {
	b := dsl.New("demo").ID("7").Name("Demo").Published()

	b.Page("q1", domain.PageMultiChoice).
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
	return b
}

func TestBuilder_Build(t *testing.T) {
	f, err := demo().Build()
	require.NoError(t, err)

	assert.Equal(t, "7", f.ID)
	assert.True(t, f.Published)
	require.Len(t, f.Pages, 4)
	assert.Equal(t, []string{"q1", "info", "contact", "thanks"},
		[]string{f.Pages[0].ID, f.Pages[1].ID, f.Pages[2].ID, f.Pages[3].ID})

	cond := f.Pages[0].Conditions
	require.Len(t, cond, 1)
	assert.Equal(t, "contact", cond[0].TargetPageID)

	content, err := f.Pages[0].Elements[0].Content()
	require.NoError(t, err)
	assert.Equal(t, []string{"small", "large"}, content.(*domain.ChoiceContent).Options)

	heading, err := f.Pages[3].Elements[0].Content()
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", heading.(*domain.HeadingContent).Text)
	assert.Equal(t, "thanks-heading-0", f.Pages[3].Elements[0].ID)
}

func TestBuilder_PageIsReused(t *testing.T) {
	b := dsl.New("f")
	b.Page("a", domain.PageQuestion).Button("Go")
	b.Page("a", domain.PageThankYou).Route("x", "b").Route("y", "a")
	b.Page("b", domain.PageThankYou)

	f, err := b.Build()
	require.NoError(t, err)
	require.Len(t, f.Pages, 2)
	assert.Equal(t, domain.PageQuestion, f.Pages[0].Type)
	assert.Equal(t, "Go", f.Pages[0].ButtonText)
	assert.Equal(t, []domain.Route{{Value: "x", TargetPageID: "b"}, {Value: "y", TargetPageID: "a"}},
		f.Pages[0].ConditionalRouting.Routes())
}

func TestBuilder_InvalidShape(t *testing.T) {
	b := dsl.New("bad")
	b.Page("a", domain.PageQuestion).When("", domain.Operator("between"), "", "")

	_, err := b.Build()
	var shape *domain.ShapeErrors
	require.ErrorAs(t, err, &shape)
	assert.Len(t, shape.Errors, 3)
}

func TestBuilder_SourcePlays(t *testing.T) {
	ctx := context.Background()
	source, err := demo().Source()
	require.NoError(t, err)

	engine := funnel.New(funnel.WithSource(source))
	defer engine.Wait()

	p, err := engine.Play(ctx, "demo")
	require.NoError(t, err)

	p.UpdateFormValue("size", "large")
	assert.Equal(t, domain.TierCondition, p.Next().Tier)
	require.True(t, p.Advance(ctx))
	assert.Equal(t, "contact", p.CurrentPage().ID)
}
