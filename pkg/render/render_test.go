package render_test

import (
	"testing"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFunnel() *domain.Funnel {
	return &domain.Funnel{
		UUID: "u1",
		Name: "Sample",
		Pages: []domain.Page{
			{
				ID:         "welcome",
				Type:       domain.PageWelcome,
				Title:      "Hello",
				ButtonText: "Start",
				Elements: []domain.Element{
					{ID: "h", Type: domain.ElementHeading, Props: map[string]any{"text": "Welcome aboard", "level": 2}},
					{ID: "t", Type: domain.ElementText, Props: map[string]any{"text": "Two quick questions."}},
				},
			},
			{
				ID:         "contact",
				Type:       domain.PageContact,
				ButtonText: "Send",
				Sections: []domain.Section{{ID: "s", Columns: []domain.Column{{ID: "c", Elements: []domain.Element{
					{ID: "email", Type: domain.ElementEmail, Props: map[string]any{"label": "Email", "required": true}},
					{ID: "plan", Type: domain.ElementRadio, Props: map[string]any{"label": "Plan", "options": []any{"free", "pro"}}},
				}}}}},
			},
			{ID: "thanks", Type: domain.PageThankYou, Elements: []domain.Element{
				{ID: "bad", Type: "hologram"},
				{ID: "d", Type: domain.ElementDivider},
			}},
		},
	}
}

func TestBuild_Actions(t *testing.T) {
	f := sampleFunnel()
	tests := []struct {
		index     int
		action    render.Action
		canGoBack bool
		terminal  bool
	}{
		{0, render.ActionAdvance, false, false},
		{1, render.ActionSubmit, true, false},
		{2, render.ActionNone, true, true},
	}
	for _, tt := range tests {
		state := domain.NewState("s", "u1")
		state.CurrentPageIndex = tt.index

		v, err := render.Build(f, state)
		require.NoError(t, err)
		assert.Equal(t, tt.action, v.Action, "page %d", tt.index)
		assert.Equal(t, tt.canGoBack, v.CanGoBack, "page %d", tt.index)
		assert.Equal(t, tt.terminal, v.Terminal, "page %d", tt.index)
		assert.Equal(t, 3, v.Total)
	}
}

func TestBuild_InputsCarryValues(t *testing.T) {
	state := domain.NewState("s", "u1")
	state.CurrentPageIndex = 1
	state.FormValues["email"] = "a@b.c"
	state.FormValues["plan"] = "pro"

	v, err := render.Build(sampleFunnel(), state)
	require.NoError(t, err)

	inputs := v.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "a@b.c", inputs[0].Value)
	choice, ok := inputs[1].Content.(*domain.ChoiceContent)
	require.True(t, ok)
	assert.Equal(t, []string{"free", "pro"}, choice.Options)

	md := render.Markdown(v)
	assert.Contains(t, md, "**Email** *: a@b.c")
	assert.Contains(t, md, "- [x] pro")
	assert.Contains(t, md, "- [ ] free")
	assert.Contains(t, md, "**[ Send ]**")
}

func TestBuild_UnknownElementIsKeptButInvalid(t *testing.T) {
	state := domain.NewState("s", "u1")
	state.CurrentPageIndex = 2

	v, err := render.Build(sampleFunnel(), state)
	require.NoError(t, err)
	require.Len(t, v.Blocks, 2)
	assert.True(t, v.Blocks[0].Invalid)
	assert.Equal(t, "bad", v.Blocks[0].ElementID)

	md := render.Markdown(v)
	assert.Contains(t, md, "---")
	assert.Contains(t, md, "_Page 3 of 3_")
}

func TestMarkdown_Welcome(t *testing.T) {
	v, err := render.Build(sampleFunnel(), domain.NewState("s", "u1"))
	require.NoError(t, err)

	md := render.Markdown(v)
	assert.Contains(t, md, "# Hello\n")
	assert.Contains(t, md, "## Welcome aboard\n")
	assert.Contains(t, md, "Two quick questions.")
}

func TestBuild_OutOfRange(t *testing.T) {
	state := domain.NewState("s", "u1")
	state.CurrentPageIndex = 9
	_, err := render.Build(sampleFunnel(), state)
	assert.ErrorIs(t, err, render.ErrNoPage)
}
