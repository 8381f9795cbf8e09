package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/charmbracelet/glamour/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleFor(t *testing.T) {
	tests := []struct {
		name        string
		theme       domain.Theme
		interactive bool
		want        string
	}{
		{"no terminal", domain.Theme{BackgroundColor: "#ffffff"}, false, styles.NoTTYStyle},
		{"light background", domain.Theme{BackgroundColor: "#ffffff"}, true, styles.LightStyle},
		{"dark background", domain.Theme{BackgroundColor: "#101010"}, true, styles.DarkStyle},
		{"no background", domain.Theme{}, true, styles.AutoStyle},
		{"css name", domain.Theme{BackgroundColor: "white"}, true, styles.AutoStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StyleFor(tt.theme, tt.interactive))
		})
	}
}

func TestNewRenderer_Plain(t *testing.T) {
	render, err := NewRenderer(styles.NoTTYStyle, 60)
	require.NoError(t, err)

	out, err := render("# Hello\n\nWorld")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "World")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3", domain.Theme{PrimaryColor: "#ff0000"})
	assert.Contains(t, buf.String(), "v1.2.3")

	buf.Reset()
	PrintTitle(&buf, &domain.Funnel{Name: "Quiz"})
	assert.Contains(t, buf.String(), "Quiz")

	buf.Reset()
	PrintTitle(&buf, &domain.Funnel{})
	assert.Empty(t, buf.String())
}
