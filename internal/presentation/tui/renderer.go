package tui

import (
	"os"
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// StyleFor picks the glamour style for a funnel theme. Without a terminal the
// plain style is used; a theme background decides between light and dark,
// otherwise the terminal background is detected.
func StyleFor(theme domain.Theme, interactive bool) string {
	if !interactive {
		return styles.NoTTYStyle
	}
	bg := strings.TrimSpace(theme.BackgroundColor)
	if !isHexColor(bg) {
		return styles.AutoStyle
	}
	l, _, _ := termenv.ConvertToRGB(termenv.RGBColor(bg)).Lab()
	if l > 0.6 {
		return styles.LightStyle
	}
	return styles.DarkStyle
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer(style string, wordWrap int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if style == styles.AutoStyle {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
