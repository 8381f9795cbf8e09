package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/muesli/termenv"
)

const defaultPrimary = "#818cf8"

// PrintBanner writes the program banner, tinted with the funnel's primary
// color when it has one.
func PrintBanner(w io.Writer, version string, theme domain.Theme) {
	out := termenv.NewOutput(w)
	primary := theme.PrimaryColor
	if !isHexColor(primary) {
		primary = defaultPrimary
	}
	c := out.Color(primary)

	lines := []string{
		"  ___                       _ ",
		" | __|  _ _ _  _ _  ___ _ _| |",
		" | _| || | ' \\| ' \\/ -_) '_| |",
		" |_| \\_,_|_||_|_||_\\___|_| |_|",
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l).Foreground(c))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

// PrintTitle writes a funnel's name as a bold heading in its primary color.
func PrintTitle(w io.Writer, f *domain.Funnel) {
	if f.Name == "" {
		return
	}
	out := termenv.NewOutput(w)
	style := out.String(f.Name).Bold()
	if isHexColor(f.Theme.PrimaryColor) {
		style = style.Foreground(out.Color(f.Theme.PrimaryColor))
	}
	fmt.Fprintln(w, style)
}
