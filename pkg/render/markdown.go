package render

import (
	"fmt"
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
)

// Markdown renders the view as a Markdown document. Input blocks are shown
// with their label and current value; invalid blocks are skipped.
func Markdown(v *View) string {
	var sb strings.Builder

	if v.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", v.Title)
	}

	for _, b := range v.Blocks {
		if b.Invalid {
			continue
		}
		writeBlock(&sb, b)
	}

	switch v.Action {
	case ActionSubmit, ActionAdvance:
		fmt.Fprintf(&sb, "**[ %s ]**\n\n", v.ButtonText)
	}

	fmt.Fprintf(&sb, "_Page %d of %d_\n", v.Index+1, v.Total)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b Block) {
	switch c := b.Content.(type) {
	case *domain.HeadingContent:
		level := c.Level
		if level < 1 || level > 6 {
			level = 2
		}
		fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), c.Text)
	case *domain.TextContent:
		fmt.Fprintf(sb, "%s\n\n", c.Text)
	case *domain.MediaContent:
		if b.Type == domain.ElementVideo {
			fmt.Fprintf(sb, "[▶ %s](%s)\n\n", firstNonEmpty(c.Caption, c.Alt, "video"), c.URL)
		} else {
			fmt.Fprintf(sb, "![%s](%s)\n\n", c.Alt, c.URL)
		}
		if c.Caption != "" && b.Type != domain.ElementVideo {
			fmt.Fprintf(sb, "_%s_\n\n", c.Caption)
		}
	case *domain.FieldContent:
		label := firstNonEmpty(c.Label, c.Placeholder, b.ElementID)
		fmt.Fprintf(sb, "**%s**%s: %s\n\n", label, required(c.Required), valueOrBlank(b.Value))
	case *domain.ChoiceContent:
		fmt.Fprintf(sb, "**%s**%s\n\n", firstNonEmpty(c.Label, b.ElementID), required(c.Required))
		for _, opt := range c.Options {
			mark := " "
			if opt == b.Value {
				mark = "x"
			}
			fmt.Fprintf(sb, "- [%s] %s\n", mark, opt)
		}
		sb.WriteString("\n")
	case *domain.ButtonContent:
		if c.URL != "" {
			fmt.Fprintf(sb, "[%s](%s)\n\n", c.Text, c.URL)
		} else {
			fmt.Fprintf(sb, "**[ %s ]**\n\n", c.Text)
		}
	case *domain.CalendarContent:
		fmt.Fprintf(sb, "**%s**: %s\n\n", firstNonEmpty(c.Label, "Pick a time"), valueOrBlank(b.Value))
		for _, slot := range c.TimeSlots {
			fmt.Fprintf(sb, "- %s\n", slot)
		}
		if len(c.TimeSlots) > 0 {
			sb.WriteString("\n")
		}
	case *domain.DividerContent:
		sb.WriteString("---\n\n")
	}
}

func required(r bool) string {
	if r {
		return " *"
	}
	return ""
}

func valueOrBlank(v string) string {
	if v == "" {
		return "_____"
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
