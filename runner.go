package funnel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/render"
)

// Runner plays a session interactively over line-oriented IO.
// This allows for easy testing and integration with different frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer

	// Headless suppresses prompts and hints, for scripted input.
	Headless bool

	// MaxValueSize bounds each answer. Zero means domain.DefaultMaxValueSize.
	MaxValueSize int
}

// ContentRenderer transforms page Markdown before it is written out.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Run executes the playback loop until the funnel ends, the visitor quits or
// the input is exhausted.
//
// On every page the runner asks for each input field (an empty line keeps the
// current value), then reads a command: an empty line triggers the page
// action, "b" goes back, "q" quits.
func (r *Runner) Run(ctx context.Context, p *Player) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	in := bufio.NewReader(r.Input)
	out := r.Output

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		view, err := p.View()
		if errors.Is(err, render.ErrNoPage) {
			fmt.Fprintln(out, "This funnel has no pages.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		r.print(render.Markdown(view))

		for _, input := range view.Inputs() {
			value, err := r.ask(in, input)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			if value == "" {
				continue
			}
			clean, err := domain.SanitizeValue(value, r.MaxValueSize)
			if err != nil {
				fmt.Fprintf(out, "Ignoring answer for %s: %v\n", input.Label(), err)
				continue
			}
			p.UpdateFormValue(input.ElementID, clean)
		}

		// Answers given above may open a route the rendered view did not see.
		if p.Next().Terminal && view.Action != render.ActionSubmit {
			if !r.Headless {
				fmt.Fprintln(out, "End of funnel.")
			}
			return nil
		}

		if !r.Headless {
			fmt.Fprintf(out, "[enter] %s  [b] back  [q] quit\n", actionHint(view))
		}
		cmd, err := r.readLine(in, "> ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}

		switch strings.ToLower(cmd) {
		case "q", "quit", "exit":
			if !r.Headless {
				fmt.Fprintln(out, "Bye!")
			}
			return nil
		case "b", "back":
			p.GoBack(ctx)
		default:
			var moved bool
			if view.Action == render.ActionSubmit {
				moved = p.SubmitLead(ctx)
			} else {
				moved = p.Advance(ctx)
			}
			if !moved {
				if !r.Headless {
					fmt.Fprintln(out, "End of funnel.")
				}
				return nil
			}
		}
	}
}

func (r *Runner) print(markdown string) {
	output := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// ask prompts for one input. Choice answers may be given by option number.
func (r *Runner) ask(in *bufio.Reader, b render.Block) (string, error) {
	options := b.Options()
	if !r.Headless {
		for i, opt := range options {
			fmt.Fprintf(r.Output, "  %d) %s\n", i+1, opt)
		}
	}

	prompt := b.Label()
	if b.Value != "" {
		prompt += " [" + b.Value + "]"
	}
	answer, err := r.readLine(in, prompt+": ")
	if err != nil {
		return "", err
	}

	if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return answer, nil
}

func (r *Runner) readLine(in *bufio.Reader, prompt string) (string, error) {
	if !r.Headless {
		fmt.Fprint(r.Output, prompt)
	}
	text, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func actionHint(v *render.View) string {
	switch v.Action {
	case render.ActionSubmit:
		return v.ButtonText + " (submit)"
	case render.ActionAdvance:
		return v.ButtonText
	}
	return "continue"
}
