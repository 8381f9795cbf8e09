package render

import (
	"errors"

	"github.com/aretw0/funnel/internal/runtime"
	"github.com/aretw0/funnel/pkg/domain"
)

// ErrNoPage is returned when the state points outside the funnel.
var ErrNoPage = errors.New("no page at current index")

// Action is the primary control offered on a page.
type Action string

const (
	// ActionNone means the page offers no advance control (no button text).
	ActionNone Action = ""
	// ActionAdvance moves to the next page.
	ActionAdvance Action = "advance"
	// ActionSubmit submits the collected values as a lead, then advances.
	ActionSubmit Action = "submit"
)

// Block is one rendered element.
type Block struct {
	ElementID string                `json:"elementId"`
	Type      domain.ElementType    `json:"type"`
	Content   domain.ElementContent `json:"content,omitempty"`
	Input     bool                  `json:"input,omitempty"`
	Value     string                `json:"value,omitempty"`

	// Invalid is set when Props could not be decoded. The block is kept so
	// the element id stays addressable.
	Invalid bool `json:"invalid,omitempty"`
}

// View is the render tree of the current page.
type View struct {
	FunnelName string          `json:"funnelName,omitempty"`
	PageID     string          `json:"pageId"`
	PageType   domain.PageType `json:"pageType"`
	Title      string          `json:"title,omitempty"`
	Index      int             `json:"index"`
	Total      int             `json:"total"`
	Blocks     []Block         `json:"blocks"`
	Action     Action          `json:"action,omitempty"`
	ButtonText string          `json:"buttonText,omitempty"`
	CanGoBack  bool            `json:"canGoBack"`
	Terminal   bool            `json:"terminal"`
	Theme      domain.Theme    `json:"theme"`
}

// Build renders the page the state currently points at.
func Build(funnel *domain.Funnel, state *domain.State) (*View, error) {
	page := funnel.PageAt(state.CurrentPageIndex)
	if page == nil {
		return nil, ErrNoPage
	}

	v := &View{
		FunnelName: funnel.Name,
		PageID:     page.ID,
		PageType:   page.Type,
		Title:      page.Title,
		Index:      state.CurrentPageIndex,
		Total:      len(funnel.Pages),
		ButtonText: page.ButtonText,
		CanGoBack:  state.CurrentPageIndex > 0,
		Terminal:   runtime.ResolveNext(funnel, state.CurrentPageIndex, state.FormValues).Terminal,
		Theme:      funnel.Theme,
	}

	switch {
	case page.ButtonText == "":
		v.Action = ActionNone
	case page.CapturesLead():
		v.Action = ActionSubmit
	default:
		v.Action = ActionAdvance
	}

	for _, el := range page.AllElements() {
		b := Block{ElementID: el.ID, Type: el.Type, Input: el.IsInput()}
		content, err := el.Content()
		if err != nil {
			b.Invalid = true
		} else {
			b.Content = content
		}
		if b.Input {
			b.Value = state.FormValues[el.ID]
		}
		v.Blocks = append(v.Blocks, b)
	}
	return v, nil
}

// Inputs returns the blocks that collect a value, in page order.
func (v *View) Inputs() []Block {
	var out []Block
	for _, b := range v.Blocks {
		if b.Input {
			out = append(out, b)
		}
	}
	return out
}

// Label returns the visitor-facing label of an input block, falling back to
// the element id.
func (b Block) Label() string {
	switch c := b.Content.(type) {
	case *domain.FieldContent:
		return firstNonEmpty(c.Label, c.Placeholder, b.ElementID)
	case *domain.ChoiceContent:
		return firstNonEmpty(c.Label, b.ElementID)
	case *domain.CalendarContent:
		return firstNonEmpty(c.Label, b.ElementID)
	}
	return b.ElementID
}

// Options returns the selectable values of a choice or calendar block.
func (b Block) Options() []string {
	switch c := b.Content.(type) {
	case *domain.ChoiceContent:
		return c.Options
	case *domain.CalendarContent:
		return c.TimeSlots
	}
	return nil
}
