package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ElementType is the closed set of content and input kinds.
type ElementType string

const (
	ElementHeading  ElementType = "heading"
	ElementText     ElementType = "text"
	ElementImage    ElementType = "image"
	ElementVideo    ElementType = "video"
	ElementInput    ElementType = "input"
	ElementEmail    ElementType = "email"
	ElementPhone    ElementType = "phone"
	ElementTextarea ElementType = "textarea"
	ElementSelect   ElementType = "select"
	ElementRadio    ElementType = "radio"
	ElementCheckbox ElementType = "checkbox"
	ElementButton   ElementType = "button"
	ElementCalendar ElementType = "calendar"
	ElementDivider  ElementType = "divider"
)

// Element is a content or input unit on a page. Only ID matters to
// navigation; Props is an opaque, type-specific payload for rendering.
type Element struct {
	ID    string         `json:"id" yaml:"id"`
	Type  ElementType    `json:"type" yaml:"type"`
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// IsInput reports whether the element collects a visitor value.
func (e Element) IsInput() bool {
	switch e.Type {
	case ElementInput, ElementEmail, ElementPhone, ElementTextarea,
		ElementSelect, ElementRadio, ElementCheckbox, ElementCalendar:
		return true
	}
	return false
}

// ElementContent is the decoded, type-specific view of an Element.
// The concrete type is one of the *Content structs in this file.
type ElementContent interface {
	elementContent()
}

// HeadingContent renders a title line.
type HeadingContent struct {
	Text  string `mapstructure:"text" json:"text,omitempty"`
	Level int    `mapstructure:"level" json:"level,omitempty"`
}

// TextContent renders a paragraph.
type TextContent struct {
	Text string `mapstructure:"text" json:"text,omitempty"`
}

// MediaContent renders an image or a video.
type MediaContent struct {
	URL     string `mapstructure:"url" json:"url,omitempty"`
	Alt     string `mapstructure:"alt" json:"alt,omitempty"`
	Caption string `mapstructure:"caption" json:"caption,omitempty"`
}

// FieldContent is a free-text input (input, email, phone, textarea).
type FieldContent struct {
	Label       string `mapstructure:"label" json:"label,omitempty"`
	Placeholder string `mapstructure:"placeholder" json:"placeholder,omitempty"`
	Required    bool   `mapstructure:"required" json:"required,omitempty"`
	Pattern     string `mapstructure:"pattern" json:"pattern,omitempty"`
	MaxLength   int    `mapstructure:"maxLength" json:"maxLength,omitempty"`
}

// ChoiceContent is a select, radio group or checkbox.
type ChoiceContent struct {
	Label    string   `mapstructure:"label" json:"label,omitempty"`
	Options  []string `mapstructure:"options" json:"options,omitempty"`
	Required bool     `mapstructure:"required" json:"required,omitempty"`
}

// ButtonContent is a call-to-action link or button.
type ButtonContent struct {
	Text string `mapstructure:"text" json:"text,omitempty"`
	URL  string `mapstructure:"url" json:"url,omitempty"`
}

// CalendarContent is a booking widget.
type CalendarContent struct {
	Label       string   `mapstructure:"label" json:"label,omitempty"`
	BookingURL  string   `mapstructure:"bookingUrl" json:"bookingUrl,omitempty"`
	TimeSlots   []string `mapstructure:"timeSlots" json:"timeSlots,omitempty"`
	DurationMin int      `mapstructure:"durationMinutes" json:"durationMinutes,omitempty"`
}

// DividerContent is a visual separator.
type DividerContent struct{}

func (*HeadingContent) elementContent()  {}
func (*TextContent) elementContent()     {}
func (*MediaContent) elementContent()    {}
func (*FieldContent) elementContent()    {}
func (*ChoiceContent) elementContent()   {}
func (*ButtonContent) elementContent()   {}
func (*CalendarContent) elementContent() {}
func (*DividerContent) elementContent()  {}

// Content decodes Props into the variant matching the element type.
func (e Element) Content() (ElementContent, error) {
	var target ElementContent
	switch e.Type {
	case ElementHeading:
		target = &HeadingContent{Level: 1}
	case ElementText:
		target = &TextContent{}
	case ElementImage, ElementVideo:
		target = &MediaContent{}
	case ElementInput, ElementEmail, ElementPhone, ElementTextarea:
		target = &FieldContent{}
	case ElementSelect, ElementRadio, ElementCheckbox:
		target = &ChoiceContent{}
	case ElementButton:
		target = &ButtonContent{}
	case ElementCalendar:
		target = &CalendarContent{}
	case ElementDivider:
		return &DividerContent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (element %s)", ErrUnknownElementType, e.Type, e.ID)
	}

	if len(e.Props) == 0 {
		return target, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder for element %s: %w", e.ID, err)
	}
	if err := decoder.Decode(e.Props); err != nil {
		return nil, fmt.Errorf("invalid props for element %s: %w", e.ID, err)
	}
	return target, nil
}
