package dsl

import (
	"strconv"

	"github.com/aretw0/funnel/pkg/domain"
)

// PageBuilder configures one page.
type PageBuilder struct {
	page domain.Page
}

// Title sets the page title.
func (p *PageBuilder) Title(title string) *PageBuilder {
	p.page.Title = title
	return p
}

// Button sets the advance control label. Pages without one offer no
// advance action.
func (p *PageBuilder) Button(text string) *PageBuilder {
	p.page.ButtonText = text
	return p
}

// Element appends a raw element.
func (p *PageBuilder) Element(id string, elementType domain.ElementType, props map[string]any) *PageBuilder {
	p.page.Elements = append(p.page.Elements, domain.Element{ID: id, Type: elementType, Props: props})
	return p
}

// Heading appends a level 1 heading. Its id is derived from the page.
func (p *PageBuilder) Heading(text string) *PageBuilder {
	return p.Element(p.autoID("heading"), domain.ElementHeading, map[string]any{"text": text})
}

// Text appends a paragraph.
func (p *PageBuilder) Text(text string) *PageBuilder {
	return p.Element(p.autoID("text"), domain.ElementText, map[string]any{"text": text})
}

// Field appends a free-text input.
func (p *PageBuilder) Field(id string, elementType domain.ElementType, label string) *PageBuilder {
	return p.Element(id, elementType, map[string]any{"label": label})
}

// Choice appends a select, radio group or checkbox.
func (p *PageBuilder) Choice(id string, elementType domain.ElementType, label string, options ...string) *PageBuilder {
	return p.Element(id, elementType, map[string]any{"label": label, "options": options})
}

// Go sets the explicit next page.
func (p *PageBuilder) Go(pageID string) *PageBuilder {
	p.page.NextPageID = pageID
	return p
}

// When appends a navigation condition. Conditions are tried in the order
// they were added.
func (p *PageBuilder) When(elementID string, op domain.Operator, value, target string) *PageBuilder {
	p.page.Conditions = append(p.page.Conditions, domain.NavigationCondition{
		ElementID:    elementID,
		Operator:     op,
		Value:        value,
		TargetPageID: target,
	})
	return p
}

// Route maps a form value to a target page.
func (p *PageBuilder) Route(value, target string) *PageBuilder {
	if p.page.ConditionalRouting == nil {
		p.page.ConditionalRouting = domain.NewRoutingMap()
	}
	p.page.ConditionalRouting.Set(value, target)
	return p
}

func (p *PageBuilder) autoID(kind string) string {
	return p.page.ID + "-" + kind + "-" + strconv.Itoa(len(p.page.Elements))
}
