package dsl

import (
	"fmt"

	"github.com/aretw0/funnel/pkg/adapters/memory"
	"github.com/aretw0/funnel/pkg/domain"
)

// Builder assembles a funnel page by page. Pages keep the order in which
// they were first added, which is the linear fallthrough order.
type Builder struct {
	funnel domain.Funnel
	pages  []*PageBuilder
	index  map[string]*PageBuilder
}

// New starts a funnel with the given public uuid.
func New(uuid string) *Builder {
	return &Builder{
		funnel: domain.Funnel{UUID: uuid},
		index:  make(map[string]*PageBuilder),
	}
}

// ID sets the storage id used for lead submissions.
func (b *Builder) ID(id string) *Builder {
	b.funnel.ID = id
	return b
}

// Name sets the display name.
func (b *Builder) Name(name string) *Builder {
	b.funnel.Name = name
	return b
}

// Theme sets the presentation theme.
func (b *Builder) Theme(theme domain.Theme) *Builder {
	b.funnel.Theme = theme
	return b
}

// Published marks the funnel as publicly visible.
func (b *Builder) Published() *Builder {
	b.funnel.Published = true
	return b
}

// Page adds a page, or returns the existing builder when id was already
// added. The type is only set on first use.
func (b *Builder) Page(id string, pageType domain.PageType) *PageBuilder {
	if pb, ok := b.index[id]; ok {
		return pb
	}
	pb := &PageBuilder{page: domain.Page{ID: id, Type: pageType}}
	b.pages = append(b.pages, pb)
	b.index[id] = pb
	return pb
}

// Build returns the funnel after shape validation.
func (b *Builder) Build() (*domain.Funnel, error) {
	f := b.funnel
	f.Pages = make([]domain.Page, 0, len(b.pages))
	for _, pb := range b.pages {
		f.Pages = append(f.Pages, pb.page)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("build funnel %s: %w", f.UUID, err)
	}
	return &f, nil
}

// Source builds the funnel and serves it from an in-memory store.
func (b *Builder) Source() (*memory.FunnelStore, error) {
	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.NewFromFunnels(f)
}
