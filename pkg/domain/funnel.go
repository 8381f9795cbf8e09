package domain

// PageType is the semantic role of a page. It drives presentation only and is
// never consulted by navigation.
type PageType string

const (
	PageWelcome     PageType = "welcome"
	PageQuestion    PageType = "question"
	PageMultiChoice PageType = "multiChoice"
	PageContact     PageType = "contact"
	PageCalendar    PageType = "calendar"
	PageThankYou    PageType = "thankyou"
)

// Funnel is a complete funnel definition.
type Funnel struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	UUID  string `json:"uuid" yaml:"uuid"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Pages []Page `json:"pages" yaml:"pages"`
	Theme Theme  `json:"theme" yaml:"theme"`

	// Published gates public visibility in the reference storage service.
	// The playback engine ignores it.
	Published bool `json:"published,omitempty" yaml:"published,omitempty"`
}

// Theme holds presentation parameters passed through to rendering.
type Theme struct {
	PrimaryColor    string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
}

// Page is one step of a funnel.
type Page struct {
	ID       string    `json:"id" yaml:"id"`
	Type     PageType  `json:"type" yaml:"type"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Navigation directives, in increasing precedence: NextPageID,
	// ConditionalRouting, Conditions.
	NextPageID         string                `json:"nextPageId,omitempty" yaml:"nextPageId,omitempty"`
	ConditionalRouting *RoutingMap           `json:"conditionalRouting,omitempty" yaml:"conditionalRouting,omitempty"`
	Conditions         []NavigationCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// ButtonText labels the advance/submit control. A page without it offers
	// no advance action to the visitor.
	ButtonText string `json:"buttonText,omitempty" yaml:"buttonText,omitempty"`
}

// Section groups elements into columns for rendering.
type Section struct {
	ID      string   `json:"id" yaml:"id"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column is a vertical stack of elements inside a Section.
type Column struct {
	ID       string    `json:"id" yaml:"id"`
	Width    string    `json:"width,omitempty" yaml:"width,omitempty"`
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// CapturesLead reports whether the page collects contact data, which turns
// its button into a submit action.
func (p *Page) CapturesLead() bool {
	return p.Type == PageContact || p.Type == PageCalendar
}

// AllElements returns the page elements followed by every element nested in
// its sections, in document order.
func (p *Page) AllElements() []Element {
	all := make([]Element, 0, len(p.Elements))
	all = append(all, p.Elements...)
	for _, s := range p.Sections {
		for _, c := range s.Columns {
			all = append(all, c.Elements...)
		}
	}
	return all
}

// IndexOf returns the position of the page with the given id, or -1.
// The scan is linear; ids are unique within a well-formed funnel.
func (f *Funnel) IndexOf(pageID string) int {
	if pageID == "" {
		return -1
	}
	for i := range f.Pages {
		if f.Pages[i].ID == pageID {
			return i
		}
	}
	return -1
}

// PageAt returns the page at index i, or nil when i is out of range.
func (f *Funnel) PageAt(i int) *Page {
	if f == nil || i < 0 || i >= len(f.Pages) {
		return nil
	}
	return &f.Pages[i]
}

// ReportingID is the funnel key sent with analytics events.
func (f *Funnel) ReportingID() string {
	if f.UUID != "" {
		return f.UUID
	}
	return f.ID
}

// LeadID is the funnel key sent with lead submissions.
func (f *Funnel) LeadID() string {
	if f.ID != "" {
		return f.ID
	}
	return f.UUID
}
