package domain

// State is the per-session playback snapshot. It is owned by a single writer
// (the playback engine) and never persisted by the public runtime.
type State struct {
	SessionID  string `json:"sessionId,omitempty"`
	FunnelUUID string `json:"funnelUuid,omitempty"`

	// CurrentPageIndex is the 0-based position in Funnel.Pages.
	CurrentPageIndex int `json:"currentPageIndex"`

	// FormValues maps element id to the visitor-entered value.
	FormValues map[string]string `json:"formValues"`

	// History lists the page indices committed so far, oldest first.
	History []int `json:"history,omitempty"`

	// LeadSubmitted is set once the form values have been sent as a lead.
	LeadSubmitted bool `json:"leadSubmitted,omitempty"`
}

// NewState creates a clean state positioned on the first page.
func NewState(sessionID, funnelUUID string) *State {
	return &State{
		SessionID:  sessionID,
		FunnelUUID: funnelUUID,
		FormValues: make(map[string]string),
		History:    []int{0},
	}
}

// Snapshot returns a deep copy safe for mutation by the caller.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.FormValues = s.Values()
	if s.History != nil {
		next.History = append([]int(nil), s.History...)
	}
	return &next
}

// Values returns a copy of the form values.
func (s *State) Values() map[string]string {
	values := make(map[string]string, len(s.FormValues))
	for k, v := range s.FormValues {
		values[k] = v
	}
	return values
}
