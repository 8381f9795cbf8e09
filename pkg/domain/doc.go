/*
Package domain contains the funnel definition model and the runtime session state
shared by the authoring tools, the storage service and the playback engine.

It is kept pure and free of I/O, following Hexagonal Architecture principles: the
same Funnel value is produced by the template catalog, by manual editing, or by a
read back from storage.

# Key Entities

  - Funnel: an ordered list of Pages plus presentation Theme.
  - Page: one step of the funnel with Elements, layout Sections and navigation rules.
  - NavigationCondition: a per-page rule testing one element's entered value.
  - RoutingMap: a per-page value-to-page shortcut matched against any entered value.
  - State: the per-session playback snapshot (current page index and form values).
  - AnalyticsEvent and Lead: the payloads sent to the reporting boundary.
*/
package domain
