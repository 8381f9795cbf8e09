// Package render turns the current page of a playing funnel into a
// presentation-neutral view tree, and that tree into Markdown for text
// surfaces (terminal, MCP, hosted sessions).
//
// Rendering is read-only: it never changes navigation or form state.
package render
