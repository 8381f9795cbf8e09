// Package http speaks the public funnel API.
//
// Client is the runtime's side of the contract: it fetches published
// definitions and posts analytics events and leads. Server is a reference
// implementation of the same contract backed by the ports stores, plus hosted
// playback sessions for clients that cannot keep state themselves.
package http
