/*
Package observability provides lifecycle hooks for monitoring funnel playback.

It includes Prometheus metrics for page views, leads, transitions and failed
report dispatches, structured-logging hooks, and a combinator to attach
several hook sets to one engine.
*/
package observability
