/*
Package session manages hosted playback sessions.

Browsers keep their playback state client side. Clients that cannot (plain
HTTP callers, MCP agents) use hosted sessions instead: the state lives in a
ports.StateStore and every action is a load-apply-save cycle run under a
per-session lock, optionally backed by a distributed lock so several replicas
of the reference service can share one store.
*/
package session
