// Package relay is an HTTP client for a hub's HTTP surface.
//
// A hub started with an HTTP listener (rechat host --http, rechatd --http)
// answers a small JSON API next to its TCP chat port. This package lets
// tooling read the roster, push an announcement to every connected peer and
// probe liveness without joining the chat.
//
// All requests accept a context for cancellation and deadlines. Non-2xx
// statuses are returned as *StatusError carrying the HTTP method, full URL
// and status text to aid diagnostics.
package relay
