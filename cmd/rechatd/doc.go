// Command rechatd runs a standalone chat hub.
//
// Peers connect over TCP (default :6000) and speak length-prefixed JSON
// frames. With --http the hub also serves a small HTTP API:
//
//	GET /ws
//	    Join as a WebSocket peer; each text message carries one JSON frame.
//
//	GET /roster
//	    Current peers in join order as [{"id": ..., "addr": ...}].
//
//	POST /announce {"body": "..."}
//	    Broadcast a message from "hub" to every peer.
//
//	GET /healthz
//	    {"status": "ok", "peers": N}
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - An access log records method, path, remote, status, bytes and
//     duration for each HTTP request.
//   - SIGINT or SIGTERM disconnects every peer and exits.
//
// Configuration comes from --config (TOML), .env and RECHAT_* variables,
// then flags; see internal/app.Config.
package main
