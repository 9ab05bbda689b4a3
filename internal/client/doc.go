// Package client keeps a peer connected to a hub.
//
// Run dials the hub, announces the local identity with a hello frame, asks
// for the roster and then hands every inbound frame to the handler. When the
// connection drops or cannot be made it waits RetryDelay and dials again, so a
// peer started before its hub simply joins once the hub is up.
package client
