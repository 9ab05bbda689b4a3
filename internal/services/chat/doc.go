// Package chat is the terminal-facing chat session: the roster a peer sees,
// the peer it is talking to, and the running log of messages.
//
// A Session consumes frames from the hub (HandleFrame), turns user input into
// msg and img frames (SendText, SendImage) and prints one line per message:
//
//	[2006-01-02 15:04:05] <from>: body
//
// With a room box configured, bodies and image data are sealed before they
// leave and opened on arrival; the hub only ever relays ciphertext.
package chat
