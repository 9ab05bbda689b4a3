// Package wire implements the length-prefixed JSON framing spoken between the
// hub and its TCP peers.
//
// Each frame is a 4-byte big-endian unsigned length followed by that many
// bytes of compact UTF-8 JSON. There is no version byte and no trailer.
//
//	+--------+--------+--------+--------+------------------ ... --+
//	|        length (uint32, BE)        |   JSON object (length)   |
//	+--------+--------+--------+--------+------------------ ... --+
//
// A reader that sees the stream end before a prefix returns io.EOF; a stream
// that ends inside a frame returns io.ErrUnexpectedEOF. Either way, and on
// ErrMalformedFrame, the connection is considered finished.
package wire
