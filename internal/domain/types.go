package domain

import "time"

// FrameType discriminates the JSON objects exchanged between hub and peers.
type FrameType string

const (
	FrameHello       FrameType = "hello"
	FramePresenceReq FrameType = "presence_req"
	FramePresence    FrameType = "presence"
	FrameRoster      FrameType = "roster"
	FrameMsg         FrameType = "msg"
	FrameImg         FrameType = "img"
)

// Presence events carried by FramePresence.
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// DefaultPort is the TCP port a hub listens on unless told otherwise.
const DefaultPort = 6000

// RosterEntry is one connected peer as advertised by the hub. ID carries the
// peer's display name; Addr is the remote IP.
type RosterEntry struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Addr string `json:"addr,omitempty"`
}

// Frame is the single wire object. Which fields are set depends on Type:
//
//	hello        ID, Name
//	presence_req (none)
//	presence     Event, ID, Name
//	roster       List
//	msg          From, To, Body, TS
//	img          From, To, Data (base64), Name (file name), TS
//
// MID and Enc are optional on msg and img.
type Frame struct {
	Type  FrameType     `json:"type"`
	ID    string        `json:"id,omitempty"`
	Name  string        `json:"name,omitempty"`
	Event string        `json:"event,omitempty"`
	List  []RosterEntry `json:"list,omitempty"`
	From  string        `json:"from,omitempty"`
	To    string        `json:"to,omitempty"`
	Body  string        `json:"body,omitempty"`
	Data  string        `json:"data,omitempty"`
	TS    float64       `json:"ts,omitempty"`
	MID   string        `json:"mid,omitempty"`
	Enc   bool          `json:"enc,omitempty"`
}

// IsChat reports whether the frame carries user content routed by the hub.
func (f Frame) IsChat() bool { return f.Type == FrameMsg || f.Type == FrameImg }

// Time converts TS (float seconds since the epoch) to a time. Zero TS yields
// the zero time.
func (f Frame) Time() time.Time {
	if f.TS <= 0 {
		return time.Time{}
	}
	sec := int64(f.TS)
	nsec := int64((f.TS - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Timestamp converts t into the float seconds representation used by TS.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
