// Package hub is the chat server one peer hosts and every other peer joins.
//
// Protocol
//
//	peer -> hub   hello{id,name}          must be the first frame
//	hub  -> all   presence{online,id,name}
//	hub  -> peer  roster{list:[{id,addr}]}
//	peer -> hub   msg|img with "to"       delivered to the first peer whose
//	                                      display name equals "to"
//	peer -> hub   msg|img without "to"    broadcast to everyone but the sender
//	peer -> hub   presence_req            answered with roster
//	hub  -> all   presence{offline,id}    when a peer goes away
//
// TCP peers speak length-prefixed JSON frames (package wire). WebSocket peers
// joining through Handler send the same JSON objects, one per text message.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - A peer that does not say hello within HelloTimeout is disconnected.
//   - Direct messages to an unknown name are dropped without notice.
//   - A failed write disconnects the recipient.
//   - Per-peer rate limiting drops chat frames above MessageRate.
package hub
