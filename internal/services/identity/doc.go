// Package identity manages the local chat identity: the ID a peer announces
// in its hello frame and the display name others see in the roster.
//
// It enforces the identity policy and persists identities via the
// domain.IdentityStore.
package identity
