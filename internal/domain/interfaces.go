package domain

// IdentityStore persists the local chat identity.
type IdentityStore interface {
	SaveIdentity(id Identity) error
	LoadIdentity() (Identity, bool, error)
}

// FrameSender delivers a frame to the hub.
type FrameSender interface {
	Send(f Frame) error
}
