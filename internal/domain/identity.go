package domain

// Identity is who a peer claims to be in its hello frame.
type Identity struct {
	ID   string `json:"id" validate:"required,max=128"`
	Name string `json:"name" validate:"max=128"`
}

// DisplayName is Name, or ID when no name was set.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}
