package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"rechat/internal/domain"
)

var (
	// ErrIDRequired is returned when an identity is set without an ID.
	ErrIDRequired = errors.New("please enter your ID first")
	// ErrNoIdentity is returned when an operation needs a saved identity.
	ErrNoIdentity = errors.New("no identity set; run `rechat identity set <id> [name]` first")
	// ErrInvalidIdentity is returned when an ID or name breaks the policy.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Service manages the local identity using a backing store.
type Service struct {
	store    domain.IdentityStore
	validate *validator.Validate
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service {
	return &Service{store: s, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Set trims id and name, defaults the name to the id, and saves the result.
func (s *Service) Set(id, name string) (domain.Identity, error) {
	ident := domain.Identity{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
	if ident.ID == "" {
		return domain.Identity{}, ErrIDRequired
	}
	if ident.Name == "" {
		ident.Name = ident.ID
	}
	if err := s.check(ident); err != nil {
		return domain.Identity{}, err
	}
	if err := s.store.SaveIdentity(ident); err != nil {
		return domain.Identity{}, fmt.Errorf("save identity: %w", err)
	}
	return ident, nil
}

// Current returns the saved identity, if any.
func (s *Service) Current() (domain.Identity, bool, error) {
	return s.store.LoadIdentity()
}

// Require returns the saved identity or ErrNoIdentity.
func (s *Service) Require() (domain.Identity, error) {
	id, ok, err := s.store.LoadIdentity()
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, ErrNoIdentity
	}
	if id.Name == "" {
		id.Name = id.ID
	}
	return id, nil
}

func (s *Service) check(id domain.Identity) error {
	if err := s.validate.Struct(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	for _, r := range id.ID + id.Name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control characters are not allowed", ErrInvalidIdentity)
		}
	}
	return nil
}
