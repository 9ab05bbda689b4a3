package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rechat/internal/services/identity"
	"rechat/internal/store"
)

func TestSet_DefaultsNameToID(t *testing.T) {
	svc := identity.New(store.NewIdentityFileStore(t.TempDir()))

	id, err := svc.Set("  bob  ", "   ")
	require.NoError(t, err)
	require.Equal(t, "bob", id.ID)
	require.Equal(t, "bob", id.Name)

	got, ok, err := svc.Current()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestSet_RequiresID(t *testing.T) {
	svc := identity.New(store.NewIdentityFileStore(t.TempDir()))

	_, err := svc.Set("", "Bob")
	require.ErrorIs(t, err, identity.ErrIDRequired)

	_, ok, err := svc.Current()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSet_RejectsInvalid(t *testing.T) {
	svc := identity.New(store.NewIdentityFileStore(t.TempDir()))

	_, err := svc.Set(strings.Repeat("x", 200), "")
	require.ErrorIs(t, err, identity.ErrInvalidIdentity)

	_, err = svc.Set("bob\x07", "")
	require.ErrorIs(t, err, identity.ErrInvalidIdentity)
}

func TestRequire_NoIdentity(t *testing.T) {
	svc := identity.New(store.NewIdentityFileStore(t.TempDir()))

	_, err := svc.Require()
	require.ErrorIs(t, err, identity.ErrNoIdentity)

	_, err = svc.Set("carol", "Carol")
	require.NoError(t, err)
	id, err := svc.Require()
	require.NoError(t, err)
	require.Equal(t, "Carol", id.DisplayName())
}
