package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInBootstrapState(t *testing.T) {
	// Equality stands in for a real hash comparison here.
	check := func(secret, digest string) bool { return secret == digest }
	cin := "AB123456"

	t.Run("no login", func(t *testing.T) {
		a := Account{PasswordHash: "AB123456"}
		require.False(t, a.InBootstrapState(check))
	})

	t.Run("password still equals login", func(t *testing.T) {
		a := Account{Login: &cin, PasswordHash: "AB123456"}
		require.True(t, a.InBootstrapState(check))
	})

	t.Run("password changed", func(t *testing.T) {
		a := Account{Login: &cin, PasswordHash: "longenough1"}
		require.False(t, a.InBootstrapState(check))
	})
}

func TestProfileIncomplete(t *testing.T) {
	full := Account{FirstName: "Amina", LastName: "Benali", Email: "amina@example.edu"}
	require.False(t, full.ProfileIncomplete())

	for name, mutate := range map[string]func(*Account){
		"first name": func(a *Account) { a.FirstName = "" },
		"last name":  func(a *Account) { a.LastName = "" },
		"email":      func(a *Account) { a.Email = "" },
	} {
		t.Run("missing "+name, func(t *testing.T) {
			a := full
			mutate(&a)
			require.True(t, a.ProfileIncomplete())
		})
	}
}

func TestListFilterEffectiveLimit(t *testing.T) {
	login := "AB123456"

	require.Equal(t, DefaultListLimit, ListFilter{}.EffectiveLimit())
	require.Equal(t, 20, ListFilter{Limit: 20}.EffectiveLimit())
	require.Equal(t, 0, ListFilter{All: true, Limit: 20}.EffectiveLimit())
	require.Equal(t, 0, ListFilter{Login: &login, Limit: 3}.EffectiveLimit())
}
