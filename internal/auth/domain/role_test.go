package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"student", RoleStudent, false},
		{"teacher", RoleTeacher, false},
		{" Admin ", RoleAdmin, false},
		{"DIRECTOR", RoleDirector, false},
		{"", RoleUnknown, true},
		{"admins", RoleUnknown, true},
		{"root", RoleUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func TestRoleIs(t *testing.T) {
	require.True(t, RoleAdmin.Is(RoleAdmin))
	require.False(t, RoleStudent.Is(RoleAdmin))
	require.False(t, RoleDirector.Is(RoleAdmin), "no hierarchy between roles")
	require.False(t, RoleUnknown.Is(RoleUnknown), "unknown never matches")
}

func TestRoleText(t *testing.T) {
	b, err := RoleTeacher.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "teacher", string(b))

	_, err = RoleUnknown.MarshalText()
	require.ErrorIs(t, err, ErrUnknownRole)

	var r Role
	require.NoError(t, r.UnmarshalText([]byte("director")))
	require.Equal(t, RoleDirector, r)
	require.Error(t, r.UnmarshalText([]byte("janitor")))
}

func mustParse(t *testing.T, s string) Role {
	t.Helper()
	r, err := ParseRole(s)
	require.NoError(t, err)
	return r
}
