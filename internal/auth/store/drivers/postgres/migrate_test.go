package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/auth?sslmode=disable", "pgx5://u:p@db:5432/auth?sslmode=disable"},
		{"postgresql://db/auth", "pgx5://db/auth"},
		{"pgx5://db/auth", "pgx5://db/auth"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}
