//go:build e2e

package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/campusid/auth/internal/auth/app"
	"github.com/campusid/auth/pkg/authsdk"
)

/*
 * End-to-end helpers. Every test gets its own Postgres and Redis containers
 * and runs the real application wiring against them in-process.
 */

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"

	setupToken    = "e2e-setup-token"
	adminEmail    = "root@school.edu"
	adminPassword = "Admin123!"
)

// backends are the addresses of the containers backing one test.
type backends struct {
	DatabaseURL string
	RedisAddr   string
}

// startContainer starts req and returns host:port for the given exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// setupBackends starts a fresh Postgres and Redis for the calling test.
func setupBackends(t *testing.T) backends {
	t.Helper()

	pgAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "campus",
			"POSTGRES_PASSWORD": "campus",
			"POSTGRES_DB":       "auth",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")

	redisAddr := startContainer(t, testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")

	return backends{
		DatabaseURL: fmt.Sprintf("postgres://campus:campus@%s/auth?sslmode=disable", pgAddr),
		RedisAddr:   redisAddr,
	}
}

// startService loads the configuration from the environment, the way the
// binary does, and serves the application on an httptest server.
//
// Rate limits are raised unless defaultLimits is set, since most tests issue
// many requests from one address.
func startService(t *testing.T, b backends, defaultLimits bool) string {
	t.Helper()

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", b.DatabaseURL)
	t.Setenv("REGISTRY_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", b.RedisAddr)
	t.Setenv("JWT_SECRET", "e2e-access-secret")
	t.Setenv("SETUP_TOKEN", setupToken)
	if !defaultLimits {
		for _, profile := range []string{"STRICT", "MODERATE", "LENIENT"} {
			t.Setenv("RATELIMIT_"+profile+"_REQUESTS", "1000")
			t.Setenv("RATELIMIT_"+profile+"_BURST", "1000")
		}
	}

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Close()
	})

	return srv.URL
}

// setupAdmin creates the first administrator and logs in as them.
func setupAdmin(t *testing.T, client *authsdk.SDKClient) *authsdk.Session {
	t.Helper()

	_, err := client.Setup(t.Context(), setupToken, authsdk.SetupRequest{
		FirstName: "Root",
		LastName:  "Admin",
		Email:     adminEmail,
		Password:  adminPassword,
	})
	require.NoError(t, err)

	session, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	return session
}

// assertAPIError checks err is an API error with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status, body code %q", apiErr.Code)
	require.Equal(t, code, apiErr.Code)
}
