package devapi_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/freedevconnect/freedev/internal/cli/client"
	"github.com/freedevconnect/freedev/internal/cli/session"
	"github.com/freedevconnect/freedev/internal/devapi"
)

// cliStack is the composition-root wiring reproduced for tests: file-backed
// storage, API client and session store bound to a local server.
func cliStack(t *testing.T, baseURL, dir string) (*session.Store, *client.Client) {
	t.Helper()

	log := zerolog.New(io.Discard)
	storage := session.NewFileStorage(dir)
	apiClient := client.New(baseURL, storage, log)
	store := session.New(storage, apiClient, log)
	apiClient.OnUnauthorized(store.Invalidate)
	return store, apiClient
}

// TestCLIAgainstDevAPI runs the full session lifecycle through the real HTTP
// stack: fresh load, registration, failed and successful sign-in, restore
// after a restart, and teardown on a rejected token.
func TestCLIAgainstDevAPI(t *testing.T) {
	srv, err := devapi.New(devapi.Config{
		DatabaseURL: ":memory:",
		JWTSecret:   "integration-secret",
	}, zerolog.New(io.Discard))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	dir := t.TempDir()
	ctx := context.Background()

	store, _ := cliStack(t, ts.URL+"/api", dir)

	t.Run("FreshLoad", func(t *testing.T) {
		store.Initialize(ctx)
		require.False(t, store.IsAuthenticated(), "first run should settle anonymous")
	})

	t.Run("Register", func(t *testing.T) {
		ok := store.Register(ctx, client.Registration{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Password:  "correct-horse-battery",
			Role:      client.RoleFreedev,
		})
		require.True(t, ok, "registration failed: %s", store.Err())
		require.Equal(t, client.RoleFreedev, store.Snapshot().Role())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ok := store.Login(ctx, client.Credentials{Email: "ada@example.com", Password: "wrong-password-99"})
		require.False(t, ok)
		// The store surfaces the server's message verbatim
		require.Equal(t, "Invalid email or password", store.Err())

		// A rejected attempt must not disturb the session established by
		// the registration above, in memory or on disk
		require.True(t, store.IsAuthenticated())
		require.Equal(t, "ada@example.com", store.Snapshot().User.Email)
		token, err := session.NewFileStorage(dir).LoadToken()
		require.NoError(t, err)
		require.NotEmpty(t, token)
	})

	t.Run("Login", func(t *testing.T) {
		ok := store.Login(ctx, client.Credentials{Email: "ada@example.com", Password: "correct-horse-battery"})
		require.True(t, ok, "login failed: %s", store.Err())
		require.Empty(t, store.Err())
	})

	// A second process over the same storage restores and revalidates
	restored, restoredClient := cliStack(t, ts.URL+"/api", dir)

	t.Run("RestoreAfterRestart", func(t *testing.T) {
		restored.Initialize(ctx)
		require.True(t, restored.IsAuthenticated())
		require.Equal(t, "ada@example.com", restored.Snapshot().User.Email)

		_, err := restoredClient.GetFreelanceDashboard(ctx)
		require.NoError(t, err, "authenticated call through the restored session")
	})

	t.Run("RejectedTokenTearsDownSession", func(t *testing.T) {
		storage := session.NewFileStorage(dir)
		require.NoError(t, storage.SaveToken("garbage-token"))

		err := restored.Refresh(ctx)
		require.Error(t, err)
		require.True(t, client.IsUnauthorized(err))
		require.False(t, restored.IsAuthenticated())

		_, err = storage.LoadToken()
		require.ErrorIs(t, err, session.ErrNotFound, "durable token should be gone after a 401")
	})
}
