package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

func TestStartSession(t *testing.T) {
	s := StartSession(t)

	// The platform registration exists while the session is open.
	cfg, err := platform.Lookup(PlatformName)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Driver)

	// The session context is wired to the platform and temp directories.
	assert.NotEmpty(t, s.Context.LocalData)
	if !*localCache {
		assert.Equal(t, filepath.Join(s.Context.LocalData, "cache"), s.Context.CachePath)
	}
	assert.Equal(t, PlatformName, s.Context.PlatformInfo["name"])

	mp, err := s.Context.GetPlatform()
	require.NoError(t, err)
	require.NoError(t, mp.DB().Ping())
}

func TestStartSessionLocalCache(t *testing.T) {
	orig := *localCache
	*localCache = true
	t.Cleanup(func() { *localCache = orig })
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := os.UserCacheDir()
	require.NoError(t, err)

	s := StartSession(t)
	assert.Equal(t, filepath.Join(dir, "message-ix-models", "cache"), s.Context.CachePath)
	require.NoError(t, s.Close())
}

func TestStartSessionLocalCacheUnavailable(t *testing.T) {
	orig := *localCache
	*localCache = true
	t.Cleanup(func() { *localCache = orig })

	// os.UserCacheDir fails when neither location variable is set.
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")

	rec := &recordingTB{TB: t}
	s := StartSession(rec)

	require.NotEmpty(t, rec.fatalArgs)
	assert.Contains(t, fmt.Sprint(rec.fatalArgs[0]), "local-cache")
	require.NoError(t, s.Close())
}

func TestSessionCloseRemovesRegistrationOnce(t *testing.T) {
	s := StartSession(t)

	require.NoError(t, s.Close())

	_, err := platform.Lookup(PlatformName)
	assert.ErrorIs(t, err, platform.ErrPlatformNotRegistered)

	// A second Close (and the registered cleanup) is a no-op: the
	// registration was removed exactly once.
	require.NoError(t, s.Close())
}

func TestSequentialSessions(t *testing.T) {
	s1 := StartSession(t)
	require.NoError(t, s1.Close())

	// A fresh session can be started after the previous one tore down.
	s2 := StartSession(t)
	_, err := platform.Lookup(PlatformName)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestTestContextIsolation(t *testing.T) {
	s := StartSession(t)

	ctx := TestContext(t, s)
	ctx.Set("foo", 23)

	// The session context never sees per-test mutations.
	_, err := s.Context.Get("foo")
	assert.Error(t, err)

	// But the platform connection is shared.
	mp, err := ctx.GetPlatform()
	require.NoError(t, err)
	assert.Same(t, s.Platform(), mp)
}

func TestTestContextDeleteSparesPlatform(t *testing.T) {
	s := StartSession(t)

	ctx := TestContext(t, s)
	require.NoError(t, ctx.Delete())

	// Deleting the per-test copy leaves the session connection open.
	require.NoError(t, s.Platform().DB().Ping())
}

func TestUserContext(t *testing.T) {
	_, err := UserContext()
	assert.ErrorContains(t, err, "not implemented")
}
