// Package testutil provides fixtures and helpers for tests that need a
// Context, a temporary database platform, or the mix-models CLI.
package testutil

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// localCache reuses the user's existing local cache directory instead of a
// fresh temporary one. Pass -local-cache to go test to enable.
var localCache = flag.Bool("local-cache", false, "use existing local cache files in tests")

// PlatformName is the test-only platform registration name.
const PlatformName = "message-ix-models"

// Session is a temporary, in-memory database platform plus a Context
// connected to it, shared by all tests of a session.
//
// Run one session at a time per test binary: the platform registration uses
// the fixed name PlatformName.
type Session struct {
	// Context is the session context. Use TestContext for a per-test copy.
	Context *config.Context

	mp        *platform.Platform
	closeOnce sync.Once
	closeErr  error
}

// StartSession registers and opens the temporary platform and returns the
// session. Teardown is registered with tb.Cleanup and always runs, even after
// test failures; registration or connection errors abort with the underlying
// error unmodified.
func StartSession(tb testing.TB) *Session {
	tb.Helper()

	// Temporary, empty local directory for local data
	tmpDir := tb.TempDir()

	// Pick the cache location according to -local-cache. When set, reuse the
	// user's cache directory instead of the session directory.
	cacheBase := tmpDir
	if *localCache {
		dir, err := os.UserCacheDir()
		if err != nil {
			tb.Fatalf("-local-cache: %v", err)
		}
		cacheBase = filepath.Join(dir, "message-ix-models")
	}

	ctx := config.New()
	ctx.LocalData = tmpDir
	ctx.CachePath = filepath.Join(cacheBase, "cache")

	// Platform connected to an in-memory database
	err := platform.Register(PlatformName, platform.Config{
		Class:  "sql",
		Driver: "sqlite",
		URL:    "file:" + PlatformName + "?mode=memory&cache=shared",
	})
	if err != nil {
		tb.Fatal(err)
	}

	mp, err := platform.Open(PlatformName)
	if err != nil {
		_ = platform.Remove(PlatformName)
		tb.Fatal(err)
	}

	ctx.PlatformInfo["name"] = PlatformName
	ctx.SetPlatform(mp)

	s := &Session{Context: ctx, mp: mp}

	tb.Cleanup(func() {
		// Teardown failures indicate resource leakage; surface them as test
		// failures rather than swallowing.
		if err := s.Close(); err != nil {
			tb.Errorf("session teardown: %v", err)
		}
	})

	return s
}

// Platform returns the session's shared platform connection.
func (s *Session) Platform() *platform.Platform {
	return s.mp
}

// Close closes the platform connection and removes the registration.
// Subsequent calls are no-ops returning the first result, so the registration
// is removed exactly once per session.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(
			s.mp.Close(),
			platform.Remove(PlatformName),
		)
	})
	return s.closeErr
}
