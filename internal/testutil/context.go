package testutil

import (
	"errors"
	"testing"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
)

// TestContext returns a copy of the session context scoped to one test
// function. The copy shares the session's platform connection but none of its
// configuration values, so mutations never cross test boundaries. The copy is
// deleted via tb.Cleanup.
func TestContext(tb testing.TB, s *Session) *config.Context {
	tb.Helper()

	ctx := s.Context.Clone()
	tb.Cleanup(func() {
		if err := ctx.Delete(); err != nil {
			tb.Errorf("context teardown: %v", err)
		}
	})
	return ctx
}

// UserContext would expose the user's own configuration (platform names,
// local data) to a test. Deliberately unimplemented: tests must not depend on
// the user environment.
func UserContext() (*config.Context, error) {
	return nil, errors.New("user context in tests is not implemented: accessing user configuration from tests is bad practice")
}
