package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenByName(t *testing.T) {
	cfg := Config{Class: "sql", Driver: "sqlite", URL: "file:open-test?mode=memory&cache=shared"}
	require.NoError(t, Register("open-test", cfg))
	t.Cleanup(func() { _ = Remove("open-test") })

	p, err := Open("open-test")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	assert.Equal(t, "open-test", p.Name())
	assert.NotNil(t, p.DB())
}

func TestOpenUnregistered(t *testing.T) {
	_, err := Open("never-registered")
	assert.ErrorIs(t, err, ErrPlatformNotRegistered)
}

func TestCloseIdempotent(t *testing.T) {
	p := createTestPlatform(t)
	require.NoError(t, p.Close())
	// Second close is a no-op.
	require.NoError(t, p.Close())
}

func TestSchemaApplied(t *testing.T) {
	p := createTestPlatform(t)

	for _, table := range []string{"scenarios", "set_elements", "parameters", "solutions"} {
		var n int
		err := p.DB().QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
}

func TestRebindPostgres(t *testing.T) {
	p := &Platform{driver: "postgres"}
	got := p.rebind("SELECT * FROM t WHERE a = ? AND b = ?")
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", got)

	p = &Platform{driver: "sqlite"}
	got = p.rebind("SELECT * FROM t WHERE a = ?")
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", got)
}
