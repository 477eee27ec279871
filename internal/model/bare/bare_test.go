package bare

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

func testContext(t *testing.T) *config.Context {
	t.Helper()

	cfg := platform.Config{
		Class: "sql", Driver: "sqlite",
		URL: filepath.Join(t.TempDir(), "bare-test.db"),
	}
	mp, err := platform.OpenConfig("bare-test", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { mp.Close() })

	c := config.New()
	c.SetPlatform(mp)
	c.UseDefaults(Settings())
	return c
}

func TestName(t *testing.T) {
	c := testContext(t)

	name, err := Name(c)
	require.NoError(t, err)
	assert.Equal(t, "MESSAGEix-GLOBIOM R14 2020:10:2110", name)
}

func TestNameSettingsMissing(t *testing.T) {
	c := config.New()

	_, err := Name(c)
	assert.ErrorIs(t, err, config.ErrNoSetting)
}

func TestNameRespectsSettings(t *testing.T) {
	c := testContext(t)
	c.Set("regions", "R11")
	c.Set("period_end", 2100)

	name, err := Name(c)
	require.NoError(t, err)
	assert.Equal(t, "MESSAGEix-GLOBIOM R11 2020:10:2100", name)
}

func TestYears(t *testing.T) {
	c := testContext(t)

	years, err := Years(c)
	require.NoError(t, err)
	assert.Len(t, years, 10)
	assert.Equal(t, 2020, years[0])
	assert.Equal(t, 2110, years[len(years)-1])
}

func TestYearsInvalidDuration(t *testing.T) {
	c := testContext(t)
	c.Set("period_duration", 0)

	_, err := Years(c)
	assert.Error(t, err)
}

func TestYearsEmptyRange(t *testing.T) {
	c := testContext(t)
	c.Set("period_start", 2120)
	c.Set("period_end", 2110)

	_, err := Years(c)
	assert.ErrorContains(t, err, "period_start 2120 is after period_end 2110")
}

func TestCreateResEmptyRange(t *testing.T) {
	c := testContext(t)
	c.Set("period_start", 2120)
	c.Set("period_end", 2110)

	_, err := CreateRes(context.Background(), c)
	assert.ErrorContains(t, err, "period_start 2120 is after period_end 2110")
}

func TestCreateResStructure(t *testing.T) {
	c := testContext(t)
	ctx := context.Background()

	s, err := CreateRes(ctx, c)
	require.NoError(t, err)

	nodes, err := s.SetElements(ctx, "node")
	require.NoError(t, err)
	techs, err := s.SetElements(ctx, "technology")
	require.NoError(t, err)
	years, err := s.SetElements(ctx, "year")
	require.NoError(t, err)
	pars, err := s.ParList(ctx)
	require.NoError(t, err)

	summary := fmt.Sprintf(
		"model: %s\nnodes: %s\ntechnologies: %s\nyears: %s\nparameters: %s\n",
		s.Model,
		strings.Join(nodes, " "),
		strings.Join(techs, " "),
		strings.Join(years, " "),
		strings.Join(pars, " "),
	)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "bare-res-structure", []byte(summary))
}

func TestCreateResWithDummies(t *testing.T) {
	c := testContext(t)
	c.Set("res_with_dummies", true)

	s, err := CreateRes(context.Background(), c)
	require.NoError(t, err)

	techs, err := s.SetElements(context.Background(), "technology")
	require.NoError(t, err)
	assert.Contains(t, techs, "dummy_supply")
	assert.Contains(t, techs, "dummy_demand")
}

func TestCreateResUnknownRegions(t *testing.T) {
	c := testContext(t)
	c.Set("regions", "R99")

	_, err := CreateRes(context.Background(), c)
	assert.ErrorContains(t, err, "unknown region code list")
}
