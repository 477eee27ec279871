package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioLookupMiss(t *testing.T) {
	p := createTestPlatform(t)

	_, err := p.Scenario(context.Background(), "no-model", "baseline")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestNewScenarioAndLookup(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()

	created := createTestScenario(t, p, "MESSAGEix-GLOBIOM R14 2020:10:2110", "baseline")
	assert.Equal(t, 1, created.Version)

	found, err := p.Scenario(ctx, "MESSAGEix-GLOBIOM R14 2020:10:2110", "baseline")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestNewScenarioVersions(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()

	v1, err := p.NewScenario(ctx, "m", "s")
	require.NoError(t, err)
	v2, err := p.NewScenario(ctx, "m", "s")
	require.NoError(t, err)

	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, 2, v2.Version)

	// Lookup returns the latest version.
	latest, err := p.Scenario(ctx, "m", "s")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestNameNormalization(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()

	// "é" as a precomposed code point vs. "e" + combining acute.
	_, err := p.NewScenario(ctx, "modéle", "baseline")
	require.NoError(t, err)

	found, err := p.Scenario(ctx, "modéle", "baseline")
	require.NoError(t, err)
	assert.Equal(t, "modéle", found.Model)
}

func TestParRoundTrip(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()
	s := createTestScenario(t, p, "m", "s")

	recs, err := s.Par(ctx, "technical_lifetime")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "coal_ppl", recs[0].Technology)
	assert.Equal(t, 30.0, recs[0].Value)

	names, err := s.ParList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"technical_lifetime"}, names)
}

func TestParEmptyName(t *testing.T) {
	p := createTestPlatform(t)
	s := createTestScenario(t, p, "m", "s")

	assert.Error(t, s.AddPar(context.Background(), ParRecord{}))
}

func TestSetElementsDeduplicated(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()
	s := createTestScenario(t, p, "m", "s")

	// Adding an existing element is a no-op.
	require.NoError(t, s.AddSetElement(ctx, "node", "R11_AFR"))

	nodes, err := s.SetElements(ctx, "node")
	require.NoError(t, err)
	assert.Equal(t, []string{"R11_AFR", "R11_CPA"}, nodes)
}

func TestSolveAndHasSolution(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()
	s := createTestScenario(t, p, "m", "s")

	solved, err := s.HasSolution(ctx)
	require.NoError(t, err)
	assert.False(t, solved)

	require.NoError(t, s.Solve(ctx, SolveOptions{LPMethod: 4, Quiet: true}))

	solved, err = s.HasSolution(ctx)
	require.NoError(t, err)
	assert.True(t, solved)

	obj, err := s.Objective(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30.0, obj)
}

func TestCloneIndependence(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()
	base := createTestScenario(t, p, "m", "baseline")

	clone, err := base.Clone(ctx, "clone-a", false)
	require.NoError(t, err)

	// Mutating the clone must not alter the base.
	err = clone.AddPar(ctx, ParRecord{
		Name: "technical_lifetime", Node: "R11_CPA", Technology: "coal_ppl",
		Year: 2030, Value: 40, Unit: "y",
	})
	require.NoError(t, err)

	baseRecs, err := base.Par(ctx, "technical_lifetime")
	require.NoError(t, err)
	assert.Len(t, baseRecs, 1)

	cloneRecs, err := clone.Par(ctx, "technical_lifetime")
	require.NoError(t, err)
	assert.Len(t, cloneRecs, 2)
}

func TestCloneSolutionHandling(t *testing.T) {
	p := createTestPlatform(t)
	ctx := context.Background()
	base := createTestScenario(t, p, "m", "baseline")
	require.NoError(t, base.Solve(ctx, SolveOptions{LPMethod: 4, Quiet: true}))

	keep, err := base.Clone(ctx, "with-solution", true)
	require.NoError(t, err)
	solved, err := keep.HasSolution(ctx)
	require.NoError(t, err)
	assert.True(t, solved)

	drop, err := base.Clone(ctx, "without-solution", false)
	require.NoError(t, err)
	solved, err = drop.HasSolution(ctx)
	require.NoError(t, err)
	assert.False(t, solved)
}
