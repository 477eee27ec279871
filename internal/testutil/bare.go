package testutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/model/bare"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// BareRes returns a fresh clone of the bare RES scenario for one test.
//
// The baseline scenario (model name derived from the context settings,
// scenario name "baseline") is looked up on the context's platform and
// created on first use. When solved is set and the baseline has no solution,
// it is solved with the barrier method and solver output suppressed. The
// returned scenario is a clone named after the current test (or "baseline"
// when tb is nil), so it can be modified freely without disturbing other
// tests. Never mutate the shared baseline directly.
func BareRes(tb testing.TB, c *config.Context, solved bool) (*platform.Scenario, error) {
	ctx := context.Background()

	c.UseDefaults(bare.Settings())

	name, err := bare.Name(c)
	if err != nil {
		return nil, fmt.Errorf("bare RES: %w", err)
	}

	mp, err := c.GetPlatform()
	if err != nil {
		return nil, fmt.Errorf("bare RES: %w", err)
	}

	base, err := mp.Scenario(ctx, name, "baseline")
	if errors.Is(err, platform.ErrScenarioNotFound) {
		slog.Info("create scenario for testing", "model", name, "scenario", "baseline")
		c.ScenarioInfo["model"] = name
		c.ScenarioInfo["scenario"] = "baseline"
		base, err = bare.CreateRes(ctx, c)
	}
	if err != nil {
		return nil, fmt.Errorf("bare RES: %w", err)
	}

	if solved {
		hasSolution, err := base.HasSolution(ctx)
		if err != nil {
			return nil, fmt.Errorf("bare RES: %w", err)
		}
		if !hasSolution {
			slog.Info("solve", "model", name, "scenario", "baseline")
			if err := base.Solve(ctx, platform.SolveOptions{LPMethod: 4, Quiet: true}); err != nil {
				return nil, fmt.Errorf("bare RES: %w", err)
			}
		}
	}

	newName := "baseline"
	if tb != nil {
		newName = tb.Name()
	}

	slog.Info("clone", "model", name, "scenario", newName)
	clone, err := base.Clone(ctx, newName, solved)
	if err != nil {
		return nil, fmt.Errorf("bare RES: %w", err)
	}
	return clone, nil
}
