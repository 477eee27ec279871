// Package bare constructs the bare reference energy system (RES): a minimal
// scenario with the structure of the MESSAGEix-GLOBIOM global model but
// only placeholder technology data.
package bare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// Settings are the default options for constructing the bare RES. Apply to a
// Context with UseDefaults before calling Name or CreateRes.
func Settings() map[string]any {
	return map[string]any{
		"regions":          "R14",
		"period_start":     2020,
		"period_duration":  10,
		"period_end":       2110,
		"res_with_dummies": false,
	}
}

// nodesByRegions maps a region code list name to its node codes.
var nodesByRegions = map[string][]string{
	"R11": {
		"R11_AFR", "R11_CPA", "R11_EEU", "R11_FSU", "R11_LAM", "R11_MEA",
		"R11_NAM", "R11_PAO", "R11_PAS", "R11_SAS", "R11_WEU",
	},
	"R14": {
		"R14_AFR", "R14_CAS", "R14_CPA", "R14_EEU", "R14_LAM", "R14_MEA",
		"R14_NAM", "R14_PAO", "R14_PAS", "R14_RUS", "R14_SAS", "R14_SCS",
		"R14_UBM", "R14_WEU",
	},
}

// technologies is the minimal technology set of the bare RES.
var technologies = []string{"coal_ppl", "elec_t_d", "gas_ppl", "solar_pv", "wind_ppl"}

// Name derives the deterministic model name from the context's region and
// period settings, e.g. "MESSAGEix-GLOBIOM R14 2020:10:2110".
func Name(c *config.Context) (string, error) {
	regions, err := c.Get("regions")
	if err != nil {
		return "", err
	}
	start, err := c.Get("period_start")
	if err != nil {
		return "", err
	}
	duration, err := c.Get("period_duration")
	if err != nil {
		return "", err
	}
	end, err := c.Get("period_end")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MESSAGEix-GLOBIOM %v %v:%v:%v", regions, start, duration, end), nil
}

// Years expands the context's period settings into the model's year list.
func Years(c *config.Context) ([]int, error) {
	start, err := intSetting(c, "period_start")
	if err != nil {
		return nil, err
	}
	duration, err := intSetting(c, "period_duration")
	if err != nil {
		return nil, err
	}
	end, err := intSetting(c, "period_end")
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("period_duration must be positive, got %d", duration)
	}
	if start > end {
		return nil, fmt.Errorf("period_start %d is after period_end %d", start, end)
	}

	var years []int
	for y := start; y <= end; y += duration {
		years = append(years, y)
	}
	return years, nil
}

func intSetting(c *config.Context, key string) (int, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("setting %q: expected int, got %T", key, v)
	}
	return n, nil
}

// CreateRes builds the bare RES on the context's platform and returns the new
// scenario. The scenario identity comes from ScenarioInfo; the model name
// defaults to Name(c) when unset.
func CreateRes(ctx context.Context, c *config.Context) (*platform.Scenario, error) {
	model := c.ScenarioInfo["model"]
	if model == "" {
		var err error
		model, err = Name(c)
		if err != nil {
			return nil, fmt.Errorf("create RES: %w", err)
		}
	}
	scenario := c.ScenarioInfo["scenario"]
	if scenario == "" {
		scenario = "baseline"
	}

	regions, err := c.Get("regions")
	if err != nil {
		return nil, fmt.Errorf("create RES: %w", err)
	}
	nodes, ok := nodesByRegions[fmt.Sprint(regions)]
	if !ok {
		return nil, fmt.Errorf("create RES: unknown region code list %q", regions)
	}

	years, err := Years(c)
	if err != nil {
		return nil, fmt.Errorf("create RES: %w", err)
	}

	mp, err := c.GetPlatform()
	if err != nil {
		return nil, fmt.Errorf("create RES: %w", err)
	}

	s, err := mp.NewScenario(ctx, model, scenario)
	if err != nil {
		return nil, fmt.Errorf("create RES: %w", err)
	}

	techs := technologies
	if dummies, err := c.Get("res_with_dummies"); err == nil && dummies == true {
		techs = append(append([]string{}, techs...), "dummy_supply", "dummy_demand")
	}

	for _, node := range nodes {
		if err := s.AddSetElement(ctx, "node", node); err != nil {
			return nil, err
		}
	}
	for _, tech := range techs {
		if err := s.AddSetElement(ctx, "technology", tech); err != nil {
			return nil, err
		}
	}
	for _, year := range years {
		if err := s.AddSetElement(ctx, "year", fmt.Sprint(year)); err != nil {
			return nil, err
		}
	}

	// Placeholder data so the scenario is solvable.
	for _, node := range nodes {
		for _, tech := range techs {
			err := s.AddPar(ctx, platform.ParRecord{
				Name: "technical_lifetime", Node: node, Technology: tech,
				Year: years[0], Value: 30, Unit: "y",
			})
			if err != nil {
				return nil, err
			}
			err = s.AddPar(ctx, platform.ParRecord{
				Name: "capacity_factor", Node: node, Technology: tech,
				Year: years[0], Value: 0.8, Unit: "",
			})
			if err != nil {
				return nil, err
			}
		}
	}

	slog.Debug("created bare RES", "model", model, "scenario", scenario,
		"nodes", len(nodes), "technologies", len(techs), "years", len(years))

	return s, nil
}
