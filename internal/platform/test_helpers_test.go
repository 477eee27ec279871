package platform

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestPlatform opens a fresh file-backed platform for one test.
func createTestPlatform(t *testing.T) *Platform {
	t.Helper()
	cfg := Config{
		Class:  "sql",
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "test.db"),
	}
	p, err := OpenConfig("test", cfg)
	if err != nil {
		t.Fatalf("OpenConfig() failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// createTestScenario creates a scenario with a small amount of data.
func createTestScenario(t *testing.T, p *Platform, model, scenario string) *Scenario {
	t.Helper()
	ctx := context.Background()

	s, err := p.NewScenario(ctx, model, scenario)
	if err != nil {
		t.Fatalf("NewScenario() failed: %v", err)
	}
	for _, node := range []string{"R11_AFR", "R11_CPA"} {
		if err := s.AddSetElement(ctx, "node", node); err != nil {
			t.Fatalf("AddSetElement() failed: %v", err)
		}
	}
	if err := s.AddSetElement(ctx, "technology", "coal_ppl"); err != nil {
		t.Fatalf("AddSetElement() failed: %v", err)
	}
	err = s.AddPar(ctx, ParRecord{
		Name: "technical_lifetime", Node: "R11_AFR", Technology: "coal_ppl",
		Year: 2020, Value: 30, Unit: "y",
	})
	if err != nil {
		t.Fatalf("AddPar() failed: %v", err)
	}
	return s
}
