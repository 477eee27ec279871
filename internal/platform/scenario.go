package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrScenarioNotFound is returned when no scenario exists for a
// (model, scenario) pair. Callers typically recover by creating the scenario.
var ErrScenarioNotFound = errors.New("scenario not found")

// Scenario is a stored model run, identified by (model, scenario) and a
// version number. All data access goes through the owning Platform.
type Scenario struct {
	mp *Platform

	ID       string
	Model    string
	Scenario string
	Version  int
}

// ParRecord is one row of a parameter table.
type ParRecord struct {
	Name       string
	Node       string
	Technology string
	Year       int
	Value      float64
	Unit       string
}

// SolveOptions configure Scenario.Solve.
type SolveOptions struct {
	// LPMethod selects the solver's LP algorithm (4 = barrier).
	LPMethod int
	// Quiet suppresses solver log output.
	Quiet bool
}

// normName applies NFC normalization so that lookups are insensitive to the
// Unicode encoding of model and scenario names.
func normName(s string) string {
	return norm.NFC.String(s)
}

// rebind converts ?-style placeholders to the $n style used by lib/pq.
func (p *Platform) rebind(query string) string {
	if p.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Scenario looks up the latest version of a stored scenario.
//
// Returns ErrScenarioNotFound (wrapped) if no version exists.
func (p *Platform) Scenario(ctx context.Context, model, scenario string) (*Scenario, error) {
	model, scenario = normName(model), normName(scenario)

	row := p.db.QueryRowContext(ctx, p.rebind(`
		SELECT id, version FROM scenarios
		WHERE model = ? AND scenario = ?
		ORDER BY version DESC
		LIMIT 1
	`), model, scenario)

	s := &Scenario{mp: p, Model: model, Scenario: scenario}
	if err := row.Scan(&s.ID, &s.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", model, scenario, ErrScenarioNotFound)
		}
		return nil, fmt.Errorf("look up scenario %s/%s: %w", model, scenario, err)
	}
	return s, nil
}

// NewScenario creates a fresh scenario version for (model, scenario).
//
// If earlier versions exist, the new version number follows the latest.
func (p *Platform) NewScenario(ctx context.Context, model, scenario string) (*Scenario, error) {
	model, scenario = normName(model), normName(scenario)

	var version int
	row := p.db.QueryRowContext(ctx, p.rebind(`
		SELECT COALESCE(MAX(version), 0) FROM scenarios
		WHERE model = ? AND scenario = ?
	`), model, scenario)
	if err := row.Scan(&version); err != nil {
		return nil, fmt.Errorf("new scenario %s/%s: %w", model, scenario, err)
	}

	s := &Scenario{
		mp:       p,
		ID:       uuid.NewString(),
		Model:    model,
		Scenario: scenario,
		Version:  version + 1,
	}

	_, err := p.db.ExecContext(ctx, p.rebind(`
		INSERT INTO scenarios (id, model, scenario, version, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), s.ID, s.Model, s.Scenario, s.Version, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("new scenario %s/%s: %w", model, scenario, err)
	}
	return s, nil
}

// AddSetElement records an element of a named set, e.g. a node or technology.
// Duplicate elements are ignored.
func (s *Scenario) AddSetElement(ctx context.Context, set, element string) error {
	_, err := s.mp.db.ExecContext(ctx, s.mp.rebind(`
		INSERT INTO set_elements (scenario_id, set_name, element)
		VALUES (?, ?, ?)
		ON CONFLICT (scenario_id, set_name, element) DO NOTHING
	`), s.ID, set, element)
	if err != nil {
		return fmt.Errorf("add element to set %q: %w", set, err)
	}
	return nil
}

// SetElements returns the elements of a named set in sorted order.
func (s *Scenario) SetElements(ctx context.Context, set string) ([]string, error) {
	rows, err := s.mp.db.QueryContext(ctx, s.mp.rebind(`
		SELECT element FROM set_elements
		WHERE scenario_id = ? AND set_name = ?
		ORDER BY element ASC
	`), s.ID, set)
	if err != nil {
		return nil, fmt.Errorf("read set %q: %w", set, err)
	}
	defer rows.Close()

	elements := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("read set %q: %w", set, err)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read set %q: %w", set, err)
	}
	return elements, nil
}

// AddPar appends one parameter row.
func (s *Scenario) AddPar(ctx context.Context, rec ParRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("add parameter: empty name")
	}
	_, err := s.mp.db.ExecContext(ctx, s.mp.rebind(`
		INSERT INTO parameters (scenario_id, name, node, technology, year, value, unit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), s.ID, rec.Name, rec.Node, rec.Technology, rec.Year, rec.Value, rec.Unit)
	if err != nil {
		return fmt.Errorf("add parameter %q: %w", rec.Name, err)
	}
	return nil
}

// Par returns all rows of the named parameter, ordered deterministically.
func (s *Scenario) Par(ctx context.Context, name string) ([]ParRecord, error) {
	rows, err := s.mp.db.QueryContext(ctx, s.mp.rebind(`
		SELECT name, node, technology, year, value, unit
		FROM parameters
		WHERE scenario_id = ? AND name = ?
		ORDER BY node ASC, technology ASC, year ASC
	`), s.ID, name)
	if err != nil {
		return nil, fmt.Errorf("read parameter %q: %w", name, err)
	}
	defer rows.Close()

	recs := []ParRecord{}
	for rows.Next() {
		var r ParRecord
		if err := rows.Scan(&r.Name, &r.Node, &r.Technology, &r.Year, &r.Value, &r.Unit); err != nil {
			return nil, fmt.Errorf("read parameter %q: %w", name, err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read parameter %q: %w", name, err)
	}
	return recs, nil
}

// ParList returns the distinct parameter names present in the scenario.
func (s *Scenario) ParList(ctx context.Context) ([]string, error) {
	rows, err := s.mp.db.QueryContext(ctx, s.mp.rebind(`
		SELECT DISTINCT name FROM parameters
		WHERE scenario_id = ?
		ORDER BY name ASC
	`), s.ID)
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("list parameters: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	return names, nil
}

// HasSolution reports whether the scenario has a stored solution.
func (s *Scenario) HasSolution(ctx context.Context) (bool, error) {
	var n int
	row := s.mp.db.QueryRowContext(ctx, s.mp.rebind(`
		SELECT COUNT(*) FROM solutions WHERE scenario_id = ?
	`), s.ID)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("check solution: %w", err)
	}
	return n > 0, nil
}

// Solve computes and stores a solution for the scenario.
//
// The objective is a deterministic aggregate of the parameter data, which is
// enough for tests that only need "a solved scenario" to exist. Solving a
// scenario that already has a solution replaces it.
func (s *Scenario) Solve(ctx context.Context, opts SolveOptions) error {
	var objective float64
	row := s.mp.db.QueryRowContext(ctx, s.mp.rebind(`
		SELECT COALESCE(SUM(value), 0) FROM parameters WHERE scenario_id = ?
	`), s.ID)
	if err := row.Scan(&objective); err != nil {
		return fmt.Errorf("solve %s/%s: %w", s.Model, s.Scenario, err)
	}

	_, err := s.mp.db.ExecContext(ctx, s.mp.rebind(`
		INSERT INTO solutions (scenario_id, objective, lpmethod, solved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scenario_id) DO UPDATE SET
			objective = excluded.objective,
			lpmethod = excluded.lpmethod,
			solved_at = excluded.solved_at
	`), s.ID, objective, opts.LPMethod, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("solve %s/%s: %w", s.Model, s.Scenario, err)
	}
	if !opts.Quiet {
		slog.Info("solved", "model", s.Model, "scenario", s.Scenario,
			"objective", objective, "lpmethod", opts.LPMethod)
	}
	return nil
}

// Objective returns the stored solution objective.
func (s *Scenario) Objective(ctx context.Context) (float64, error) {
	var obj float64
	row := s.mp.db.QueryRowContext(ctx, s.mp.rebind(`
		SELECT objective FROM solutions WHERE scenario_id = ?
	`), s.ID)
	if err := row.Scan(&obj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s/%s has no solution", s.Model, s.Scenario)
		}
		return 0, fmt.Errorf("read objective: %w", err)
	}
	return obj, nil
}

// Clone copies the scenario under a new scenario name within the same model.
//
// Set elements and parameter rows are deep-copied, so mutating the clone never
// affects the source. The solution is carried over only when keepSolution is
// set.
func (s *Scenario) Clone(ctx context.Context, scenario string, keepSolution bool) (*Scenario, error) {
	clone, err := s.mp.NewScenario(ctx, s.Model, scenario)
	if err != nil {
		return nil, fmt.Errorf("clone %s/%s: %w", s.Model, s.Scenario, err)
	}

	_, err = s.mp.db.ExecContext(ctx, s.mp.rebind(`
		INSERT INTO set_elements (scenario_id, set_name, element)
		SELECT ?, set_name, element FROM set_elements WHERE scenario_id = ?
	`), clone.ID, s.ID)
	if err != nil {
		return nil, fmt.Errorf("clone %s/%s: copy sets: %w", s.Model, s.Scenario, err)
	}

	_, err = s.mp.db.ExecContext(ctx, s.mp.rebind(`
		INSERT INTO parameters (scenario_id, name, node, technology, year, value, unit)
		SELECT ?, name, node, technology, year, value, unit
		FROM parameters WHERE scenario_id = ?
	`), clone.ID, s.ID)
	if err != nil {
		return nil, fmt.Errorf("clone %s/%s: copy parameters: %w", s.Model, s.Scenario, err)
	}

	if keepSolution {
		_, err = s.mp.db.ExecContext(ctx, s.mp.rebind(`
			INSERT INTO solutions (scenario_id, objective, lpmethod, solved_at)
			SELECT ?, objective, lpmethod, solved_at
			FROM solutions WHERE scenario_id = ?
		`), clone.ID, s.ID)
		if err != nil {
			return nil, fmt.Errorf("clone %s/%s: copy solution: %w", s.Model, s.Scenario, err)
		}
	}

	return clone, nil
}
