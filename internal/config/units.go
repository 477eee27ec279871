package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Quantity is a parsed unit expression: a magnitude and a mapping from base
// dimension (in bracketed form, e.g. "[currency]") to its exponent.
type Quantity struct {
	Magnitude float64
	dims      map[string]int
}

// Dimensionality returns the dimension exponents of the quantity, keyed by
// bracketed dimension name. Dimensions with exponent zero are omitted.
func (q Quantity) Dimensionality() map[string]int {
	out := make(map[string]int, len(q.dims))
	for dim, exp := range q.dims {
		if exp != 0 {
			out[dim] = exp
		}
	}
	return out
}

// Units parses a unit expression such as "15 USD_2005 / year" using the
// packaged unit definitions (data/units.yaml). The definitions are loaded
// once per context and reused by later calls.
//
// Deprecated: construct a unit registry directly instead of going through the
// Context. Retained for compatibility; every call logs a deprecation warning.
func (c *Context) Units(expr string) (Quantity, error) {
	c.log().Warn("Context.Units is deprecated",
		"deprecated", true, "expr", expr)

	if c.units == nil {
		defs, err := loadUnitDefs()
		if err != nil {
			return Quantity{}, err
		}
		c.units = defs
	}

	return parseUnits(expr, c.units)
}

func loadUnitDefs() (map[string]map[string]int, error) {
	raw, err := dataFS.ReadFile("data/units.yaml")
	if err != nil {
		return nil, fmt.Errorf("load unit definitions: %w", err)
	}
	defs := map[string]map[string]int{}
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("load unit definitions: %w", err)
	}
	return defs, nil
}

// parseUnits evaluates a whitespace-separated unit expression. The expression
// is an optional leading magnitude followed by unit names joined with "*" and
// "/". "/" negates the exponent of the unit that follows it.
func parseUnits(expr string, defs map[string]map[string]int) (Quantity, error) {
	// Ensure operators are their own tokens even without surrounding spaces.
	expr = strings.ReplaceAll(expr, "/", " / ")
	expr = strings.ReplaceAll(expr, "*", " * ")

	q := Quantity{Magnitude: 1, dims: map[string]int{}}

	tokens := strings.Fields(expr)
	if len(tokens) == 0 {
		return Quantity{}, fmt.Errorf("empty unit expression")
	}

	// Optional leading magnitude.
	if m, err := strconv.ParseFloat(tokens[0], 64); err == nil {
		q.Magnitude = m
		tokens = tokens[1:]
	}

	sign := 1
	for _, tok := range tokens {
		switch tok {
		case "/":
			sign = -1
		case "*":
			sign = 1
		default:
			dims, ok := defs[tok]
			if !ok {
				return Quantity{}, fmt.Errorf("undefined unit %q in %q", tok, expr)
			}
			for dim, exp := range dims {
				q.dims["["+dim+"]"] += sign * exp
			}
			sign = 1
		}
	}

	return q, nil
}
