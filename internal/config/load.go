package config

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// schemaCUE constrains the shape of packaged configuration files: a mapping
// from string keys to scalars, lists, or nested mappings. Null values are
// rejected.
const schemaCUE = `
#Value: string | number | bool | [...#Value] | {[string]: #Value}

#ConfigFile: {
	[string]: #Value
}
`

// LoadConfig loads and parses the packaged configuration file data/<name>.yaml.
//
// The parsed mapping is validated against an embedded CUE schema, memoized,
// and additionally stored in the context under <name> so later Get calls can
// retrieve it.
//
// Deprecated: configuration files should be loaded once at startup, not
// through the Context. Retained for compatibility; every call logs a
// deprecation warning.
func (c *Context) LoadConfig(name string) (map[string]any, error) {
	c.log().Warn("Context.LoadConfig is deprecated",
		"deprecated", true, "name", name)

	if cached, ok := c.configs[name]; ok {
		return cached, nil
	}

	raw, err := dataFS.ReadFile("data/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", name, err)
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("load config %q: %w", name, err)
	}

	if err := validateConfig(parsed); err != nil {
		return nil, fmt.Errorf("load config %q: %w", name, err)
	}

	c.configs[name] = parsed
	c.values[name] = parsed
	return parsed, nil
}

// validateConfig unifies a parsed configuration mapping with the embedded CUE
// schema and checks that the result is concrete.
func validateConfig(parsed map[string]any) error {
	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#ConfigFile"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	value := cctx.Encode(parsed)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
