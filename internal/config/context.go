// Package config provides the Context, a layered configuration object passed
// through model code and test fixtures.
//
// A Context carries well-known settings as typed fields (local data path,
// cache path, platform and scenario identification) plus an open-ended set of
// named values with setdefault semantics. Contexts are cloned per test
// function so that one test's mutations never leak into another.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// ErrNoSetting is returned by Get for a key that was never set.
var ErrNoSetting = errors.New("no such setting")

// Context is a layered key-value configuration object.
//
// The zero value is not usable; construct with New.
type Context struct {
	// LocalData is the root directory for local data files.
	LocalData string
	// CachePath overrides the default cache location (LocalData/cache).
	CachePath string
	// PlatformInfo identifies the platform backing this context ("name").
	PlatformInfo map[string]string
	// ScenarioInfo identifies the scenario under construction
	// ("model", "scenario").
	ScenarioInfo map[string]string

	// Logger, if set, receives deprecation warnings and progress messages.
	// When nil, slog.Default() is used.
	Logger *slog.Logger

	values map[string]any

	mp     *platform.Platform
	ownsMP bool

	// memoized results of LoadConfig and the unit registry
	configs map[string]map[string]any
	units   map[string]map[string]int
}

// New returns an empty Context.
func New() *Context {
	return &Context{
		PlatformInfo: make(map[string]string),
		ScenarioInfo: make(map[string]string),
		values:       make(map[string]any),
		configs:      make(map[string]map[string]any),
	}
}

func (c *Context) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Get returns the value stored under key.
//
// A key that was never set is an error (wrapping ErrNoSetting); it never
// silently yields a default. Use SetDefault for that.
func (c *Context) Get(key string) (any, error) {
	v, ok := c.values[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNoSetting)
	}
	return v, nil
}

// Set stores a value under key, replacing any existing value.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// SetDefault returns the value stored under key if present; otherwise it
// stores and returns def. An existing value is never overwritten.
func (c *Context) SetDefault(key string, def any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	c.values[key] = def
	return def
}

// UseDefaults applies SetDefault for every entry of settings.
func (c *Context) UseDefaults(settings map[string]any) {
	for key, value := range settings {
		c.SetDefault(key, value)
	}
}

// GetCachePath derives a path under the cache directory. Pure path join, no
// I/O: the result is CachePath (or LocalData/cache when unset) joined with
// parts.
func (c *Context) GetCachePath(parts ...string) string {
	base := c.CachePath
	if base == "" {
		base = filepath.Join(c.LocalData, "cache")
	}
	return filepath.Join(append([]string{base}, parts...)...)
}

// Clone returns a deep copy of the Context.
//
// Path fields and stored values are copied, so mutations of the clone are
// invisible to the original. The platform handle is shared - it belongs to
// the session, and the clone never owns it.
func (c *Context) Clone() *Context {
	clone := &Context{
		LocalData:    c.LocalData,
		CachePath:    c.CachePath,
		PlatformInfo: make(map[string]string, len(c.PlatformInfo)),
		ScenarioInfo: make(map[string]string, len(c.ScenarioInfo)),
		Logger:       c.Logger,
		values:       make(map[string]any, len(c.values)),
		mp:           c.mp,
		ownsMP:       false,
		configs:      make(map[string]map[string]any, len(c.configs)),
	}
	for k, v := range c.PlatformInfo {
		clone.PlatformInfo[k] = v
	}
	for k, v := range c.ScenarioInfo {
		clone.ScenarioInfo[k] = v
	}
	for k, v := range c.values {
		clone.values[k] = deepCopyValue(v)
	}
	// Memoized structures are handed out by LoadConfig and Units, so a caller
	// may mutate them; copy so those mutations stay within one clone.
	for k, v := range c.configs {
		clone.configs[k] = deepCopyValue(v).(map[string]any)
	}
	if c.units != nil {
		clone.units = make(map[string]map[string]int, len(c.units))
		for unit, dims := range c.units {
			d := make(map[string]int, len(dims))
			for name, exp := range dims {
				d[name] = exp
			}
			clone.units[unit] = d
		}
	}
	return clone
}

// deepCopyValue copies nested maps and slices so post-clone mutations stay
// independent. Scalars and unrecognized types are returned as-is.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = deepCopyValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []int:
		out := make([]int, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// SetPlatform attaches an already-open platform handle to the context.
// The context does not own the handle and Delete will not close it.
func (c *Context) SetPlatform(mp *platform.Platform) {
	c.mp = mp
	c.ownsMP = false
}

// GetPlatform returns the platform backing this context.
//
// A handle attached via SetPlatform (or inherited through Clone) is returned
// directly. Otherwise a connection is opened using PlatformInfo["name"]; a
// handle opened this way is owned by the context and closed by Delete.
func (c *Context) GetPlatform() (*platform.Platform, error) {
	if c.mp != nil {
		return c.mp, nil
	}
	name := c.PlatformInfo["name"]
	if name == "" {
		return nil, fmt.Errorf("get platform: PlatformInfo[\"name\"] is not set")
	}
	mp, err := platform.Open(name)
	if err != nil {
		return nil, err
	}
	c.mp = mp
	c.ownsMP = true
	return mp, nil
}

// Delete releases resources held by the context. Shared platform handles are
// left open for the session; only a handle the context opened itself is
// closed. Delete is idempotent.
func (c *Context) Delete() error {
	var err error
	if c.ownsMP && c.mp != nil {
		err = c.mp.Close()
	}
	c.mp = nil
	c.ownsMP = false
	c.values = make(map[string]any)
	return err
}
