package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ROSTER_"

// FileEnvVar names the variable holding an optional YAML config path.
const FileEnvVar = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ROSTER_CONFIG is set
//  3. env (prefix ROSTER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ROSTER_REMOTE_URL -> remote_url; keys stay flat to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// List fields decode into nil slices so a configured list replaces the
	// default instead of being merged into it element by element.
	cfg := *base
	cfg.WorkAreas, cfg.Technologies, cfg.CORSAllowedOrigins = nil, nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.WorkAreas == nil {
		cfg.WorkAreas = base.WorkAreas
	}
	if cfg.Technologies == nil {
		cfg.Technologies = base.Technologies
	}
	if cfg.CORSAllowedOrigins == nil {
		cfg.CORSAllowedOrigins = base.CORSAllowedOrigins
	}

	// Comma separated env values arrive as a single element.
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.Technologies = splitList(cfg.Technologies)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the binaries rely on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SheetBackend != SheetBackendMemory && c.SheetBackend != SheetBackendSQLite:
		return fmt.Errorf("%w: sheet_backend must be %q or %q, got %q",
			ErrInvalidConfig, SheetBackendMemory, SheetBackendSQLite, c.SheetBackend)
	case c.SheetBackend == SheetBackendSQLite && strings.TrimSpace(c.SheetPath) == "":
		return fmt.Errorf("%w: sheet_path is required for the sqlite backend", ErrInvalidConfig)
	case strings.TrimSpace(c.SheetName) == "":
		return fmt.Errorf("%w: sheet_name must not be empty", ErrInvalidConfig)
	case !validPolicy(c.UnknownWorkAreaPolicy):
		return fmt.Errorf("%w: unknown_work_area_policy %q", ErrInvalidConfig, c.UnknownWorkAreaPolicy)
	case !validPolicy(c.UnknownTechnologyPolicy):
		return fmt.Errorf("%w: unknown_technology_policy %q", ErrInvalidConfig, c.UnknownTechnologyPolicy)
	}
	for i, wa := range c.WorkAreas {
		if strings.TrimSpace(wa.ID) == "" {
			return fmt.Errorf("%w: work_areas[%d] has an empty id", ErrInvalidConfig, i)
		}
	}
	return nil
}

func validPolicy(p string) bool {
	return p == PolicyPassthrough || p == PolicyReject
}

func splitList(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
