// Package config defines process configuration for the roster binaries.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and ROSTER_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"
)

// Sheet backend names.
const (
	SheetBackendMemory = "memory"
	SheetBackendSQLite = "sqlite"
)

// Unknown-input policies for catalog matching.
const (
	PolicyPassthrough = "passthrough"
	PolicyReject      = "reject"
)

// WorkArea is one selectable work area and its display label.
type WorkArea struct {
	ID    string `koanf:"id"`
	Label string `koanf:"label"`
}

// Config contains process configuration shared by server and CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the append store.
	Addr string `koanf:"addr"`

	// SheetBackend selects the append store storage: memory or sqlite.
	SheetBackend string `koanf:"sheet_backend"`

	// SheetPath is the SQLite database file for the sqlite backend.
	SheetPath string `koanf:"sheet_path"`

	// SheetName names the table that receives rows.
	SheetName string `koanf:"sheet_name"`

	// CORSAllowedOrigins lists origins allowed to call the append store.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RemoteURL is the append endpoint the CLI delivers to. Empty disables delivery.
	RemoteURL string `koanf:"remote_url"`

	// RemoteTimeoutMS bounds one delivery round trip.
	RemoteTimeoutMS int `koanf:"remote_timeout_ms"`

	// StatePath is the CLI's local state file.
	StatePath string `koanf:"state_path"`

	// OutboxSize bounds the in-memory outbox queue.
	OutboxSize int `koanf:"outbox_size"`

	// WorkerCount sets the number of dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// DrainTimeoutMS bounds how long the CLI waits for pending deliveries.
	DrainTimeoutMS int `koanf:"drain_timeout_ms"`

	// ConfirmationTTLMS is how long a success confirmation stays visible.
	ConfirmationTTLMS int `koanf:"confirmation_ttl_ms"`

	// WorkAreas is the ordered work-area catalog.
	WorkAreas []WorkArea `koanf:"work_areas"`

	// Technologies is the technology catalog.
	Technologies []string `koanf:"technologies"`

	// UnknownWorkAreaPolicy is passthrough or reject.
	UnknownWorkAreaPolicy string `koanf:"unknown_work_area_policy"`

	// UnknownTechnologyPolicy is passthrough or reject.
	UnknownTechnologyPolicy string `koanf:"unknown_technology_policy"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		SheetBackend:       SheetBackendMemory,
		SheetPath:          "roster.db",
		SheetName:          "registrations",
		CORSAllowedOrigins: []string{"*"},
		RemoteURL:          "",
		RemoteTimeoutMS:    10_000,
		StatePath:          ".roster-state.json",
		OutboxSize:         1_000,
		WorkerCount:        runtime.NumCPU(),
		DrainTimeoutMS:     15_000,
		ConfirmationTTLMS:  5_000,
		WorkAreas: []WorkArea{
			{ID: "frontend", Label: "Front-end"},
			{ID: "backend", Label: "Back-end"},
			{ID: "documentation", Label: "Documentation"},
			{ID: "deployment", Label: "Deployment"},
		},
		Technologies: []string{
			"Django", "Django REST", "React", "Next.js", "Spring", "NestJS",
			"Laravel", "Vue.js", "Angular", "Express.js", "FastAPI", "Flask",
			"Node.js", "TypeScript", "JavaScript", "Python", "Java", "PHP",
		},
		UnknownWorkAreaPolicy:   PolicyPassthrough,
		UnknownTechnologyPolicy: PolicyPassthrough,
	}
}
