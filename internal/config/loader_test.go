package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/roster/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.SheetBackend, convey.ShouldEqual, config.SheetBackendMemory)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ConfirmationTTLMS, convey.ShouldEqual, 5000)
			convey.So(cfg.WorkAreas, convey.ShouldHaveLength, 4)
			convey.So(cfg.WorkAreas[1], convey.ShouldResemble, config.WorkArea{ID: "backend", Label: "Back-end"})
			convey.So(cfg.Technologies, convey.ShouldHaveLength, 18)
			convey.So(cfg.UnknownWorkAreaPolicy, convey.ShouldEqual, config.PolicyPassthrough)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.OutboxSize, convey.ShouldEqual, 1000)
				convey.So(cfg.RemoteURL, convey.ShouldEqual, "")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ROSTER_ADDR", ":8080")
			_ = os.Setenv("ROSTER_OUTBOX_SIZE", "50")
			_ = os.Setenv("ROSTER_WORKER_COUNT", "3")
			_ = os.Setenv("ROSTER_REMOTE_URL", "http://localhost:8080/submissions")
			_ = os.Setenv("ROSTER_SHEET_BACKEND", "sqlite")
			_ = os.Setenv("ROSTER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.OutboxSize, convey.ShouldEqual, 50)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.RemoteURL, convey.ShouldEqual, "http://localhost:8080/submissions")
				convey.So(cfg.SheetBackend, convey.ShouldEqual, config.SheetBackendSQLite)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
sheet_backend: sqlite
sheet_path: /tmp/roster-test.db
sheet_name: "nuit de linfo"
confirmation_ttl_ms: 2500
unknown_work_area_policy: reject
work_areas:
  - id: ops
    label: Operations
  - id: qa
    label: Quality
technologies:
  - Go
  - Rust
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ROSTER_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SheetBackend, convey.ShouldEqual, config.SheetBackendSQLite)
				convey.So(cfg.SheetName, convey.ShouldEqual, "nuit de linfo")
				convey.So(cfg.ConfirmationTTLMS, convey.ShouldEqual, 2500)
				convey.So(cfg.UnknownWorkAreaPolicy, convey.ShouldEqual, config.PolicyReject)
				convey.So(cfg.WorkAreas, convey.ShouldResemble, []config.WorkArea{
					{ID: "ops", Label: "Operations"},
					{ID: "qa", Label: "Quality"},
				})
				convey.So(cfg.Technologies, convey.ShouldResemble, []string{"Go", "Rust"})
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\noutbox_size: 300\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ROSTER_CONFIG", tmpFile)
			_ = os.Setenv("ROSTER_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.OutboxSize, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ROSTER_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ROSTER_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ROSTER_OUTBOX_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("ROSTER_ADDR", "")
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sheet backend is unknown", func() {
			_ = os.Setenv("ROSTER_SHEET_BACKEND", "spreadsheet")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a policy is unknown", func() {
			_ = os.Setenv("ROSTER_UNKNOWN_TECHNOLOGY_POLICY", "ignore")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a work area has no id", func() {
			cfg := config.New()
			cfg.WorkAreas = append(cfg.WorkAreas, config.WorkArea{Label: "Nameless"})
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When sqlite is selected without a path", func() {
			cfg := config.New()
			cfg.SheetBackend = config.SheetBackendSQLite
			cfg.SheetPath = " "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"ROSTER_CONFIG",
		"ROSTER_ADDR",
		"ROSTER_OUTBOX_SIZE",
		"ROSTER_WORKER_COUNT",
		"ROSTER_REMOTE_URL",
		"ROSTER_SHEET_BACKEND",
		"ROSTER_CORS_ALLOWED_ORIGINS",
		"ROSTER_UNKNOWN_TECHNOLOGY_POLICY",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "roster-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
