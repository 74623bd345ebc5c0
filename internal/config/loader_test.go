package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/brc/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 8<<20)
				convey.So(cfg.ParseMode, convey.ShouldEqual, "relaxed")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BRC_WORKERS", "16")
			_ = os.Setenv("BRC_CHUNK_SIZE", "4096")
			_ = os.Setenv("BRC_PARSE_MODE", "strict")
			_ = os.Setenv("BRC_METRICS_ADDR", ":9100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 16)
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 4096)
				convey.So(cfg.ParseMode, convey.ShouldEqual, "strict")
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9100")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
log_level: debug
workers: 24
chunk_size: 65536
queue_size: 32
metrics_file: /tmp/brc.prom
`)
			_ = os.Setenv("BRC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Workers, convey.ShouldEqual, 24)
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 65536)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.MetricsFile, convey.ShouldEqual, "/tmp/brc.prom")
				convey.So(cfg.ParseMode, convey.ShouldEqual, "relaxed") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
workers: 24
chunk_size: 65536
`)
			_ = os.Setenv("BRC_WORKERS", "32") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.LoadFile(ctx, tmpFile)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 32)
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 65536)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			cfg, err := config.LoadFile(ctx, tmpFile)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.LoadFile(ctx, "/non/existent/file.yaml")

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BRC_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with a zero chunk size", func() {
			_ = os.Setenv("BRC_CHUNK_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "chunk_size")
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with an unknown parse mode", func() {
			_ = os.Setenv("BRC_PARSE_MODE", "lenient")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BRC_CONFIG",
		"BRC_LOG_LEVEL",
		"BRC_LOG_FORMAT",
		"BRC_WORKERS",
		"BRC_CHUNK_SIZE",
		"BRC_QUEUE_SIZE",
		"BRC_STATION_HINT",
		"BRC_PARSE_MODE",
		"BRC_METRICS_ADDR",
		"BRC_METRICS_FILE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "brc-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
