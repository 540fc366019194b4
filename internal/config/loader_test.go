package config_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/okian/tipoff/internal/config"
	"github.com/okian/tipoff/internal/domain/rolling"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.RollingWeights, convey.ShouldResemble, []float64{0.4, 0.3, 0.2, 0.1})
				convey.So(cfg.EloK, convey.ShouldEqual, 20.0)
				convey.So(cfg.SeasonCutoffMonth, convey.ShouldEqual, 10)
				convey.So(cfg.SeasonCutoffDay, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TIPOFF_ADDR", ":8080")
			_ = os.Setenv("TIPOFF_ROLLING_WEIGHTS", "0.5,0.5")
			_ = os.Setenv("TIPOFF_ELO_K", "32")
			_ = os.Setenv("TIPOFF_SKIP_UNKNOWN_OUTCOMES", "true")
			_ = os.Setenv("TIPOFF_SWEEP_WEIGHTS", "1,0.6 0.4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EloK, convey.ShouldEqual, 32.0)
				convey.So(cfg.SkipUnknownOutcomes, convey.ShouldBeTrue)
			})

			convey.Convey("Then a shorter weight list replaces the default entirely", func() {
				convey.So(cfg.RollingWeights, convey.ShouldResemble, []float64{0.5, 0.5})
			})

			convey.Convey("Then sweep vectors are parsed", func() {
				vs, err := cfg.SweepVectors()
				convey.So(err, convey.ShouldBeNil)
				convey.So(vs, convey.ShouldResemble, [][]float64{{1}, {0.6, 0.4}})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
elo_home_advantage: 0
rolling_weights: [0.25, 0.25, 0.25, 0.25]
season_cutoff_month: 9
season_cutoff_day: 30
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIPOFF_CONFIG", tmpFile)
			_ = os.Setenv("TIPOFF_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EloHomeAdvantage, convey.ShouldEqual, 0.0)
				convey.So(cfg.RollingWeights, convey.ShouldResemble, []float64{0.25, 0.25, 0.25, 0.25})
				c, err := cfg.Cutoff()
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.String(), convey.ShouldEqual, "09-30")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIPOFF_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TIPOFF_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When env lists carry spaces around commas", func() {
			_ = os.Setenv("TIPOFF_ROLLING_WEIGHTS", " 0.25, 0.75 ")
			_ = os.Setenv("TIPOFF_SWEEP_WEIGHTS", "0.5 0.5 , 0.25 0.25 0.25 0.25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then each comma-separated item is one entry", func() {
				convey.So(cfg.RollingWeights, convey.ShouldResemble, []float64{0.25, 0.75})
				convey.So(cfg.SweepWeights, convey.ShouldResemble, []string{"0.5 0.5", "0.25 0.25 0.25 0.25"})
				vs, err := cfg.SweepVectors()
				convey.So(err, convey.ShouldBeNil)
				convey.So(vs, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When a file gives the weights as one comma-separated string", func() {
			tmpFile := createTempConfigFile("rolling_weights: \"0.5,0.5\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIPOFF_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the string is split into weights", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RollingWeights, convey.ShouldResemble, []float64{0.5, 0.5})
			})
		})

		convey.Convey("When an env weight is not a number", func() {
			_ = os.Setenv("TIPOFF_ROLLING_WEIGHTS", "0.5,abc")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the weights do not sum to one", func() {
			_ = os.Setenv("TIPOFF_ROLLING_WEIGHTS", "0.5,0.4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a configuration error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, rolling.ErrInvalidWeights), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TIPOFF_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "tipoff-config-*.yaml")
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
