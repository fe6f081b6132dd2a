package config

import (
	"fmt"
	"os"
	"strconv"

	"gridmdp/grid"
	"gridmdp/meta"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = fmt.Errorf("config: %w", grid.ErrInvalidConfig)

// Config holds every tunable of a run.
type Config struct {
	Rows                int     `yaml:"rows"`
	Cols                int     `yaml:"cols"`
	Randomized          bool    `yaml:"randomized"`
	GoalRatio           float64 `yaml:"goal_ratio"` // Percent of tiles turned into terminals
	WallRatio           float64 `yaml:"wall_ratio"` // Percent of tiles turned into walls
	Discount            float64 `yaml:"discount"`
	Noise               float64 `yaml:"noise"`
	LivingReward        float64 `yaml:"living_reward"`
	Theta               float64 `yaml:"theta"`
	MaxSweeps           int     `yaml:"max_sweeps"`
	MaxIterations       int     `yaml:"max_iterations"`
	MaxEvaluationSweeps int     `yaml:"max_evaluation_sweeps"`
	Goroutines          int     `yaml:"goroutines"`
	Seed                uint64  `yaml:"seed"` // Zero seeds from the clock
	Rollouts            int     `yaml:"rollouts"`
	LogLevel            string  `yaml:"log_level"`
	Color               string  `yaml:"color"`  // auto, always or never
	Output              string  `yaml:"output"` // Root directory of experiment results
}

// Default returns the fixed 6x6 scenario with the package defaults.
func Default() Config {
	return Config{
		Rows:                6,
		Cols:                6,
		GoalRatio:           meta.GoalRatio,
		WallRatio:           meta.WallRatio,
		Discount:            meta.Discount,
		Noise:               meta.Noise,
		LivingReward:        meta.LivingReward,
		Theta:               meta.Theta,
		MaxSweeps:           meta.MaxSweeps,
		MaxIterations:       meta.MaxIterations,
		MaxEvaluationSweeps: meta.MaxEvaluationSweeps,
		Goroutines:          meta.Goroutines,
		Rollouts:            meta.Rollouts,
		LogLevel:            "info",
		Color:               "auto",
		Output:              "results",
	}
}

// Load reads the YAML file at path over the defaults, then applies a .env
// file and GRIDMDP_* environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Load .env file if available
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"GRIDMDP_ROWS":       &c.Rows,
		"GRIDMDP_COLS":       &c.Cols,
		"GRIDMDP_GOROUTINES": &c.Goroutines,
	}
	for key, field := range ints {
		if value, ok := os.LookupEnv(key); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer: %v", ErrInvalidConfig, key, err)
			}
			*field = parsed
		}
	}

	floats := map[string]*float64{
		"GRIDMDP_NOISE":         &c.Noise,
		"GRIDMDP_DISCOUNT":      &c.Discount,
		"GRIDMDP_LIVING_REWARD": &c.LivingReward,
		"GRIDMDP_THETA":         &c.Theta,
	}
	for key, field := range floats {
		if value, ok := os.LookupEnv(key); ok {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%w: %s must be a number: %v", ErrInvalidConfig, key, err)
			}
			*field = parsed
		}
	}

	if value, ok := os.LookupEnv("GRIDMDP_SEED"); ok {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: GRIDMDP_SEED must be an unsigned integer: %v", ErrInvalidConfig, err)
		}
		c.Seed = parsed
	}
	if value, ok := os.LookupEnv("GRIDMDP_LOG_LEVEL"); ok {
		c.LogLevel = value
	}
	if value, ok := os.LookupEnv("GRIDMDP_COLOR"); ok {
		c.Color = value
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Theta <= 0 {
		return fmt.Errorf("%w: theta %v must be positive", ErrInvalidConfig, c.Theta)
	}
	if c.Goroutines <= 0 || c.Rollouts <= 0 {
		return fmt.Errorf("%w: goroutines and rollouts must be positive", ErrInvalidConfig)
	}
	if c.MaxSweeps <= 0 || c.MaxIterations <= 0 || c.MaxEvaluationSweeps <= 0 {
		return fmt.Errorf("%w: sweep and iteration budgets must be positive", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: color %q must be auto, always or never", ErrInvalidConfig, c.Color)
	}
	return nil
}

func (c Config) Layout() grid.Layout {
	return grid.Layout{
		Rows:       c.Rows,
		Cols:       c.Cols,
		Randomized: c.Randomized,
		GoalRatio:  c.GoalRatio,
		WallRatio:  c.WallRatio,
	}
}

func (c Config) Params() grid.Params {
	return grid.Params{
		Discount:     c.Discount,
		Noise:        c.Noise,
		LivingReward: c.LivingReward,
	}
}

// Level parses LogLevel. An empty level means info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// Colors decides whether reports are coloured. In auto mode colour follows
// whether the output is a terminal.
func (c Config) Colors(terminal bool) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return terminal
}
