package main

import (
	"flag"
	"os"

	"gridmdp/config"
	"gridmdp/experiments"
	"gridmdp/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a YAML config file")
	experiment := flag.String("experiment", "solve", "Experiment to run: solve, runtime or rollout")
	seed := flag.Uint64("seed", 0, "Seed for map generation and rollouts, 0 seeds from the clock")
	output := flag.String("out", "", "Root directory of experiment results")
	runs := flag.Int("runs", meta.RuntimeRuns, "Timed runs per configuration in the runtime experiment")
	color := flag.String("color", "", "Colour reports: auto, always or never (default from config)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *color != "" {
		cfg.Color = *color
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid -color")
		}
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)

	var dir string
	switch *experiment {
	case "solve":
		dir, err = experiments.RunSolve(cfg, os.Stdout)
	case "runtime":
		dir, err = experiments.RunRuntime(cfg, *runs, os.Stdout)
	case "rollout":
		dir, err = experiments.RunRollout(cfg, os.Stdout)
	default:
		log.Fatal().Msgf("unknown experiment %q", *experiment)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s experiment failed", *experiment)
	}
	log.Info().Msgf("results stored in %s", dir)
}
