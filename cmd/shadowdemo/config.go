package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// config holds the demo settings. Fields are read from an optional TOML
// file and then overridden by command-line flags that were set.
type config struct {
	BudgetKB       uint32 `toml:"budget_kb"`
	Frames         int    `toml:"frames"`
	Geometries     int    `toml:"geometries"`
	Lights         int    `toml:"lights"`
	EditEvery      int    `toml:"edit_every"`
	MoveLightEvery int    `toml:"move_light_every"`
	Verbose        bool   `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		BudgetKB:       64,
		Frames:         100,
		Geometries:     50,
		Lights:         2,
		EditEvery:      10,
		MoveLightEvery: 25,
	}
}

var errInvalidConfig = errors.New("invalid config")

func (c config) validate() error {
	switch {
	case c.Frames < 0:
		return fmt.Errorf("%w: frames must not be negative", errInvalidConfig)
	case c.Geometries < 1:
		return fmt.Errorf("%w: need at least one geometry", errInvalidConfig)
	case c.Lights < 1:
		return fmt.Errorf("%w: need at least one light", errInvalidConfig)
	case c.EditEvery < 0 || c.MoveLightEvery < 0:
		return fmt.Errorf("%w: intervals must not be negative", errInvalidConfig)
	}
	return nil
}

// loadConfig reads a TOML file over the defaults. Unknown keys are errors.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

// parseArgs parses the command line into a config.
func parseArgs(args []string) (config, error) {
	fs := flag.NewFlagSet("shadowdemo", flag.ContinueOnError)
	var budgetKB uint32
	fs.Func("budget", "cache budget in KB", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return errors.New("budget must be a 32-bit KB count")
		}
		budgetKB = uint32(v)
		return nil
	})
	var (
		configPath     = fs.String("config", "", "TOML config file")
		frames         = fs.Int("frames", 0, "number of frames to simulate")
		geometries     = fs.Int("geometries", 0, "number of geometries")
		lights         = fs.Int("lights", 0, "number of lights")
		editEvery      = fs.Int("edit-every", 0, "edit one geometry every N frames")
		moveLightEvery = fs.Int("move-light-every", 0, "move one light every N frames")
		verbose        = fs.Bool("v", false, "log cache activity")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "budget":
			cfg.BudgetKB = budgetKB
		case "frames":
			cfg.Frames = *frames
		case "geometries":
			cfg.Geometries = *geometries
		case "lights":
			cfg.Lights = *lights
		case "edit-every":
			cfg.EditEvery = *editEvery
		case "move-light-every":
			cfg.MoveLightEvery = *moveLightEvery
		case "v":
			cfg.Verbose = *verbose
		}
	})
	return cfg, cfg.validate()
}
