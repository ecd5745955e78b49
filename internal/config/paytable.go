package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"casino-minigames/internal/crash"
	"casino-minigames/internal/dice"
	"casino-minigames/internal/plinko"
)

// PaytableFile is the optional YAML override for game odds.
//
//	dice: [6, 2, 1, 0.5]
//	plinko:
//	  wide:
//	    - {multiplier: 20, weight: 1}
//	crash:
//	  - {below: 1.2, hazard: 0.02}
//	  - {hazard: 0.00005}
type PaytableFile struct {
	Dice   []float64               `yaml:"dice"`
	Plinko map[string][]plinko.Bin `yaml:"plinko"`
	Crash  []CrashBand             `yaml:"crash"`
}

// CrashBand is a hazard band with its bound written as a multiplier.
// A missing bound marks the open-ended last band.
type CrashBand struct {
	Below  float64 `yaml:"below"`
	Hazard float64 `yaml:"hazard"`
}

// Paytables is what the games run with after defaults and overrides merge.
type Paytables struct {
	Dice   dice.Paytable
	Plinko plinko.Registry
	Crash  crash.Bands
}

func DefaultPaytables() Paytables {
	return Paytables{
		Dice:   dice.DefaultPaytable(),
		Plinko: plinko.DefaultRegistry(),
		Crash:  crash.DefaultBands(),
	}
}

// LoadPaytables merges the YAML file at path over the compiled defaults. An
// empty path or a missing file yields the defaults.
func LoadPaytables(path string) (Paytables, error) {
	pt := DefaultPaytables()
	if path == "" {
		return pt, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return pt, nil
		}
		return pt, fmt.Errorf("read paytables: %w", err)
	}

	var file PaytableFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return pt, fmt.Errorf("parse paytables: %w", err)
	}
	return file.apply(pt)
}

func (f PaytableFile) apply(pt Paytables) (Paytables, error) {
	if len(f.Dice) > 0 {
		table := dice.Paytable(f.Dice)
		if err := table.Validate(); err != nil {
			return pt, err
		}
		pt.Dice = table
	}

	for name, bins := range f.Plinko {
		t, err := plinko.NewTable(name, bins)
		if err != nil {
			return pt, err
		}
		pt.Plinko[name] = t
	}

	if len(f.Crash) > 0 {
		bands := make(crash.Bands, len(f.Crash))
		for i, b := range f.Crash {
			bands[i] = crash.Band{Below: int64(math.Round(b.Below * 100)), Hazard: b.Hazard}
		}
		if err := bands.Validate(); err != nil {
			return pt, err
		}
		pt.Crash = bands
	}
	return pt, nil
}
