// Licensed under the MIT License. See LICENSE file in the project root for details.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the command line surface. Struct tags are interpreted by
// github.com/jessevdk/go-flags, which also renders the usage text.
type Options struct {
	Workload string `short:"f" long:"workload" description:"YAML workload file overriding the default sizes"`
	Suite    int    `short:"s" long:"suite" description:"Run only the numbered suite (1-8); 0 runs all" default:"0"`
}

// Workload holds the knobs every suite reads. A YAML workload file overrides
// only the fields it names; everything else keeps its default.
type Workload struct {
	Items           int     `yaml:"items"`
	OpsPerGoroutine int     `yaml:"ops_per_goroutine"`
	Goroutines      []int   `yaml:"goroutines"`
	ReadRatio       float64 `yaml:"read_ratio"`
	ChurnRounds     int     `yaml:"churn_rounds"`
}

// DefaultWorkload returns the sizes the suites run with when no workload file
// is given.
func DefaultWorkload() Workload {
	return Workload{
		Items:           100000,
		OpsPerGoroutine: 10000,
		Goroutines:      []int{1, 2, 4, 8, 16, 32},
		ReadRatio:       0.8,
		ChurnRounds:     10,
	}
}

// LoadWorkload reads a YAML workload file over the defaults.
func LoadWorkload(path string) (Workload, error) {
	w := DefaultWorkload()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read workload file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("failed to parse workload file %q: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return w, fmt.Errorf("invalid workload file %q: %w", path, err)
	}
	return w, nil
}

// Validate rejects sizes the suites cannot run with.
func (w Workload) Validate() error {
	if w.Items <= 0 {
		return fmt.Errorf("items must be positive, got %d", w.Items)
	}
	if w.OpsPerGoroutine <= 0 {
		return fmt.Errorf("ops_per_goroutine must be positive, got %d", w.OpsPerGoroutine)
	}
	if len(w.Goroutines) == 0 {
		return fmt.Errorf("goroutines must name at least one rung")
	}
	for _, n := range w.Goroutines {
		if n <= 0 {
			return fmt.Errorf("goroutine rungs must be positive, got %d", n)
		}
	}
	if w.ReadRatio < 0 || w.ReadRatio > 1 {
		return fmt.Errorf("read_ratio must be within [0, 1], got %g", w.ReadRatio)
	}
	if w.ChurnRounds <= 0 {
		return fmt.Errorf("churn_rounds must be positive, got %d", w.ChurnRounds)
	}
	return nil
}
