// Package config loads the benchmark configuration: which annotators to run,
// on which datasets, for which experiments.
//
// The file is YAML. JSON configurations written for older tools parse
// unchanged since JSON is a subset of YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nopper/wikibench"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete benchmark configuration.
type Config struct {
	Annotators  []Annotator  `yaml:"annotators"`
	Datasets    []Dataset    `yaml:"datasets"`
	Experiments []Experiment `yaml:"experiments"`
}

// Annotator selects an annotator implementation by kind and names the
// instance with an alias, which is also its results directory.
type Annotator struct {
	Name          string            `yaml:"name"`
	Alias         string            `yaml:"alias"`
	Configuration map[string]string `yaml:"configuration"`
}

// Dataset is a gold dataset on disk.
type Dataset struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Experiment is a task and the directory its results are written to.
type Experiment struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Task returns the task the experiment evaluates.
func (e Experiment) Task() (wikibench.Task, error) {
	return wikibench.ParseTask(e.Name)
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every entry is named, aliases and dataset names are
// unique, and experiments name a known task.
func (c *Config) Validate() error {
	var errs []error

	aliases := make(map[string]bool)
	for i, a := range c.Annotators {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("annotators[%d]: missing name", i))
		case a.Alias == "":
			errs = append(errs, fmt.Errorf("annotators[%d]: missing alias", i))
		case aliases[a.Alias]:
			errs = append(errs, fmt.Errorf("annotators[%d]: duplicate alias %q", i, a.Alias))
		}
		aliases[a.Alias] = true
	}

	names := make(map[string]bool)
	for i, d := range c.Datasets {
		switch {
		case d.Name == "" || d.File == "":
			errs = append(errs, fmt.Errorf("datasets[%d]: name and file are required", i))
		case names[d.Name]:
			errs = append(errs, fmt.Errorf("datasets[%d]: duplicate name %q", i, d.Name))
		}
		names[d.Name] = true
	}

	for i, e := range c.Experiments {
		if e.File == "" {
			errs = append(errs, fmt.Errorf("experiments[%d]: missing file", i))
		}
		if _, err := e.Task(); err != nil {
			errs = append(errs, fmt.Errorf("experiments[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ReportOptions control how results are scored and printed.
type ReportOptions struct {
	// Strong selects the strong matching policy of each task.
	Strong bool
	// Best names the score ("confidence" or "coherence") to threshold on.
	// Empty disables thresholding.
	Best string
	// Threshold fixes the threshold instead of searching for the best one.
	Threshold float64
	// Optimize is the statistic maximized by the threshold search.
	Optimize string
	// TableFormat is the table style: simple, plain, markdown, rounded or ascii.
	TableFormat string
	// Recap prints a summary line per document.
	Recap bool
	// Detailed prints the full classification of every document.
	Detailed bool
	// Slice restricts evaluation to the gold instances in "start:end".
	Slice string
}

// DefaultReportOptions returns the options used when no flag is given.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Optimize:    string(wikibench.StatMacroF1),
		TableFormat: "simple",
	}
}

// Thresholding reports whether predictions are filtered by score.
func (o ReportOptions) Thresholding() bool {
	return o.Best != ""
}

// Normalize drops a threshold given without a score to apply it to. It
// reports whether the threshold was dropped.
func (o *ReportOptions) Normalize() bool {
	if o.Threshold > 0 && o.Best == "" {
		o.Threshold = 0
		return true
	}
	return false
}

// ParseSlice parses "start:end", "start:" or "start". Missing or empty
// parts are returned as 0, which mention.Dataset.Slice reads as the
// dataset bounds.
func ParseSlice(s string) (start, end int, err error) {
	if s == "" {
		return 0, 0, nil
	}

	first, second, _ := strings.Cut(s, ":")
	if first != "" {
		if start, err = strconv.Atoi(first); err != nil {
			return 0, 0, fmt.Errorf("%w: slice %q: %v", ErrInvalidConfig, s, err)
		}
	}
	if second != "" {
		if end, err = strconv.Atoi(second); err != nil {
			return 0, 0, fmt.Errorf("%w: slice %q: %v", ErrInvalidConfig, s, err)
		}
	}
	if start < 0 || end < 0 {
		return 0, 0, fmt.Errorf("%w: slice %q: negative bound", ErrInvalidConfig, s)
	}
	return start, end, nil
}
