package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-dfg/pkg/config"
	"github.com/dd0wney/cluso-dfg/pkg/dfg"
)

// ErrTooManyTraces is returned when the input exceeds --max-traces
var ErrTooManyTraces = errors.New("too many traces")

type options struct {
	input      string
	configPath string
	jsonOutput bool
	maxTraces  int

	dependencyThreshold  float64
	positiveObservations float64
	relativeToBest       float64
	buildWorkers         int
	analysisWorkers      int
	artificialEndpoints  bool
}

func (o *options) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.input, "input", "i", "-", "Traces as a JSON array of string arrays (- for stdin)")
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML settings file")
	flags.BoolVar(&o.jsonOutput, "json", false, "Write JSON instead of a styled report")
	flags.IntVar(&o.maxTraces, "max-traces", 0, "Reject inputs with more traces (0 = unlimited)")

	flags.Float64Var(&o.dependencyThreshold, "dependency-threshold", 0, "Minimum dependency measure [-1,1]")
	flags.Float64Var(&o.positiveObservations, "positive-observations", 0, "Minimum edge frequency as a fraction of traces (0 disables)")
	flags.Float64Var(&o.relativeToBest, "relative-to-best", 0, "Allowed dependency gap to the best outgoing edge (1 disables)")
	flags.IntVar(&o.buildWorkers, "build-workers", 0, "Goroutines folding traces (0 = one per CPU)")
	flags.IntVar(&o.analysisWorkers, "analysis-workers", 0, "Goroutines computing shortest paths")
	flags.BoolVar(&o.artificialEndpoints, "artificial-endpoints", false, "Bracket every trace with synthetic start and end activities")
}

// settings loads the config file (or defaults) and applies flags the user set
func (o *options) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dependency-threshold") {
		cfg.Filter.DependencyThreshold = o.dependencyThreshold
	}
	if flags.Changed("positive-observations") {
		cfg.Filter.PositiveObservations = o.positiveObservations
	}
	if flags.Changed("relative-to-best") {
		cfg.Filter.RelativeToBest = o.relativeToBest
	}
	if flags.Changed("build-workers") {
		cfg.Build.Workers = o.buildWorkers
	}
	if flags.Changed("analysis-workers") {
		cfg.Analysis.Workers = o.analysisWorkers
	}
	if flags.Changed("artificial-endpoints") {
		cfg.Build.ArtificialEndpoints = o.artificialEndpoints
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// traces reads the input file, or stdin for "-"
func (o *options) traces(stdin io.Reader) ([]dfg.Trace, error) {
	r := stdin
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return decodeTraces(r, o.maxTraces)
}

func decodeTraces(r io.Reader, limit int) ([]dfg.Trace, error) {
	var traces []dfg.Trace
	if err := json.NewDecoder(r).Decode(&traces); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode traces: %w", err)
	}
	if limit > 0 && len(traces) > limit {
		return nil, fmt.Errorf("%w: %d exceeds limit %d", ErrTooManyTraces, len(traces), limit)
	}
	return traces, nil
}
