package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-dfg/pkg/discovery"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/metrics"
)

func mine(cmd *cobra.Command, opts *options) (*discovery.Model, error) {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return nil, err
	}
	traces, err := opts.traces(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	logger := logging.NewFromEnv(cfg.LogLevel())
	miner, err := discovery.FromConfig(cfg,
		discovery.WithLogger(logger),
		discovery.WithMetrics(metrics.DefaultRegistry()),
	)
	if err != nil {
		return nil, err
	}
	return miner.Discover(cmd.Context(), traces)
}

type discoverOutput struct {
	Summary discovery.Summary    `json:"summary"`
	Edges   []discovery.EdgeView `json:"edges"`
	Loops   [][]string           `json:"loop_regions,omitempty"`
}

func runDiscover(cmd *cobra.Command, opts *options) error {
	model, err := mine(cmd, opts)
	if err != nil {
		return err
	}

	out := discoverOutput{
		Summary: model.Summary(),
		Edges:   model.Edges(),
		Loops:   model.LoopRegions(),
	}
	if opts.jsonOutput {
		return writeJSON(cmd, out)
	}
	_, err = cmd.OutOrStdout().Write([]byte(renderDiscover(out)))
	return err
}

type pathOutput struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Reachable bool     `json:"reachable"`
	Distance  *int     `json:"distance"`
	Path      []string `json:"path"`
}

func runPaths(cmd *cobra.Command, opts *options, from, to string) error {
	model, err := mine(cmd, opts)
	if err != nil {
		return err
	}

	d, err := model.Distance(from, to)
	if err != nil {
		return err
	}
	path, err := model.Path(from, to)
	if err != nil {
		return err
	}

	out := pathOutput{From: from, To: to, Reachable: d.Reachable(), Path: path}
	if hops, ok := d.Hops(); ok {
		out.Distance = &hops
	}
	if opts.jsonOutput {
		return writeJSON(cmd, out)
	}
	_, err = cmd.OutOrStdout().Write([]byte(renderPath(out)))
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
