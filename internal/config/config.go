package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig holds configuration for one analysis pipeline.
type PipelineConfig struct {
	// Chunk, Segment and Overlap are the job's CHUNKDURATION,
	// SEGMENTDURATION and OVERLAPDURATION in seconds.
	Chunk   float64 `yaml:"chunk_duration"`
	Segment float64 `yaml:"segment_duration"`
	Overlap float64 `yaml:"overlap_duration"`

	DAGPath     string   `yaml:"dag"`               // DAG file submitted by "run"
	SubFiles    []string `yaml:"sub_files"`         // submit descriptions patched before submission
	SegmentFile string   `yaml:"segment_file"`      // bookkeeping file of processed segments
	SubmitArgs  []string `yaml:"submit_args"`       // extra condor_submit_dag arguments
	Arguments   string   `yaml:"arguments"`         // prepended to each job's arguments
	Image       string   `yaml:"singularity_image"` // container image, empty for none

	SubmitExecutable string `yaml:"submit_executable"` // default condor_submit_dag
	QueryExecutable  string `yaml:"query_executable"`  // default condor_q

	DBPath    string `yaml:"db"`         // SQLite run ledger (default ~/.omicron/runs.db)
	Addr      string `yaml:"addr"`       // HTTP listen address for "serve"
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json

	// StateChannels overrides or extends DefaultStateChannels.
	StateChannels map[string]string `yaml:"state_channels"`
}

// DefaultPipelineConfig returns sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Chunk:            124,
		Segment:          64,
		Overlap:          4,
		SubmitExecutable: "condor_submit_dag",
		QueryExecutable:  "condor_q",
		Addr:             ":8090",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks chunk > segment > overlap >= 0.
func (c PipelineConfig) Validate() error {
	switch {
	case c.Overlap < 0:
		return fmt.Errorf("overlap_duration %v must not be negative", c.Overlap)
	case c.Segment <= c.Overlap:
		return fmt.Errorf("segment_duration %v must exceed overlap_duration %v", c.Segment, c.Overlap)
	case c.Chunk <= c.Segment:
		return fmt.Errorf("chunk_duration %v must exceed segment_duration %v", c.Chunk, c.Segment)
	}
	return nil
}

// Channels returns the state-channel table with this config's overrides applied.
func (c PipelineConfig) Channels() StateChannels {
	return DefaultStateChannels().With(c.StateChannels)
}
