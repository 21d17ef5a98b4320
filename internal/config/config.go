// Package config loads the engine's on-disk YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's tunables: the safety validator's expand
// step-limit and recursion-depth cap, the scheduler's worker-pool size, the
// traversal engine's max path length, and the result builder's
// result-count cap.
type Config struct {
	DefaultSpace string `yaml:"default_space"`

	Safety struct {
		MaxExpandStepLimit int `yaml:"max_expand_step_limit"`
		MaxRecursionDepth  int `yaml:"max_recursion_depth"`
	} `yaml:"safety"`

	Scheduler struct {
		WorkerCount int `yaml:"worker_count"`
	} `yaml:"scheduler"`

	Traversal struct {
		MaxPathLength int `yaml:"max_path_length"`
	} `yaml:"traversal"`

	ResultBuilder struct {
		MaxResultCount int `yaml:"max_result_count"`
	} `yaml:"result_builder"`

	Filter struct {
		ParallelChunkThreshold int `yaml:"parallel_chunk_threshold"`
	} `yaml:"filter"`
}

// Default returns the engine's built-in tunables: step-limit 1000,
// recursion-depth 100, max_path_length 1000, result cap 100000, chunk
// threshold 1024.
func Default() Config {
	var c Config
	c.DefaultSpace = "default"
	c.Safety.MaxExpandStepLimit = 1000
	c.Safety.MaxRecursionDepth = 100
	c.Scheduler.WorkerCount = 0 // 0 => runtime.NumCPU()
	c.Traversal.MaxPathLength = 1000
	c.ResultBuilder.MaxResultCount = 100000
	c.Filter.ParallelChunkThreshold = 1024
	return c
}

// Load reads and merges a YAML config file over Default(), so a partial file
// only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
