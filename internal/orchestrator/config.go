package orchestrator

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cfrengine/internal/cfr"
)

// BackendKind selects which cfr.Store implementation backs the regret
// and strategy tables.
type BackendKind string

const (
	BackendMemory  BackendKind = "memory"
	BackendLevelDB BackendKind = "leveldb"
)

// EngineConfig is the root HCL-decodable configuration for a training
// run, mirroring the teacher's ServerConfig/TrainingConfig shape: a
// struct of optional fields decoded via gohcl, filled in with explicit
// defaults, and validated before use.
type EngineConfig struct {
	Engine EngineSettings `hcl:"engine,block"`
	Eval   EvalSettings   `hcl:"eval,block"`
}

// EngineSettings controls the training run's shape: agent/shard counts,
// step/iteration budget, backend selection, and discount law exponents.
type EngineSettings struct {
	NumAgents                  int     `hcl:"num_agents,optional"`
	NumShards                  int     `hcl:"num_shards,optional"`
	Steps                      int     `hcl:"steps,optional"`
	IterationsPerAgent         int     `hcl:"iterations_per_agent,optional"`
	Backend                    string  `hcl:"backend,optional"`
	BackendPath                string  `hcl:"backend_path,optional"`
	Seed                       int64   `hcl:"seed,optional"`
	CheckpointPath             string  `hcl:"checkpoint_path,optional"`
	CheckpointEvery            int     `hcl:"checkpoint_every,optional"`
	DiscountAlpha              float64 `hcl:"discount_alpha,optional"`
	DiscountBeta               float64 `hcl:"discount_beta,optional"`
	DiscountGamma              float64 `hcl:"discount_gamma,optional"`
	// ClampNegativeRegrets selects CFR+-style clamp-to-zero-on-write
	// over DCFR's keep-sign-on-write default; see cfr.DiscountParams.
	ClampNegativeRegrets bool `hcl:"clamp_negative_regrets,optional"`
}

// EvalSettings controls how the exploitability evaluator runs between
// training steps.
type EvalSettings struct {
	Mode         string  `hcl:"mode,optional"` // "exact" or "mcts"
	MCTSShards   int     `hcl:"mcts_shards,optional"`
	MCTSRollouts int     `hcl:"mcts_rollouts,optional"`
	MCTSWorkers  int     `hcl:"mcts_workers,optional"`
	Exploration  float64 `hcl:"exploration,optional"`
	Every        int     `hcl:"every,optional"` // run evaluator every N steps
}

// DefaultEngineConfig returns a small configuration suitable for tests
// and local smoke runs.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Engine: EngineSettings{
			NumAgents:          4,
			NumShards:          4,
			Steps:              10,
			IterationsPerAgent: 1000,
			Backend:            string(BackendMemory),
			Seed:               1,
			CheckpointEvery:    0,
			DiscountAlpha:      1.5,
			DiscountBeta:       0.0,
			DiscountGamma:      2.0,
		},
		Eval: EvalSettings{
			Mode:         "exact",
			MCTSShards:   4,
			MCTSRollouts: 1000,
			MCTSWorkers:  4,
			Exploration:  1.4,
			Every:        1,
		},
	}
}

// LoadEngineConfig loads configuration from an HCL file, falling back
// to DefaultEngineConfig when filename does not exist.
func LoadEngineConfig(filename string) (EngineConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultEngineConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return EngineConfig{}, fmt.Errorf("orchestrator: failed to parse HCL file: %s", diags.Error())
	}

	config := DefaultEngineConfig()
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return EngineConfig{}, fmt.Errorf("orchestrator: failed to decode HCL: %s", diags.Error())
	}
	return config, nil
}

// Validate ensures the configuration is safe to build an Orchestrator
// from.
func (c EngineConfig) Validate() error {
	if c.Engine.NumAgents < 1 {
		return errors.New("orchestrator: num_agents must be >= 1")
	}
	if c.Engine.NumShards < 1 {
		return errors.New("orchestrator: num_shards must be >= 1")
	}
	if c.Engine.Steps < 1 {
		return errors.New("orchestrator: steps must be >= 1")
	}
	if c.Engine.IterationsPerAgent < 1 {
		return errors.New("orchestrator: iterations_per_agent must be >= 1")
	}
	switch BackendKind(c.Engine.Backend) {
	case BackendMemory:
	case BackendLevelDB:
		if c.Engine.BackendPath == "" {
			return errors.New("orchestrator: backend_path is required for the leveldb backend")
		}
	default:
		return fmt.Errorf("orchestrator: unknown backend %q", c.Engine.Backend)
	}
	if c.Engine.CheckpointEvery < 0 {
		return errors.New("orchestrator: checkpoint_every cannot be negative")
	}
	switch c.Eval.Mode {
	case "exact", "mcts":
	default:
		return fmt.Errorf("orchestrator: unknown eval mode %q", c.Eval.Mode)
	}
	if c.Eval.Mode == "mcts" {
		if c.Eval.MCTSShards < 1 {
			return errors.New("orchestrator: eval.mcts_shards must be >= 1")
		}
		if c.Eval.MCTSRollouts < 1 {
			return errors.New("orchestrator: eval.mcts_rollouts must be >= 1")
		}
		if c.Eval.MCTSWorkers < 1 {
			return errors.New("orchestrator: eval.mcts_workers must be >= 1")
		}
	}
	if c.Eval.Every < 1 {
		return errors.New("orchestrator: eval.every must be >= 1")
	}
	return nil
}

// Discount converts the configured exponents into cfr.DiscountParams.
func (c EngineConfig) Discount() cfr.DiscountParams {
	return cfr.DiscountParams{
		Alpha:                c.Engine.DiscountAlpha,
		Beta:                 c.Engine.DiscountBeta,
		Gamma:                c.Engine.DiscountGamma,
		ClampNegativeRegrets: c.Engine.ClampNegativeRegrets,
	}
}
