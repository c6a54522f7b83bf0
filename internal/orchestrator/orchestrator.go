// Package orchestrator wires the cfr package's shard owners and agents
// into a runnable training loop: it builds the regret and strategy
// routers over the configured backend, fans CFR iterations out across
// a goroutine per agent (mirroring sdk/solver.Trainer's parallel-table
// fan-out), periodically measures exploitability, and checkpoints
// progress to disk.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cfrengine/internal/backend"
	"github.com/lox/cfrengine/internal/cfr"
	"github.com/lox/cfrengine/internal/eval"
	"github.com/lox/cfrengine/internal/randutil"
)

// Progress is the instrumentation emitted once per step, mirroring the
// teacher's solver.Progress.
type Progress struct {
	Step           int
	Iteration      int
	Exploitability float64
	StepTime       time.Duration
}

// Orchestrator drives CFR training for one game type G with action type
// A. It is generic so a single implementation serves every sample game
// registered under internal/games.
type Orchestrator[G cfr.Game[G, A], A comparable] struct {
	config   EngineConfig
	newGame  func() G
	regrets  *cfr.Router
	strategy *cfr.Router
	agents   []*cfr.Agent[G, A]
	logger   *log.Logger
	clock    quartz.Clock
	mu       sync.Mutex
	iter     int
}

// Option configures optional Orchestrator behavior beyond EngineConfig.
type Option[G cfr.Game[G, A], A comparable] func(*Orchestrator[G, A])

// WithClock overrides the orchestrator's time source, mirroring the
// teacher's integration-test use of a quartz.Mock in place of the wall
// clock so step timing is deterministic under test.
func WithClock[G cfr.Game[G, A], A comparable](clock quartz.Clock) Option[G, A] {
	return func(o *Orchestrator[G, A]) { o.clock = clock }
}

// New builds an Orchestrator from config, constructing one store pair
// per shard on the configured backend and one Agent per configured
// worker, each with its own deterministic RNG derived from config's
// seed via randutil.ForAgent.
func New[G cfr.Game[G, A], A comparable](config EngineConfig, newGame func() G, logger *log.Logger, opts ...Option[G, A]) (*Orchestrator[G, A], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	regretShards, err := buildShards(config, "regret")
	if err != nil {
		return nil, err
	}
	strategyShards, err := buildShards(config, "strategy")
	if err != nil {
		return nil, err
	}

	discount := config.Discount()
	regrets := cfr.NewRouter(cfr.RegretTableKind, discount, regretShards)
	strategy := cfr.NewRouter(cfr.StrategyTableKind, discount, strategyShards)

	agents := make([]*cfr.Agent[G, A], config.Engine.NumAgents)
	for i := range agents {
		rng := randutil.ForAgent(config.Engine.Seed, i)
		agents[i] = cfr.NewAgent[G, A](regrets, strategy, rng)
	}

	o := &Orchestrator[G, A]{
		config:   config,
		newGame:  newGame,
		regrets:  regrets,
		strategy: strategy,
		agents:   agents,
		logger:   logger,
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func buildShards(config EngineConfig, label string) ([]cfr.ShardStores, error) {
	n := config.Engine.NumShards
	shards := make([]cfr.ShardStores, n)
	for i := 0; i < n; i++ {
		p1, err := newStore(config, label, cfr.P1, i)
		if err != nil {
			return nil, err
		}
		p2, err := newStore(config, label, cfr.P2, i)
		if err != nil {
			return nil, err
		}
		shards[i] = cfr.ShardStores{P1: p1, P2: p2}
	}
	return shards, nil
}

func newStore(config EngineConfig, label string, player cfr.Player, shard int) (cfr.Store, error) {
	switch BackendKind(config.Engine.Backend) {
	case BackendMemory:
		return backend.NewMemoryStore(), nil
	case BackendLevelDB:
		path := fmt.Sprintf("%s/%s-%s-%d", config.Engine.BackendPath, label, player, shard)
		return backend.OpenLevelDBStore(path)
	default:
		return nil, fmt.Errorf("orchestrator: unknown backend %q", config.Engine.Backend)
	}
}

// Run executes the configured number of steps, each consisting of
// IterationsPerAgent CFR iterations per agent run concurrently, an
// exploitability measurement every Eval.Every steps, and a checkpoint
// write every CheckpointEvery steps. progress, if non-nil, is called
// once per step.
func (o *Orchestrator[G, A]) Run(ctx context.Context, progress func(Progress)) error {
	for step := 1; step <= o.config.Engine.Steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := o.clock.Now()
		if err := o.runStep(); err != nil {
			return err
		}
		elapsed := o.clock.Now().Sub(start)

		p := Progress{Step: step, Iteration: o.currentIteration(), StepTime: elapsed}
		if step%o.config.Eval.Every == 0 {
			expl, err := o.measureExploitability()
			if err != nil {
				o.logger.Warn("exploitability measurement failed", "err", err)
			} else {
				p.Exploitability = expl
			}
		}

		if o.config.Engine.CheckpointPath != "" && o.config.Engine.CheckpointEvery > 0 && step%o.config.Engine.CheckpointEvery == 0 {
			if err := SaveCheckpoint(o.config.Engine.CheckpointPath, Checkpoint{Iteration: p.Iteration}); err != nil {
				return err
			}
		}

		if progress != nil {
			progress(p)
		}
	}
	return nil
}

// runStep advances every agent by IterationsPerAgent training iterations,
// running all agents' searches concurrently and joining them -- the same
// WaitGroup/first-error-wins pattern sdk/solver.Trainer.singleIteration
// uses to fan a batch out across goroutines. Each agent's iterations run
// sequentially against the shared regret/strategy tables; only the
// agents themselves run in parallel.
func (o *Orchestrator[G, A]) runStep() error {
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for _, agent := range o.agents {
		agent := agent
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < o.config.Engine.IterationsPerAgent; n++ {
				t := o.nextIteration()
				agent.SetIteration(t)
				if _, ok := agent.Search(o.newGame()); !ok {
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("orchestrator: traversal hit a closed shard")
					}
					errMu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func (o *Orchestrator[G, A]) nextIteration() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.iter++
	return o.iter
}

func (o *Orchestrator[G, A]) currentIteration() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.iter
}

func (o *Orchestrator[G, A]) measureExploitability() (float64, error) {
	switch o.config.Eval.Mode {
	case "exact":
		v, ok := eval.Exploitability[G, A](o.newGame, o.strategy)
		if !ok {
			return 0, fmt.Errorf("orchestrator: exact best response hit a closed shard")
		}
		return v, nil
	case "mcts":
		evaluator := eval.NewMCTSEvaluator(o.config.Eval.MCTSShards, o.config.Eval.Exploration, o.strategy)
		ctx := context.Background()
		brP1, err := eval.RunMCTS[G, A](ctx, evaluator, o.newGame, cfr.P1, o.config.Eval.MCTSRollouts, o.config.Eval.MCTSWorkers, uint64(o.config.Engine.Seed))
		if err != nil {
			return 0, err
		}
		brP2, err := eval.RunMCTS[G, A](ctx, evaluator, o.newGame, cfr.P2, o.config.Eval.MCTSRollouts, o.config.Eval.MCTSWorkers, uint64(o.config.Engine.Seed)+1)
		if err != nil {
			return 0, err
		}
		return brP1 + brP2, nil
	default:
		return 0, fmt.Errorf("orchestrator: unknown eval mode %q", o.config.Eval.Mode)
	}
}

// AverageStrategy reads the current average strategy at an infoset, for
// runtime play once training has produced a usable policy.
func (o *Orchestrator[G, A]) AverageStrategy(player cfr.Player, key cfr.InfoSetHash, numActions int) ([]float64, error) {
	entry, closed, err := o.strategy.Handler(key).Get(player, key)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, fmt.Errorf("orchestrator: strategy table closed")
	}
	return cfr.AverageStrategy(entry.Values, numActions), nil
}

// Close logically closes both routers' shards and stops their owner
// goroutines. Must only be called after Run has returned, so no agent
// goroutine is still sending requests.
func (o *Orchestrator[G, A]) Close() {
	o.regrets.CloseAll()
	o.strategy.CloseAll()
	o.regrets.Shutdown()
	o.strategy.Shutdown()
}
