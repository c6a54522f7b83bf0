package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/cfrengine/internal/cfr"
	"github.com/lox/cfrengine/internal/games"
	"github.com/lox/cfrengine/internal/orchestrator"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train TrainCmd `cmd:"" help:"run CFR self-play training and periodically report exploitability"`
	Play  PlayCmd  `cmd:"" help:"print the trained average strategy at a starting position"`
}

// TrainCmd runs a full training loop against one of the built-in sample
// games, reporting exploitability and writing checkpoints as it goes.
type TrainCmd struct {
	Game            string `help:"which sample game to train (matrix-rps|matrix-pennies|onecardpoker|skulls|tictactoe)" enum:"matrix-rps,matrix-pennies,onecardpoker,skulls,tictactoe" default:"onecardpoker"`
	Config          string `help:"path to an HCL engine config; missing file falls back to defaults" default:"cfrengine.hcl"`
	NumAgents       int    `help:"override engine.num_agents (0 keeps the config value)"`
	NumShards       int    `help:"override engine.num_shards (0 keeps the config value)"`
	Steps           int    `help:"override engine.steps (0 keeps the config value)"`
	Seed            int64  `help:"override engine.seed (0 keeps the config value)"`
	CheckpointPath  string `help:"override engine.checkpoint_path"`
	CheckpointEvery int    `help:"override engine.checkpoint_every (0 keeps the config value)"`
}

// PlayCmd loads a trained run's strategy table and prints the average
// strategy at the game's starting infoset for each player.
type PlayCmd struct {
	Game   string `help:"which sample game to inspect" enum:"matrix-rps,matrix-pennies,onecardpoker,skulls,tictactoe" default:"onecardpoker"`
	Config string `help:"path to the HCL engine config used for training" default:"cfrengine.hcl"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("cfrengine"),
		kong.Description("CFR self-play trainer and exploitability reporter"),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	var err error
	switch ctx.Command() {
	case "train":
		err = cli.Train.Run(logger)
	case "play":
		err = cli.Play.Run(logger)
	default:
		logger.Fatal("unknown command", "command", ctx.Command())
	}
	if err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (cmd *TrainCmd) Run(logger *log.Logger) error {
	config, err := orchestrator.LoadEngineConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.NumAgents > 0 {
		config.Engine.NumAgents = cmd.NumAgents
	}
	if cmd.NumShards > 0 {
		config.Engine.NumShards = cmd.NumShards
	}
	if cmd.Steps > 0 {
		config.Engine.Steps = cmd.Steps
	}
	if cmd.Seed != 0 {
		config.Engine.Seed = cmd.Seed
	}
	if cmd.CheckpointPath != "" {
		config.Engine.CheckpointPath = cmd.CheckpointPath
	}
	if cmd.CheckpointEvery > 0 {
		config.Engine.CheckpointEvery = cmd.CheckpointEvery
	}
	if err := config.Validate(); err != nil {
		return err
	}

	logger.Info("starting training run",
		"game", cmd.Game,
		"num_agents", config.Engine.NumAgents,
		"num_shards", config.Engine.NumShards,
		"steps", config.Engine.Steps,
		"backend", config.Engine.Backend,
		"eval_mode", config.Eval.Mode)

	ctx, cancel := signalContext()
	defer cancel()

	progress := func(p orchestrator.Progress) {
		logger.Info(orchestrator.FormatProgress(p))
	}

	start := time.Now()
	if err := runTraining(ctx, cmd.Game, config, logger, progress); err != nil {
		return err
	}
	logger.Info("training completed", "duration", time.Since(start))
	return nil
}

func (cmd *PlayCmd) Run(logger *log.Logger) error {
	config, err := orchestrator.LoadEngineConfig(cmd.Config)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	return printStartingStrategy(cmd.Game, config, logger)
}

// runTraining dispatches to the generic Orchestrator for whichever game
// was selected; kong gives us the game choice only as a string, so this
// is the one place a type switch stands in for a generic dispatch table.
func runTraining(ctx context.Context, game string, config orchestrator.EngineConfig, logger *log.Logger, progress func(orchestrator.Progress)) error {
	switch game {
	case "matrix-rps":
		o, err := orchestrator.New[*games.Matrix, int](config, games.NewRockPaperScissors, logger)
		if err != nil {
			return err
		}
		defer o.Close()
		return o.Run(ctx, progress)
	case "matrix-pennies":
		o, err := orchestrator.New[*games.Matrix, int](config, games.NewMatchingPennies, logger)
		if err != nil {
			return err
		}
		defer o.Close()
		return o.Run(ctx, progress)
	case "onecardpoker":
		newGame := func() *games.OneCardPoker { return games.NewOneCardPoker(0, 1, cfr.P1) }
		o, err := orchestrator.New[*games.OneCardPoker, games.Action](config, newGame, logger)
		if err != nil {
			return err
		}
		defer o.Close()
		return o.Run(ctx, progress)
	case "skulls":
		newGame := func() *games.Skulls { return games.NewSkulls(cfr.P1) }
		o, err := orchestrator.New[*games.Skulls, games.SkullsAction](config, newGame, logger)
		if err != nil {
			return err
		}
		defer o.Close()
		return o.Run(ctx, progress)
	case "tictactoe":
		o, err := orchestrator.New[*games.TicTacToe, int](config, games.NewTicTacToe, logger)
		if err != nil {
			return err
		}
		defer o.Close()
		return o.Run(ctx, progress)
	default:
		return fmt.Errorf("cfrengine: unknown game %q", game)
	}
}

func printStartingStrategy(game string, config orchestrator.EngineConfig, logger *log.Logger) error {
	switch game {
	case "matrix-rps":
		return printStrategyFor[*games.Matrix, int](config, games.NewRockPaperScissors, logger)
	case "matrix-pennies":
		return printStrategyFor[*games.Matrix, int](config, games.NewMatchingPennies, logger)
	case "onecardpoker":
		return printStrategyFor[*games.OneCardPoker, games.Action](config, func() *games.OneCardPoker { return games.NewOneCardPoker(0, 1, cfr.P1) }, logger)
	case "skulls":
		return printStrategyFor[*games.Skulls, games.SkullsAction](config, func() *games.Skulls { return games.NewSkulls(cfr.P1) }, logger)
	case "tictactoe":
		return printStrategyFor[*games.TicTacToe, int](config, games.NewTicTacToe, logger)
	default:
		return fmt.Errorf("cfrengine: unknown game %q", game)
	}
}

func printStrategyFor[G cfr.Game[G, A], A comparable](config orchestrator.EngineConfig, newGame func() G, logger *log.Logger) error {
	o, err := orchestrator.New[G, A](config, newGame, logger)
	if err != nil {
		return err
	}
	defer o.Close()

	game := newGame()
	mover, actions := game.CurrentTurn()
	key := game.InfoSet(mover)
	probs, err := o.AverageStrategy(mover, key, len(actions))
	if err != nil {
		return err
	}

	for i, act := range actions {
		logger.Info("starting-infoset strategy", "player", mover, "action", fmt.Sprintf("%v", act), "prob", probs[i])
	}
	return nil
}
