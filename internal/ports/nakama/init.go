package nakama

import (
	"context"
	"database/sql"
	"math/rand"
	"time"

	"handcricket/internal/config"
	"handcricket/internal/cpu"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, the match handler and the CPU learning pipeline
// into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.FromEnv(env)

	var store *cpu.Store
	var engine *cpu.StrategyEngine
	store, err := cpu.Open(cfg.LearningDBPath)
	if err != nil {
		// The room still runs; CPUs fall back to the frequency counter.
		logger.Error("InitModule: Could not open learning store at %s: %v", cfg.LearningDBPath, err)
		store = nil
	} else {
		engine = cpu.NewStrategyEngine(store, rand.New(rand.NewSource(time.Now().UnixNano())))
		processor := cpu.NewProcessor(store, logger)
		go processor.Run(ctx)
	}

	if err := RegisterRPCs(initializer, engine); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameHandCricket, NewMatch(store, engine)); err != nil {
		return err
	}

	logger.Info("Hand Cricket Go module loaded.")
	return nil
}
