package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"handcricket/internal/cpu"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, engine *cpu.StrategyEngine) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcCpuStatus, rpcCpuStatus(engine))
}

// rpcCpuStatus reports how far the CPU has profiled the calling user.
func rpcCpuStatus(engine *cpu.StrategyEngine) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
		if username == "" {
			return "", errors.New("no user in context")
		}
		if engine == nil {
			return "", errors.New("learning engine unavailable")
		}

		status := engine.Status(username)
		b, err := json.Marshal(status)
		if err != nil {
			logger.Error("cpu_status: Failed to marshal status: %v", err)
			return "", err
		}
		return string(b), nil
	}
}
