package nakama

import (
	"context"

	"handcricket/internal/cpu"
	"handcricket/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// processCpuTurns submits moves for CPU participants whose slot is empty.
// When both sides are CPU the match plays itself at one ball per tick.
func (mh *matchHandler) processCpuTurns(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Game
	if game == nil || state.Phase != phasePlaying {
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || inn.Complete || inn.NeedsBatterChoice || inn.NeedsBowlerChoice {
		return
	}

	striker := inn.Striker()
	bowler := inn.CurrentBowler()
	bothCpu := state.isCpu(striker) && state.isCpu(bowler)
	if bothCpu && state.LastAutoplayTick >= state.Tick {
		return
	}

	if state.isCpu(striker) {
		if _, ok := state.PendingMoves[timerBatMove]; !ok {
			state.PendingMoves[timerBatMove] = mh.cpuMove(state, cpu.RoleBatting, bowler, inn)
		}
	}
	if state.isCpu(bowler) {
		if _, ok := state.PendingMoves[timerBowlMove]; !ok {
			state.PendingMoves[timerBowlMove] = mh.cpuMove(state, cpu.RoleBowling, striker, inn)
		}
	}
	if bothCpu {
		state.LastAutoplayTick = state.Tick
	}

	mh.tryResolveBall(ctx, state, dispatcher, logger)
}

// cpuMove picks a CPU move against the given opponent. Against another CPU
// (or without a learning engine) it degrades to the frequency counter.
func (mh *matchHandler) cpuMove(state *MatchState, role, opponent string, inn *domain.Innings) int {
	var history []int
	if role == cpu.RoleBatting {
		history = state.BowlHistory[opponent]
	} else {
		history = state.BatHistory[opponent]
	}

	if state.engine == nil || state.isCpu(opponent) {
		return cpu.SimpleMove(state.rng, role, history)
	}
	return state.engine.SelectMove(opponent, buildCpuContext(inn, role), history)
}

// buildCpuContext classifies the pending ball for the strategy engine.
func buildCpuContext(inn *domain.Innings, role string) cpu.MatchContext {
	var last3 []cpu.BallResult
	log := inn.BallLog
	if n := len(log); n > 0 {
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, b := range log[start:] {
			last3 = append(last3, cpu.BallResult{Runs: b.Runs, IsOut: b.IsOut})
		}
	}

	return cpu.MatchContext{
		Format:       cpu.FormatKey(inn.TotalOvers),
		Role:         role,
		CurrentOver:  inn.OversCompleted,
		TotalOvers:   inn.TotalOvers,
		CurrentScore: inn.TotalRuns,
		Target:       inn.Target,
		WicketsLost:  inn.WicketsFallen,
		BallsLeft:    ballsLeft(inn),
		BattingFirst: inn.Target == 0,
		Last3Results: last3,
	}
}

// logBallForLearning queues the delivery for the pattern processor when at
// least one human was involved. CPU participants are recorded as empty names
// so no profile accrues for them. The write happens off the match loop.
func (mh *matchHandler) logBallForLearning(state *MatchState, logger runtime.Logger, inn *domain.Innings, out *domain.BallOutcome, striker, bowler, gamePhase, pressure string, wicketsBefore int) {
	if mh.store == nil {
		return
	}
	if state.isCpu(striker) && state.isCpu(bowler) {
		return
	}

	rec := &cpu.BallRecord{
		MatchID:        state.Game.ID,
		BallNumber:     out.BallNum,
		Innings:        state.Game.CurrentInnings,
		Batter:         humanName(state, striker),
		Bowler:         humanName(state, bowler),
		BatMove:        out.BatMove,
		BowlMove:       out.BowlMove,
		Runs:           out.Runs,
		IsOut:          out.IsOut,
		Format:         cpu.FormatKey(inn.TotalOvers),
		GamePhase:      gamePhase,
		ScorePressure:  pressure,
		BattingWickets: wicketsBefore,
	}
	go func() {
		if _, err := mh.store.LogBall(rec); err != nil {
			logger.Error("Failed to log ball for learning: %v", err)
		}
	}()
}

func humanName(state *MatchState, name string) string {
	if state.isCpu(name) {
		return ""
	}
	return name
}
