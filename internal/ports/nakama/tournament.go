package nakama

import (
	"context"

	"handcricket/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// recordTournamentResult folds a finished match into the running tournament
// and decorates the match-over event with standings (and awards when the
// bracket closes).
func (mh *matchHandler) recordTournamentResult(state *MatchState, event *MatchOverEvent, logger runtime.Logger) {
	t := state.Tournament
	pair := state.CurrentPair
	if t == nil || pair == nil {
		return
	}

	winner := event.Result.Winner
	if t.Phase == domain.PhaseGroup {
		nrr := domain.NRRData{}
		if state.Game != nil && !state.Game.NRRLocked {
			nrr = state.Game.GetNRRData()
		}
		t.RecordGroupResult(pair.PlayerA, pair.PlayerB, winner, nrr)
	} else {
		loser := pair.PlayerA
		if winner == pair.PlayerA {
			loser = pair.PlayerB
		}
		t.RecordPlayoffResult(winner, loser)
	}
	state.TournamentResults = append(state.TournamentResults, event.Result)
	state.CurrentPair = nil

	snapshot := t.Snapshot()
	event.Tournament = &snapshot

	if t.Phase == domain.PhaseComplete {
		logger.Info("Tournament: %s is the champion.", t.Champion)
		awards := domain.ComputeTournamentAwards(state.TournamentResults)
		event.Awards = &awards
		state.Tournament = nil
		state.TournamentResults = nil
		state.NextMatchAt = 0
	}
}

// startNextTournamentMatch announces the next fixture and arms the countdown.
func (mh *matchHandler) startNextTournamentMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	t := state.Tournament
	if t == nil {
		return
	}

	var pair *domain.Pairing
	if t.Phase == domain.PhaseGroup {
		pair = t.NextGroupMatch()
	} else if t.Phase != domain.PhaseComplete {
		pair = t.CurrentPlayoffMatch()
	}
	if pair == nil {
		logger.Warn("Tournament: No fixture available in phase %s.", t.Phase)
		state.Tournament = nil
		mh.broadcastLobby(state, dispatcher, logger)
		return
	}

	state.CurrentPair = pair
	state.NextMatchAt = state.Tick + int64(state.Cfg.CountdownSeconds)

	snapshot := t.Snapshot()
	mh.broadcastJSON(dispatcher, logger, OpTournamentStandings, snapshot)
	mh.broadcastJSON(dispatcher, logger, OpCountdown, &CountdownEvent{
		Seconds: state.Cfg.CountdownSeconds,
		NextA:   pair.PlayerA,
		NextB:   pair.PlayerB,
	})
}

// processTournamentCountdown opens the announced fixture when its countdown
// elapses.
func (mh *matchHandler) processTournamentCountdown(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Tournament == nil || state.CurrentPair == nil || state.Game != nil {
		return
	}
	if state.NextMatchAt == 0 || state.Tick < state.NextMatchAt {
		return
	}
	state.NextMatchAt = 0

	pair := state.CurrentPair
	logger.Info("Tournament: Starting %s vs %s (%s).", pair.PlayerA, pair.PlayerB, state.Tournament.Phase)
	mh.startGame(ctx, state, dispatcher, logger,
		[]string{pair.PlayerA}, []string{pair.PlayerB})
}
