package nakama

import (
	"context"
	"encoding/json"
	"strings"

	"handcricket/internal/cpu"
	"handcricket/internal/domain"
	"handcricket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// sideLabel renders a side for client display: the team name in team mode,
// otherwise the player names.
func (ms *MatchState) sideLabel(side []string) string {
	if ms.Mode == domain.ModeTeam && len(side) > 0 {
		if containsName(ms.TeamA, side[0]) {
			return ms.TeamAName
		}
		return ms.TeamBName
	}
	return strings.Join(side, ", ")
}

// captainOf returns who speaks for a side: the assigned captain in team mode,
// the player themself in singles.
func (ms *MatchState) captainOf(side []string) string {
	if len(side) == 0 {
		return ""
	}
	if ms.Mode != domain.ModeTeam {
		return side[0]
	}
	if containsName(ms.TeamA, side[0]) {
		if ms.CaptainA != "" {
			return ms.CaptainA
		}
	} else if ms.CaptainB != "" {
		return ms.CaptainB
	}
	return side[0]
}

// startGame transitions the room into the toss for the given sides.
func (mh *matchHandler) startGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, sideA, sideB []string) {
	state.Game = domain.NewMatch(state.MatchID, state.Mode, sideA, sideB, state.Overs, state.Wickets, state.rng)
	state.Phase = phaseToss
	state.AwaitingTossCall = true
	state.AwaitingTossChoice = false
	state.PendingMoves = make(map[string]int)
	state.Deadlines = make(map[string]int64)
	state.Strikes = make(map[string]int)
	state.BatHistory = make(map[string][]int)
	state.BowlHistory = make(map[string][]int)

	caller := state.captainOf(sideA)
	state.Game.DoToss(caller)

	logger.Info("StartGame: %s vs %s, %d over(s), %d wicket(s). %s calls the toss.",
		state.sideLabel(sideA), state.sideLabel(sideB), state.Overs, state.Wickets, caller)

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastJSON(dispatcher, logger, OpTossWaiting, &TossCallerEvent{Caller: caller})
	mh.sendJSON(state, dispatcher, logger, OpTossCaller, &TossCallerEvent{Caller: caller}, caller)

	if state.isCpu(caller) {
		call := "heads"
		if state.rng.Intn(2) == 1 {
			call = "tails"
		}
		mh.resolveTossCall(ctx, state, dispatcher, logger, call)
	}
}

func (mh *matchHandler) handleTossCall(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil || !state.AwaitingTossCall {
		logger.Warn("TossCall: No toss pending.")
		return
	}
	if senderUsername(msg) != state.Game.TossCaller {
		logger.Warn("TossCall: %s is not the caller.", senderUsername(msg))
		return
	}

	var req TossCallRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || (req.Call != "heads" && req.Call != "tails") {
		logger.Warn("TossCall: Invalid call from %s", senderUsername(msg))
		return
	}
	mh.resolveTossCall(ctx, state, dispatcher, logger, req.Call)
}

func (mh *matchHandler) resolveTossCall(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, call string) {
	game := state.Game
	otherSide := game.SideB
	if containsName(game.SideB, game.TossCaller) {
		otherSide = game.SideA
	}
	tr := game.ResolveToss(call, state.captainOf(otherSide))

	state.AwaitingTossCall = false
	state.AwaitingTossChoice = true

	mh.broadcastJSON(dispatcher, logger, OpTossResult, &TossResultEvent{
		Coin:   tr.Coin,
		Call:   tr.Call,
		Caller: game.TossCaller,
		Won:    tr.Won,
		Winner: tr.Winner,
	})
	mh.sendJSON(state, dispatcher, logger, OpTossChoose, &TossCallerEvent{Caller: tr.Winner}, tr.Winner)

	if state.isCpu(tr.Winner) {
		// CPUs prefer to bat.
		choice := domain.ChoiceBat
		if state.rng.Float64() >= 0.6 {
			choice = domain.ChoiceBowl
		}
		mh.resolveTossChoice(ctx, state, dispatcher, logger, choice)
	}
}

func (mh *matchHandler) handleTossChoice(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil || !state.AwaitingTossChoice {
		logger.Warn("TossChoice: No choice pending.")
		return
	}
	if senderUsername(msg) != state.Game.TossWinner {
		logger.Warn("TossChoice: %s did not win the toss.", senderUsername(msg))
		return
	}

	var req TossChoiceRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || (req.Choice != domain.ChoiceBat && req.Choice != domain.ChoiceBowl) {
		logger.Warn("TossChoice: Invalid choice from %s", senderUsername(msg))
		return
	}
	mh.resolveTossChoice(ctx, state, dispatcher, logger, req.Choice)
}

func (mh *matchHandler) resolveTossChoice(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, choice string) {
	game := state.Game
	game.ApplyTossChoice(choice)
	state.AwaitingTossChoice = false

	mh.broadcastJSON(dispatcher, logger, OpTossDecision, &TossDecisionEvent{
		Winner:  game.TossWinner,
		Choice:  choice,
		Batting: state.sideLabel(game.BattingFirst),
		Bowling: state.sideLabel(game.BowlingFirst),
	})

	state.Phase = phasePlaying
	game.StartInnings1()
	mh.updateLabel(state, dispatcher, logger)
	mh.afterInningsStart(ctx, state, dispatcher, logger)
}

// afterInningsStart runs the opening captain picks, then opens play.
func (mh *matchHandler) afterInningsStart(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.promptPicks(state, dispatcher, logger)
	mh.maybeBeginBall(state, dispatcher, logger)
}

// promptPicks asks the captains for any pending batter/bowler choice. CPU
// captains answer immediately with the first enabled candidate.
func (mh *matchHandler) promptPicks(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	inn := state.Game.ActiveInnings()
	if inn == nil {
		return
	}

	if inn.NeedsBatterChoice {
		captain := state.captainOf(inn.BattingSide)
		candidates := inn.AvailableNextBatters()
		if state.isCpu(captain) {
			inn.ApplyBatterChoice(firstEnabled(candidates))
		} else {
			mh.sendJSON(state, dispatcher, logger, OpChooseBatter, &ChoosePlayerEvent{
				Captain:    captain,
				Candidates: candidates,
				Deadline:   state.Cfg.CaptainTimeoutSeconds,
			}, captain)
			state.Deadlines[timerPickBatter] = state.Tick + int64(state.Cfg.CaptainTimeoutSeconds)
		}
	}

	if inn.NeedsBowlerChoice {
		captain := state.captainOf(inn.BowlingSide)
		candidates := inn.AvailableNextBowlers()
		if state.isCpu(captain) {
			inn.ApplyBowlerChoice(firstEnabled(candidates))
		} else {
			mh.sendJSON(state, dispatcher, logger, OpChooseBowler, &ChoosePlayerEvent{
				Captain:    captain,
				Candidates: candidates,
				Deadline:   state.Cfg.CaptainTimeoutSeconds,
			}, captain)
			state.Deadlines[timerPickBowler] = state.Tick + int64(state.Cfg.CaptainTimeoutSeconds)
		}
	}
}

func firstEnabled(candidates []domain.Candidate) string {
	for _, c := range candidates {
		if !c.Disabled {
			return c.Player
		}
	}
	if len(candidates) > 0 {
		return candidates[0].Player
	}
	return ""
}

// maybeBeginBall broadcasts the pending-ball state and arms the move timers
// once no captain pick is outstanding.
func (mh *matchHandler) maybeBeginBall(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Game
	if game == nil {
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || inn.Complete || inn.NeedsBatterChoice || inn.NeedsBowlerChoice {
		return
	}

	mh.broadcastGameState(state, dispatcher, logger)

	if !state.isCpu(inn.Striker()) {
		if _, ok := state.PendingMoves[timerBatMove]; !ok {
			state.Deadlines[timerBatMove] = state.Tick + int64(state.Cfg.BallTimeoutSeconds)
		}
	}
	if !state.isCpu(inn.CurrentBowler()) {
		if _, ok := state.PendingMoves[timerBowlMove]; !ok {
			state.Deadlines[timerBowlMove] = state.Tick + int64(state.Cfg.BallTimeoutSeconds)
		}
	}
}

// broadcastGameState sends MatchStateEvent per recipient with their role tag.
func (mh *matchHandler) broadcastGameState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Game
	inn := game.ActiveInnings()

	_, batIn := state.PendingMoves[timerBatMove]
	_, bowlIn := state.PendingMoves[timerBowlMove]

	base := MatchStateEvent{
		Innings:           game.CurrentInnings,
		IsSuperOver:       game.IsSuperOver,
		BattingSide:       inn.BattingSide,
		BowlingSide:       inn.BowlingSide,
		Striker:           inn.Striker(),
		NonStriker:        inn.NonStriker(),
		Bowler:            inn.CurrentBowler(),
		TotalRuns:         inn.TotalRuns,
		Wickets:           inn.WicketsFallen,
		Overs:             inn.OversDisplay(),
		Target:            inn.Target,
		Scorecard:         inn.GetScorecard(),
		AwaitingBat:       !batIn,
		AwaitingBowl:      !bowlIn,
		NeedsBatterChoice: inn.NeedsBatterChoice,
		NeedsBowlerChoice: inn.NeedsBowlerChoice,
		MoveDeadline:      state.Cfg.BallTimeoutSeconds,
	}
	for username := range state.UserIDs {
		ev := base
		switch username {
		case inn.Striker():
			ev.YourRole = "bat"
		case inn.CurrentBowler():
			ev.YourRole = "bowl"
		default:
			ev.YourRole = "watch"
		}
		mh.sendJSON(state, dispatcher, logger, OpMatchStateEvent, &ev, username)
	}
}

func (mh *matchHandler) handleGameMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	game := state.Game
	if game == nil || state.Phase != phasePlaying {
		logger.Warn("GameMove: No ball in play.")
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || inn.Complete || inn.NeedsBatterChoice || inn.NeedsBowlerChoice {
		logger.Warn("GameMove: Ball not open for moves.")
		return
	}

	var req GameMoveRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || req.Move < 0 || req.Move > 6 {
		logger.Warn("GameMove: Invalid move from %s", senderUsername(msg))
		return
	}

	username := senderUsername(msg)
	switch username {
	case inn.Striker():
		if _, ok := state.PendingMoves[timerBatMove]; ok {
			return
		}
		state.PendingMoves[timerBatMove] = req.Move
		delete(state.Deadlines, timerBatMove)
		state.Strikes[username] = 0
	case inn.CurrentBowler():
		if _, ok := state.PendingMoves[timerBowlMove]; ok {
			return
		}
		state.PendingMoves[timerBowlMove] = req.Move
		delete(state.Deadlines, timerBowlMove)
		state.Strikes[username] = 0
	default:
		logger.Warn("GameMove: %s has no role in the pending ball.", username)
		return
	}

	mh.tryResolveBall(ctx, state, dispatcher, logger)
}

// tryResolveBall resolves the pending delivery once both moves are in.
func (mh *matchHandler) tryResolveBall(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	batMove, haveBat := state.PendingMoves[timerBatMove]
	bowlMove, haveBowl := state.PendingMoves[timerBowlMove]
	if !haveBat || !haveBowl {
		return
	}

	game := state.Game
	inn := game.ActiveInnings()
	striker := inn.Striker()
	bowler := inn.CurrentBowler()

	// Classify the situation before the ball mutates it.
	gamePhase := cpu.GamePhase(inn.OversCompleted, inn.TotalOvers)
	pressure := cpu.ScoreSituation(inn.Target == 0, inn.TotalRuns, inn.Target,
		inn.WicketsFallen, ballsLeft(inn), inn.TotalOvers)
	wicketsBefore := inn.WicketsFallen

	delete(state.PendingMoves, timerBatMove)
	delete(state.PendingMoves, timerBowlMove)
	delete(state.Deadlines, timerBatMove)
	delete(state.Deadlines, timerBowlMove)

	out, err := inn.ResolveBall(batMove, bowlMove)
	if err != nil {
		logger.Error("ResolveBall: %v", err)
		return
	}

	state.BatHistory[striker] = append(state.BatHistory[striker], batMove)
	state.BowlHistory[bowler] = append(state.BowlHistory[bowler], bowlMove)

	mh.logBallForLearning(state, logger, inn, out, striker, bowler, gamePhase, pressure, wicketsBefore)

	mh.broadcastJSON(dispatcher, logger, OpBallResult, out)

	if out.InningsComplete {
		mh.advanceInnings(ctx, state, dispatcher, logger)
		return
	}
	if out.NeedsBatterChoice || out.NeedsBowlerChoice {
		mh.promptPicks(state, dispatcher, logger)
	}
	mh.maybeBeginBall(state, dispatcher, logger)
}

// advanceInnings moves the match forward when an innings closes. Strike
// counts do not carry across the break.
func (mh *matchHandler) advanceInnings(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Game
	state.Strikes = make(map[string]int)

	switch game.CurrentInnings {
	case 1:
		scorecard := game.Innings1.GetScorecard()
		game.StartInnings2()
		mh.broadcastJSON(dispatcher, logger, OpInningsBreak, &InningsBreakEvent{
			InningsCompleted: 1,
			Scorecard:        scorecard,
			Target:           game.Innings2.Target,
			NextBatting:      state.sideLabel(game.BowlingFirst),
		})
		mh.afterInningsStart(ctx, state, dispatcher, logger)

	case 2:
		result := game.DetermineResult()
		if game.Winner == "TIE" {
			mh.openSuperOver(ctx, state, dispatcher, logger, game.Innings2.GetScorecard())
			return
		}
		mh.finishMatch(ctx, state, dispatcher, logger, result, false)

	case 3:
		scorecard := game.Innings3.GetScorecard()
		game.StartInnings4()
		mh.broadcastJSON(dispatcher, logger, OpInningsBreak, &InningsBreakEvent{
			InningsCompleted: 3,
			Scorecard:        scorecard,
			Target:           game.Innings4.Target,
			NextBatting:      state.sideLabel(game.BattingFirst),
			SuperOver:        true,
			SuperOverRound:   game.SuperOverRoundNum,
		})
		mh.afterInningsStart(ctx, state, dispatcher, logger)

	case 4:
		game.SnapshotSuperOverRound()
		result := game.DetermineResult()
		if game.Winner == "TIE" {
			// Tied super over: run another one.
			mh.openSuperOver(ctx, state, dispatcher, logger, game.Innings4.GetScorecard())
			return
		}
		mh.finishMatch(ctx, state, dispatcher, logger, result, false)
	}
}

// openSuperOver starts the next super-over pair after a tie.
func (mh *matchHandler) openSuperOver(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, scorecard domain.Scorecard) {
	game := state.Game
	completed := game.CurrentInnings
	game.StartInnings3()

	logger.Info("SuperOver: Round %d between %s and %s.", game.SuperOverRoundNum,
		state.sideLabel(game.SideA), state.sideLabel(game.SideB))

	mh.broadcastJSON(dispatcher, logger, OpInningsBreak, &InningsBreakEvent{
		InningsCompleted: completed,
		Scorecard:        scorecard,
		NextBatting:      state.sideLabel(game.BowlingFirst),
		SuperOver:        true,
		SuperOverRound:   game.SuperOverRoundNum,
	})
	mh.afterInningsStart(ctx, state, dispatcher, logger)
}

// finishMatch closes out the game: result broadcast, awards, persistence,
// tournament bookkeeping, room back to lobby or next fixture.
func (mh *matchHandler) finishMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, result domain.MatchResult, forfeited bool) {
	game := state.Game

	var potm *domain.PlayerOfMatch
	if !forfeited && game.Innings1 != nil && game.Innings2 != nil {
		p := domain.ComputePlayerOfMatch(game)
		potm = &p
	}

	event := &MatchOverEvent{Result: result, PlayerOfMatch: potm, Forfeited: forfeited}
	mh.recordTournamentResult(state, event, logger)
	mh.broadcastJSON(dispatcher, logger, OpMatchOver, event)

	if state.history != nil {
		if err := state.history.SaveMatch(ctx, game.ID, game.Mode, result, potm); err != nil {
			logger.Error("finishMatch: Failed to save match history: %v", err)
		}
	}
	if state.stats != nil {
		stats := collectPlayerStats(state, game, result.Winner)
		if len(stats) > 0 {
			if err := state.stats.RecordStats(ctx, stats); err != nil {
				logger.Error("finishMatch: Failed to record player stats: %v", err)
			}
		}
	}

	mh.teardownGame(state)
	mh.updateLabel(state, dispatcher, logger)

	if state.Tournament != nil {
		mh.startNextTournamentMatch(ctx, state, dispatcher, logger)
		return
	}
	mh.broadcastLobby(state, dispatcher, logger)
}

// teardownGame clears all per-game state and returns the room to the lobby.
func (mh *matchHandler) teardownGame(state *MatchState) {
	state.Game = nil
	state.Phase = phaseLobby
	state.AwaitingTossCall = false
	state.AwaitingTossChoice = false
	state.PendingMoves = make(map[string]int)
	state.Deadlines = make(map[string]int64)
	state.Strikes = make(map[string]int)
	state.BatHistory = make(map[string][]int)
	state.BowlHistory = make(map[string][]int)
}

// forfeitMatch ends the game against the named player's side.
func (mh *matchHandler) forfeitMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, loser string) {
	game := state.Game
	winnerSide := game.SideA
	if containsName(game.SideA, loser) {
		winnerSide = game.SideB
	}
	result := game.ForfeitResult(winnerSide)
	mh.finishMatch(ctx, state, dispatcher, logger, result, true)
}

func (mh *matchHandler) handlePickBatter(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	game := state.Game
	if game == nil {
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || !inn.NeedsBatterChoice {
		logger.Warn("PickBatter: No batter choice pending.")
		return
	}
	if senderUsername(msg) != state.captainOf(inn.BattingSide) {
		logger.Warn("PickBatter: %s is not the batting captain.", senderUsername(msg))
		return
	}

	var req PickRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || !candidateEnabled(inn.AvailableNextBatters(), req.Player) {
		logger.Warn("PickBatter: Invalid pick from %s", senderUsername(msg))
		return
	}

	inn.ApplyBatterChoice(req.Player)
	delete(state.Deadlines, timerPickBatter)
	state.Strikes[senderUsername(msg)] = 0
	mh.maybeBeginBall(state, dispatcher, logger)
}

func (mh *matchHandler) handlePickBowler(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	game := state.Game
	if game == nil {
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || !inn.NeedsBowlerChoice {
		logger.Warn("PickBowler: No bowler choice pending.")
		return
	}
	if senderUsername(msg) != state.captainOf(inn.BowlingSide) {
		logger.Warn("PickBowler: %s is not the bowling captain.", senderUsername(msg))
		return
	}

	var req PickRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || !candidateEnabled(inn.AvailableNextBowlers(), req.Player) {
		logger.Warn("PickBowler: Invalid pick from %s", senderUsername(msg))
		return
	}

	inn.ApplyBowlerChoice(req.Player)
	delete(state.Deadlines, timerPickBowler)
	state.Strikes[senderUsername(msg)] = 0
	mh.maybeBeginBall(state, dispatcher, logger)
}

func candidateEnabled(candidates []domain.Candidate, player string) bool {
	for _, c := range candidates {
		if c.Player == player {
			return !c.Disabled
		}
	}
	return false
}

func (mh *matchHandler) handleCancelMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.isHost(state, msg) {
		logger.Warn("CancelMatch: %s is not the host.", senderUsername(msg))
		return
	}
	if state.Game == nil && state.Tournament == nil {
		return
	}

	logger.Info("CancelMatch: Cancelled by %s.", senderUsername(msg))
	mh.broadcastJSON(dispatcher, logger, OpMatchCancelled, &MatchCancelledEvent{
		By:     senderUsername(msg),
		Reason: "cancelled by host",
	})

	state.Tournament = nil
	state.CurrentPair = nil
	state.NextMatchAt = 0
	state.TournamentResults = nil
	mh.teardownGame(state)
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastLobby(state, dispatcher, logger)
}

// processTimers fires tick-deadline timers. Ball moves auto-play and captain
// picks fall back to the first enabled candidate; both count a strike, but
// only ball timeouts can strike a player out.
func (mh *matchHandler) processTimers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game := state.Game
	if game == nil || state.Phase != phasePlaying {
		return
	}
	inn := game.ActiveInnings()
	if inn == nil || inn.Complete {
		return
	}

	if d, ok := state.Deadlines[timerPickBatter]; ok && state.Tick >= d {
		delete(state.Deadlines, timerPickBatter)
		pick := firstEnabled(inn.AvailableNextBatters())
		mh.pickStrike(state, dispatcher, logger, state.captainOf(inn.BattingSide), timerPickBatter, pick)
		inn.ApplyBatterChoice(pick)
		mh.maybeBeginBall(state, dispatcher, logger)
	}
	if d, ok := state.Deadlines[timerPickBowler]; ok && state.Tick >= d {
		delete(state.Deadlines, timerPickBowler)
		pick := firstEnabled(inn.AvailableNextBowlers())
		mh.pickStrike(state, dispatcher, logger, state.captainOf(inn.BowlingSide), timerPickBowler, pick)
		inn.ApplyBowlerChoice(pick)
		mh.maybeBeginBall(state, dispatcher, logger)
	}

	if d, ok := state.Deadlines[timerBatMove]; ok && state.Tick >= d {
		delete(state.Deadlines, timerBatMove)
		if mh.autoMove(ctx, state, dispatcher, logger, timerBatMove, inn.Striker()) {
			return
		}
	}
	if d, ok := state.Deadlines[timerBowlMove]; ok && state.Tick >= d {
		delete(state.Deadlines, timerBowlMove)
		if mh.autoMove(ctx, state, dispatcher, logger, timerBowlMove, inn.CurrentBowler()) {
			return
		}
	}

	mh.tryResolveBall(ctx, state, dispatcher, logger)
}

// pickStrike counts a captain-pick timeout against the captain and announces
// the auto-pick. Pick timeouts never forfeit; the default candidate keeps
// play moving.
func (mh *matchHandler) pickStrike(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, captain, role, pick string) {
	if state.isCpu(captain) {
		return
	}

	state.Strikes[captain]++
	logger.Info("Timer: %s timed out on %s, seating %s (strike %d/%d).",
		captain, role, pick, state.Strikes[captain], state.Cfg.MaxStrikes)

	mh.broadcastJSON(dispatcher, logger, OpAutoMoveWarning, &AutoMoveWarningEvent{
		Username:   captain,
		Role:       role,
		Player:     pick,
		Strikes:    state.Strikes[captain],
		MaxStrikes: state.Cfg.MaxStrikes,
	})
}

// autoMove plays a random number for a stalled human and counts the strike.
// Returns true when the strike-out forfeited the match.
func (mh *matchHandler) autoMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, key, username string) bool {
	if state.isCpu(username) {
		return false
	}

	state.Strikes[username]++
	strikes := state.Strikes[username]
	move := state.rng.Intn(7)
	logger.Info("Timer: Auto move %d for %s (strike %d/%d).", move, username, strikes, state.Cfg.MaxStrikes)

	role := "bat"
	if key == timerBowlMove {
		role = "bowl"
	}
	mh.broadcastJSON(dispatcher, logger, OpAutoMoveWarning, &AutoMoveWarningEvent{
		Username:   username,
		Role:       role,
		Move:       move,
		Strikes:    strikes,
		MaxStrikes: state.Cfg.MaxStrikes,
	})

	if strikes >= state.Cfg.MaxStrikes {
		logger.Info("Timer: %s struck out, forfeiting.", username)
		mh.forfeitMatch(ctx, state, dispatcher, logger, username)
		return true
	}

	state.PendingMoves[key] = move
	return false
}

// ballsLeft counts the deliveries remaining in the innings quota.
func ballsLeft(inn *domain.Innings) int {
	left := (inn.TotalOvers-inn.OversCompleted)*6 - inn.BallsInOver
	if left < 0 {
		left = 0
	}
	return left
}

// collectPlayerStats flattens both main innings into per-player figures for
// the stats sink. CPU players are skipped.
func collectPlayerStats(state *MatchState, game *domain.Match, winner string) []ports.PlayerMatchStats {
	perPlayer := make(map[string]*ports.PlayerMatchStats)
	format := cpu.FormatKey(game.TotalOvers)

	ensure := func(name string) *ports.PlayerMatchStats {
		if s, ok := perPlayer[name]; ok {
			return s
		}
		s := &ports.PlayerMatchStats{
			Username: name,
			Format:   format,
			Won:      strings.Contains(winner, name),
		}
		perPlayer[name] = s
		return s
	}

	for _, inn := range []*domain.Innings{game.Innings1, game.Innings2} {
		if inn == nil {
			continue
		}
		for name, card := range inn.BattingCards {
			if state.isCpu(name) || card.Balls == 0 {
				continue
			}
			s := ensure(name)
			s.Runs += card.Runs
			s.BallsFaced += card.Balls
			s.Fours += card.Fours
			s.Sixes += card.Sixes
			s.Out = s.Out || card.IsOut
		}
		for name, card := range inn.BowlingCards {
			if state.isCpu(name) || card.TotalBalls() == 0 {
				continue
			}
			s := ensure(name)
			s.BallsBowled += card.TotalBalls()
			s.RunsConceded += card.RunsConceded
			s.Wickets += card.Wickets
		}
	}

	stats := make([]ports.PlayerMatchStats, 0, len(perPlayer))
	for _, name := range game.SideA {
		if s, ok := perPlayer[name]; ok {
			stats = append(stats, *s)
		}
	}
	for _, name := range game.SideB {
		if s, ok := perPlayer[name]; ok {
			stats = append(stats, *s)
		}
	}
	return stats
}
