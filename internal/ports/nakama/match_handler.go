package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"handcricket/internal/config"
	"handcricket/internal/cpu"
	"handcricket/internal/domain"
	"handcricket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for one room.
type MatchState struct {
	Tick    int64  `json:"tick"`
	MatchID string `json:"match_id"`

	Presences map[string]runtime.Presence `json:"-"` // userID -> presence
	UserIDs   map[string]string           `json:"-"` // username -> userID
	HostID    string                      `json:"host_id"`

	// Lobby configuration.
	Mode      string   `json:"mode"`
	Overs     int      `json:"overs"`
	Wickets   int      `json:"wickets"`
	Phase     string   `json:"phase"`
	Players   []string `json:"players"` // usernames in join order, CPUs included
	TeamA     []string `json:"team_a"`
	TeamB     []string `json:"team_b"`
	TeamAName string   `json:"team_a_name"`
	TeamBName string   `json:"team_b_name"`
	CaptainA  string   `json:"captain_a"`
	CaptainB  string   `json:"captain_b"`
	CpuNames  []string `json:"cpu_names"`
	CpuSerial int      `json:"cpu_serial"`

	// Active game.
	Game               *domain.Match `json:"-"`
	AwaitingTossCall   bool          `json:"awaiting_toss_call"`
	AwaitingTossChoice bool          `json:"awaiting_toss_choice"`

	PendingMoves     map[string]int   `json:"pending_moves"` // timer key -> move
	Deadlines        map[string]int64 `json:"deadlines"`     // timer key -> tick
	Strikes          map[string]int   `json:"strikes"`       // username -> auto-move strikes
	BatHistory       map[string][]int `json:"-"`             // username -> bat moves this match
	BowlHistory      map[string][]int `json:"-"`
	LastAutoplayTick int64            `json:"-"`

	// Tournament progression (single mode only).
	Tournament        *domain.Tournament   `json:"-"`
	CurrentPair       *domain.Pairing      `json:"-"`
	NextMatchAt       int64                `json:"-"`
	TournamentResults []domain.MatchResult `json:"-"`

	Cfg config.GameConfig `json:"-"`

	rng     *rand.Rand
	engine  *cpu.StrategyEngine
	store   *cpu.Store
	history ports.HistoryPort
	stats   ports.StatsPort
}

func (ms *MatchState) humanCount() int {
	return len(ms.Presences)
}

func (ms *MatchState) isCpu(name string) bool {
	for _, c := range ms.CpuNames {
		if c == name {
			return true
		}
	}
	return false
}

func (ms *MatchState) hasPlayer(name string) bool {
	for _, p := range ms.Players {
		if p == name {
			return true
		}
	}
	return false
}

func (ms *MatchState) removePlayer(name string) {
	ms.Players = removeName(ms.Players, name)
	ms.TeamA = removeName(ms.TeamA, name)
	ms.TeamB = removeName(ms.TeamB, name)
	ms.CpuNames = removeName(ms.CpuNames, name)
	if ms.CaptainA == name {
		ms.CaptainA = ""
	}
	if ms.CaptainB == name {
		ms.CaptainB = ""
	}
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// NewMatch returns the factory function registered with Nakama. The learning
// store and strategy engine are shared across all rooms.
func NewMatch(store *cpu.Store, engine *cpu.StrategyEngine) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{store: store, engine: engine}, nil
	}
}

type matchHandler struct {
	store  *cpu.Store
	engine *cpu.StrategyEngine
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing hand cricket room.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.FromEnv(env)

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		Tick:         time.Now().Unix(),
		MatchID:      matchID,
		Presences:    make(map[string]runtime.Presence),
		UserIDs:      make(map[string]string),
		Mode:         domain.ModeSingle,
		Overs:        cfg.DefaultOvers,
		Wickets:      cfg.DefaultWickets,
		Phase:        phaseLobby,
		TeamAName:    "Team A",
		TeamBName:    "Team B",
		PendingMoves: make(map[string]int),
		Deadlines:    make(map[string]int64),
		Strikes:      make(map[string]int),
		BatHistory:   make(map[string][]int),
		BowlHistory:  make(map[string][]int),
		Cfg:          cfg,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		engine:       mh.engine,
		store:        mh.store,
		history:      NewStorageHistoryAdapter(nk),
		stats:        NewStorageStatsAdapter(nk),
	}

	label := &MatchLabel{Game: "handcricket", Open: cfg.MaxPlayers, Phase: phaseLobby}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Reconnection is always allowed for seated players.
	if matchState.hasPlayer(presence.GetUsername()) {
		return state, true, ""
	}
	if matchState.Phase != phaseLobby {
		return state, false, "Match in progress"
	}
	if len(matchState.Players) >= matchState.Cfg.MaxPlayers {
		return state, false, "Room full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		matchState.UserIDs[p.GetUsername()] = p.GetUserId()

		if matchState.HostID == "" {
			matchState.HostID = p.GetUserId()
			logger.Debug("MatchJoin: %s is the room host.", p.GetUsername())
		}

		if !matchState.hasPlayer(p.GetUsername()) {
			matchState.Players = append(matchState.Players, p.GetUsername())
			if matchState.Mode == domain.ModeTeam {
				assignToSmallerTeam(matchState, p.GetUsername())
			}
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobby(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave frees the seat; a participant leaving mid-game forfeits it.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		username := p.GetUsername()
		delete(matchState.Presences, p.GetUserId())
		delete(matchState.UserIDs, username)

		if matchState.Game != nil && !matchState.Game.Finished && inGame(matchState.Game, username) {
			logger.Info("MatchLeave: %s left mid-game, forfeiting.", username)
			mh.forfeitMatch(ctx, matchState, dispatcher, logger, username)
		}

		matchState.removePlayer(username)

		if matchState.HostID == p.GetUserId() {
			matchState.HostID = ""
			for id := range matchState.Presences {
				matchState.HostID = id
				break
			}
		}
	}

	if matchState.humanCount() == 0 {
		logger.Info("MatchLeave: Terminating room with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobby(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpConfigure:
			mh.handleConfigure(matchState, dispatcher, logger, msg)
		case OpAssignTeam:
			mh.handleAssignTeam(matchState, dispatcher, logger, msg)
		case OpSetTeamName:
			mh.handleSetTeamName(matchState, dispatcher, logger, msg)
		case OpSetCaptain:
			mh.handleSetCaptain(matchState, dispatcher, logger, msg)
		case OpResetTeams:
			mh.handleResetTeams(matchState, dispatcher, logger, msg)
		case OpAddCpu:
			mh.handleAddCpu(matchState, dispatcher, logger, msg)
		case OpRemoveCpu:
			mh.handleRemoveCpu(matchState, dispatcher, logger, msg)
		case OpStartMatch:
			mh.handleStartMatch(ctx, matchState, dispatcher, logger, msg)
		case OpStartTournament:
			mh.handleStartTournament(ctx, matchState, dispatcher, logger, msg)
		case OpTossCall:
			mh.handleTossCall(ctx, matchState, dispatcher, logger, msg)
		case OpTossChoice:
			mh.handleTossChoice(ctx, matchState, dispatcher, logger, msg)
		case OpGameMove:
			mh.handleGameMove(ctx, matchState, dispatcher, logger, msg)
		case OpPickBatter:
			mh.handlePickBatter(ctx, matchState, dispatcher, logger, msg)
		case OpPickBowler:
			mh.handlePickBowler(ctx, matchState, dispatcher, logger, msg)
		case OpCancelMatch:
			mh.handleCancelMatch(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processTimers(ctx, matchState, dispatcher, logger)
	mh.processCpuTurns(ctx, matchState, dispatcher, logger)
	mh.processTournamentCountdown(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Room terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// senderUsername resolves the sender of an inbound message.
func senderUsername(msg runtime.MatchData) string {
	return msg.GetUsername()
}

// inGame reports whether the username participates in the active match.
func inGame(game *domain.Match, username string) bool {
	for _, p := range game.SideA {
		if p == username {
			return true
		}
	}
	for _, p := range game.SideB {
		if p == username {
			return true
		}
	}
	return false
}

func assignToSmallerTeam(state *MatchState, username string) {
	if len(state.TeamA) <= len(state.TeamB) {
		state.TeamA = append(state.TeamA, username)
	} else {
		state.TeamB = append(state.TeamB, username)
	}
}

// broadcastJSON sends a payload to every connected presence.
func (mh *matchHandler) broadcastJSON(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for op %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true)
}

// sendJSON sends a payload to one username. CPU and disconnected recipients
// are silently skipped.
func (mh *matchHandler) sendJSON(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}, username string) {
	userID, ok := state.UserIDs[username]
	if !ok {
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for op %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, username string, code int, message string) {
	mh.sendJSON(state, dispatcher, logger, OpGameError, &GameErrorEvent{Code: code, Message: message}, username)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := 0
	if state.Phase == phaseLobby {
		open = state.Cfg.MaxPlayers - len(state.Players)
		if open < 0 {
			open = 0
		}
	}
	label := &MatchLabel{Game: "handcricket", Open: open, Phase: state.Phase}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) broadcastLobby(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	host := ""
	if p, ok := state.Presences[state.HostID]; ok {
		host = p.GetUsername()
	}
	mh.broadcastJSON(dispatcher, logger, OpLobbyUpdate, &LobbyUpdateEvent{
		HostUsername: host,
		Mode:         state.Mode,
		Overs:        state.Overs,
		Wickets:      state.Wickets,
		Players:      state.Players,
		TeamA:        state.TeamA,
		TeamB:        state.TeamB,
		TeamAName:    state.TeamAName,
		TeamBName:    state.TeamBName,
		CaptainA:     state.CaptainA,
		CaptainB:     state.CaptainB,
		CpuPlayers:   state.CpuNames,
	})
}

// isHost reports whether the message sender is the room host.
func (mh *matchHandler) isHost(state *MatchState, msg runtime.MatchData) bool {
	return msg.GetUserId() == state.HostID
}
