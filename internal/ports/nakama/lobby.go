package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"handcricket/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Lobby message handlers. All of these are host-only and lobby-phase-only;
// violations are ignored with a warning, matching the server-authoritative
// contract.

func (mh *matchHandler) handleConfigure(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "Configure") {
		return
	}

	var req ConfigureRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("Configure: Invalid payload from %s: %v", senderUsername(msg), err)
		return
	}

	if req.Mode == domain.ModeSingle || req.Mode == domain.ModeTeam {
		state.Mode = req.Mode
		if req.Mode == domain.ModeTeam {
			mh.autoAssignTeams(state)
		} else {
			state.TeamA, state.TeamB = nil, nil
			state.CaptainA, state.CaptainB = "", ""
		}
	}
	if req.Overs >= 1 && req.Overs <= state.Cfg.MaxOvers {
		state.Overs = req.Overs
	}
	if req.Wickets >= 1 && req.Wickets <= state.Cfg.MaxWickets {
		state.Wickets = req.Wickets
	}

	mh.broadcastLobby(state, dispatcher, logger)
}

// autoAssignTeams deals every seated player onto alternating teams.
func (mh *matchHandler) autoAssignTeams(state *MatchState) {
	state.TeamA, state.TeamB = nil, nil
	for i, name := range state.Players {
		if i%2 == 0 {
			state.TeamA = append(state.TeamA, name)
		} else {
			state.TeamB = append(state.TeamB, name)
		}
	}
}

func (mh *matchHandler) handleAssignTeam(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "AssignTeam") {
		return
	}
	if state.Mode != domain.ModeTeam {
		logger.Warn("AssignTeam: Room is not in team mode.")
		return
	}

	var req AssignTeamRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || !state.hasPlayer(req.Username) {
		logger.Warn("AssignTeam: Invalid payload from %s", senderUsername(msg))
		return
	}

	state.TeamA = removeName(state.TeamA, req.Username)
	state.TeamB = removeName(state.TeamB, req.Username)
	if state.CaptainA == req.Username {
		state.CaptainA = ""
	}
	if state.CaptainB == req.Username {
		state.CaptainB = ""
	}
	switch req.Team {
	case "a":
		state.TeamA = append(state.TeamA, req.Username)
	case "b":
		state.TeamB = append(state.TeamB, req.Username)
	default:
		logger.Warn("AssignTeam: Unknown team %q", req.Team)
		return
	}

	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleSetTeamName(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "SetTeamName") {
		return
	}

	var req SetTeamNameRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || req.Name == "" {
		logger.Warn("SetTeamName: Invalid payload from %s", senderUsername(msg))
		return
	}
	switch req.Team {
	case "a":
		state.TeamAName = req.Name
	case "b":
		state.TeamBName = req.Name
	default:
		return
	}
	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleSetCaptain(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "SetCaptain") {
		return
	}

	var req SetCaptainRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("SetCaptain: Invalid payload from %s", senderUsername(msg))
		return
	}
	switch {
	case req.Team == "a" && containsName(state.TeamA, req.Username):
		state.CaptainA = req.Username
	case req.Team == "b" && containsName(state.TeamB, req.Username):
		state.CaptainB = req.Username
	default:
		logger.Warn("SetCaptain: %s is not on team %q", req.Username, req.Team)
		return
	}
	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleResetTeams(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "ResetTeams") {
		return
	}
	state.TeamA, state.TeamB = nil, nil
	state.CaptainA, state.CaptainB = "", ""
	if state.Mode == domain.ModeTeam {
		mh.autoAssignTeams(state)
	}
	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleAddCpu(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "AddCpu") {
		return
	}
	if len(state.Players) >= state.Cfg.MaxPlayers {
		mh.sendError(state, dispatcher, logger, senderUsername(msg), 400, "Room full")
		return
	}

	state.CpuSerial++
	name := fmt.Sprintf("CPU %d", state.CpuSerial)
	state.CpuNames = append(state.CpuNames, name)
	state.Players = append(state.Players, name)
	if state.Mode == domain.ModeTeam {
		assignToSmallerTeam(state, name)
	}

	logger.Info("AddCpu: %s joined the lobby.", name)
	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleRemoveCpu(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "RemoveCpu") {
		return
	}
	if len(state.CpuNames) == 0 {
		return
	}

	var req RemoveCpuRequest
	_ = json.Unmarshal(msg.GetData(), &req)

	name := req.Name
	if name == "" {
		name = state.CpuNames[len(state.CpuNames)-1]
	}
	if !state.isCpu(name) {
		logger.Warn("RemoveCpu: %q is not a CPU player.", name)
		return
	}
	state.removePlayer(name)
	mh.broadcastLobby(state, dispatcher, logger)
}

func (mh *matchHandler) handleStartMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "StartMatch") {
		return
	}

	sideA, sideB, err := mh.buildSides(state)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderUsername(msg), 400, err.Error())
		return
	}

	mh.startGame(ctx, state, dispatcher, logger, sideA, sideB)
}

func (mh *matchHandler) handleStartTournament(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.lobbyOpAllowed(state, logger, msg, "StartTournament") {
		return
	}
	if state.Mode != domain.ModeSingle {
		mh.sendError(state, dispatcher, logger, senderUsername(msg), 400, "Tournaments are 1v1 only")
		return
	}
	if len(state.Players) < 3 {
		mh.sendError(state, dispatcher, logger, senderUsername(msg), 400, "Tournament needs at least 3 players")
		return
	}

	state.Tournament = domain.NewTournament(append([]string{}, state.Players...), state.Overs, state.Wickets)
	state.TournamentResults = nil
	logger.Info("StartTournament: %d players, %d group matches.", len(state.Players), len(state.Tournament.GroupMatches))

	mh.broadcastJSON(dispatcher, logger, OpTournamentStandings, state.Tournament.Snapshot())
	mh.startNextTournamentMatch(ctx, state, dispatcher, logger)
}

// buildSides produces the two competing sides from the lobby layout.
func (mh *matchHandler) buildSides(state *MatchState) ([]string, []string, error) {
	if state.Mode == domain.ModeTeam {
		if len(state.TeamA) == 0 || len(state.TeamB) == 0 {
			return nil, nil, fmt.Errorf("both teams need players")
		}
		return append([]string{}, state.TeamA...), append([]string{}, state.TeamB...), nil
	}
	if len(state.Players) < 2 {
		return nil, nil, fmt.Errorf("need two players")
	}
	return []string{state.Players[0]}, []string{state.Players[1]}, nil
}

func (mh *matchHandler) lobbyOpAllowed(state *MatchState, logger runtime.Logger, msg runtime.MatchData, op string) bool {
	if state.Phase != phaseLobby {
		logger.Warn("%s: Ignored outside lobby phase (phase=%s).", op, state.Phase)
		return false
	}
	if !mh.isHost(state, msg) {
		logger.Warn("%s: %s is not the host.", op, senderUsername(msg))
		return false
	}
	return true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
