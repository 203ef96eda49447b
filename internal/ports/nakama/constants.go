package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcCpuStatus returns how far the CPU has profiled the calling user.
	RpcCpuStatus = "cpu_status"

	// MatchNameHandCricket is the authoritative match handler name registered with Nakama.
	MatchNameHandCricket = "handcricket_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpConfigure       int64 = 1
	OpAssignTeam      int64 = 2
	OpSetTeamName     int64 = 3
	OpSetCaptain      int64 = 4
	OpResetTeams      int64 = 5
	OpAddCpu          int64 = 6
	OpRemoveCpu       int64 = 7
	OpStartMatch      int64 = 8
	OpStartTournament int64 = 9
	OpTossCall        int64 = 10
	OpTossChoice      int64 = 11
	OpGameMove        int64 = 12
	OpPickBatter      int64 = 13
	OpPickBowler      int64 = 14
	OpCancelMatch     int64 = 15

	// Server -> Client events
	OpLobbyUpdate         int64 = 101
	OpTossWaiting         int64 = 102
	OpTossCaller          int64 = 103
	OpTossResult          int64 = 104
	OpTossChoose          int64 = 105
	OpTossDecision        int64 = 106
	OpMatchStateEvent     int64 = 107
	OpBallResult          int64 = 108
	OpInningsBreak        int64 = 109
	OpMatchOver           int64 = 110
	OpMatchCancelled      int64 = 111
	OpAutoMoveWarning     int64 = 112
	OpChooseBatter        int64 = 113
	OpChooseBowler        int64 = 114
	OpCountdown           int64 = 115
	OpTournamentStandings int64 = 116
	OpGameError           int64 = 117
)

// Timer keys into MatchState.Deadlines.
const (
	timerBatMove    = "bat"
	timerBowlMove   = "bowl"
	timerPickBatter = "pick_batter"
	timerPickBowler = "pick_bowler"
)

// Room phases carried in the match label.
const (
	phaseLobby   = "lobby"
	phaseToss    = "toss"
	phasePlaying = "playing"
)
