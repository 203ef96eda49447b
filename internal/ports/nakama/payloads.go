package nakama

import "handcricket/internal/domain"

// Inbound message payloads. All client messages are JSON; unknown or
// malformed payloads are ignored with a warning.

type ConfigureRequest struct {
	Mode    string `json:"mode"`
	Overs   int    `json:"overs"`
	Wickets int    `json:"wickets"`
}

type AssignTeamRequest struct {
	Username string `json:"username"`
	Team     string `json:"team"` // "a" or "b"
}

type SetTeamNameRequest struct {
	Team string `json:"team"`
	Name string `json:"name"`
}

type SetCaptainRequest struct {
	Team     string `json:"team"`
	Username string `json:"username"`
}

type RemoveCpuRequest struct {
	Name string `json:"name,omitempty"` // empty removes the last added
}

type TossCallRequest struct {
	Call string `json:"call"` // "heads" or "tails"
}

type TossChoiceRequest struct {
	Choice string `json:"choice"` // "bat" or "bowl"
}

type GameMoveRequest struct {
	Move int `json:"move"` // 0-6
}

type PickRequest struct {
	Player string `json:"player"`
}

// Outbound event payloads.

type LobbyUpdateEvent struct {
	HostUsername string   `json:"host_username"`
	Mode         string   `json:"mode"`
	Overs        int      `json:"overs"`
	Wickets      int      `json:"wickets"`
	Players      []string `json:"players"`
	TeamA        []string `json:"team_a"`
	TeamB        []string `json:"team_b"`
	TeamAName    string   `json:"team_a_name"`
	TeamBName    string   `json:"team_b_name"`
	CaptainA     string   `json:"captain_a,omitempty"`
	CaptainB     string   `json:"captain_b,omitempty"`
	CpuPlayers   []string `json:"cpu_players"`
}

type TossCallerEvent struct {
	Caller string `json:"caller"`
}

type TossResultEvent struct {
	Coin   string `json:"coin"`
	Call   string `json:"call"`
	Caller string `json:"caller"`
	Won    bool   `json:"won"`
	Winner string `json:"winner"`
}

type TossDecisionEvent struct {
	Winner  string `json:"winner"`
	Choice  string `json:"choice"`
	Batting string `json:"batting"`
	Bowling string `json:"bowling"`
}

// MatchStateEvent is sent per-recipient so each client learns its own role
// for the pending ball. It carries the full innings snapshot so a
// reconnecting client can rebuild its view from one event.
type MatchStateEvent struct {
	Innings     int              `json:"innings"`
	IsSuperOver bool             `json:"is_super_over"`
	BattingSide []string         `json:"batting_side"`
	BowlingSide []string         `json:"bowling_side"`
	Striker     string           `json:"striker"`
	NonStriker  string           `json:"non_striker,omitempty"`
	Bowler      string           `json:"bowler"`
	TotalRuns   int              `json:"total_runs"`
	Wickets     int              `json:"wickets"`
	Overs       string           `json:"overs"`
	Target      int              `json:"target,omitempty"`
	Scorecard   domain.Scorecard `json:"scorecard"`

	AwaitingBat       bool `json:"awaiting_bat"`
	AwaitingBowl      bool `json:"awaiting_bowl"`
	NeedsBatterChoice bool `json:"needs_batter_choice,omitempty"`
	NeedsBowlerChoice bool `json:"needs_bowler_choice,omitempty"`

	YourRole     string `json:"your_role"` // "bat", "bowl" or "watch"
	MoveDeadline int    `json:"move_deadline_seconds"`
}

type InningsBreakEvent struct {
	InningsCompleted int              `json:"innings_completed"`
	Scorecard        domain.Scorecard `json:"scorecard"`
	Target           int              `json:"target"`
	NextBatting      string           `json:"next_batting"`
	SuperOver        bool             `json:"super_over"`
	SuperOverRound   int              `json:"super_over_round,omitempty"`
}

type MatchOverEvent struct {
	Result        domain.MatchResult         `json:"result"`
	PlayerOfMatch *domain.PlayerOfMatch      `json:"player_of_match,omitempty"`
	Forfeited     bool                       `json:"forfeited,omitempty"`
	Tournament    *domain.TournamentSnapshot `json:"tournament,omitempty"`
	Awards        *domain.TournamentAwards   `json:"awards,omitempty"`
}

type MatchCancelledEvent struct {
	By     string `json:"by"`
	Reason string `json:"reason"`
}

// AutoMoveWarningEvent reports a timeout strike. Move carries the auto-played
// number on ball timeouts; Player carries the auto-seated candidate on
// captain-pick timeouts.
type AutoMoveWarningEvent struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	Move       int    `json:"move,omitempty"`
	Player     string `json:"player,omitempty"`
	Strikes    int    `json:"strikes"`
	MaxStrikes int    `json:"max_strikes"`
}

type ChoosePlayerEvent struct {
	Captain    string             `json:"captain"`
	Candidates []domain.Candidate `json:"candidates"`
	Deadline   int                `json:"deadline_seconds"`
}

type CountdownEvent struct {
	Seconds int    `json:"seconds"`
	NextA   string `json:"next_a,omitempty"`
	NextB   string `json:"next_b,omitempty"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchLabel is the JSON label Nakama indexes for match listing queries.
type MatchLabel struct {
	Game  string `json:"game"`
	Open  int    `json:"open"`
	Phase string `json:"phase"`
}
