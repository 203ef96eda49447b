package domain

import (
	"fmt"
	"math/rand"
	"strings"
)

// Match mode values.
const (
	ModeSingle = "single"
	ModeTeam   = "team"
)

// Toss choice values.
const (
	ChoiceBat  = "bat"
	ChoiceBowl = "bowl"
)

// TossResult describes one coin flip resolution.
type TossResult struct {
	Coin   string `json:"coin"`
	Call   string `json:"call"`
	Won    bool   `json:"won"`
	Winner string `json:"winner"`
}

// SuperOverRound is the frozen record of one completed super-over pair.
type SuperOverRound struct {
	Round       int       `json:"round"`
	Scorecard3  Scorecard `json:"scorecard_3"`
	Scorecard4  Scorecard `json:"scorecard_4"`
	BatTeam3    []string  `json:"bat_team_3"`
	BatTeam4    []string  `json:"bat_team_4"`
	IsTiedRound bool      `json:"is_tied_round"`
	RoundWinner string    `json:"round_winner,omitempty"`
}

// MatchResult is produced once by DetermineResult and handed to persistence.
type MatchResult struct {
	Winner     string    `json:"winner"`
	ResultText string    `json:"result_text"`
	Scorecard1 Scorecard `json:"scorecard_1"`
	Scorecard2 Scorecard `json:"scorecard_2"`
	SideA      []string  `json:"side_a"`
	SideB      []string  `json:"side_b"`
	BatTeam1   []string  `json:"bat_team_1"`
	BatTeam2   []string  `json:"bat_team_2"`

	Scorecard3        *Scorecard       `json:"scorecard_3,omitempty"`
	Scorecard4        *Scorecard       `json:"scorecard_4,omitempty"`
	BatTeam3          []string         `json:"bat_team_3,omitempty"`
	BatTeam4          []string         `json:"bat_team_4,omitempty"`
	SuperOverTimeline []SuperOverRound `json:"super_over_timeline,omitempty"`
}

// NRRData carries the per-innings run/over figures tournament standings need.
// Overs faced follow the official convention: a side bowled out early is
// charged its full quota.
type NRRData struct {
	RunsScored1        int     `json:"runs_scored_1"`
	OversFaced1        float64 `json:"overs_faced_1"`
	RunsScored2        int     `json:"runs_scored_2"`
	OversFaced2        float64 `json:"overs_faced_2"`
	BattingFirstPlayer string  `json:"batting_first_player"`
}

// Match sequences the toss, the two regular innings, and any number of
// super-over pairs until a winner emerges.
type Match struct {
	ID           string
	Mode         string
	SideA        []string
	SideB        []string
	TotalOvers   int
	TotalWickets int

	TossCaller string
	TossWinner string
	TossChoice string

	BattingFirst []string
	BowlingFirst []string

	Innings1 *Innings
	Innings2 *Innings
	Innings3 *Innings
	Innings4 *Innings

	IsSuperOver       bool
	SuperOverRoundNum int
	SuperOverRounds   []SuperOverRound

	CurrentInnings int
	Winner         string
	ResultText     string
	Finished       bool

	// NRRLocked marks a forfeited/cancelled match that standings must not
	// consume for net run rate.
	NRRLocked bool

	rng *rand.Rand
}

// NewMatch constructs an unstarted match. The rand source drives the toss
// coin and caller selection; tests inject a seeded one.
func NewMatch(id, mode string, sideA, sideB []string, totalOvers, totalWickets int, rng *rand.Rand) *Match {
	return &Match{
		ID:           id,
		Mode:         mode,
		SideA:        sideA,
		SideB:        sideB,
		TotalOvers:   totalOvers,
		TotalWickets: totalWickets,
		rng:          rng,
	}
}

// DoToss fixes the caller: the given player if non-empty, otherwise a random
// participant.
func (m *Match) DoToss(caller string) string {
	if caller != "" {
		m.TossCaller = caller
		return caller
	}
	all := append(append([]string{}, m.SideA...), m.SideB...)
	m.TossCaller = all[m.rng.Intn(len(all))]
	return m.TossCaller
}

// ResolveToss flips the coin against the caller's call. A wrong call hands
// the toss to otherSideChooser when given, else the other side's first player.
func (m *Match) ResolveToss(call, otherSideChooser string) TossResult {
	coin := "heads"
	if m.rng.Intn(2) == 1 {
		coin = "tails"
	}
	won := call == coin
	if won {
		m.TossWinner = m.TossCaller
	} else if otherSideChooser != "" {
		m.TossWinner = otherSideChooser
	} else {
		m.TossWinner = m.otherSidePlayer(m.TossCaller)
	}
	return TossResult{Coin: coin, Call: call, Won: won, Winner: m.TossWinner}
}

// ApplyTossChoice fixes the batting order from the winner's bat/bowl election.
func (m *Match) ApplyTossChoice(choice string) {
	m.TossChoice = choice
	winnerSide, loserSide := m.SideA, m.SideB
	if indexOf(m.SideA, m.TossWinner) < 0 {
		winnerSide, loserSide = m.SideB, m.SideA
	}
	if choice == ChoiceBat {
		m.BattingFirst, m.BowlingFirst = winnerSide, loserSide
	} else {
		m.BattingFirst, m.BowlingFirst = loserSide, winnerSide
	}
}

func (m *Match) StartInnings1() {
	m.CurrentInnings = 1
	m.Innings1 = NewInnings(m.BattingFirst, m.BowlingFirst, m.TotalOvers, m.TotalWickets, 0, m.Mode == ModeTeam)
}

func (m *Match) StartInnings2() {
	m.CurrentInnings = 2
	target := m.Innings1.TotalRuns + 1
	m.Innings2 = NewInnings(m.BowlingFirst, m.BattingFirst, m.TotalOvers, m.TotalWickets, target, m.Mode == ModeTeam)
}

// StartInnings3 opens a super-over pair: 1 over, 2 wickets, and the side
// that chased in the main innings bats first.
func (m *Match) StartInnings3() {
	m.IsSuperOver = true
	m.Finished = false
	m.Winner = ""
	m.ResultText = ""
	m.SuperOverRoundNum++
	m.CurrentInnings = 3
	m.Innings3 = NewInnings(m.BowlingFirst, m.BattingFirst, 1, 2, 0, m.Mode == ModeTeam)
}

func (m *Match) StartInnings4() {
	m.CurrentInnings = 4
	target := m.Innings3.TotalRuns + 1
	m.Innings4 = NewInnings(m.BattingFirst, m.BowlingFirst, 1, 2, target, m.Mode == ModeTeam)
}

// ActiveInnings returns the innings currently in play, or nil.
func (m *Match) ActiveInnings() *Innings {
	switch m.CurrentInnings {
	case 1:
		return m.Innings1
	case 2:
		return m.Innings2
	case 3:
		return m.Innings3
	case 4:
		return m.Innings4
	}
	return nil
}

// SnapshotSuperOverRound freezes the just-completed round (innings 3+4) into
// the timeline. Idempotent per round.
func (m *Match) SnapshotSuperOverRound() *SuperOverRound {
	if m.Innings3 == nil || m.Innings4 == nil {
		return nil
	}
	roundNo := m.SuperOverRoundNum
	if roundNo == 0 {
		roundNo = len(m.SuperOverRounds) + 1
	}
	if n := len(m.SuperOverRounds); n > 0 && m.SuperOverRounds[n-1].Round == roundNo {
		return &m.SuperOverRounds[n-1]
	}

	s3, s4 := m.Innings3.TotalRuns, m.Innings4.TotalRuns
	snap := SuperOverRound{
		Round:       roundNo,
		Scorecard3:  m.Innings3.GetScorecard(),
		Scorecard4:  m.Innings4.GetScorecard(),
		BatTeam3:    append([]string{}, m.BowlingFirst...),
		BatTeam4:    append([]string{}, m.BattingFirst...),
		IsTiedRound: s3 == s4,
	}
	if s4 > s3 {
		snap.RoundWinner = sideLabel(m.BattingFirst)
	} else if s3 > s4 {
		snap.RoundWinner = sideLabel(m.BowlingFirst)
	}
	m.SuperOverRounds = append(m.SuperOverRounds, snap)
	return &m.SuperOverRounds[len(m.SuperOverRounds)-1]
}

// DetermineResult compares innings totals and finalizes the match. A "TIE"
// winner signals the caller to open (another) super over.
func (m *Match) DetermineResult() MatchResult {
	batFirst := sideLabel(m.BattingFirst)
	batSecond := sideLabel(m.BowlingFirst)

	if !m.IsSuperOver {
		s1, s2 := m.Innings1.TotalRuns, m.Innings2.TotalRuns
		switch {
		case s2 > s1:
			remaining := m.TotalWickets - m.Innings2.WicketsFallen
			m.Winner = batSecond
			m.ResultText = fmt.Sprintf("%s won by %d wicket(s)", batSecond, remaining)
		case s1 > s2:
			m.Winner = batFirst
			m.ResultText = fmt.Sprintf("%s won by %d run(s)", batFirst, s1-s2)
		default:
			m.Winner = "TIE"
			m.ResultText = "Match Tied!"
		}
	} else {
		s3 := m.Innings3.TotalRuns
		s4 := 0
		if m.Innings4 != nil {
			s4 = m.Innings4.TotalRuns
		}
		switch {
		case s4 > s3:
			m.Winner = batFirst
			m.ResultText = fmt.Sprintf("SUPER OVER: %s won!", batFirst)
		case s3 > s4:
			m.Winner = batSecond
			m.ResultText = fmt.Sprintf("SUPER OVER: %s won!", batSecond)
		default:
			m.Winner = "TIE"
			m.ResultText = "SUPER OVER TIED!"
		}
	}

	m.Finished = true
	result := MatchResult{
		Winner:     m.Winner,
		ResultText: m.ResultText,
		SideA:      m.SideA,
		SideB:      m.SideB,
		BatTeam1:   m.BattingFirst,
		BatTeam2:   m.BowlingFirst,
	}
	if m.Innings1 != nil {
		result.Scorecard1 = m.Innings1.GetScorecard()
	}
	if m.Innings2 != nil {
		result.Scorecard2 = m.Innings2.GetScorecard()
	}
	if m.IsSuperOver {
		if m.Innings3 != nil {
			sc := m.Innings3.GetScorecard()
			result.Scorecard3 = &sc
		}
		if m.Innings4 != nil {
			sc := m.Innings4.GetScorecard()
			result.Scorecard4 = &sc
		}
		result.BatTeam3 = m.BowlingFirst
		result.BatTeam4 = m.BattingFirst
		result.SuperOverTimeline = append([]SuperOverRound{}, m.SuperOverRounds...)
	}
	return result
}

// ForfeitResult finalizes the match in the named side's favour without
// comparing totals, for walkovers and strike-outs. The match is excluded from
// net run rate.
func (m *Match) ForfeitResult(winnerSide []string) MatchResult {
	m.Winner = sideLabel(winnerSide)
	m.ResultText = fmt.Sprintf("%s won by forfeit", m.Winner)
	m.Finished = true
	m.NRRLocked = true

	result := MatchResult{
		Winner:     m.Winner,
		ResultText: m.ResultText,
		SideA:      m.SideA,
		SideB:      m.SideB,
		BatTeam1:   m.BattingFirst,
		BatTeam2:   m.BowlingFirst,
	}
	if m.Innings1 != nil {
		result.Scorecard1 = m.Innings1.GetScorecard()
	}
	if m.Innings2 != nil {
		result.Scorecard2 = m.Innings2.GetScorecard()
	}
	return result
}

// GetNRRData extracts the main-innings run rates for tournament standings.
func (m *Match) GetNRRData() NRRData {
	data := NRRData{
		OversFaced1: officialOversFaced(m.Innings1),
		OversFaced2: officialOversFaced(m.Innings2),
	}
	if m.Innings1 != nil {
		data.RunsScored1 = m.Innings1.TotalRuns
	}
	if m.Innings2 != nil {
		data.RunsScored2 = m.Innings2.TotalRuns
	}
	if len(m.BattingFirst) > 0 {
		data.BattingFirstPlayer = m.BattingFirst[0]
	}
	return data
}

// officialOversFaced charges a side bowled out early with its full quota.
func officialOversFaced(inn *Innings) float64 {
	if inn == nil {
		return 0
	}
	ballsFaced := inn.OversCompleted*6 + inn.BallsInOver
	actual := float64(ballsFaced) / 6.0
	quota := float64(inn.TotalOvers)
	if inn.WicketsFallen >= inn.TotalWickets && actual < quota {
		return quota
	}
	return actual
}

func (m *Match) otherSidePlayer(player string) string {
	if indexOf(m.SideA, player) >= 0 {
		return m.SideB[0]
	}
	return m.SideA[0]
}

func sideLabel(side []string) string {
	return strings.Join(side, ", ")
}
