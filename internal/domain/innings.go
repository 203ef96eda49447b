package domain

import (
	"errors"
	"fmt"
)

// ErrInningsComplete is returned when a ball is submitted to a finished innings.
var ErrInningsComplete = errors.New("innings is already complete")

// Candidate is one selectable player in a captain pick, with the
// consecutive-re-entry block surfaced as a disabled flag.
type Candidate struct {
	Player   string `json:"player"`
	Disabled bool   `json:"disabled"`
}

// BallOutcome is the immutable record of one resolved delivery.
type BallOutcome struct {
	BallNum         int    `json:"ball_num"`
	OverDisplay     string `json:"over_display"`
	Striker         string `json:"striker"`
	Bowler          string `json:"bowler"`
	BatMove         int    `json:"bat_move"`
	BowlMove        int    `json:"bowl_move"`
	Runs            int    `json:"runs"`
	IsOut           bool   `json:"is_out"`
	IsFour          bool   `json:"is_four"`
	IsSix           bool   `json:"is_six"`
	InningsRuns     int    `json:"innings_runs"`
	InningsWickets  int    `json:"innings_wickets"`
	InningsOvers    string `json:"innings_overs"`
	OverComplete    bool   `json:"over_complete"`
	InningsComplete bool   `json:"innings_complete"`
	TargetChased    bool   `json:"target_chased"`
	// Milestone is 50 or 100 when the striker crosses that score, else 0.
	Milestone int  `json:"milestone,omitempty"`
	HatTrick  bool `json:"hat_trick"`

	NeedsBatterChoice bool        `json:"needs_batter_choice,omitempty"`
	AvailableBatters  []Candidate `json:"available_batters,omitempty"`
	NeedsBowlerChoice bool        `json:"needs_bowler_choice,omitempty"`
	AvailableBowlers  []Candidate `json:"available_bowlers,omitempty"`
}

// Scorecard is the client-facing snapshot of one innings.
type Scorecard struct {
	Batting   []BattingLine `json:"batting"`
	Bowling   []BowlingLine `json:"bowling"`
	TotalRuns int           `json:"total_runs"`
	Wickets   int           `json:"wickets"`
	Overs     string        `json:"overs"`
	Target    int           `json:"target,omitempty"`
}

// Innings is the ball-by-ball state machine for one side's knock.
// It owns its cards exclusively; the ball log is append-only.
type Innings struct {
	BattingSide  []string
	BowlingSide  []string
	TotalOvers   int
	TotalWickets int
	Target       int // 0 means no target (first innings)
	TeamMode     bool

	BattingCards map[string]*BattingCard
	BowlingCards map[string]*BowlingCard

	StrikerIdx    int
	NonStrikerIdx int // -1 when vacant
	BowlerIdx     int

	WicketsFallen  int
	OversCompleted int
	BallsInOver    int
	TotalRuns      int

	BallLog  []BallOutcome
	Complete bool

	// Captain selection state (team mode only).
	LastBatterOut     string
	LastBowler        string
	NeedsBatterChoice bool
	NeedsBowlerChoice bool
}

// NewInnings seats the first two batters and the first bowler. In team mode
// the captains still owe an opening batter/bowler pick before the first ball.
func NewInnings(battingSide, bowlingSide []string, totalOvers, totalWickets, target int, teamMode bool) *Innings {
	inn := &Innings{
		BattingSide:   battingSide,
		BowlingSide:   bowlingSide,
		TotalOvers:    totalOvers,
		TotalWickets:  totalWickets,
		Target:        target,
		TeamMode:      teamMode,
		BattingCards:  make(map[string]*BattingCard, len(battingSide)),
		BowlingCards:  make(map[string]*BowlingCard, len(bowlingSide)),
		NonStrikerIdx: -1,
	}
	for _, name := range battingSide {
		inn.BattingCards[name] = NewBattingCard(name)
	}
	for _, name := range bowlingSide {
		inn.BowlingCards[name] = NewBowlingCard(name)
	}
	if len(battingSide) > 1 {
		inn.NonStrikerIdx = 1
	}
	inn.NeedsBatterChoice = teamMode && len(battingSide) > 1
	inn.NeedsBowlerChoice = teamMode && len(bowlingSide) > 1
	return inn
}

// Striker returns the batter currently on strike.
func (inn *Innings) Striker() string {
	return inn.BattingSide[inn.StrikerIdx]
}

// NonStriker returns the batter at the other end, or "" if the slot is vacant.
func (inn *Innings) NonStriker() string {
	if inn.NonStrikerIdx < 0 {
		return ""
	}
	return inn.BattingSide[inn.NonStrikerIdx]
}

// CurrentBowler returns the bowler for the ball about to be delivered.
func (inn *Innings) CurrentBowler() string {
	return inn.BowlingSide[inn.BowlerIdx]
}

// OversDisplay renders the innings progress in cricket notation.
func (inn *Innings) OversDisplay() string {
	if inn.BallsInOver == 0 {
		return fmt.Sprintf("%d", inn.OversCompleted)
	}
	return fmt.Sprintf("%d.%d", inn.OversCompleted, inn.BallsInOver)
}

// ResolveBall applies one (batMove, bowlMove) pair. Equal numbers is a
// wicket; a defensive 0 from the batter scores the bowler's number; any other
// batter number scores itself. Strike rotates on 1s and 3s and at over end.
func (inn *Innings) ResolveBall(batMove, bowlMove int) (*BallOutcome, error) {
	if inn.Complete {
		return nil, ErrInningsComplete
	}

	out := &BallOutcome{
		BallNum:     inn.OversCompleted*6 + inn.BallsInOver + 1,
		OverDisplay: fmt.Sprintf("%d.%d", inn.OversCompleted, inn.BallsInOver+1),
		Striker:     inn.Striker(),
		Bowler:      inn.CurrentBowler(),
		BatMove:     batMove,
		BowlMove:    bowlMove,
	}

	batCard := inn.BattingCards[inn.Striker()]
	bowlCard := inn.BowlingCards[inn.CurrentBowler()]

	batCard.Balls++
	bowlCard.BallsInOver++
	inn.BallsInOver++

	if batMove == bowlMove {
		out.IsOut = true
		batCard.IsOut = true
		batCard.Dismissal = "b " + inn.CurrentBowler()
		bowlCard.Wickets++
		inn.WicketsFallen++
		out.HatTrick = inn.isHatTrick(inn.CurrentBowler())
		inn.handleWicketFall(out)
	} else {
		runs := batMove
		if batMove == 0 {
			runs = bowlMove
		}
		out.Runs = runs
		oldRuns := batCard.Runs
		batCard.Runs += runs
		bowlCard.RunsConceded += runs
		inn.TotalRuns += runs

		switch {
		case oldRuns < 50 && batCard.Runs >= 50 && batCard.Runs < 100:
			out.Milestone = 50
		case oldRuns < 100 && batCard.Runs >= 100:
			out.Milestone = 100
		}

		switch runs {
		case 4:
			out.IsFour = true
			batCard.Fours++
		case 6:
			out.IsSix = true
			batCard.Sixes++
		}

		if runs == 1 || runs == 3 {
			inn.rotateStrike()
		}
	}

	if inn.BallsInOver >= 6 {
		out.OverComplete = true
		inn.OversCompleted++
		inn.BallsInOver = 0
		bowlCard.OversCompleted++
		bowlCard.BallsInOver = 0
		inn.rotateStrike()
		inn.nextBowler(out)
	}

	out.InningsRuns = inn.TotalRuns
	out.InningsWickets = inn.WicketsFallen
	out.InningsOvers = inn.OversDisplay()

	if inn.checkComplete() {
		out.InningsComplete = true
		inn.Complete = true
		if inn.Target > 0 && inn.TotalRuns >= inn.Target {
			out.TargetChased = true
		}
	}

	inn.BallLog = append(inn.BallLog, *out)
	return out, nil
}

// isHatTrick reports whether this wicket is the bowler's third in a row,
// checked against the two most recently logged balls.
func (inn *Innings) isHatTrick(bowler string) bool {
	n := len(inn.BallLog)
	if n < 2 {
		return false
	}
	prev1, prev2 := inn.BallLog[n-1], inn.BallLog[n-2]
	return prev1.IsOut && prev1.Bowler == bowler &&
		prev2.IsOut && prev2.Bowler == bowler
}

// handleWicketFall promotes the non-striker and either pauses for a captain
// pick (team mode) or auto-seats the first available batter.
func (inn *Innings) handleWicketFall(out *BallOutcome) {
	if inn.WicketsFallen >= inn.TotalWickets {
		return
	}

	inn.LastBatterOut = inn.BattingSide[inn.StrikerIdx]

	if inn.NonStrikerIdx >= 0 {
		inn.StrikerIdx = inn.NonStrikerIdx
		inn.NonStrikerIdx = -1
	}

	if inn.TeamMode && len(inn.BattingSide) > 1 {
		inn.NeedsBatterChoice = true
		out.NeedsBatterChoice = true
		out.AvailableBatters = inn.AvailableNextBatters()
		return
	}

	for i, name := range inn.BattingSide {
		if inn.BattingCards[name].IsOut || i == inn.StrikerIdx {
			continue
		}
		inn.NonStrikerIdx = i
		break
	}
}

// nextBowler rotates bowling at over end. Team mode pauses for the captain
// instead of rotating round-robin.
func (inn *Innings) nextBowler(out *BallOutcome) {
	if inn.TeamMode && len(inn.BowlingSide) > 1 {
		inn.LastBowler = inn.CurrentBowler()
		inn.NeedsBowlerChoice = true
		if out != nil {
			out.NeedsBowlerChoice = true
			out.AvailableBowlers = inn.AvailableNextBowlers()
		}
		return
	}
	if len(inn.BowlingSide) > 1 {
		inn.BowlerIdx = (inn.BowlerIdx + 1) % len(inn.BowlingSide)
	}
}

func (inn *Innings) rotateStrike() {
	if inn.NonStrikerIdx >= 0 {
		inn.StrikerIdx, inn.NonStrikerIdx = inn.NonStrikerIdx, inn.StrikerIdx
	}
}

// AvailableNextBatters lists who may come in next. The just-dismissed batter
// and anyone already out is disabled, except that the consecutive block is
// lifted when it would leave no legal option.
func (inn *Innings) AvailableNextBatters() []Candidate {
	striker := inn.BattingSide[inn.StrikerIdx]
	nonStriker := inn.NonStriker()
	var options []Candidate
	for _, name := range inn.BattingSide {
		if !inn.NeedsBatterChoice && (name == striker || name == nonStriker) {
			continue // already at crease
		}
		blocked := name == inn.LastBatterOut
		options = append(options, Candidate{
			Player:   name,
			Disabled: blocked || inn.BattingCards[name].IsOut,
		})
	}
	if len(options) > 0 && allDisabled(options) {
		for i := range options {
			if options[i].Player == inn.LastBatterOut {
				options[i].Disabled = false // only option left
			}
		}
	}
	return options
}

// AvailableNextBowlers lists who may bowl the next over; the bowler who just
// finished is disabled unless they are the only choice.
func (inn *Innings) AvailableNextBowlers() []Candidate {
	options := make([]Candidate, 0, len(inn.BowlingSide))
	for _, name := range inn.BowlingSide {
		options = append(options, Candidate{Player: name, Disabled: name == inn.LastBowler})
	}
	if len(options) <= 1 || allDisabled(options) {
		for i := range options {
			options[i].Disabled = false
		}
	}
	return options
}

func allDisabled(options []Candidate) bool {
	for _, o := range options {
		if !o.Disabled {
			return false
		}
	}
	return true
}

// ApplyBatterChoice seats the captain's pick: as opening striker before the
// first ball, otherwise as the incoming non-striker.
func (inn *Innings) ApplyBatterChoice(player string) {
	idx := indexOf(inn.BattingSide, player)
	if idx < 0 {
		return
	}

	firstBall := inn.OversCompleted == 0 && inn.BallsInOver == 0 && inn.WicketsFallen == 0
	if firstBall {
		inn.StrikerIdx = idx
		if inn.NonStrikerIdx == idx {
			inn.NonStrikerIdx = (idx + 1) % len(inn.BattingSide)
		}
	} else {
		inn.NonStrikerIdx = idx
	}
	inn.NeedsBatterChoice = false
}

// ApplyBowlerChoice seats the captain's pick as the next over's bowler.
func (inn *Innings) ApplyBowlerChoice(player string) {
	idx := indexOf(inn.BowlingSide, player)
	if idx < 0 {
		return
	}
	inn.BowlerIdx = idx
	inn.NeedsBowlerChoice = false
}

// checkComplete: wickets exhausted, quota bowled out, or target reached.
func (inn *Innings) checkComplete() bool {
	if inn.WicketsFallen >= inn.TotalWickets {
		return true
	}
	if inn.OversCompleted >= inn.TotalOvers && inn.BallsInOver == 0 {
		return true
	}
	if inn.Target > 0 && inn.TotalRuns >= inn.Target {
		return true
	}
	return false
}

// GetScorecard snapshots the innings for broadcast and persistence.
func (inn *Innings) GetScorecard() Scorecard {
	sc := Scorecard{
		TotalRuns: inn.TotalRuns,
		Wickets:   inn.WicketsFallen,
		Overs:     inn.OversDisplay(),
		Target:    inn.Target,
	}
	for _, name := range inn.BattingSide {
		sc.Batting = append(sc.Batting, inn.BattingCards[name].Line())
	}
	for _, name := range inn.BowlingSide {
		sc.Bowling = append(sc.Bowling, inn.BowlingCards[name].Line())
	}
	return sc
}

func indexOf(players []string, name string) int {
	for i, p := range players {
		if p == name {
			return i
		}
	}
	return -1
}
