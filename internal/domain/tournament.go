package domain

import "sort"

// Tournament phases.
const (
	PhaseGroup      = "group"
	PhaseQualifier1 = "qualifier_1"
	PhaseEliminator = "eliminator"
	PhaseQualifier2 = "qualifier_2"
	PhaseFinal      = "final"
	PhaseComplete   = "complete"
)

// StandingsEntry tracks one player's group-stage record.
type StandingsEntry struct {
	Player       string
	Played       int
	Won          int
	Lost         int
	Tied         int
	Points       int
	RunsScored   int
	OversFaced   float64
	RunsConceded int
	OversBowled  float64
}

// NRR is scoring rate minus conceding rate.
func (e *StandingsEntry) NRR() float64 {
	scoring := 0.0
	if e.OversFaced > 0 {
		scoring = float64(e.RunsScored) / e.OversFaced
	}
	conceding := 0.0
	if e.OversBowled > 0 {
		conceding = float64(e.RunsConceded) / e.OversBowled
	}
	return scoring - conceding
}

// StandingsRow is the broadcast form of one standings line.
type StandingsRow struct {
	Player string  `json:"player"`
	Played int     `json:"played"`
	Won    int     `json:"won"`
	Lost   int     `json:"lost"`
	Tied   int     `json:"tied"`
	Points int     `json:"points"`
	NRR    float64 `json:"nrr"`
}

func (e *StandingsEntry) Row() StandingsRow {
	return StandingsRow{
		Player: e.Player,
		Played: e.Played,
		Won:    e.Won,
		Lost:   e.Lost,
		Tied:   e.Tied,
		Points: e.Points,
		NRR:    round3(e.NRR()),
	}
}

// Pairing is one scheduled fixture.
type Pairing struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
}

// Tournament runs a round-robin group stage into an IPL-style playoff
// bracket: Qualifier 1 (#1 vs #2), Eliminator (#3 vs #4), Qualifier 2
// (Q1 loser vs Eliminator winner), then the Final.
type Tournament struct {
	Players []string
	Overs   int
	Wickets int

	GroupMatches  []Pairing
	GroupMatchIdx int

	Standings map[string]*StandingsEntry

	Phase          string
	PlayoffMatches map[string]*Pairing
	PlayoffResults map[string]string
	Champion       string
}

// NewTournament builds the full group schedule up front, avoiding
// back-to-back fixtures for the same player where possible.
func NewTournament(players []string, overs, wickets int) *Tournament {
	t := &Tournament{
		Players:        players,
		Overs:          overs,
		Wickets:        wickets,
		GroupMatches:   flattenRounds(buildRoundRobinRounds(players)),
		Standings:      make(map[string]*StandingsEntry, len(players)),
		Phase:          PhaseGroup,
		PlayoffMatches: map[string]*Pairing{},
		PlayoffResults: map[string]string{},
	}
	for _, p := range players {
		t.Standings[p] = &StandingsEntry{Player: p}
	}
	return t
}

// NextGroupMatch returns the next unplayed fixture, or nil after the group
// stage is done.
func (t *Tournament) NextGroupMatch() *Pairing {
	if t.GroupMatchIdx < len(t.GroupMatches) {
		p := t.GroupMatches[t.GroupMatchIdx]
		return &p
	}
	return nil
}

// RecordGroupResult applies a finished group match to the standings.
// An empty winner counts as a tie. NRR figures attribute by who batted first.
func (t *Tournament) RecordGroupResult(playerA, playerB, winner string, nrr NRRData) {
	sa, sb := t.Standings[playerA], t.Standings[playerB]
	sa.Played++
	sb.Played++

	switch winner {
	case playerA:
		sa.Won++
		sa.Points += 2
		sb.Lost++
	case playerB:
		sb.Won++
		sb.Points += 2
		sa.Lost++
	default:
		sa.Tied++
		sb.Tied++
		sa.Points++
		sb.Points++
	}

	first, second := sa, sb
	if nrr.BattingFirstPlayer != playerA {
		first, second = sb, sa
	}
	first.RunsScored += nrr.RunsScored1
	first.OversFaced += nrr.OversFaced1
	first.RunsConceded += nrr.RunsScored2
	first.OversBowled += nrr.OversFaced2

	second.RunsScored += nrr.RunsScored2
	second.OversFaced += nrr.OversFaced2
	second.RunsConceded += nrr.RunsScored1
	second.OversBowled += nrr.OversFaced1

	t.GroupMatchIdx++
	if t.GroupMatchIdx >= len(t.GroupMatches) {
		t.setupPlayoffs()
	}
}

// SortedStandings orders by points then NRR, both descending.
func (t *Tournament) SortedStandings() []StandingsRow {
	entries := make([]*StandingsEntry, 0, len(t.Standings))
	for _, e := range t.Standings {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if ni, nj := entries[i].NRR(), entries[j].NRR(); ni != nj {
			return ni > nj
		}
		return entries[i].Player < entries[j].Player
	})
	rows := make([]StandingsRow, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return rows
}

func (t *Tournament) setupPlayoffs() {
	t.Phase = PhaseQualifier1
	ranked := t.SortedStandings()
	if len(ranked) >= 4 {
		t.PlayoffMatches[PhaseQualifier1] = &Pairing{PlayerA: ranked[0].Player, PlayerB: ranked[1].Player}
		t.PlayoffMatches[PhaseEliminator] = &Pairing{PlayerA: ranked[2].Player, PlayerB: ranked[3].Player}
	}
}

// CurrentPlayoffMatch returns the fixture for the current playoff phase.
func (t *Tournament) CurrentPlayoffMatch() *Pairing {
	return t.PlayoffMatches[t.Phase]
}

// RecordPlayoffResult advances the bracket.
func (t *Tournament) RecordPlayoffResult(winner, loser string) {
	t.PlayoffResults[t.Phase] = winner

	switch t.Phase {
	case PhaseQualifier1:
		t.PlayoffResults["q1_winner"] = winner
		t.PlayoffResults["q1_loser"] = loser
		t.Phase = PhaseEliminator
	case PhaseEliminator:
		t.PlayoffResults["elim_winner"] = winner
		t.PlayoffMatches[PhaseQualifier2] = &Pairing{
			PlayerA: t.PlayoffResults["q1_loser"],
			PlayerB: winner,
		}
		t.Phase = PhaseQualifier2
	case PhaseQualifier2:
		t.PlayoffResults["q2_winner"] = winner
		t.PlayoffMatches[PhaseFinal] = &Pairing{
			PlayerA: t.PlayoffResults["q1_winner"],
			PlayerB: winner,
		}
		t.Phase = PhaseFinal
	case PhaseFinal:
		t.Champion = winner
		t.Phase = PhaseComplete
	}
}

// Snapshot is the broadcast form of the tournament state.
type TournamentSnapshot struct {
	Phase              string              `json:"phase"`
	Standings          []StandingsRow      `json:"standings"`
	GroupMatchesTotal  int                 `json:"group_matches_total"`
	GroupMatchesPlayed int                 `json:"group_matches_played"`
	PlayoffBracket     map[string]*Pairing `json:"playoff_bracket"`
	PlayoffResults     map[string]string   `json:"playoff_results"`
	Champion           string              `json:"champion,omitempty"`
}

func (t *Tournament) Snapshot() TournamentSnapshot {
	return TournamentSnapshot{
		Phase:              t.Phase,
		Standings:          t.SortedStandings(),
		GroupMatchesTotal:  len(t.GroupMatches),
		GroupMatchesPlayed: t.GroupMatchIdx,
		PlayoffBracket:     t.PlayoffMatches,
		PlayoffResults:     t.PlayoffResults,
		Champion:           t.Champion,
	}
}

// buildRoundRobinRounds uses the circle method; an odd player count gets a
// bye slot.
func buildRoundRobinRounds(players []string) [][]Pairing {
	pool := append([]string{}, players...)
	if len(pool)%2 == 1 {
		pool = append(pool, "")
	}
	n := len(pool)
	var rounds [][]Pairing
	for r := 0; r < n-1; r++ {
		var pairs []Pairing
		for i := 0; i < n/2; i++ {
			a, b := pool[i], pool[n-1-i]
			if a != "" && b != "" {
				pairs = append(pairs, Pairing{PlayerA: a, PlayerB: b})
			}
		}
		rounds = append(rounds, pairs)
		rotated := make([]string, 0, n)
		rotated = append(rotated, pool[0], pool[n-1])
		rotated = append(rotated, pool[1:n-1]...)
		pool = rotated
	}
	return rounds
}

// flattenRounds orders fixtures so no player plays twice in a row when a
// disjoint fixture is available.
func flattenRounds(rounds [][]Pairing) []Pairing {
	var schedule []Pairing
	lastA, lastB := "", ""
	for _, round := range rounds {
		remaining := append([]Pairing{}, round...)
		for len(remaining) > 0 {
			idx := 0
			for i, p := range remaining {
				if p.PlayerA != lastA && p.PlayerA != lastB &&
					p.PlayerB != lastA && p.PlayerB != lastB {
					idx = i
					break
				}
			}
			pair := remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			schedule = append(schedule, pair)
			lastA, lastB = pair.PlayerA, pair.PlayerB
		}
	}
	return schedule
}

func round3(v float64) float64 {
	if v < 0 {
		return float64(int(v*1000-0.5)) / 1000
	}
	return float64(int(v*1000+0.5)) / 1000
}
