package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayerOfMatch is the best composite performer of one match.
type PlayerOfMatch struct {
	Player  string  `json:"player"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	Runs    int     `json:"runs"`
	Balls   int     `json:"balls"`
	Wickets int     `json:"wickets"`
	SR      float64 `json:"sr"`
	Economy float64 `json:"economy,omitempty"`
}

// ComputePlayerOfMatch scores every participant across both main innings:
// runs weigh 1, wickets 25, with bonuses for strike rate over 100, economy
// under 8, and being on the winning side.
func ComputePlayerOfMatch(m *Match) PlayerOfMatch {
	all := append(append([]string{}, m.SideA...), m.SideB...)
	var best PlayerOfMatch
	bestScore := -1.0

	for _, name := range all {
		var runs, ballsFaced, wickets, conceded int
		var oversBowled float64

		for _, inn := range []*Innings{m.Innings1, m.Innings2} {
			if inn == nil {
				continue
			}
			if card, ok := inn.BattingCards[name]; ok {
				runs += card.Runs
				ballsFaced += card.Balls
			}
			if card, ok := inn.BowlingCards[name]; ok {
				wickets += card.Wickets
				conceded += card.RunsConceded
				oversBowled += float64(card.OversCompleted) + float64(card.BallsInOver)/6
			}
		}

		sr := 0.0
		if ballsFaced > 0 {
			sr = float64(runs) / float64(ballsFaced) * 100
		}
		srBonus := 0.0
		if ballsFaced >= 3 && sr > 100 {
			srBonus = (sr - 100) * 0.1
		}
		econ := 99.0
		if oversBowled > 0 {
			econ = float64(conceded) / oversBowled
		}
		econBonus := 0.0
		if oversBowled >= 1 && econ < 8 {
			econBonus = (8 - econ) * 3
		}
		winBonus := 0.0
		if m.Winner != "" && strings.Contains(m.Winner, name) {
			winBonus = 10
		}

		score := float64(runs) + float64(wickets)*25 + srBonus + econBonus + winBonus
		if score > bestScore {
			bestScore = score
			best = PlayerOfMatch{
				Player:  name,
				Score:   round1(score),
				Runs:    runs,
				Balls:   ballsFaced,
				Wickets: wickets,
				SR:      round1(sr),
			}
			if oversBowled > 0 {
				best.Economy = round1(econ)
			}
		}
	}

	var parts []string
	if best.Runs > 0 {
		parts = append(parts, fmt.Sprintf("%d(%d)", best.Runs, best.Balls))
	}
	if best.Wickets > 0 {
		parts = append(parts, fmt.Sprintf("%d wkt(s)", best.Wickets))
	}
	best.Summary = "All-round contribution"
	if len(parts) > 0 {
		best.Summary = strings.Join(parts, " & ")
	}
	return best
}

// TournamentAwards collects the end-of-tournament honors board.
type TournamentAwards struct {
	OrangeCap          *AwardEntry `json:"orange_cap"`
	PurpleCap          *AwardEntry `json:"purple_cap"`
	BestStrikeRate     *AwardEntry `json:"best_strike_rate"`
	BestAverage        *AwardEntry `json:"best_average"`
	BestEconomy        *AwardEntry `json:"best_economy"`
	PlayerOfTournament *AwardEntry `json:"player_of_tournament"`
}

// AwardEntry is one honors-board line; only the fields relevant to the award
// are populated.
type AwardEntry struct {
	Player       string  `json:"player"`
	Runs         int     `json:"runs,omitempty"`
	Balls        int     `json:"balls,omitempty"`
	SR           float64 `json:"sr,omitempty"`
	Wickets      int     `json:"wickets,omitempty"`
	Overs        float64 `json:"overs,omitempty"`
	Economy      float64 `json:"economy,omitempty"`
	Average      float64 `json:"average,omitempty"`
	Innings      int     `json:"innings,omitempty"`
	Dismissals   int     `json:"dismissals,omitempty"`
	RunsConceded int     `json:"runs_conceded,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

type playerTotals struct {
	runs, balls, wickets, conceded int
	overs                          float64
	inningsBat, dismissals         int
}

// ComputeTournamentAwards aggregates all main-innings scorecards of a
// tournament and picks the cap holders. Rate awards carry minimum-volume
// qualifiers (10 balls faced, 2 innings batted, 2 overs bowled).
func ComputeTournamentAwards(results []MatchResult) TournamentAwards {
	totals := map[string]*playerTotals{}
	get := func(name string) *playerTotals {
		t, ok := totals[name]
		if !ok {
			t = &playerTotals{}
			totals[name] = t
		}
		return t
	}

	for _, res := range results {
		for _, sc := range []Scorecard{res.Scorecard1, res.Scorecard2} {
			for _, bat := range sc.Batting {
				t := get(bat.Name)
				t.runs += bat.Runs
				t.balls += bat.Balls
				t.inningsBat++
				if bat.IsOut {
					t.dismissals++
				}
			}
			for _, bowl := range sc.Bowling {
				t := get(bowl.Name)
				t.wickets += bowl.Wickets
				t.conceded += bowl.Runs
				t.overs += parseOvers(bowl.Overs)
			}
		}
	}

	var awards TournamentAwards

	if name, t := maxBy(totals, func(t *playerTotals) float64 { return float64(t.runs) }); t != nil && t.runs > 0 {
		entry := &AwardEntry{Player: name, Runs: t.runs, Balls: t.balls}
		if t.balls > 0 {
			entry.SR = round1(float64(t.runs) / float64(t.balls) * 100)
		}
		awards.OrangeCap = entry
	}

	if name, t := maxBy(totals, func(t *playerTotals) float64 { return float64(t.wickets) }); t != nil && t.wickets > 0 {
		entry := &AwardEntry{Player: name, Wickets: t.wickets, Overs: round1(t.overs)}
		if t.overs > 0 {
			entry.Economy = round1(float64(t.conceded) / t.overs)
		}
		awards.PurpleCap = entry
	}

	srPool := filterTotals(totals, func(t *playerTotals) bool { return t.balls >= 10 })
	if name, t := maxBy(srPool, func(t *playerTotals) float64 {
		return float64(t.runs) / float64(t.balls)
	}); t != nil {
		awards.BestStrikeRate = &AwardEntry{
			Player: name,
			SR:     round1(float64(t.runs) / float64(t.balls) * 100),
			Runs:   t.runs,
			Balls:  t.balls,
		}
	}

	avgPool := filterTotals(totals, func(t *playerTotals) bool { return t.inningsBat >= 2 })
	if name, t := maxBy(avgPool, battingAverage); t != nil {
		awards.BestAverage = &AwardEntry{
			Player:     name,
			Average:    round1(battingAverage(t)),
			Runs:       t.runs,
			Innings:    t.inningsBat,
			Dismissals: t.dismissals,
		}
	}

	econPool := filterTotals(totals, func(t *playerTotals) bool { return t.overs >= 2 })
	if name, t := maxBy(econPool, func(t *playerTotals) float64 {
		return -float64(t.conceded) / t.overs
	}); t != nil {
		awards.BestEconomy = &AwardEntry{
			Player:       name,
			Economy:      round1(float64(t.conceded) / t.overs),
			Overs:        round1(t.overs),
			RunsConceded: t.conceded,
		}
	}

	if name, t := maxBy(totals, compositeScore); t != nil {
		awards.PlayerOfTournament = &AwardEntry{
			Player:  name,
			Score:   round1(compositeScore(t)),
			Runs:    t.runs,
			Wickets: t.wickets,
		}
	}

	return awards
}

func battingAverage(t *playerTotals) float64 {
	if t.dismissals > 0 {
		return float64(t.runs) / float64(t.dismissals)
	}
	return float64(t.runs)
}

func compositeScore(t *playerTotals) float64 {
	score := float64(t.runs) + float64(t.wickets)*25
	if t.balls >= 10 {
		if sr := float64(t.runs) / float64(t.balls) * 100; sr > 100 {
			score += (sr - 100) * 0.1
		}
	}
	if t.overs >= 2 {
		if econ := float64(t.conceded) / t.overs; econ < 8 {
			score += (8 - econ) * 3
		}
	}
	return score
}

func maxBy(totals map[string]*playerTotals, key func(*playerTotals) float64) (string, *playerTotals) {
	var bestName string
	var best *playerTotals
	bestVal := 0.0
	for name, t := range totals {
		v := key(t)
		if best == nil || v > bestVal || (v == bestVal && name < bestName) {
			bestName, best, bestVal = name, t, v
		}
	}
	return bestName, best
}

func filterTotals(totals map[string]*playerTotals, keep func(*playerTotals) bool) map[string]*playerTotals {
	out := map[string]*playerTotals{}
	for name, t := range totals {
		if keep(t) {
			out[name] = t
		}
	}
	return out
}

// parseOvers converts cricket notation ("2.3") back to decimal overs (2.5).
func parseOvers(s string) float64 {
	whole, frac, found := strings.Cut(s, ".")
	w, _ := strconv.Atoi(whole)
	if !found {
		return float64(w)
	}
	f, _ := strconv.Atoi(frac)
	return float64(w) + float64(f)/6
}
