package domain

import (
	"math/rand"
	"strings"
	"testing"
)

func TestComputePlayerOfMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewMatch("m1", ModeSingle, []string{"alice"}, []string{"bob"}, 1, 2, rng)
	m.TossWinner = "alice"
	m.ApplyTossChoice(ChoiceBat)

	m.StartInnings1()
	playOut(t, m.Innings1, 6, 1) // alice 36 off the over
	m.StartInnings2()
	playOut(t, m.Innings2, 2, 2) // bob all out for 0
	m.DetermineResult()

	potm := ComputePlayerOfMatch(m)
	if potm.Player != "alice" {
		t.Errorf("player = %q, want alice", potm.Player)
	}
	if potm.Runs != 36 {
		t.Errorf("runs = %d, want 36", potm.Runs)
	}
	if !strings.Contains(potm.Summary, "36(6)") {
		t.Errorf("summary = %q", potm.Summary)
	}
}

func TestComputeTournamentAwards(t *testing.T) {
	results := []MatchResult{
		{
			Scorecard1: Scorecard{
				Batting: []BattingLine{{Name: "a", Runs: 60, Balls: 30, IsOut: true}},
				Bowling: []BowlingLine{{Name: "b", Overs: "5", Runs: 60, Wickets: 1}},
			},
			Scorecard2: Scorecard{
				Batting: []BattingLine{{Name: "b", Runs: 20, Balls: 25, IsOut: true}},
				Bowling: []BowlingLine{{Name: "a", Overs: "4.1", Runs: 20, Wickets: 3}},
			},
		},
		{
			Scorecard1: Scorecard{
				Batting: []BattingLine{{Name: "a", Runs: 40, Balls: 15}},
				Bowling: []BowlingLine{{Name: "b", Overs: "2.3", Runs: 40, Wickets: 0}},
			},
			Scorecard2: Scorecard{
				Batting: []BattingLine{{Name: "b", Runs: 10, Balls: 12, IsOut: true}},
				Bowling: []BowlingLine{{Name: "a", Overs: "2", Runs: 10, Wickets: 1}},
			},
		},
	}

	awards := ComputeTournamentAwards(results)

	if awards.OrangeCap == nil || awards.OrangeCap.Player != "a" || awards.OrangeCap.Runs != 100 {
		t.Errorf("orange cap = %+v", awards.OrangeCap)
	}
	if awards.PurpleCap == nil || awards.PurpleCap.Player != "a" || awards.PurpleCap.Wickets != 4 {
		t.Errorf("purple cap = %+v", awards.PurpleCap)
	}
	if awards.BestStrikeRate == nil || awards.BestStrikeRate.Player != "a" {
		t.Errorf("best SR = %+v", awards.BestStrikeRate)
	}
	if awards.BestAverage == nil || awards.BestAverage.Player != "a" {
		t.Errorf("best average = %+v", awards.BestAverage)
	}
	if awards.BestEconomy == nil || awards.BestEconomy.Player != "a" {
		t.Errorf("best economy = %+v", awards.BestEconomy)
	}
	if awards.PlayerOfTournament == nil || awards.PlayerOfTournament.Player != "a" {
		t.Errorf("player of tournament = %+v", awards.PlayerOfTournament)
	}
}

func TestTournamentAwardsEmptyInput(t *testing.T) {
	awards := ComputeTournamentAwards(nil)
	if awards.OrangeCap != nil || awards.PurpleCap != nil || awards.PlayerOfTournament != nil {
		t.Errorf("empty input should produce no awards: %+v", awards)
	}
}

func TestParseOvers(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"2", 2},
		{"2.3", 2.5},
		{"10.1", 10 + 1.0/6},
	}
	for _, test := range tests {
		if got := parseOvers(test.in); got != test.want {
			t.Errorf("parseOvers(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}
