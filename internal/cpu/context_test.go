package cpu

import (
	"math"
	"testing"
)

func TestGamePhase(t *testing.T) {
	tests := []struct {
		name        string
		currentOver int
		totalOvers  int
		want        string
	}{
		{name: "first over is powerplay", currentOver: 0, totalOvers: 10, want: PhasePowerplay},
		{name: "second over is powerplay", currentOver: 1, totalOvers: 10, want: PhasePowerplay},
		{name: "middle over", currentOver: 4, totalOvers: 10, want: PhaseMiddle},
		{name: "third-last over is death", currentOver: 8, totalOvers: 10, want: PhaseDeath},
		{name: "last over is death", currentOver: 9, totalOvers: 10, want: PhaseDeath},
		{name: "short format skips middle", currentOver: 2, totalOvers: 2, want: PhaseDeath},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := GamePhase(test.currentOver, test.totalOvers); got != test.want {
				t.Errorf("GamePhase(%d, %d) = %q, want %q", test.currentOver, test.totalOvers, got, test.want)
			}
		})
	}
}

func TestScoreSituation(t *testing.T) {
	tests := []struct {
		name         string
		battingFirst bool
		score        int
		target       int
		wickets      int
		ballsLeft    int
		totalOvers   int
		want         string
	}{
		{name: "defending collapse", battingFirst: true, score: 20, wickets: 7, ballsLeft: 30, totalOvers: 10, want: "defending_collapse"},
		{name: "defending safe", battingFirst: true, score: 55, wickets: 2, ballsLeft: 30, totalOvers: 10, want: "defending_safe"},
		{name: "defending comfortable", battingFirst: true, score: 40, wickets: 2, ballsLeft: 30, totalOvers: 10, want: "defending_comfortable"},
		{name: "defending tight", battingFirst: true, score: 10, wickets: 2, ballsLeft: 30, totalOvers: 10, want: "defending_tight"},
		{name: "chase already won", battingFirst: false, score: 60, target: 60, wickets: 3, ballsLeft: 10, totalOvers: 10, want: "chasing_won"},
		{name: "chase desperate on wickets", battingFirst: false, score: 10, target: 20, wickets: 8, ballsLeft: 30, totalOvers: 10, want: "chasing_desperate"},
		{name: "chase desperate on rate", battingFirst: false, score: 10, target: 60, wickets: 2, ballsLeft: 18, totalOvers: 10, want: "chasing_desperate"},
		{name: "chase very tight", battingFirst: false, score: 20, target: 60, wickets: 2, ballsLeft: 18, totalOvers: 10, want: "chasing_very_tight"},
		{name: "chase tight", battingFirst: false, score: 30, target: 60, wickets: 2, ballsLeft: 18, totalOvers: 10, want: "chasing_tight"},
		{name: "chase moderate", battingFirst: false, score: 38, target: 60, wickets: 2, ballsLeft: 18, totalOvers: 10, want: "chasing_moderate"},
		{name: "chase comfortable", battingFirst: false, score: 50, target: 60, wickets: 2, ballsLeft: 18, totalOvers: 10, want: "chasing_comfortable"},
		{name: "no balls left still needing runs", battingFirst: false, score: 10, target: 60, wickets: 2, ballsLeft: 0, totalOvers: 10, want: "chasing_desperate"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ScoreSituation(test.battingFirst, test.score, test.target, test.wickets, test.ballsLeft, test.totalOvers)
			if got != test.want {
				t.Errorf("ScoreSituation() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestRecentEvent(t *testing.T) {
	tests := []struct {
		name string
		last []BallResult
		want string
	}{
		{name: "no history", last: nil, want: EventNormal},
		{name: "wicket dominates", last: []BallResult{{Runs: 6}, {IsOut: true}}, want: EventJustOut},
		{name: "six", last: []BallResult{{Runs: 6}}, want: EventHitSix},
		{name: "dot", last: []BallResult{{Runs: 4}, {Runs: 0}}, want: EventDotBall},
		{name: "hot streak", last: []BallResult{{Runs: 4}, {Runs: 6}, {Runs: 4}}, want: EventHotStreak},
		{name: "two boundaries is not a streak", last: []BallResult{{Runs: 6}, {Runs: 4}}, want: EventNormal},
		{name: "broken streak", last: []BallResult{{Runs: 4}, {Runs: 2}, {Runs: 4}}, want: EventNormal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := RecentEvent(test.last); got != test.want {
				t.Errorf("RecentEvent() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestLearningPhaseBoundaries(t *testing.T) {
	tests := []struct {
		balls     int
		wantPhase string
	}{
		{balls: 0, wantPhase: LearnGlobal},
		{balls: 59, wantPhase: LearnGlobal},
		{balls: 60, wantPhase: LearnTransition},
		{balls: 299, wantPhase: LearnTransition},
		{balls: 300, wantPhase: LearnPersonalized},
		{balls: 5000, wantPhase: LearnPersonalized},
	}
	for _, test := range tests {
		got := LearningPhase(test.balls)
		if got.Phase != test.wantPhase {
			t.Errorf("LearningPhase(%d).Phase = %q, want %q", test.balls, got.Phase, test.wantPhase)
		}
	}

	at60 := LearningPhase(60)
	if at60.GlobalWeight != 0.7 || at60.UserWeight != 0.3 {
		t.Errorf("transition start weights = %v/%v, want 0.7/0.3", at60.GlobalWeight, at60.UserWeight)
	}
	at300 := LearningPhase(300)
	if at300.GlobalWeight != 0.2 || at300.UserWeight != 0.8 {
		t.Errorf("personalized weights = %v/%v, want 0.2/0.8", at300.GlobalWeight, at300.UserWeight)
	}
}

func TestLearningPhaseConfidenceMonotonic(t *testing.T) {
	prev := -1.0
	for balls := 0; balls <= 2000; balls += 10 {
		conf := LearningPhase(balls).Confidence
		if conf < prev {
			t.Fatalf("confidence dropped from %v to %v at %d balls", prev, conf, balls)
		}
		if conf >= 0.95 {
			t.Fatalf("confidence %v at %d balls breached the 0.95 ceiling", conf, balls)
		}
		prev = conf
	}
	if math.Abs(LearningPhase(300).Confidence-0.8) > 1e-9 {
		t.Errorf("confidence at 300 balls = %v, want 0.8", LearningPhase(300).Confidence)
	}
}
