package domain

import "testing"

func newSingleInnings(overs, wickets, target int) *Innings {
	return NewInnings([]string{"alice"}, []string{"bob"}, overs, wickets, target, false)
}

func TestResolveBallScoring(t *testing.T) {
	tests := []struct {
		name     string
		batMove  int
		bowlMove int
		wantRuns int
		wantOut  bool
	}{
		{"equal numbers is a wicket", 4, 4, 0, true},
		{"zero-zero is a wicket", 0, 0, 0, true},
		{"defensive zero scores bowler's number", 0, 5, 5, false},
		{"batter number scores itself", 3, 6, 3, false},
		{"batter six", 6, 1, 6, false},
		{"batter one", 1, 2, 1, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inn := newSingleInnings(2, 2, 0)
			out, err := inn.ResolveBall(test.batMove, test.bowlMove)
			if err != nil {
				t.Fatalf("ResolveBall: %v", err)
			}
			if out.Runs != test.wantRuns {
				t.Errorf("runs = %d, want %d", out.Runs, test.wantRuns)
			}
			if out.IsOut != test.wantOut {
				t.Errorf("is_out = %v, want %v", out.IsOut, test.wantOut)
			}
		})
	}
}

func TestResolveBallFullGrid(t *testing.T) {
	for bat := 0; bat <= 6; bat++ {
		for bowl := 0; bowl <= 6; bowl++ {
			inn := newSingleInnings(10, 5, 0)
			out, err := inn.ResolveBall(bat, bowl)
			if err != nil {
				t.Fatalf("ResolveBall(%d,%d): %v", bat, bowl, err)
			}
			switch {
			case bat == bowl:
				if !out.IsOut || out.Runs != 0 {
					t.Errorf("(%d,%d): want wicket with 0 runs, got out=%v runs=%d", bat, bowl, out.IsOut, out.Runs)
				}
			case bat == 0:
				if out.IsOut || out.Runs != bowl {
					t.Errorf("(%d,%d): want %d runs, got out=%v runs=%d", bat, bowl, bowl, out.IsOut, out.Runs)
				}
			default:
				if out.IsOut || out.Runs != bat {
					t.Errorf("(%d,%d): want %d runs, got out=%v runs=%d", bat, bowl, bat, out.IsOut, out.Runs)
				}
			}
		}
	}
}

func TestStrikeRotation(t *testing.T) {
	tests := []struct {
		name       string
		batMove    int
		bowlMove   int
		wantRotate bool
	}{
		{"single rotates", 1, 2, true},
		{"three rotates", 3, 5, true},
		{"two holds", 2, 5, false},
		{"four holds", 4, 5, false},
		{"six holds", 6, 5, false},
		{"dot holds", 0, 5, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inn := NewInnings([]string{"a", "b"}, []string{"c"}, 5, 5, 0, false)
			before := inn.Striker()
			if _, err := inn.ResolveBall(test.batMove, test.bowlMove); err != nil {
				t.Fatalf("ResolveBall: %v", err)
			}
			rotated := inn.Striker() != before
			if rotated != test.wantRotate {
				t.Errorf("rotated = %v, want %v", rotated, test.wantRotate)
			}
		})
	}
}

func TestStrikeDoesNotRotateOnWicket(t *testing.T) {
	inn := NewInnings([]string{"a", "b", "c"}, []string{"d"}, 5, 5, 0, false)
	if _, err := inn.ResolveBall(2, 2); err != nil {
		t.Fatalf("ResolveBall: %v", err)
	}
	// Non-striker is promoted, not swapped by rotation.
	if inn.Striker() != "b" {
		t.Errorf("striker = %q, want promoted non-striker %q", inn.Striker(), "b")
	}
}

func TestBowlerRotatesEveryOver(t *testing.T) {
	inn := NewInnings([]string{"a"}, []string{"x", "y", "z"}, 3, 10, 0, false)
	for over := 0; over < 3; over++ {
		want := []string{"x", "y", "z"}[over]
		if got := inn.CurrentBowler(); got != want {
			t.Fatalf("over %d bowler = %q, want %q", over, got, want)
		}
		for ball := 0; ball < 6; ball++ {
			if _, err := inn.ResolveBall(2, 5); err != nil {
				t.Fatalf("ResolveBall: %v", err)
			}
		}
	}
}

func TestHatTrick(t *testing.T) {
	t.Run("three consecutive wickets same bowler", func(t *testing.T) {
		inn := NewInnings([]string{"a"}, []string{"b"}, 5, 10, 0, false)
		for i := 0; i < 2; i++ {
			out, err := inn.ResolveBall(3, 3)
			if err != nil {
				t.Fatalf("ResolveBall: %v", err)
			}
			if out.HatTrick {
				t.Errorf("ball %d: hat_trick too early", i+1)
			}
		}
		out, err := inn.ResolveBall(3, 3)
		if err != nil {
			t.Fatalf("ResolveBall: %v", err)
		}
		if !out.HatTrick {
			t.Error("third consecutive wicket should flag hat_trick")
		}
	})

	t.Run("interrupted by a scoring ball", func(t *testing.T) {
		inn := NewInnings([]string{"a"}, []string{"b"}, 5, 10, 0, false)
		inn.ResolveBall(3, 3)
		inn.ResolveBall(2, 5)
		inn.ResolveBall(3, 3)
		out, _ := inn.ResolveBall(3, 3)
		if out.HatTrick {
			t.Error("hat_trick set with a non-wicket in between")
		}
	})
}

func TestMilestone(t *testing.T) {
	inn := newSingleInnings(20, 10, 0)
	var crossed50 bool
	for inn.BattingCards["alice"].Runs < 50 {
		out, err := inn.ResolveBall(6, 1)
		if err != nil {
			t.Fatalf("ResolveBall: %v", err)
		}
		if out.Milestone == 50 {
			crossed50 = true
			if inn.BattingCards["alice"].Runs < 50 {
				t.Error("milestone flagged before 50 reached")
			}
		}
	}
	if !crossed50 {
		t.Error("crossing 50 never flagged a milestone")
	}
}

func TestInningsCompletion(t *testing.T) {
	t.Run("wickets exhausted", func(t *testing.T) {
		inn := newSingleInnings(5, 1, 0)
		out, _ := inn.ResolveBall(2, 2)
		if !out.InningsComplete || !inn.Complete {
			t.Error("innings should complete when last wicket falls")
		}
	})

	t.Run("overs quota", func(t *testing.T) {
		inn := newSingleInnings(1, 5, 0)
		for i := 0; i < 5; i++ {
			out, _ := inn.ResolveBall(2, 5)
			if out.InningsComplete {
				t.Fatalf("completed after %d balls", i+1)
			}
		}
		out, _ := inn.ResolveBall(2, 5)
		if !out.InningsComplete {
			t.Error("innings should complete when quota is bowled")
		}
	})

	t.Run("target chased", func(t *testing.T) {
		inn := newSingleInnings(5, 5, 10)
		inn.ResolveBall(6, 1)
		out, _ := inn.ResolveBall(6, 1)
		if !out.InningsComplete || !out.TargetChased {
			t.Errorf("chase should end the innings: complete=%v chased=%v", out.InningsComplete, out.TargetChased)
		}
	})

	t.Run("further balls rejected", func(t *testing.T) {
		inn := newSingleInnings(5, 1, 0)
		inn.ResolveBall(2, 2)
		if _, err := inn.ResolveBall(2, 5); err != ErrInningsComplete {
			t.Errorf("err = %v, want ErrInningsComplete", err)
		}
	})
}

func TestOneOverOneWicketInnings(t *testing.T) {
	inn := newSingleInnings(1, 1, 0)

	out, err := inn.ResolveBall(1, 2)
	if err != nil {
		t.Fatalf("ResolveBall: %v", err)
	}
	if out.Runs != 1 || out.IsOut || out.InningsComplete {
		t.Errorf("first ball: runs=%d out=%v complete=%v", out.Runs, out.IsOut, out.InningsComplete)
	}

	out, err = inn.ResolveBall(3, 3)
	if err != nil {
		t.Fatalf("ResolveBall: %v", err)
	}
	if !out.IsOut || !out.InningsComplete {
		t.Errorf("second ball: out=%v complete=%v, want wicket ending the innings", out.IsOut, out.InningsComplete)
	}
}

func TestTeamModeCaptainFlow(t *testing.T) {
	batting := []string{"a1", "a2", "a3"}
	bowling := []string{"b1", "b2"}

	t.Run("wicket pauses for batter choice", func(t *testing.T) {
		inn := NewInnings(batting, bowling, 5, 5, 0, true)
		inn.ApplyBatterChoice("a1")
		inn.ApplyBowlerChoice("b1")

		out, err := inn.ResolveBall(4, 4)
		if err != nil {
			t.Fatalf("ResolveBall: %v", err)
		}
		if !out.NeedsBatterChoice || !inn.NeedsBatterChoice {
			t.Fatal("wicket in team mode should request a batter choice")
		}
		for _, c := range out.AvailableBatters {
			if c.Player == "a1" && !c.Disabled {
				t.Error("just-dismissed batter should be disabled")
			}
		}
		inn.ApplyBatterChoice("a3")
		if inn.NeedsBatterChoice {
			t.Error("choice should clear the pause")
		}
		if inn.NonStriker() != "a3" {
			t.Errorf("incoming batter = %q, want non-striker a3", inn.NonStriker())
		}
	})

	t.Run("over end pauses for bowler choice", func(t *testing.T) {
		inn := NewInnings(batting, bowling, 5, 5, 0, true)
		inn.ApplyBatterChoice("a1")
		inn.ApplyBowlerChoice("b1")

		var out *BallOutcome
		for i := 0; i < 6; i++ {
			var err error
			out, err = inn.ResolveBall(2, 5)
			if err != nil {
				t.Fatalf("ResolveBall: %v", err)
			}
		}
		if !out.NeedsBowlerChoice {
			t.Fatal("over end in team mode should request a bowler choice")
		}
		for _, c := range out.AvailableBowlers {
			if c.Player == "b1" && !c.Disabled {
				t.Error("finished bowler should be disabled")
			}
		}
		inn.ApplyBowlerChoice("b2")
		if inn.CurrentBowler() != "b2" {
			t.Errorf("bowler = %q, want b2", inn.CurrentBowler())
		}
	})

	t.Run("opening choice seats striker", func(t *testing.T) {
		inn := NewInnings(batting, bowling, 5, 5, 0, true)
		inn.ApplyBatterChoice("a2")
		if inn.Striker() != "a2" {
			t.Errorf("opening striker = %q, want a2", inn.Striker())
		}
		if inn.NonStriker() == "a2" {
			t.Error("striker seated at both ends")
		}
	})
}

func TestAvailableNextBowlersForceEnable(t *testing.T) {
	inn := NewInnings([]string{"a"}, []string{"b1"}, 5, 5, 0, true)
	inn.LastBowler = "b1"
	options := inn.AvailableNextBowlers()
	if len(options) != 1 || options[0].Disabled {
		t.Errorf("sole bowler must stay enabled: %+v", options)
	}
}

func TestAvailableNextBattersForceEnable(t *testing.T) {
	inn := NewInnings([]string{"a1", "a2"}, []string{"b"}, 5, 5, 0, true)
	inn.ApplyBatterChoice("a1")

	// a2 gets out; a2 is both last-out and the only bench option.
	inn.StrikerIdx = 1
	inn.NonStrikerIdx = 0
	if _, err := inn.ResolveBall(3, 3); err != nil {
		t.Fatalf("ResolveBall: %v", err)
	}

	options := inn.AvailableNextBatters()
	enabled := 0
	for _, c := range options {
		if !c.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		t.Errorf("consecutive block must lift when nothing else is legal: %+v", options)
	}
}
