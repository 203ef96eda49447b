package cpu

import (
	"math"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

func TestProcessBatchUpdatesPatterns(t *testing.T) {
	store := newTestStore(t)
	processor := NewProcessor(store, noopLogger{})

	ball := testBall("m1", 1)
	ball.BatMove = 6
	ball.Bowler = "" // CPU bowler, no profile to learn
	if _, err := store.LogBall(ball); err != nil {
		t.Fatalf("log ball: %v", err)
	}

	n, err := processor.ProcessBatch()
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed %d items, want 1", n)
	}

	// Global batting pattern seeded from the observed move.
	key := GlobalKey{
		Format:         ball.Format,
		GamePhase:      ball.GamePhase,
		Role:           RoleBatting,
		ScoreSituation: ball.ScorePressure,
		WicketsLost:    ball.BattingWickets,
	}
	dist, samples, err := store.GlobalPattern(key)
	if err != nil {
		t.Fatalf("global pattern: %v", err)
	}
	if samples != 1 || dist != Observed(6) {
		t.Errorf("global pattern = %v/%d, want observed 6 with 1 sample", dist, samples)
	}

	// Batter gets a profile with full aggression and one ball of progress.
	profile, err := store.UserProfile("alice", ball.Format)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile == nil {
		t.Fatal("no profile created for alice")
	}
	if profile.BallsFaced != 1 || profile.BattingAggression != 1 {
		t.Errorf("profile = %+v, want 1 ball faced and aggression 1", profile)
	}
	balls, err := store.Progress("alice")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if balls != 1 {
		t.Errorf("progress = %d, want 1", balls)
	}

	// CPU side left alone.
	if cpuProfile, _ := store.UserProfile("", ball.Format); cpuProfile != nil {
		t.Errorf("profile created for CPU participant: %+v", cpuProfile)
	}

	// Queue drained.
	items, err := store.NextBatch(10)
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("%d items left in queue", len(items))
	}
}

func TestProcessBatchLearnsSequences(t *testing.T) {
	store := newTestStore(t)
	processor := NewProcessor(store, noopLogger{})

	first := testBall("m1", 1)
	first.BatMove = 2
	first.Runs = 2
	second := testBall("m1", 2)
	second.BatMove = 6
	second.Runs = 6
	for _, ball := range []*BallRecord{first, second} {
		if _, err := store.LogBall(ball); err != nil {
			t.Fatalf("log ball: %v", err)
		}
	}

	if _, err := processor.ProcessBatch(); err != nil {
		t.Fatalf("process batch: %v", err)
	}

	// After scoring 2, alice played 6.
	key := SequenceKey{Username: "alice", Format: first.Format, Role: RoleBatting, PrevMove: 2, PrevResult: "scored"}
	dist, samples, err := store.SequencePattern(key)
	if err != nil {
		t.Fatalf("sequence pattern: %v", err)
	}
	if samples != 1 || dist != Observed(6) {
		t.Errorf("sequence pattern = %v/%d, want observed 6 with 1 sample", dist, samples)
	}

	balls, _ := store.Progress("alice")
	if balls != 2 {
		t.Errorf("progress = %d, want 2", balls)
	}
	balls, _ = store.Progress("bob")
	if balls != 2 {
		t.Errorf("bowler progress = %d, want 2", balls)
	}
}

func TestBallResultBucket(t *testing.T) {
	tests := []struct {
		name string
		ball BallRecord
		want string
	}{
		{name: "wicket", ball: BallRecord{IsOut: true, Runs: 3}, want: "out"},
		{name: "dot", ball: BallRecord{Runs: 0}, want: "dot"},
		{name: "scored", ball: BallRecord{Runs: 1}, want: "scored"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ballResultBucket(&test.ball); got != test.want {
				t.Errorf("ballResultBucket() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestProfileMetrics(t *testing.T) {
	if got := aggression(Distribution{0.1, 0.1, 0.1, 0.1, 0.2, 0.2, 0.2}); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("aggression = %v, want 0.6", got)
	}
	if got := variation(Uniform()); math.Abs(got-1) > 1e-6 {
		t.Errorf("uniform variation = %v, want 1", got)
	}
	if got := variation(Observed(3)); got > 0.01 {
		t.Errorf("single-move variation = %v, want near 0", got)
	}
}
