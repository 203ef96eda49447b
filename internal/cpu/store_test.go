package cpu

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBall(matchID string, ballNumber int) *BallRecord {
	return &BallRecord{
		MatchID:        matchID,
		BallNumber:     ballNumber,
		Innings:        1,
		Batter:         "alice",
		Bowler:         "bob",
		BatMove:        4,
		BowlMove:       2,
		Runs:           4,
		Format:         "2over",
		GamePhase:      PhasePowerplay,
		ScorePressure:  "defending_moderate",
		BattingWickets: 0,
	}
}

func TestLogBallQueuesForLearning(t *testing.T) {
	store := newTestStore(t)

	id1, err := store.LogBall(testBall("m1", 1))
	if err != nil {
		t.Fatalf("log ball: %v", err)
	}
	id2, err := store.LogBall(testBall("m1", 2))
	if err != nil {
		t.Fatalf("log ball: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}

	items, err := store.NextBatch(10)
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("batch size = %d, want 2", len(items))
	}
	first := items[0].Ball
	if first.ID != id1 || first.Batter != "alice" || first.BatMove != 4 || first.ScorePressure != "defending_moderate" {
		t.Errorf("unexpected first item: %+v", first)
	}

	for _, item := range items {
		if err := store.MarkProcessed(item.QueueID); err != nil {
			t.Fatalf("mark processed: %v", err)
		}
	}
	items, err = store.NextBatch(10)
	if err != nil {
		t.Fatalf("next batch after drain: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("queue not drained, %d items left", len(items))
	}
}

func TestGlobalPatternRoundTrip(t *testing.T) {
	store := newTestStore(t)
	key := GlobalKey{Format: "2over", GamePhase: PhaseDeath, Role: RoleBatting, ScoreSituation: "chasing_tight", WicketsLost: 3}

	_, samples, err := store.GlobalPattern(key)
	if err != nil {
		t.Fatalf("read missing pattern: %v", err)
	}
	if samples != 0 {
		t.Errorf("missing pattern samples = %d, want 0", samples)
	}

	want := Observed(6)
	if err := store.SaveGlobalPattern(key, want, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, samples, err := store.GlobalPattern(key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != want || samples != 1 {
		t.Errorf("round trip = %v/%d, want %v/1", got, samples, want)
	}

	// Upsert overwrites.
	if err := store.SaveGlobalPattern(key, Uniform(), 2); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, samples, _ = store.GlobalPattern(key)
	if got != Uniform() || samples != 2 {
		t.Errorf("after upsert = %v/%d", got, samples)
	}
}

func TestUserProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)

	profile, err := store.UserProfile("alice", "2over")
	if err != nil {
		t.Fatalf("read missing profile: %v", err)
	}
	if profile != nil {
		t.Fatalf("missing profile = %+v, want nil", profile)
	}

	saved := &Profile{
		Username:          "alice",
		Format:            "2over",
		BatFreq:           Observed(6),
		BowlFreq:          Uniform(),
		BallsFaced:        12,
		BallsBowled:       6,
		BattingAggression: 1,
		BowlingVariation:  0.5,
	}
	if err := store.SaveUserProfile(saved); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got, err := store.UserProfile("alice", "2over")
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if got == nil || got.BatFreq != saved.BatFreq || got.BallsFaced != 12 || got.BattingAggression != 1 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestProgress(t *testing.T) {
	store := newTestStore(t)

	balls, err := store.Progress("alice")
	if err != nil {
		t.Fatalf("read missing progress: %v", err)
	}
	if balls != 0 {
		t.Errorf("missing progress = %d, want 0", balls)
	}
	if err := store.SaveProgress("alice", 75, LearnTransition, 0.33); err != nil {
		t.Fatalf("save progress: %v", err)
	}
	balls, err = store.Progress("alice")
	if err != nil {
		t.Fatalf("read progress: %v", err)
	}
	if balls != 75 {
		t.Errorf("progress = %d, want 75", balls)
	}
}

func TestBallHistoryLookups(t *testing.T) {
	store := newTestStore(t)

	var ids []int64
	moves := []int{1, 4, 6}
	for i, move := range moves {
		ball := testBall("m1", i+1)
		ball.BatMove = move
		ball.Runs = move
		id, err := store.LogBall(ball)
		if err != nil {
			t.Fatalf("log ball: %v", err)
		}
		ids = append(ids, id)
	}

	prev, err := store.PrevBallFor("m1", "alice", RoleBatting, ids[2])
	if err != nil {
		t.Fatalf("prev ball: %v", err)
	}
	if prev == nil || prev.BatMove != 4 {
		t.Errorf("prev ball = %+v, want bat move 4", prev)
	}

	prev, err = store.PrevBallFor("m1", "alice", RoleBatting, ids[0])
	if err != nil {
		t.Fatalf("prev ball before first: %v", err)
	}
	if prev != nil {
		t.Errorf("prev before first ball = %+v, want nil", prev)
	}

	recent, err := store.RecentBallsFor("m1", "alice", ids[2], 3)
	if err != nil {
		t.Fatalf("recent balls: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent count = %d, want 2", len(recent))
	}
	if recent[0].BatMove != 4 || recent[1].BatMove != 1 {
		t.Errorf("recent order wrong: %d then %d, want newest first", recent[0].BatMove, recent[1].BatMove)
	}
}
