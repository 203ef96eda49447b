package cpu

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Processor drains the learning queue in the background, folding each logged
// delivery into the pattern layers the strategy engine reads. Item failures
// are logged and the item is marked processed anyway; the queue must never
// stall on one bad record.
type Processor struct {
	store  *Store
	logger runtime.Logger

	batchSize int
	interval  time.Duration
}

func NewProcessor(store *Store, logger runtime.Logger) *Processor {
	return &Processor{
		store:     store,
		logger:    logger,
		batchSize: 10,
		interval:  100 * time.Millisecond,
	}
}

// Run polls the queue until ctx is cancelled. Start it in its own goroutine.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(); err != nil {
				p.logger.Error("learning queue batch failed: %v", err)
				// Back off before the next poll.
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// ProcessBatch handles up to one batch of queue items and reports how many
// were consumed.
func (p *Processor) ProcessBatch() (int, error) {
	items, err := p.store.NextBatch(p.batchSize)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if err := p.updateKnowledge(&item.Ball); err != nil {
			p.logger.Warn("learning update failed for ball %d: %v", item.Ball.ID, err)
		}
		if err := p.store.MarkProcessed(item.QueueID); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

// updateKnowledge applies one ball to every pattern layer.
func (p *Processor) updateKnowledge(ball *BallRecord) error {
	// Global patterns learn from both sides of every delivery.
	if err := p.updateGlobal(ball, RoleBatting, ball.BatMove); err != nil {
		return err
	}
	if err := p.updateGlobal(ball, RoleBowling, ball.BowlMove); err != nil {
		return err
	}

	if ball.Batter != "" {
		if err := p.updateProfile(ball.Batter, ball.Format, RoleBatting, ball.BatMove); err != nil {
			return err
		}
		if err := p.updateProgress(ball.Batter); err != nil {
			return err
		}
		if err := p.updateSituational(ball, ball.Batter, RoleBatting, ball.BatMove); err != nil {
			return err
		}
	}
	if ball.Bowler != "" {
		if err := p.updateProfile(ball.Bowler, ball.Format, RoleBowling, ball.BowlMove); err != nil {
			return err
		}
		if err := p.updateProgress(ball.Bowler); err != nil {
			return err
		}
		if err := p.updateSituational(ball, ball.Bowler, RoleBowling, ball.BowlMove); err != nil {
			return err
		}
	}

	return p.updateSequences(ball)
}

func (p *Processor) updateGlobal(ball *BallRecord, role string, move int) error {
	key := GlobalKey{
		Format:         ball.Format,
		GamePhase:      ball.GamePhase,
		Role:           role,
		ScoreSituation: ball.ScorePressure,
		WicketsLost:    ball.BattingWickets,
	}
	dist, samples, err := p.store.GlobalPattern(key)
	if err != nil {
		return err
	}
	if samples == 0 {
		return p.store.SaveGlobalPattern(key, Observed(move), 1)
	}
	updated, newSamples := dist.EMAUpdate(move, samples, MaxSamplesGlobal)
	return p.store.SaveGlobalPattern(key, updated, newSamples)
}

func (p *Processor) updateProfile(username, format, role string, move int) error {
	profile, err := p.store.UserProfile(username, format)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &Profile{Username: username, Format: format}
		if role == RoleBatting {
			profile.BatFreq = Observed(move)
			profile.BallsFaced = 1
			if move >= 4 {
				profile.BattingAggression = 1
			}
		} else {
			profile.BowlFreq = Observed(move)
			profile.BallsBowled = 1
			profile.BowlingVariation = 0.5
		}
		return p.store.SaveUserProfile(profile)
	}

	if role == RoleBatting {
		profile.BatFreq, profile.BallsFaced = profile.BatFreq.EMAUpdate(move, profile.BallsFaced, MaxSamplesUser)
		profile.BattingAggression = aggression(profile.BatFreq)
	} else {
		profile.BowlFreq, profile.BallsBowled = profile.BowlFreq.EMAUpdate(move, profile.BallsBowled, MaxSamplesUser)
		profile.BowlingVariation = variation(profile.BowlFreq)
	}
	return p.store.SaveUserProfile(profile)
}

func (p *Processor) updateProgress(username string) error {
	balls, err := p.store.Progress(username)
	if err != nil {
		return err
	}
	balls++
	phase := LearningPhase(balls)
	return p.store.SaveProgress(username, balls, phase.Phase, phase.Confidence)
}

func (p *Processor) updateSituational(ball *BallRecord, username, role string, move int) error {
	event, err := p.recentEventFor(ball)
	if err != nil {
		return err
	}
	key := SituationalKey{
		Username:      username,
		Format:        ball.Format,
		GamePhase:     ball.GamePhase,
		Role:          role,
		ScorePressure: ball.ScorePressure,
		RecentEvent:   event,
	}
	dist, samples, err := p.store.SituationalPattern(key)
	if err != nil {
		return err
	}
	if samples == 0 {
		return p.store.SaveSituationalPattern(key, Observed(move), 1)
	}
	updated, newSamples := dist.EMAUpdate(move, samples, MaxSamplesSituational)
	return p.store.SaveSituationalPattern(key, updated, newSamples)
}

// updateSequences records what each participant played after their previous
// move+result in this match.
func (p *Processor) updateSequences(ball *BallRecord) error {
	if ball.Batter != "" {
		prev, err := p.store.PrevBallFor(ball.MatchID, ball.Batter, RoleBatting, ball.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			if err := p.updateSequenceRecord(ball.Batter, ball.Format, RoleBatting,
				prev.BatMove, ballResultBucket(prev), ball.BatMove); err != nil {
				return err
			}
		}
	}
	if ball.Bowler != "" {
		prev, err := p.store.PrevBallFor(ball.MatchID, ball.Bowler, RoleBowling, ball.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			if err := p.updateSequenceRecord(ball.Bowler, ball.Format, RoleBowling,
				prev.BowlMove, ballResultBucket(prev), ball.BowlMove); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Processor) updateSequenceRecord(username, format, role string, prevMove int, prevResult string, nextMove int) error {
	key := SequenceKey{
		Username:   username,
		Format:     format,
		Role:       role,
		PrevMove:   prevMove,
		PrevResult: prevResult,
	}
	dist, samples, err := p.store.SequencePattern(key)
	if err != nil {
		return err
	}
	if samples == 0 {
		return p.store.SaveSequencePattern(key, Observed(nextMove), 1)
	}
	updated, newSamples := dist.EMAUpdate(nextMove, samples, MaxSamplesSituational)
	return p.store.SaveSequencePattern(key, updated, newSamples)
}

// recentEventFor derives the event bucket from the batter's previous three
// balls in this match.
func (p *Processor) recentEventFor(ball *BallRecord) (string, error) {
	prev, err := p.store.RecentBallsFor(ball.MatchID, ball.Batter, ball.ID, 3)
	if err != nil {
		return "", fmt.Errorf("recent event lookup: %w", err)
	}
	// RecentBallsFor is newest-first; RecentEvent wants oldest-first.
	results := make([]BallResult, len(prev))
	for i, b := range prev {
		results[len(prev)-1-i] = BallResult{Runs: b.Runs, IsOut: b.IsOut}
	}
	return RecentEvent(results), nil
}

func ballResultBucket(b *BallRecord) string {
	switch {
	case b.IsOut:
		return "out"
	case b.Runs == 0:
		return "dot"
	default:
		return "scored"
	}
}

// aggression is the mass on the attacking numbers 4-6.
func aggression(d Distribution) float64 {
	total := d.Sum()
	if total <= 0 {
		return 0
	}
	return (d[4] + d[5] + d[6]) / total
}

// variation is normalized Shannon entropy of the bowling mix.
func variation(d Distribution) float64 {
	entropy := 0.0
	for _, f := range d {
		if f > 0 {
			entropy -= f * math.Log(f+1e-10)
		}
	}
	return entropy / math.Log(7)
}
