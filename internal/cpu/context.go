package cpu

import "fmt"

// Roles as stored in pattern keys.
const (
	RoleBatting = "batting"
	RoleBowling = "bowling"
)

// Game phases.
const (
	PhasePowerplay = "powerplay"
	PhaseMiddle    = "middle"
	PhaseDeath     = "death"
)

// Recent-event buckets.
const (
	EventJustOut   = "just_out"
	EventHitSix    = "hit_six"
	EventDotBall   = "dot_ball"
	EventHotStreak = "hot_streak"
	EventNormal    = "normal"
)

// Learning phases.
const (
	LearnGlobal       = "global"
	LearnTransition   = "transition"
	LearnPersonalized = "personalized"
)

// BallResult is the slimmed view of a recent delivery used for event buckets.
type BallResult struct {
	Runs  int
	IsOut bool
}

// MatchContext carries the match situation into move selection and logging.
// Role is the CPU's own role for the pending delivery.
type MatchContext struct {
	Format       string
	Role         string
	CurrentOver  int
	TotalOvers   int
	CurrentScore int
	Target       int // 0 when batting first
	WicketsLost  int
	BallsLeft    int
	BattingFirst bool
	Last3Results []BallResult
}

// GamePhase buckets the current over: the first two overs are powerplay, the
// last three are death.
func GamePhase(currentOver, totalOvers int) string {
	switch {
	case currentOver <= 1:
		return PhasePowerplay
	case currentOver >= totalOvers-2:
		return PhaseDeath
	default:
		return PhaseMiddle
	}
}

// ScoreSituation buckets run-rate pressure. Defending buckets read the
// current rate; chasing buckets read the required rate.
func ScoreSituation(battingFirst bool, currentScore, target, wicketsLost, ballsLeft, totalOvers int) string {
	if battingFirst {
		oversBowled := float64(totalOvers) - float64(ballsLeft)/6.0
		runRate := 0.0
		if oversBowled > 0 {
			runRate = float64(currentScore) / oversBowled
		}
		switch {
		case wicketsLost >= 7:
			return "defending_collapse"
		case runRate >= 10:
			return "defending_safe"
		case runRate >= 7:
			return "defending_comfortable"
		case runRate >= 5:
			return "defending_moderate"
		default:
			return "defending_tight"
		}
	}

	runsNeeded := target - currentScore
	if runsNeeded <= 0 {
		return "chasing_won"
	}
	requiredRate := 999.0
	if ballsLeft > 0 {
		requiredRate = float64(runsNeeded) / float64(ballsLeft) * 6.0
	}
	switch {
	case wicketsLost >= 8 || requiredRate > 15:
		return "chasing_desperate"
	case requiredRate > 12:
		return "chasing_very_tight"
	case requiredRate > 9:
		return "chasing_tight"
	case requiredRate > 6:
		return "chasing_moderate"
	default:
		return "chasing_comfortable"
	}
}

// RecentEvent buckets the last few deliveries: the most recent ball dominates,
// with a hot-streak check over the last three.
func RecentEvent(last []BallResult) string {
	if len(last) == 0 {
		return EventNormal
	}
	latest := last[len(last)-1]
	switch {
	case latest.IsOut:
		return EventJustOut
	case latest.Runs == 6:
		return EventHitSix
	case latest.Runs == 0:
		return EventDotBall
	}
	if len(last) >= 3 {
		streak := true
		for _, b := range last[len(last)-3:] {
			if b.Runs < 4 {
				streak = false
				break
			}
		}
		if streak {
			return EventHotStreak
		}
	}
	return EventNormal
}

// FormatKey renders the pattern-table format key, e.g. "5over".
func FormatKey(totalOvers int) string {
	return fmt.Sprintf("%dover", totalOvers)
}

// PhaseInfo is the learning phase with its blend weights and confidence.
type PhaseInfo struct {
	Phase        string
	GlobalWeight float64
	UserWeight   float64
	Confidence   float64
}

// LearningPhase maps an opponent's tracked ball count to a phase.
// Under 60 balls the CPU trusts only platform-wide data; 60-300 shifts
// linearly toward the opponent's own patterns; beyond 300 it fixes 20/80
// with confidence climbing asymptotically toward 0.95.
func LearningPhase(totalBalls int) PhaseInfo {
	switch {
	case totalBalls < 60:
		return PhaseInfo{
			Phase:        LearnGlobal,
			GlobalWeight: 1.0,
			Confidence:   float64(totalBalls) / 60.0 * 0.3,
		}
	case totalBalls < 300:
		progress := float64(totalBalls-60) / 240.0
		return PhaseInfo{
			Phase:        LearnTransition,
			GlobalWeight: 0.7 - 0.4*progress,
			UserWeight:   0.3 + 0.4*progress,
			Confidence:   0.3 + 0.5*progress,
		}
	default:
		excess := float64(totalBalls - 300)
		return PhaseInfo{
			Phase:        LearnPersonalized,
			GlobalWeight: 0.2,
			UserWeight:   0.8,
			Confidence:   0.8 + 0.15*(1-1/(1+excess/200.0)),
		}
	}
}
