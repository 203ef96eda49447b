package cpu

import (
	"fmt"
	"math/rand"
	"sort"
)

// StrategyEngine selects the CPU's moves from the learned pattern layers.
// Construct one per runtime and inject it where CPU turns are played; it
// reads the store synchronously and never writes it.
type StrategyEngine struct {
	store *Store
	rng   *rand.Rand
}

func NewStrategyEngine(store *Store, rng *rand.Rand) *StrategyEngine {
	return &StrategyEngine{store: store, rng: rng}
}

// SelectMove picks the CPU's next move against the named human opponent.
// An empty opponent (or any store fault) degrades to base weights and
// uniform layers; the result is always in [0,6].
func (e *StrategyEngine) SelectMove(opponent string, ctx MatchContext, opponentHistory []int) int {
	global := e.loadGlobal(ctx)
	user := e.loadUser(opponent, ctx)
	situational := e.loadSituational(opponent, ctx)
	sequence := e.loadSequence(opponent, ctx, opponentHistory)

	totalBalls := 0
	if opponent != "" {
		totalBalls, _ = e.store.Progress(opponent)
	}
	phase := LearningPhase(totalBalls)

	blended := blendPatterns(global, user, situational, sequence, phase)
	strategic := e.applyRoleStrategy(blended, ctx, opponentHistory, phase.Confidence)
	noisy := e.addStrategicNoise(strategic, phase.Confidence)
	return e.weightedChoice(noisy)
}

func (e *StrategyEngine) loadGlobal(ctx MatchContext) Distribution {
	key := GlobalKey{
		Format:         ctx.Format,
		GamePhase:      GamePhase(ctx.CurrentOver, ctx.TotalOvers),
		Role:           ctx.Role,
		ScoreSituation: ScoreSituation(ctx.BattingFirst, ctx.CurrentScore, ctx.Target, ctx.WicketsLost, ctx.BallsLeft, ctx.TotalOvers),
		WicketsLost:    ctx.WicketsLost,
	}
	d, samples, err := e.store.GlobalPattern(key)
	if err != nil || samples <= 10 {
		return BaseWeights
	}
	return d
}

func (e *StrategyEngine) loadUser(opponent string, ctx MatchContext) Distribution {
	if opponent == "" {
		return Uniform()
	}
	profile, err := e.store.UserProfile(opponent, ctx.Format)
	if err != nil || profile == nil {
		return Uniform()
	}
	// CPU bowling reads the opponent's batting tendencies and vice versa.
	if ctx.Role == RoleBowling {
		if profile.BallsFaced < 10 {
			return Uniform()
		}
		return profile.BatFreq
	}
	if profile.BallsBowled < 10 {
		return Uniform()
	}
	return profile.BowlFreq
}

func (e *StrategyEngine) loadSituational(opponent string, ctx MatchContext) Distribution {
	if opponent == "" {
		return Uniform()
	}
	key := SituationalKey{
		Username:      opponent,
		Format:        ctx.Format,
		GamePhase:     GamePhase(ctx.CurrentOver, ctx.TotalOvers),
		Role:          oppositeRole(ctx.Role),
		ScorePressure: ScoreSituation(ctx.BattingFirst, ctx.CurrentScore, ctx.Target, ctx.WicketsLost, ctx.BallsLeft, ctx.TotalOvers),
		RecentEvent:   RecentEvent(ctx.Last3Results),
	}
	d, samples, err := e.store.SituationalPattern(key)
	if err != nil || samples <= 5 {
		return Uniform()
	}
	return d
}

func (e *StrategyEngine) loadSequence(opponent string, ctx MatchContext, opponentHistory []int) Distribution {
	if opponent == "" || len(opponentHistory) == 0 {
		return Uniform()
	}
	key := SequenceKey{
		Username:   opponent,
		Format:     ctx.Format,
		Role:       oppositeRole(ctx.Role),
		PrevMove:   opponentHistory[len(opponentHistory)-1],
		PrevResult: "scored",
	}
	d, samples, err := e.store.SequencePattern(key)
	if err != nil || samples <= 3 {
		return Uniform()
	}
	return d
}

// blendPatterns mixes the four layers: global/user weighted by learning
// phase, then situational at 0.3*confidence and sequence at 0.4*confidence.
func blendPatterns(global, user, situational, sequence Distribution, phase PhaseInfo) Distribution {
	situationalFactor := 0.3 * phase.Confidence
	sequenceFactor := 0.4 * phase.Confidence

	var blended Distribution
	for i := 0; i < 7; i++ {
		base := global[i]*phase.GlobalWeight + user[i]*phase.UserWeight
		base = base*(1-situationalFactor) + situational[i]*situationalFactor
		blended[i] = base*(1-sequenceFactor) + sequence[i]*sequenceFactor
	}
	return blended.Normalize()
}

func (e *StrategyEngine) applyRoleStrategy(weights Distribution, ctx MatchContext, opponentHistory []int, confidence float64) Distribution {
	var strategic Distribution
	if ctx.Role == RoleBowling {
		strategic = bowlingStrategy(weights, opponentHistory, ctx, confidence)
	} else {
		strategic = battingStrategy(weights, opponentHistory, ctx, confidence)
	}
	return strategic.Normalize()
}

// bowlingStrategy hunts the batter: boost the opponent's two most frequent
// recent numbers, and lean into the shots pressure makes them play.
func bowlingStrategy(weights Distribution, opponentHistory []int, ctx MatchContext, confidence float64) Distribution {
	strategic := weights

	if len(opponentHistory) > 0 {
		boost := 1.5 * confidence
		for _, num := range topTwoRecent(opponentHistory) {
			strategic[num] *= 1 + boost*0.5
		}
	}

	pressure := ScoreSituation(ctx.BattingFirst, ctx.CurrentScore, ctx.Target, ctx.WicketsLost, ctx.BallsLeft, ctx.TotalOvers)

	if ctx.WicketsLost >= 7 {
		strategic[0] *= 1.3 // desperate batters block more
		strategic[6] *= 1.2 // and swing harder
	}
	if isHighPressure(pressure) {
		strategic[4] *= 1.2
		strategic[5] *= 1.3
		strategic[6] *= 1.4
	}
	return strategic
}

// battingStrategy dodges the bowler: suppress the opponent's two most
// frequent recent numbers, then push or protect depending on the chase.
func battingStrategy(weights Distribution, opponentHistory []int, ctx MatchContext, confidence float64) Distribution {
	strategic := weights

	if len(opponentHistory) > 0 {
		avoid := 0.4 * confidence
		for _, num := range topTwoRecent(opponentHistory) {
			strategic[num] *= avoid
		}
	}

	pressure := ScoreSituation(ctx.BattingFirst, ctx.CurrentScore, ctx.Target, ctx.WicketsLost, ctx.BallsLeft, ctx.TotalOvers)
	switch {
	case isHighPressure(pressure):
		strategic[5] *= 1.4
		strategic[6] *= 1.6
		strategic[0] *= 0.7
		strategic[1] *= 0.8
	case isComfortable(pressure):
		strategic[1] *= 1.3
		strategic[2] *= 1.3
		strategic[3] *= 1.2
		strategic[6] *= 0.7
		strategic[5] *= 0.8
	}

	if ctx.WicketsLost >= 7 {
		strategic[0] *= 1.2
		strategic[1] *= 1.3
		strategic[6] *= 0.6
		strategic[5] *= 0.7
	}
	return strategic
}

// addStrategicNoise perturbs each slot and occasionally bluffs by tripling
// one of the three least-likely moves, so high-confidence play stays
// unexploitable.
func (e *StrategyEngine) addStrategicNoise(weights Distribution, confidence float64) Distribution {
	noiseFactor := 0.15 * confidence
	var noisy Distribution
	for i, w := range weights {
		noise := (e.rng.Float64()*2 - 1) * noiseFactor
		noisy[i] = w + noise
		if noisy[i] < 0.01 {
			noisy[i] = 0.01
		}
	}

	if e.rng.Float64() < 0.05*confidence {
		order := make([]int, 7)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return noisy[order[a]] < noisy[order[b]] })
		noisy[order[e.rng.Intn(3)]] *= 3
	}

	return noisy.Normalize()
}

func (e *StrategyEngine) weightedChoice(weights Distribution) int {
	return sampleMove(e.rng, weights)
}

func sampleMove(rng *rand.Rand, weights Distribution) int {
	total := weights.Sum()
	if total <= 0 {
		return rng.Intn(7)
	}
	r := rng.Float64() * total
	cum := 0.0
	for num, w := range weights {
		cum += w
		if r <= cum {
			return num
		}
	}
	return 6
}

// topTwoRecent returns the two most frequent moves in the last 12 entries.
func topTwoRecent(history []int) []int {
	recent := history
	if len(recent) > 12 {
		recent = recent[len(recent)-12:]
	}
	var counts [7]int
	for _, m := range recent {
		if m >= 0 && m <= 6 {
			counts[m]++
		}
	}
	order := []int{0, 1, 2, 3, 4, 5, 6}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	var top []int
	for _, num := range order[:2] {
		if counts[num] > 0 {
			top = append(top, num)
		}
	}
	return top
}

func isHighPressure(pressure string) bool {
	return pressure == "chasing_desperate" || pressure == "chasing_very_tight"
}

func isComfortable(pressure string) bool {
	return pressure == "chasing_comfortable" || pressure == "defending_comfortable"
}

func oppositeRole(role string) string {
	if role == RoleBowling {
		return RoleBatting
	}
	return RoleBowling
}

// Status reports how far the CPU has profiled one user, for display.
// Confidence is the raw 0-1 value; Message renders it as a percentage.
type Status struct {
	BallsTracked int     `json:"balls_tracked"`
	Phase        string  `json:"phase"`
	Confidence   float64 `json:"confidence"`
	Message      string  `json:"message"`
}

// Status summarizes the learning state for the given user.
func (e *StrategyEngine) Status(username string) Status {
	balls, _ := e.store.Progress(username)
	phase := LearningPhase(balls)
	pct := float64(int(phase.Confidence*1000+0.5)) / 10

	var msg string
	switch phase.Phase {
	case LearnGlobal:
		msg = fmt.Sprintf("CPU is learning from all players (%.1f%% confident)", pct)
	case LearnTransition:
		msg = fmt.Sprintf("CPU is adapting to your style (%.1f%% confident)", pct)
	default:
		msg = fmt.Sprintf("CPU has mastered your patterns (%.1f%% confident)", pct)
	}

	return Status{
		BallsTracked: balls,
		Phase:        phase.Phase,
		Confidence:   phase.Confidence,
		Message:      msg,
	}
}
