package cpu

import "math/rand"

// SimpleMove is the counter-based fallback used when the learning store is
// unavailable. It reads the opponent's last dozen moves and leans against
// their two favourites: a bowler hunts them, a batter avoids them.
func SimpleMove(rng *rand.Rand, role string, opponentHistory []int) int {
	weights := BaseWeights
	for _, move := range topTwoRecent(opponentHistory) {
		if role == RoleBowling {
			weights[move] += 0.18
		} else {
			weights[move] *= 0.6
		}
	}
	return sampleMove(rng, weights.Normalize())
}
