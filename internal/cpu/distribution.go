package cpu

// EMA sample caps per pattern granularity. The global layer adapts slowest,
// user profiles faster, situational and sequence patterns fastest.
const (
	MaxSamplesGlobal      = 1000
	MaxSamplesUser        = 500
	MaxSamplesSituational = 200
)

// Distribution is a frequency vector over the seven moves, indexed by move
// value. A well-formed distribution sums to 1.
type Distribution [7]float64

// BaseWeights are the fallback tendencies used before the global layer has
// enough samples, tuned to how humans actually pick.
var BaseWeights = Distribution{0.08, 0.16, 0.16, 0.15, 0.16, 0.14, 0.15}

// Uniform returns the equal-probability distribution.
func Uniform() Distribution {
	var d Distribution
	for i := range d {
		d[i] = 1.0 / 7
	}
	return d
}

// Observed returns a distribution with all mass on a single move.
func Observed(move int) Distribution {
	var d Distribution
	d[move] = 1
	return d
}

// Sum returns the total mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

// Normalize scales the vector to sum to 1, or returns uniform if empty.
func (d Distribution) Normalize() Distribution {
	total := d.Sum()
	if total <= 0 {
		return Uniform()
	}
	var out Distribution
	for i, v := range d {
		out[i] = v / total
	}
	return out
}

// EMAUpdate folds one observed move into the distribution with
// alpha = 1/min(samples+1, cap): the observed slot moves toward 1 and every
// slot decays by (1-alpha), then the vector is renormalized.
func (d Distribution) EMAUpdate(observedMove, samples, maxSamples int) (Distribution, int) {
	n := samples + 1
	if n > maxSamples {
		n = maxSamples
	}
	alpha := 1.0 / float64(n)

	var out Distribution
	for i, v := range d {
		out[i] = v * (1 - alpha)
		if i == observedMove {
			out[i] += alpha
		}
	}
	return out.Normalize(), samples + 1
}
