package cpu

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	d := Distribution{2, 0, 0, 0, 0, 0, 2}.Normalize()
	if math.Abs(d.Sum()-1) > 1e-9 {
		t.Errorf("normalized sum = %v, want 1", d.Sum())
	}
	if d[0] != 0.5 || d[6] != 0.5 {
		t.Errorf("normalized = %v, want mass split between 0 and 6", d)
	}

	empty := Distribution{}.Normalize()
	if empty != Uniform() {
		t.Errorf("empty distribution normalized to %v, want uniform", empty)
	}
}

func TestEMAUpdate(t *testing.T) {
	d := Uniform()
	samples := 1
	for i := 0; i < 50; i++ {
		d, samples = d.EMAUpdate(3, samples, MaxSamplesUser)
		if math.Abs(d.Sum()-1) > 1e-6 {
			t.Fatalf("sum drifted to %v after %d updates", d.Sum(), i+1)
		}
	}
	if samples != 51 {
		t.Errorf("samples = %d, want 51", samples)
	}
	for i := range d {
		if i != 3 && d[i] >= d[3] {
			t.Errorf("slot %d (%v) not dominated by observed slot 3 (%v)", i, d[i], d[3])
		}
	}
}

func TestEMAUpdateSampleCap(t *testing.T) {
	before := Observed(0)
	after, samples := before.EMAUpdate(6, 10000, MaxSamplesSituational)
	if samples != 10001 {
		t.Errorf("samples = %d, want 10001", samples)
	}
	// Alpha is floored at 1/cap, so one update past the cap moves exactly
	// that much mass.
	wantAlpha := 1.0 / MaxSamplesSituational
	if math.Abs(after[6]-wantAlpha) > 1e-9 {
		t.Errorf("observed slot = %v, want %v", after[6], wantAlpha)
	}
}

func TestObserved(t *testing.T) {
	d := Observed(5)
	if d[5] != 1 || d.Sum() != 1 {
		t.Errorf("Observed(5) = %v", d)
	}
}
