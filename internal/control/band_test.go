package control

import (
	"math"
	"testing"
)

func TestBandBootstrap(t *testing.T) {
	b := NewBand(2.2, 1.0)
	if b.Value() != 0 {
		t.Errorf("initial band: got %v, want 0", b.Value())
	}
	if b.Seeded() {
		t.Error("band should not be seeded before first checkpoint")
	}

	// The first checkpoint only seeds the baseline; the band is untouched.
	delta := b.Checkpoint(250)
	if delta != 0 {
		t.Errorf("first checkpoint delta: got %v, want 0", delta)
	}
	if b.Value() != 0 {
		t.Errorf("band after first checkpoint: got %v, want 0", b.Value())
	}
	if !b.Seeded() {
		t.Error("band should be seeded after first checkpoint")
	}
}

func TestBandRisingUsesRisingGain(t *testing.T) {
	b := NewBand(2.2, 1.0)
	b.Checkpoint(200)

	delta := b.Checkpoint(210)
	if delta != 10 {
		t.Errorf("delta: got %v, want 10", delta)
	}
	if math.Abs(b.Value()-22) > 1e-9 {
		t.Errorf("band: got %v, want 22 (10 * rising gain 2.2)", b.Value())
	}
	if b.Value() <= 0 {
		t.Error("rising band must be positive")
	}
}

func TestBandFallingUsesFallingGain(t *testing.T) {
	b := NewBand(2.2, 1.0)
	b.Checkpoint(250)

	delta := b.Checkpoint(243)
	if delta != -7 {
		t.Errorf("delta: got %v, want -7", delta)
	}
	if math.Abs(b.Value()-(-7)) > 1e-9 {
		t.Errorf("band: got %v, want -7 (falling gain 1.0)", b.Value())
	}
}

func TestBandZeroDeltaCountsAsFalling(t *testing.T) {
	b := NewBand(2.2, 1.0)
	b.Checkpoint(250)
	b.Checkpoint(260) // band now 22

	if delta := b.Checkpoint(260); delta != 0 {
		t.Errorf("delta: got %v, want 0", delta)
	}
	if b.Value() != 0 {
		t.Errorf("band on zero delta: got %v, want 0 (non-positive)", b.Value())
	}
}

// TestBandBaselineAdvances checks that each checkpoint measures against the
// previous checkpoint, not the original seed.
func TestBandBaselineAdvances(t *testing.T) {
	b := NewBand(2.0, 1.0)
	b.Checkpoint(100)
	b.Checkpoint(110) // delta 10 from 100
	delta := b.Checkpoint(115)
	if delta != 5 {
		t.Errorf("delta: got %v, want 5 (baseline must advance)", delta)
	}
	if math.Abs(b.Value()-10) > 1e-9 {
		t.Errorf("band: got %v, want 10", b.Value())
	}
}

// TestBandSignLaw sweeps checkpoint pairs and checks the invariant: the band
// sign always matches the sign of the delta at the latest evaluation.
func TestBandSignLaw(t *testing.T) {
	for _, pair := range [][2]float64{
		{100, 150}, {150, 100}, {225, 225}, {225, 225.5}, {300, 299.9},
	} {
		b := NewBand(2.2, 1.0)
		b.Checkpoint(pair[0])
		delta := b.Checkpoint(pair[1])
		switch {
		case delta > 0 && b.Value() <= 0:
			t.Errorf("pair %v: positive delta, band %v not positive", pair, b.Value())
		case delta <= 0 && b.Value() > 0:
			t.Errorf("pair %v: non-positive delta, band %v positive", pair, b.Value())
		}
	}
}
