package control

// Band holds the adaptive hysteresis offset. Every checkpoint interval the
// band is recomputed from the temperature change since the previous
// checkpoint, which approximates the per-minute slope of the oven
// temperature. The band is signed and is subtracted from the target wherever
// it is used: a rising oven lowers the effective heater-off threshold (the
// enclosure keeps gaining heat after the element switches off), a falling
// oven raises the effective heater-on threshold.
type Band struct {
	value    float64
	baseline float64 // oven temperature at the last checkpoint
	seeded   bool

	// Heating is fast and thermal lag is large, so the rising gain is the
	// larger of the two; passive cooling is slow and needs less anticipation.
	risingGain  float64
	fallingGain float64
}

// NewBand returns a band controller with the given gains. The band is zero
// until the first checkpoint after the seed completes.
func NewBand(risingGain, fallingGain float64) *Band {
	return &Band{
		risingGain:  risingGain,
		fallingGain: fallingGain,
	}
}

// Checkpoint re-evaluates the band from the current oven temperature and
// returns the observed delta. The very first call only seeds the baseline:
// there is no prior checkpoint to diff against, so computing a band there
// would produce a spurious large offset. Zero delta counts as falling.
func (b *Band) Checkpoint(ovenTemp float64) float64 {
	if !b.seeded {
		b.baseline = ovenTemp
		b.seeded = true
		return 0
	}

	delta := ovenTemp - b.baseline
	gain := b.fallingGain
	if delta > 0 {
		gain = b.risingGain
	}
	b.value = delta * gain
	b.baseline = ovenTemp
	return delta
}

// Value returns the current signed band offset.
func (b *Band) Value() float64 { return b.value }

// Seeded reports whether the baseline has been established.
func (b *Band) Seeded() bool { return b.seeded }
