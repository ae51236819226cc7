package control

// Heater is a bang-bang controller with a dynamically repositioned switching
// point: the band moves the single threshold instead of a fixed hysteresis
// width supplying separate on/off points. Transitions are driven solely by
// the comparisons in Decide, re-evaluated every modulation tick.
type Heater struct {
	state State
}

// NewHeater returns a heater in the OFF state.
func NewHeater() *Heater {
	return &Heater{state: StateOff}
}

// Decide evaluates the heater decision and returns the new state plus
// whether it changed.
//
// Standby wins unconditionally. On a stale oven temperature the previous
// relay state is kept (never act on invalid data; the next good sample
// decides). Otherwise the element is on exactly when the oven is below
// target-band, so at the threshold an ON heater turns OFF.
func (h *Heater) Decide(standby bool, target, band, ovenTemp float64, ovenStale bool) (State, bool) {
	prev := h.state

	switch {
	case standby:
		h.state = StateStandby
	case ovenStale:
		if h.state == StateStandby {
			// Leaving standby with no valid reading: relay stays off.
			h.state = StateOff
		}
	default:
		if ovenTemp < target-band {
			h.state = StateOn
		} else {
			h.state = StateOff
		}
	}

	return h.state, h.state != prev
}

// ForceOff drives the heater to OFF regardless of inputs (main power
// removed, shutdown). Returns the new state and whether it changed.
func (h *Heater) ForceOff() (State, bool) {
	prev := h.state
	h.state = StateOff
	return h.state, h.state != prev
}

// On reports whether the relay should be energized.
func (h *Heater) On() bool { return h.state == StateOn }

// State returns the current heater state.
func (h *Heater) State() State { return h.state }
