package control

// HistorySize is the fixed capacity of each channel's raw sample ring.
const HistorySize = 8

// Channel owns the raw reading history for one analog input and its running
// averages. The ring always holds exactly HistorySize values (zero-initialized
// before the first fill) and both averages are recomputed from the full buffer
// on every write, never adjusted incrementally.
//
// The write index is NOT owned by the channel: the controller advances one
// shared cursor per sample tick so that all channels write at the same slot
// and their histories stay time-aligned.
type Channel struct {
	history [HistorySize]int
	average int     // rounded to nearest integer
	mean    float64 // unrounded, used where precision matters
	last    int     // most recent raw write

	profile *Profile // nil for non-temperature channels (the dial)
	temp    float64  // last good converted temperature, Fahrenheit
	stale   bool     // true when the latest conversion faulted
}

// NewChannel returns a channel. profile may be nil for inputs that are not
// thermistors. Temperature channels start stale until the first good
// conversion.
func NewChannel(profile *Profile) *Channel {
	return &Channel{
		profile: profile,
		stale:   profile != nil,
	}
}

// Store writes a raw reading at the shared cursor position and recomputes
// both averages over all HistorySize slots.
func (c *Channel) Store(cursor, raw int) {
	c.history[cursor%HistorySize] = raw
	c.last = raw

	sum := 0
	for _, v := range c.history {
		sum += v
	}
	c.average = (sum + HistorySize/2) / HistorySize
	c.mean = float64(sum) / HistorySize
}

// Average returns the rounded integer average of the current buffer contents.
func (c *Channel) Average() int { return c.average }

// Mean returns the unrounded average used for temperature derivation.
func (c *Channel) Mean() float64 { return c.mean }

// Last returns the most recent raw write. Used to hold a value when the
// underlying input could not be read this tick.
func (c *Channel) Last() int { return c.last }

// Convert updates the channel's temperature from the current mean. On a
// sensor fault the last valid temperature is held and the channel is marked
// stale; the fault is returned so the caller can log it.
func (c *Channel) Convert() error {
	if c.profile == nil {
		return nil
	}
	f, err := c.profile.Fahrenheit(c.mean)
	if err != nil {
		c.stale = true
		return err
	}
	c.temp = f
	c.stale = false
	return nil
}

// Temperature returns the last good converted temperature and whether it is
// stale (no good conversion yet, or the latest one faulted).
func (c *Channel) Temperature() (float64, bool) {
	return c.temp, c.stale
}
