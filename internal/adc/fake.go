package adc

import "fmt"

// FakeReader is a test double that returns scripted per-channel values.
type FakeReader struct {
	// Samples contains scripted raw values per channel. Each Read consumes
	// the next sample for that channel; when exhausted, the last sample is
	// returned repeatedly.
	Samples map[int][]int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index map[int]int
}

// NewFakeReader creates a FakeReader with the given per-channel samples.
func NewFakeReader(samples map[int][]int) *FakeReader {
	return &FakeReader{
		Samples: samples,
		index:   make(map[int]int),
	}
}

// Read returns the next scripted sample for the channel.
func (f *FakeReader) Read(channel int) (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	samples := f.Samples[channel]
	if len(samples) == 0 {
		return 0, fmt.Errorf("no samples configured for channel %d", channel)
	}
	i := f.index[channel]
	if i < len(samples)-1 {
		f.index[channel] = i + 1
	}
	return samples[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds all channels to the beginning of their samples.
func (f *FakeReader) Reset() {
	f.index = make(map[int]int)
	f.Closed = false
	f.ReadError = nil
}

// StubReader returns a fixed value per channel. Useful for bench runs where
// only one input is exercised.
type StubReader struct {
	Values map[int]int
}

// Read returns the fixed value for the channel (zero if unset).
func (s *StubReader) Read(channel int) (int, error) {
	return s.Values[channel], nil
}

// Close is a no-op.
func (s *StubReader) Close() error { return nil }
