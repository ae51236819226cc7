package adc

import (
	"errors"
	"testing"
)

func TestFakeReaderConsumesSamples(t *testing.T) {
	f := NewFakeReader(map[int][]int{
		ChannelOven: {100, 200, 300},
		ChannelDial: {512},
	})

	want := []int{100, 200, 300, 300, 300}
	for i, w := range want {
		got, err := f.Read(ChannelOven)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: got %d, want %d", i, got, w)
		}
	}

	// Channels consume independently.
	if got, _ := f.Read(ChannelDial); got != 512 {
		t.Errorf("dial: got %d, want 512", got)
	}
}

func TestFakeReaderUnconfiguredChannel(t *testing.T) {
	f := NewFakeReader(map[int][]int{ChannelOven: {100}})
	if _, err := f.Read(ChannelProbe); err == nil {
		t.Error("expected error for unconfigured channel")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader(map[int][]int{ChannelOven: {100}})
	f.ReadError = errors.New("bus stuck")
	if _, err := f.Read(ChannelOven); err == nil {
		t.Error("expected configured error")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader(map[int][]int{ChannelOven: {1, 2}})
	f.Read(ChannelOven)
	f.Read(ChannelOven)
	f.Reset()
	if got, _ := f.Read(ChannelOven); got != 1 {
		t.Errorf("after reset: got %d, want 1", got)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader(nil)
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed=true")
	}
}

func TestStubReader(t *testing.T) {
	s := &StubReader{Values: map[int]int{ChannelDial: 777}}
	if got, _ := s.Read(ChannelDial); got != 777 {
		t.Errorf("got %d, want 777", got)
	}
	if got, _ := s.Read(ChannelOven); got != 0 {
		t.Errorf("unset channel: got %d, want 0", got)
	}
}
