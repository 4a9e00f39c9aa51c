// Package enginetest provides helpers for exercising the audio graph
// without a sound device: a sink that only pulls on demand, and simple
// deterministic sources.
package enginetest

import (
	"math"

	"github.com/faiface/beep"

	"github.com/mixdesk/mixdesk/engine"
)

// Sink discards audio. The graph is driven manually through Pull.
type Sink struct {
	master beep.Streamer
}

func (s *Sink) Start(sr beep.SampleRate, master beep.Streamer) error {
	s.master = master
	return nil
}

func (s *Sink) Close() error { return nil }

// Pull streams n sample frames from the master bus and returns them.
func (s *Sink) Pull(n int) [][2]float64 {
	samples := make([][2]float64, n)
	s.master.Stream(samples)
	return samples
}

// NewContext returns an engine context wired to a discard sink.
func NewContext() (*engine.Context, *Sink) {
	sink := &Sink{}
	ctx, err := engine.NewContext(engine.WithSink(sink))
	if err != nil {
		// The discard sink cannot fail to start.
		panic(err)
	}
	return ctx, sink
}

// Pull streams n frames from any streamer and returns them.
func Pull(s beep.Streamer, n int) [][2]float64 {
	samples := make([][2]float64, n)
	s.Stream(samples)
	return samples
}

// ConstSource streams a constant value on both channels for length frames,
// then drains. A negative length streams forever.
type ConstSource struct {
	Value  float64
	Length int

	pos int
}

func (cs *ConstSource) Stream(samples [][2]float64) (int, bool) {
	if cs.Length >= 0 && cs.pos >= cs.Length {
		return 0, false
	}
	n := len(samples)
	if cs.Length >= 0 && cs.Length-cs.pos < n {
		n = cs.Length - cs.pos
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{cs.Value, cs.Value}
	}
	cs.pos += n
	return n, n > 0
}

func (cs *ConstSource) Err() error { return nil }

// SineSource streams a sine wave at the given frequency.
type SineSource struct {
	SampleRate beep.SampleRate
	Freq       float64

	pos int
}

func (ss *SineSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(ss.pos+i) / float64(ss.SampleRate)
		v := math.Sin(2 * math.Pi * ss.Freq * t)
		samples[i] = [2]float64{v, v}
	}
	ss.pos += len(samples)
	return len(samples), true
}

func (ss *SineSource) Err() error { return nil }
