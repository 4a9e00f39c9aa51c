package engine

import (
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// Unit is an opaque processing block with one input, one output and a
// single controllable scalar parameter. Units are safe for concurrent use;
// the parameter and the input wiring are guarded by a per-unit mutex.
type Unit interface {
	beep.Streamer
	SetInput(beep.Streamer)
	Param() float64
	SetParam(float64)
}

// silence zero-fills samples and reports them as streamed. Units with no
// input stay silent instead of draining so the graph keeps running.
func silence(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Gain scales its input by a linear factor. Param 1 is unity, 0 is silence.
type Gain struct {
	mu    sync.Mutex
	param float64
	fx    effects.Gain
}

// NewGain returns a gain unit at unity.
func (c *Context) NewGain() *Gain {
	return &Gain{param: 1}
}

func (g *Gain) SetInput(s beep.Streamer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fx.Streamer = s
}

// Param returns the linear gain factor exactly as it was set.
func (g *Gain) Param() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.param
}

// SetParam sets the linear gain factor. Values are passed through
// unclamped; the effect's offset form is derived only for streaming.
func (g *Gain) SetParam(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.param = v
	g.fx.Gain = v - 1
}

func (g *Gain) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fx.Streamer == nil {
		return silence(samples)
	}
	return g.fx.Stream(samples)
}

func (g *Gain) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fx.Streamer == nil {
		return nil
	}
	return g.fx.Err()
}

// Pan balances its input between the left and right output channels.
// Param runs from -1 (hard left) to 1 (hard right), 0 is centered.
type Pan struct {
	mu sync.Mutex
	fx effects.Pan
}

// NewPan returns a centered pan unit.
func (c *Context) NewPan() *Pan {
	return &Pan{}
}

func (p *Pan) SetInput(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fx.Streamer = s
}

func (p *Pan) Param() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fx.Pan
}

func (p *Pan) SetParam(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fx.Pan = v
}

func (p *Pan) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fx.Streamer == nil {
		return silence(samples)
	}
	return p.fx.Stream(samples)
}

func (p *Pan) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fx.Streamer == nil {
		return nil
	}
	return p.fx.Err()
}

// EQ boosts or cuts one frequency band. Param is the band gain in
// decibels; 0dB bypasses the filter entirely.
type EQ struct {
	mu     sync.Mutex
	in     beep.Streamer
	sr     beep.SampleRate
	center float64
	width  float64
	gainDB float64
	eq     beep.Streamer // equalizer, nil while bypassed
}

// Band center frequencies and widths for the three console bands.
const (
	lowShelfFreq   = 320.0
	lowShelfWidth  = 320.0
	midPeakFreq    = 1000.0
	midPeakWidth   = 800.0
	highShelfFreq  = 3200.0
	highShelfWidth = 3200.0
)

func (c *Context) newEQ(center, width float64) *EQ {
	return &EQ{sr: c.sampleRate, center: center, width: width}
}

// NewLowShelf returns an equalizer unit shaping the low band.
func (c *Context) NewLowShelf() *EQ {
	return c.newEQ(lowShelfFreq, lowShelfWidth)
}

// NewMidPeak returns an equalizer unit shaping the mid band.
func (c *Context) NewMidPeak() *EQ {
	return c.newEQ(midPeakFreq, midPeakWidth)
}

// NewHighShelf returns an equalizer unit shaping the high band.
func (c *Context) NewHighShelf() *EQ {
	return c.newEQ(highShelfFreq, highShelfWidth)
}

func (e *EQ) SetInput(s beep.Streamer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.in = s
	e.rebuild()
}

// Param returns the band gain in decibels.
func (e *EQ) Param() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gainDB
}

// SetParam sets the band gain in decibels, unclamped. The filter section
// is recomputed; 0dB removes it from the path.
func (e *EQ) SetParam(db float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gainDB = db
	e.rebuild()
}

// rebuild recreates the equalizer for the current input and gain.
// Callers must hold e.mu.
func (e *EQ) rebuild() {
	if e.in == nil || e.gainDB == 0 {
		e.eq = nil
		return
	}
	e.eq = effects.NewEqualizer(e.in, e.sr, effects.MonoEqualizerSections{
		{
			F0: e.center,
			Bf: e.width,
			GB: e.gainDB / 2,
			G0: 0,
			G:  e.gainDB,
		},
	})
}

func (e *EQ) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.eq != nil {
		return e.eq.Stream(samples)
	}
	if e.in == nil {
		return silence(samples)
	}
	return e.in.Stream(samples)
}

func (e *EQ) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.in == nil {
		return nil
	}
	return e.in.Err()
}
