// Package engine wraps the underlying audio library behind the small
// surface the console needs: a context that owns the output sink, a set of
// pre-built processing units (gain, pan, equalizer) with one mutable scalar
// parameter each, summing buses with detachable patches, and a periodic
// timer primitive.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	mixerrors "github.com/mixdesk/mixdesk/pkg/errors"
)

const (
	defaultSampleRate = beep.SampleRate(44100)
	defaultBufferSize = 100 * time.Millisecond
)

// Sink is the final audio destination. The default sink plays through the
// system speaker; tests substitute one that pulls samples on demand.
type Sink interface {
	// Start begins pulling from master. It is called once per context.
	Start(sr beep.SampleRate, master beep.Streamer) error
	Close() error
}

// speakerSink plays the master stream through beep's speaker package.
type speakerSink struct {
	buffer time.Duration
}

func (s *speakerSink) Start(sr beep.SampleRate, master beep.Streamer) error {
	if err := speaker.Init(sr, sr.N(s.buffer)); err != nil {
		return err
	}
	speaker.Play(master)
	return nil
}

func (s *speakerSink) Close() error {
	speaker.Clear()
	return nil
}

// Context is the audio-engine handle shared by a console and everything it
// owns. It creates processing units and buses bound to one sample rate and
// one output sink.
type Context struct {
	sampleRate beep.SampleRate
	buffer     time.Duration
	sink       Sink
	dest       *Bus
}

// Option configures a Context.
type Option func(*Context)

// WithSampleRate overrides the default 44.1kHz sample rate.
func WithSampleRate(sr beep.SampleRate) Option {
	return func(c *Context) { c.sampleRate = sr }
}

// WithBufferSize overrides the default 100ms output buffer.
func WithBufferSize(d time.Duration) Option {
	return func(c *Context) { c.buffer = d }
}

// WithSink substitutes the output sink. Useful for offline rendering and
// for tests that run without an audio device.
func WithSink(s Sink) Option {
	return func(c *Context) { c.sink = s }
}

// NewContext initializes the audio engine and starts the output sink.
// Failure to start the sink is fatal and reported immediately.
func NewContext(opts ...Option) (*Context, error) {
	c := &Context{
		sampleRate: defaultSampleRate,
		buffer:     defaultBufferSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = &speakerSink{buffer: c.buffer}
	}
	c.dest = c.NewBus()

	if err := c.sink.Start(c.sampleRate, c.dest); err != nil {
		return nil, fmt.Errorf("%w: %v", mixerrors.ErrEngineUnavailable, err)
	}
	slog.Debug("audio engine initialized", "sample_rate", int(c.sampleRate))
	return c, nil
}

// SampleRate returns the context's sample rate.
func (c *Context) SampleRate() beep.SampleRate {
	return c.sampleRate
}

// Destination is the bus feeding the output sink. Anything patched into it
// is audible.
func (c *Context) Destination() *Bus {
	return c.dest
}

// Close stops the output sink.
func (c *Context) Close() error {
	return c.sink.Close()
}

// Ticker is the periodic-timer primitive the engine provides to drive
// time-based control such as fades.
type Ticker struct {
	t *time.Ticker
}

// NewTicker returns a ticker firing every d.
func (c *Context) NewTicker(d time.Duration) *Ticker {
	return &Ticker{t: time.NewTicker(d)}
}

// C returns the tick channel.
func (tk *Ticker) C() <-chan time.Time {
	return tk.t.C
}

// Stop cancels the ticker.
func (tk *Ticker) Stop() {
	tk.t.Stop()
}
