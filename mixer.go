// Package mixdesk implements a virtual mixing console: a Mixer owns named
// Channels, each Channel owns a fixed chain of processing units and accepts
// Tracks as inputs, and everything sums into one master output.
package mixdesk

import (
	"strconv"
	"sync"
	"time"

	"github.com/mixdesk/mixdesk/api"
	"github.com/mixdesk/mixdesk/engine"
	"github.com/mixdesk/mixdesk/pkg/events"
)

// Mixer is the root of the routing graph. It owns an ordered list of
// channels and the master gain unit feeding the output sink.
type Mixer struct {
	ctx    *engine.Context
	bus    *engine.Bus  // master input, channels patch into it
	master *engine.Gain // master volume
	events *events.Bus

	mu       sync.RWMutex
	channels []*Channel
}

// Option configures a Mixer.
type Option func(*mixerOptions)

type mixerOptions struct {
	ctx        *engine.Context
	engineOpts []engine.Option
}

// WithContext runs the mixer on an existing engine context instead of
// initializing a new one.
func WithContext(ctx *engine.Context) Option {
	return func(o *mixerOptions) { o.ctx = ctx }
}

// WithSink routes the master output to a custom sink instead of the
// default speaker.
func WithSink(s engine.Sink) Option {
	return func(o *mixerOptions) { o.engineOpts = append(o.engineOpts, engine.WithSink(s)) }
}

// New creates a mixer whose master gain unit is wired to the output sink.
// The only failure mode is an unavailable audio engine.
func New(opts ...Option) (*Mixer, error) {
	var o mixerOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx := o.ctx
	if ctx == nil {
		var err error
		ctx, err = engine.NewContext(o.engineOpts...)
		if err != nil {
			return nil, err
		}
	}

	m := &Mixer{
		ctx:    ctx,
		bus:    ctx.NewBus(),
		master: ctx.NewGain(),
		events: events.NewBus(),
	}
	m.master.SetInput(m.bus)
	ctx.Destination().Attach(m.master)
	return m, nil
}

// AddChannel constructs a channel wired into the master unit and appends
// it to the channel list. An empty id assigns the channel's index,
// formatted as a decimal string. Caller-supplied ids are not checked for
// uniqueness.
func (m *Mixer) AddChannel(id string) *Channel {
	m.mu.Lock()
	if id == "" {
		id = strconv.Itoa(len(m.channels))
	}
	ch := newChannel(m, id)
	m.channels = append(m.channels, ch)
	m.mu.Unlock()

	m.events.Publish(api.Event{Type: api.EventChannelAdded, Channel: id, At: time.Now()})
	return ch
}

// GetChannel returns the first channel with the given id in insertion
// order, or false if no channel has it.
func (m *Mixer) GetChannel(id string) (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.channels {
		if ch.id == id {
			return ch, true
		}
	}
	return nil, false
}

// Channels returns the channels in creation order.
func (m *Mixer) Channels() []*Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Channel(nil), m.channels...)
}

// Volume returns the master gain.
func (m *Mixer) Volume() float64 {
	return m.master.Param()
}

// SetVolume sets the master gain. Values are passed through to the engine
// unclamped.
func (m *Mixer) SetVolume(v float64) {
	m.master.SetParam(v)
}

// Events returns the console's event bus.
func (m *Mixer) Events() *events.Bus {
	return m.events
}

// Context returns the engine context the mixer runs on.
func (m *Mixer) Context() *engine.Context {
	return m.ctx
}

// Close releases the output sink and the event bus.
func (m *Mixer) Close() error {
	m.events.Close()
	return m.ctx.Close()
}
