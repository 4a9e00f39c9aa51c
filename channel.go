package mixdesk

import (
	"sync"

	"github.com/faiface/beep"

	"github.com/mixdesk/mixdesk/engine"
)

// Channel is a named processing strip. Tracks sum into its input bus, pass
// through a pre-fade gain stage and a fixed chain of units (low-shelf EQ,
// mid-peaking EQ, high-shelf EQ, pan, gain, mute gate), and terminate at
// the owning mixer's master input. The chain is wired once at construction
// and never reordered.
type Channel struct {
	id    string
	mixer *Mixer
	eng   *engine.Context

	bus     *engine.Bus // summing input for attached tracks
	prefade *engine.Gain
	low     *engine.EQ
	mid     *engine.EQ
	high    *engine.EQ
	pan     *engine.Pan
	gain    *engine.Gain
	gate    *engine.Gain // mute gate, 0 or 1 only

	mu          sync.Mutex
	tracks      []*Track
	masterPatch *engine.Patch
	taps        map[*engine.Bus]*engine.Patch
	fade        *fadeRun
}

func newChannel(m *Mixer, id string) *Channel {
	ctx := m.ctx
	c := &Channel{
		id:      id,
		mixer:   m,
		eng:     ctx,
		bus:     ctx.NewBus(),
		prefade: ctx.NewGain(),
		low:     ctx.NewLowShelf(),
		mid:     ctx.NewMidPeak(),
		high:    ctx.NewHighShelf(),
		pan:     ctx.NewPan(),
		gain:    ctx.NewGain(),
		gate:    ctx.NewGain(),
		taps:    make(map[*engine.Bus]*engine.Patch),
	}

	// Fixed chain order: EQ shaping before spatial placement and final
	// gain/mute.
	c.prefade.SetInput(c.bus)
	c.low.SetInput(c.prefade)
	c.mid.SetInput(c.low)
	c.high.SetInput(c.mid)
	c.pan.SetInput(c.high)
	c.gain.SetInput(c.pan)
	c.gate.SetInput(c.gain)

	c.masterPatch = m.bus.Attach(c.gate)
	return c
}

// ID returns the channel id.
func (c *Channel) ID() string {
	return c.id
}

// Output exposes the channel's output port, the end of the unit chain.
func (c *Channel) Output() beep.Streamer {
	return c.gate
}

// AddTrack attaches a track to the channel's input bus. Attaching a track
// already on this channel is a no-op. A track attached elsewhere is
// reconnected here: its single output port moves and the previous channel
// drops it from its list.
func (c *Channel) AddTrack(t *Track) *Track {
	if t == nil {
		return nil
	}
	if t.attachedTo() == c {
		return t
	}
	if prev := t.detachOutput(); prev != nil {
		prev.dropTrack(t)
	}

	c.mu.Lock()
	patch := c.bus.Attach(t)
	c.tracks = append(c.tracks, t)
	c.mu.Unlock()

	t.attach(c, patch)
	return t
}

// Input builds a track from a source descriptor (file path, http(s) URL or
// Base64 data URI), attaches it and returns it immediately. Resolution and
// decoding run asynchronously; failures surface through the track's
// Ready/Err pair and the event bus, never from Input itself.
func (c *Channel) Input(source string) *Track {
	t := newLoadingTrack(c.mixer.events)
	c.AddTrack(t)
	go t.load(source)
	return t
}

// Tracks returns the attached tracks in attachment order.
func (c *Channel) Tracks() []*Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Track(nil), c.tracks...)
}

// dropTrack removes t from the channel's track list after its output port
// was reconnected elsewhere.
func (c *Channel) dropTrack(t *Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.tracks {
		if existing == t {
			c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
			return
		}
	}
}

// Pan returns the stereo position, -1 (left) to 1 (right).
func (c *Channel) Pan() float64 { return c.pan.Param() }

// SetPan sets the stereo position, unclamped.
func (c *Channel) SetPan(v float64) { c.pan.SetParam(v) }

// Volume returns the channel gain.
func (c *Channel) Volume() float64 { return c.gain.Param() }

// SetVolume sets the channel gain, unclamped. Independent of the mute
// gate and of the pre-fade stage.
func (c *Channel) SetVolume(v float64) { c.gain.SetParam(v) }

// LowEQ returns the low band gain in decibels.
func (c *Channel) LowEQ() float64 { return c.low.Param() }

// SetLowEQ sets the low band gain in decibels.
func (c *Channel) SetLowEQ(db float64) { c.low.SetParam(db) }

// MidEQ returns the mid band gain in decibels.
func (c *Channel) MidEQ() float64 { return c.mid.Param() }

// SetMidEQ sets the mid band gain in decibels.
func (c *Channel) SetMidEQ(db float64) { c.mid.SetParam(db) }

// HighEQ returns the high band gain in decibels.
func (c *Channel) HighEQ() float64 { return c.high.Param() }

// SetHighEQ sets the high band gain in decibels.
func (c *Channel) SetHighEQ(db float64) { c.high.SetParam(db) }

// Muted reports whether the mute gate is closed.
func (c *Channel) Muted() bool {
	return c.gate.Param() == 0
}

// SetMuted opens or closes the mute gate. Unmuting restores the gate to
// exactly 1; the gate exists solely for muting and carries no other state.
func (c *Channel) SetMuted(muted bool) {
	if muted {
		c.gate.SetParam(0)
	} else {
		c.gate.SetParam(1)
	}
}

// PrefadeGain returns the pre-fade input gain. It is mutated only by the
// fade machine, never by SetVolume or SetMuted.
func (c *Channel) PrefadeGain() float64 {
	return c.prefade.Param()
}

// ConnectToContext reattaches the channel's output to the path feeding the
// final sink. Channels are born connected.
func (c *Channel) ConnectToContext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.masterPatch != nil && c.masterPatch.Attached() {
		return
	}
	c.masterPatch = c.mixer.bus.Attach(c.gate)
}

// DisconnectFromContext detaches the channel's output from the path
// feeding the final sink. The channel stays wired internally: attached
// tracks keep streaming into the chain.
func (c *Channel) DisconnectFromContext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.masterPatch != nil {
		c.masterPatch.Detach()
	}
}

// Connect routes the channel's output to an additional receiver. Takes
// effect before the next processed block.
func (c *Channel) Connect(dst *engine.Bus) {
	if dst == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.taps[dst]; ok {
		return
	}
	c.taps[dst] = dst.Attach(c.gate)
}

// Disconnect detaches the channel's output from the given receivers, or
// from all of them when called with none.
func (c *Channel) Disconnect(dsts ...*engine.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(dsts) == 0 {
		for dst, patch := range c.taps {
			patch.Detach()
			delete(c.taps, dst)
		}
		return
	}
	for _, dst := range dsts {
		if patch, ok := c.taps[dst]; ok {
			patch.Detach()
			delete(c.taps, dst)
		}
	}
}
