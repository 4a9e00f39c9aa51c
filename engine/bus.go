package engine

import (
	"sync"

	"github.com/faiface/beep"
)

// Bus sums everything patched into it. An empty bus streams silence, so
// buses never drain and can sit anywhere in the graph.
type Bus struct {
	mu  sync.Mutex
	mix beep.Mixer
}

// NewBus returns an empty summing bus.
func (c *Context) NewBus() *Bus {
	return &Bus{}
}

// Attach patches src into the bus and returns the patch handle. The source
// keeps streaming (padded with silence if it underruns) until the patch is
// detached.
func (b *Bus) Attach(src beep.Streamer) *Patch {
	p := &Patch{src: src, attached: true}
	b.mu.Lock()
	b.mix.Add(p)
	b.mu.Unlock()
	return p
}

func (b *Bus) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mix.Stream(samples)
}

func (b *Bus) Err() error {
	return nil
}

// Patch is one live connection into a Bus. Detaching drains the patch on
// the next pull, at which point the bus drops it. A detached patch is dead;
// reconnecting means attaching again.
type Patch struct {
	mu       sync.Mutex
	src      beep.Streamer
	attached bool
}

// Detach severs the connection. Takes effect before the next processed
// block.
func (p *Patch) Detach() {
	p.mu.Lock()
	p.attached = false
	p.mu.Unlock()
}

// Attached reports whether the patch is still connected.
func (p *Patch) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

func (p *Patch) Stream(samples [][2]float64) (int, bool) {
	// The lock covers only the attachment check; streaming the source
	// happens outside it so a source that takes its own lock can be
	// detached concurrently without a lock-order inversion.
	p.mu.Lock()
	src, attached := p.src, p.attached
	p.mu.Unlock()
	if !attached {
		return 0, false
	}
	n, ok := src.Stream(samples)
	if !ok || n < len(samples) {
		for i := n; i < len(samples); i++ {
			samples[i] = [2]float64{}
		}
	}
	return len(samples), true
}

func (p *Patch) Err() error {
	p.mu.Lock()
	src, attached := p.src, p.attached
	p.mu.Unlock()
	if !attached {
		return nil
	}
	return src.Err()
}
