package mixdesk

import (
	"time"

	"github.com/mixdesk/mixdesk/api"
)

// DefaultFadeDuration is substituted when a fade is requested with a
// non-positive duration.
const DefaultFadeDuration = 2 * time.Second

// fadeTick is the period of the fade machine's timer.
const fadeTick = 2 * time.Millisecond

// fadeRun is one in-flight fade. Closing stop supersedes it; a superseded
// fade's completion channel never resolves.
type fadeRun struct {
	direction api.FadeDirection
	stop      chan struct{}
}

// FadeIn ramps the pre-fade input gain up to exactly 1 and resolves the
// returned channel. Starting a fade cancels any in-flight fade on the same
// channel.
func (c *Channel) FadeIn(d time.Duration) <-chan struct{} {
	return c.startFade(api.FadeIn, 1, d)
}

// FadeOut ramps the pre-fade input gain down to exactly 0 and resolves the
// returned channel. Starting a fade cancels any in-flight fade on the same
// channel.
func (c *Channel) FadeOut(d time.Duration) <-chan struct{} {
	return c.startFade(api.FadeOut, 0, d)
}

// Fading reports the direction of the in-flight fade, if any.
func (c *Channel) Fading() (api.FadeDirection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fade == nil {
		return 0, false
	}
	return c.fade.direction, true
}

func (c *Channel) startFade(dir api.FadeDirection, target float64, d time.Duration) <-chan struct{} {
	if d < time.Millisecond {
		d = DefaultFadeDuration
	}
	// Per-tick delta, from the fade curve (2/durationMs)*10 applied every
	// 2ms.
	step := (2.0 / float64(d/time.Millisecond)) * 10

	f := &fadeRun{direction: dir, stop: make(chan struct{})}
	done := make(chan struct{})

	c.mu.Lock()
	if c.fade != nil {
		// Single fade per channel: supersede the running one so two
		// tickers never write the same gain concurrently.
		close(c.fade.stop)
	}
	c.fade = f
	c.mu.Unlock()

	c.mixer.events.Publish(api.Event{
		Type: api.EventFadeStarted, Channel: c.id, Fade: dir, At: time.Now(),
	})

	go c.runFade(f, target, step, done)
	return done
}

func (c *Channel) runFade(f *fadeRun, target, step float64, done chan struct{}) {
	tk := c.eng.NewTicker(fadeTick)
	defer tk.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-tk.C():
		}

		// The ownership check and the gain update share the channel lock,
		// so a superseding fade can never interleave a stale write after
		// the new fade has taken over.
		c.mu.Lock()
		if c.fade != f {
			c.mu.Unlock()
			return
		}
		g := c.prefade.Param()
		if f.direction == api.FadeOut {
			g -= step
			if g <= target {
				g = target
			}
		} else {
			g += step
			if g >= target {
				g = target
			}
		}
		c.prefade.SetParam(g)
		finished := g == target
		if finished {
			c.fade = nil
		}
		c.mu.Unlock()

		if finished {
			c.mixer.events.Publish(api.Event{
				Type: api.EventFadeCompleted, Channel: c.id, Fade: f.direction, At: time.Now(),
			})
			close(done)
			return
		}
	}
}
