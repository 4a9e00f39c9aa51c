package mixdesk

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/google/uuid"

	"github.com/mixdesk/mixdesk/api"
	"github.com/mixdesk/mixdesk/engine"
	"github.com/mixdesk/mixdesk/internal/media"
	"github.com/mixdesk/mixdesk/pkg/events"
)

// resampleQuality is the beep resampler quality used when a source's rate
// differs from the engine's.
const resampleQuality = 4

// Track wraps one playable audio source and exposes transport and property
// controls. A track has a single output port: it plays into at most one
// channel at a time, and attaching it elsewhere moves the port.
type Track struct {
	id     string
	events *events.Bus

	ready   chan struct{}
	loadErr error

	mu      sync.Mutex
	src     beep.StreamSeekCloser
	format  beep.Format
	info    *api.TrackInfo
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	level   float64
	muted   bool
	loop    bool
	playing bool
	ended   bool

	eng     *engine.Context
	channel *Channel
	out     *engine.Patch
}

// NewTrack wraps an already-decoded stream. The track is ready
// immediately; attach it with Channel.AddTrack.
func NewTrack(src beep.StreamSeekCloser, format beep.Format) *Track {
	t := &Track{
		id:     uuid.NewString(),
		ready:  make(chan struct{}),
		src:    src,
		format: format,
		level:  1,
	}
	close(t.ready)
	return t
}

// newLoadingTrack returns an empty track whose source arrives
// asynchronously. It streams silence until loaded.
func newLoadingTrack(bus *events.Bus) *Track {
	return &Track{
		id:     uuid.NewString(),
		events: bus,
		ready:  make(chan struct{}),
		level:  1,
	}
}

// load resolves and decodes the source, then completes the ready channel.
func (t *Track) load(source string) {
	src, format, info, err := media.Load(source)
	if err != nil {
		t.mu.Lock()
		t.loadErr = err
		t.mu.Unlock()
		close(t.ready)
		t.publish(api.Event{Type: api.EventTrackFailed, Track: t.id, Err: err, At: time.Now()})
		return
	}

	t.mu.Lock()
	t.src = src
	t.format = format
	t.info = info
	t.buildPipeline()
	t.mu.Unlock()

	close(t.ready)
	t.publish(api.Event{Type: api.EventTrackLoaded, Track: t.id, At: time.Now()})
}

// Ready resolves once the track's source is loaded or failed to load.
func (t *Track) Ready() <-chan struct{} {
	return t.ready
}

// Err returns the load error, if any. Only meaningful after Ready
// resolves.
func (t *Track) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadErr
}

// ID returns the track's generated id.
func (t *Track) ID() string {
	return t.id
}

// Info returns the metadata read from the source, or nil if none.
func (t *Track) Info() *api.TrackInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

// buildPipeline assembles source -> loop -> resample -> transport ->
// volume. Callers must hold t.mu; the pipeline is built once the track has
// both a source and an engine context.
func (t *Track) buildPipeline() {
	if t.vol != nil || t.src == nil || t.eng == nil {
		return
	}
	var s beep.Streamer = &trackSource{t}
	if t.format.SampleRate != t.eng.SampleRate() {
		s = beep.Resample(resampleQuality, t.format.SampleRate, t.eng.SampleRate(), s)
	}
	t.ctrl = &beep.Ctrl{Streamer: s, Paused: !t.playing}
	t.vol = &effects.Volume{Streamer: t.ctrl, Base: 2}
	t.applyVolume()
}

// applyVolume maps the 0..1 level onto the volume unit. Callers must hold
// t.mu.
func (t *Track) applyVolume() {
	if t.vol == nil {
		return
	}
	t.vol.Silent = t.muted || t.level <= 0
	if t.level > 0 {
		t.vol.Volume = math.Log2(t.level)
	}
}

// Stream implements beep.Streamer; it is the track's output port. An
// unloaded, detached or drained track streams silence instead of draining,
// so the owning bus never drops it.
func (t *Track) Stream(samples [][2]float64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.vol == nil {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}
	return t.vol.Stream(samples)
}

// trackSource is the bottom of the pipeline. Track.Stream holds t.mu for
// the whole pull, so trackSource reads fields without locking.
type trackSource struct {
	t *Track
}

func (ts *trackSource) Stream(samples [][2]float64) (int, bool) {
	t := ts.t
	filled := 0
	for filled < len(samples) {
		if t.src == nil || !t.playing || t.ended {
			break
		}
		n, ok := t.src.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if ok {
			// n == 0 with ok should not happen; bail out rather than spin.
			break
		}
		// Source drained. Rewind if looping, unless the source is empty
		// or refuses to seek.
		if t.loop && t.src.Len() > 0 && t.src.Seek(0) == nil {
			continue
		}
		t.finish()
		break
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (ts *trackSource) Err() error { return nil }

// finish marks playback complete. Callers must hold t.mu.
func (t *Track) finish() {
	if t.ended {
		return
	}
	t.ended = true
	t.playing = false
	if t.ctrl != nil {
		t.ctrl.Paused = true
	}
	t.publish(api.Event{Type: api.EventTrackEnded, Track: t.id, At: time.Now()})
}

func (t *Track) publish(e api.Event) {
	if t.events != nil {
		t.events.Publish(e)
	}
}

// attach records the track's new owner. Called by Channel.AddTrack after
// patching the output port.
func (t *Track) attach(c *Channel, patch *engine.Patch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channel = c
	t.out = patch
	t.eng = c.eng
	if t.events == nil {
		t.events = c.mixer.events
	}
	t.buildPipeline()
}

// detachOutput severs the track's output port and returns the channel it
// was attached to, if any.
func (t *Track) detachOutput() *Channel {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.channel
	if t.out != nil {
		t.out.Detach()
		t.out = nil
	}
	t.channel = nil
	return prev
}

// attachedTo returns the channel currently holding the track's output
// port.
func (t *Track) attachedTo() *Channel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel
}

// Channel returns the channel the track is attached to, or nil.
func (t *Track) Channel() *Channel {
	return t.attachedTo()
}

// Play starts or resumes playback. A track that ran to the end rewinds
// first.
func (t *Track) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended && t.src != nil {
		t.src.Seek(0)
	}
	t.ended = false
	t.playing = true
	if t.ctrl != nil {
		t.ctrl.Paused = false
	}
}

// Pause suspends playback, keeping the position.
func (t *Track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	if t.ctrl != nil {
		t.ctrl.Paused = true
	}
}

// Stop pauses playback and resets the position to the start.
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	t.ended = false
	if t.ctrl != nil {
		t.ctrl.Paused = true
	}
	if t.src != nil {
		t.src.Seek(0)
	}
}

// Playing reports whether the track is actively playing.
func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing && !t.ended
}

// Paused reports whether the track is not playing.
func (t *Track) Paused() bool {
	return !t.Playing()
}

// Volume returns the track level, 0..1.
func (t *Track) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// SetVolume sets the track level.
func (t *Track) SetVolume(level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = level
	t.applyVolume()
}

// Muted reports whether the track is muted.
func (t *Track) Muted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.muted
}

// SetMuted silences the track without touching its level.
func (t *Track) SetMuted(muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = muted
	t.applyVolume()
}

// Loop reports whether the track restarts when it drains.
func (t *Track) Loop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop
}

// SetLoop toggles looping.
func (t *Track) SetLoop(loop bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loop = loop
}

// Position returns the playback position.
func (t *Track) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return 0
	}
	return t.format.SampleRate.D(t.src.Position())
}

// SetPosition seeks to the given position.
func (t *Track) SetPosition(pos time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return
	}
	if err := t.src.Seek(t.format.SampleRate.N(pos)); err == nil {
		t.ended = false
	}
}

// Close releases the track's decoded source.
func (t *Track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil {
		return nil
	}
	return t.src.Close()
}
