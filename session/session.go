// Package session snapshots a console's state and restores it later.
// Snapshots carry control values and track source descriptors, not audio.
package session

import (
	"time"

	"github.com/mixdesk/mixdesk"
)

// Snapshot is a point-in-time capture of a console.
type Snapshot struct {
	Name         string         `json:"name"`
	MasterVolume float64        `json:"master_volume"`
	Channels     []ChannelState `json:"channels"`
	SavedAt      time.Time      `json:"saved_at"`
}

// ChannelState captures one channel strip.
type ChannelState struct {
	ID     string       `json:"id"`
	Pan    float64      `json:"pan"`
	Volume float64      `json:"volume"`
	LowEQ  float64      `json:"low_eq"`
	MidEQ  float64      `json:"mid_eq"`
	HighEQ float64      `json:"high_eq"`
	Muted  bool         `json:"muted"`
	Tracks []TrackState `json:"tracks"`
}

// TrackState captures one attached track. Tracks wrapped around in-memory
// streams have no source descriptor and are not captured.
type TrackState struct {
	Source string  `json:"source"`
	Volume float64 `json:"volume"`
	Loop   bool    `json:"loop"`
	Muted  bool    `json:"muted"`
}

// Capture records the console's current control values.
func Capture(m *mixdesk.Mixer, name string) *Snapshot {
	snap := &Snapshot{
		Name:         name,
		MasterVolume: m.Volume(),
		SavedAt:      time.Now(),
	}
	for _, ch := range m.Channels() {
		cs := ChannelState{
			ID:     ch.ID(),
			Pan:    ch.Pan(),
			Volume: ch.Volume(),
			LowEQ:  ch.LowEQ(),
			MidEQ:  ch.MidEQ(),
			HighEQ: ch.HighEQ(),
			Muted:  ch.Muted(),
		}
		for _, t := range ch.Tracks() {
			info := t.Info()
			if info == nil || info.Source == "" {
				continue
			}
			cs.Tracks = append(cs.Tracks, TrackState{
				Source: info.Source,
				Volume: t.Volume(),
				Loop:   t.Loop(),
				Muted:  t.Muted(),
			})
		}
		snap.Channels = append(snap.Channels, cs)
	}
	return snap
}

// Apply restores a snapshot onto a console, creating missing channels and
// re-issuing Input for each saved track source. Track loading proceeds
// asynchronously; the returned tracks report readiness individually.
func Apply(m *mixdesk.Mixer, snap *Snapshot) []*mixdesk.Track {
	m.SetVolume(snap.MasterVolume)

	var tracks []*mixdesk.Track
	for _, cs := range snap.Channels {
		ch, ok := m.GetChannel(cs.ID)
		if !ok {
			ch = m.AddChannel(cs.ID)
		}
		ch.SetPan(cs.Pan)
		ch.SetVolume(cs.Volume)
		ch.SetLowEQ(cs.LowEQ)
		ch.SetMidEQ(cs.MidEQ)
		ch.SetHighEQ(cs.HighEQ)
		ch.SetMuted(cs.Muted)

		for _, ts := range cs.Tracks {
			t := ch.Input(ts.Source)
			t.SetVolume(ts.Volume)
			t.SetLoop(ts.Loop)
			t.SetMuted(ts.Muted)
			tracks = append(tracks, t)
		}
	}
	return tracks
}
