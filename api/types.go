package api

import "time"

// EventType identifies a console event.
type EventType int

const (
	EventTrackLoaded EventType = iota
	EventTrackFailed
	EventTrackEnded
	EventFadeStarted
	EventFadeCompleted
	EventChannelAdded
)

// FadeDirection is the direction of a channel fade.
type FadeDirection int

const (
	FadeIn FadeDirection = iota
	FadeOut
)

func (d FadeDirection) String() string {
	if d == FadeIn {
		return "in"
	}
	return "out"
}

// TransportStatus is the playback state of a track.
type TransportStatus int

const (
	StatusStopped TransportStatus = iota
	StatusPlaying
	StatusPaused
)

// Event is published on the console's event bus whenever something
// asynchronous happens (track loads, fades completing, and so on).
type Event struct {
	Type    EventType
	Channel string        // channel id, if applicable
	Track   string        // track id, if applicable
	Fade    FadeDirection // valid for fade events
	Err     error         // valid for EventTrackFailed
	At      time.Time
}

// TrackInfo carries the metadata read from a track's source, when the
// source format embeds any.
type TrackInfo struct {
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Duration time.Duration `json:"duration"`
	Source   string        `json:"source"`
}
