package mixdesk

import (
	"errors"
	"testing"

	"github.com/faiface/beep"

	"github.com/mixdesk/mixdesk/internal/enginetest"
	mixerrors "github.com/mixdesk/mixdesk/pkg/errors"
)

func TestDefaultChannelIDs(t *testing.T) {
	m, _ := newTestMixer(t)

	first := m.AddChannel("")
	second := m.AddChannel("")
	third := m.AddChannel("")

	want := []string{"0", "1", "2"}
	got := []string{first.ID(), second.ID(), third.ID()}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel %d id = %q, want %q", i, got[i], want[i])
		}
	}

	ch, ok := m.GetChannel("1")
	if !ok {
		t.Fatal("GetChannel(\"1\") not found")
	}
	if ch != second {
		t.Error("GetChannel(\"1\") should return the second channel created")
	}
}

func TestGetChannelMissing(t *testing.T) {
	m, _ := newTestMixer(t)
	m.AddChannel("drums")

	ch, ok := m.GetChannel("missing")
	if ok {
		t.Error("GetChannel for unknown id should report not found")
	}
	if ch != nil {
		t.Error("GetChannel for unknown id should return nil")
	}
}

func TestGetChannelFirstMatch(t *testing.T) {
	m, _ := newTestMixer(t)

	// Caller-supplied ids are not uniqueness-checked; lookup returns the
	// first match in insertion order.
	first := m.AddChannel("dup")
	m.AddChannel("dup")

	ch, ok := m.GetChannel("dup")
	if !ok || ch != first {
		t.Error("GetChannel should return the first channel with the id")
	}
}

func TestMasterVolumePassthrough(t *testing.T) {
	m, _ := newTestMixer(t)

	tests := []struct {
		name   string
		volume float64
	}{
		{"unity", 1.0},
		{"half", 0.5},
		{"zero", 0.0},
		{"above range", 1.7},
		{"negative", -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetVolume(tt.volume)
			if got := m.Volume(); got != tt.volume {
				t.Errorf("Volume = %v, want %v (no clamping)", got, tt.volume)
			}
		})
	}
}

func TestChannelsInsertionOrder(t *testing.T) {
	m, _ := newTestMixer(t)
	m.AddChannel("drums")
	m.AddChannel("bass")
	m.AddChannel("")

	channels := m.Channels()
	want := []string{"drums", "bass", "2"}
	if len(channels) != len(want) {
		t.Fatalf("Channels() returned %d channels, want %d", len(channels), len(want))
	}
	for i, ch := range channels {
		if ch.ID() != want[i] {
			t.Errorf("channel %d id = %q, want %q", i, ch.ID(), want[i])
		}
	}
}

func TestMasterMixesChannels(t *testing.T) {
	m, sink := newTestMixer(t)

	drums := m.AddChannel("drums")
	drums.AddTrack(NewTrack(newMemSource(0.25, 44100), testFormat())).Play()
	bass := m.AddChannel("bass")
	bass.AddTrack(NewTrack(newMemSource(0.25, 44100), testFormat())).Play()

	samples := sink.Pull(16)
	if got := samples[0][0]; !closeTo(got, 0.5) {
		t.Errorf("master sample = %v, want 0.5 (two summed channels)", got)
	}

	m.SetVolume(0.5)
	samples = sink.Pull(16)
	if got := samples[0][0]; !closeTo(got, 0.25) {
		t.Errorf("master sample = %v, want 0.25 after master volume 0.5", got)
	}
}

type failingSink struct{}

func (failingSink) Start(beep.SampleRate, beep.Streamer) error {
	return errors.New("no output device")
}

func (failingSink) Close() error { return nil }

func TestNewReportsEngineUnavailable(t *testing.T) {
	_, err := New(WithSink(failingSink{}))
	if err == nil {
		t.Fatal("New should fail when the sink cannot start")
	}
	if !errors.Is(err, mixerrors.ErrEngineUnavailable) {
		t.Errorf("error = %v, want ErrEngineUnavailable", err)
	}
}

func TestWithContextReusesEngine(t *testing.T) {
	ctx, _ := enginetest.NewContext()
	m, err := New(WithContext(ctx))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if m.Context() != ctx {
		t.Error("mixer should run on the provided context")
	}
}
