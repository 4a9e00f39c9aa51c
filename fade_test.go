package mixdesk

import (
	"testing"
	"time"

	"github.com/mixdesk/mixdesk/api"
)

func waitFade(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("fade did not resolve")
	}
}

func TestFadeOutReachesExactlyZero(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	waitFade(t, ch.FadeOut(100*time.Millisecond))

	if got := ch.PrefadeGain(); got != 0 {
		t.Errorf("pre-fade gain = %v, want exactly 0", got)
	}
	if _, fading := ch.Fading(); fading {
		t.Error("fade state should be idle after completion")
	}
}

func TestFadeInReachesExactlyOne(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	// Regardless of starting value.
	waitFade(t, ch.FadeOut(50*time.Millisecond))
	waitFade(t, ch.FadeIn(100*time.Millisecond))

	if got := ch.PrefadeGain(); got != 1 {
		t.Errorf("pre-fade gain = %v, want exactly 1", got)
	}
}

func TestFadeOutMonotonic(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	done := ch.FadeOut(500 * time.Millisecond)

	prev := ch.PrefadeGain()
	for {
		select {
		case <-done:
			if got := ch.PrefadeGain(); got != 0 {
				t.Errorf("pre-fade gain = %v, want 0", got)
			}
			return
		case <-time.After(time.Millisecond):
			g := ch.PrefadeGain()
			if g > prev {
				t.Fatalf("fade-out not monotonic: %v after %v", g, prev)
			}
			prev = g
		}
	}
}

func TestFadeInMonotonic(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")
	waitFade(t, ch.FadeOut(50*time.Millisecond))

	done := ch.FadeIn(500 * time.Millisecond)

	prev := ch.PrefadeGain()
	for {
		select {
		case <-done:
			return
		case <-time.After(time.Millisecond):
			g := ch.PrefadeGain()
			if g < prev {
				t.Fatalf("fade-in not monotonic: %v after %v", g, prev)
			}
			prev = g
		}
	}
}

func TestFadeSupersedesInFlightFade(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	// A slow fade-out gets superseded by a fade-in; only the fade-in
	// resolves and the gain lands at its boundary.
	out := ch.FadeOut(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	in := ch.FadeIn(100 * time.Millisecond)

	waitFade(t, in)
	if got := ch.PrefadeGain(); got != 1 {
		t.Errorf("pre-fade gain = %v, want 1 after superseding fade-in", got)
	}

	select {
	case <-out:
		t.Error("superseded fade must not resolve")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSupersededFadeLeavesBoundaryExact(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	// A superseded fade's ticker must never land a stale write after the
	// winning fade resolves, so the gain stays pinned to the boundary.
	for i := 0; i < 50; i++ {
		ch.FadeOut(10 * time.Second)
		waitFade(t, ch.FadeIn(4*time.Millisecond))
		time.Sleep(4 * time.Millisecond)

		if got := ch.PrefadeGain(); got != 1 {
			t.Fatalf("iteration %d: pre-fade gain = %v, want exactly 1", i, got)
		}
	}
}

func TestFadeDefaultDuration(t *testing.T) {
	m, _ := newTestMixer(t)
	ch := m.AddChannel("")

	// Non-positive durations substitute the 2s default instead of
	// failing.
	done := ch.FadeOut(-1)

	if dir, fading := ch.Fading(); !fading || dir != api.FadeOut {
		t.Error("fade should be running in the out direction")
	}
	waitFade(t, done)
	if got := ch.PrefadeGain(); got != 0 {
		t.Errorf("pre-fade gain = %v, want 0", got)
	}
}

func TestFadeEvents(t *testing.T) {
	m, _ := newTestMixer(t)
	started := m.Events().Subscribe(api.EventFadeStarted)
	completed := m.Events().Subscribe(api.EventFadeCompleted)
	ch := m.AddChannel("drums")

	waitFade(t, ch.FadeOut(50*time.Millisecond))

	select {
	case e := <-started:
		if e.Channel != "drums" || e.Fade != api.FadeOut {
			t.Errorf("unexpected start event: %+v", e)
		}
	default:
		t.Error("no fade-started event published")
	}
	select {
	case e := <-completed:
		if e.Channel != "drums" || e.Fade != api.FadeOut {
			t.Errorf("unexpected completion event: %+v", e)
		}
	default:
		t.Error("no fade-completed event published")
	}
}

func TestFadedChannelIsSilentDespiteVolume(t *testing.T) {
	m, sink := newTestMixer(t)
	ch := m.AddChannel("")
	ch.AddTrack(NewTrack(newMemSource(0.5, 441000), testFormat())).Play()
	ch.SetVolume(1)
	ch.SetMuted(false)

	waitFade(t, ch.FadeOut(50*time.Millisecond))

	samples := sink.Pull(16)
	if samples[0][0] != 0 {
		t.Errorf("faded-out channel produced %v, want silence", samples[0][0])
	}
	if got := ch.Volume(); got != 1 {
		t.Errorf("volume = %v, want 1 (fade is an independent stage)", got)
	}
}
