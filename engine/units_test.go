package engine

import (
	"testing"
	"time"

	"github.com/faiface/beep"
)

type constStreamer struct {
	value float64
}

func (cs constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{cs.value, cs.value}
	}
	return len(samples), true
}

func (cs constStreamer) Err() error { return nil }

type discardSink struct {
	master beep.Streamer
}

func (d *discardSink) Start(sr beep.SampleRate, master beep.Streamer) error {
	d.master = master
	return nil
}

func (d *discardSink) Close() error { return nil }

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(WithSink(&discardSink{}))
	if err != nil {
		t.Fatalf("NewContext returned error: %v", err)
	}
	return ctx
}

func pull(s beep.Streamer, n int) [][2]float64 {
	samples := make([][2]float64, n)
	s.Stream(samples)
	return samples
}

func TestGainParam(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.NewGain()

	if got := g.Param(); got != 1 {
		t.Errorf("new gain param = %v, want unity", got)
	}

	tests := []struct {
		name string
		v    float64
	}{
		{"half", 0.5},
		{"zero", 0},
		{"boost", 1.5},
		{"negative", -0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.SetParam(tt.v)
			if got := g.Param(); got != tt.v {
				t.Errorf("param = %v, want %v", got, tt.v)
			}
		})
	}
}

func TestGainScalesInput(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.NewGain()
	g.SetInput(constStreamer{value: 0.5})
	g.SetParam(0.5)

	samples := pull(g, 8)
	if got := samples[0][0]; got != 0.25 {
		t.Errorf("sample = %v, want 0.25", got)
	}
}

func TestGainWithoutInputIsSilent(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.NewGain()

	samples := make([][2]float64, 8)
	samples[3] = [2]float64{0.9, 0.9} // stale data must be overwritten
	n, ok := g.Stream(samples)
	if n != len(samples) || !ok {
		t.Fatalf("Stream = (%d, %v), want full silent block", n, ok)
	}
	if samples[3][0] != 0 {
		t.Error("unit without input should stream silence")
	}
}

func TestPanParam(t *testing.T) {
	ctx := newTestContext(t)
	p := ctx.NewPan()

	if got := p.Param(); got != 0 {
		t.Errorf("new pan param = %v, want centered", got)
	}
	p.SetParam(-0.3)
	if got := p.Param(); got != -0.3 {
		t.Errorf("param = %v, want -0.3", got)
	}
}

func TestPanHardLeft(t *testing.T) {
	ctx := newTestContext(t)
	p := ctx.NewPan()
	p.SetInput(constStreamer{value: 0.5})
	p.SetParam(-1)

	samples := pull(p, 8)
	if samples[0][1] != 0 {
		t.Errorf("right = %v, want 0 with hard-left pan", samples[0][1])
	}
	if samples[0][0] < 0.5 {
		t.Errorf("left = %v, want at least source level with hard-left pan", samples[0][0])
	}
}

func TestEQParamAndBypass(t *testing.T) {
	ctx := newTestContext(t)

	units := []struct {
		name string
		eq   *EQ
	}{
		{"low shelf", ctx.NewLowShelf()},
		{"mid peak", ctx.NewMidPeak()},
		{"high shelf", ctx.NewHighShelf()},
	}

	for _, u := range units {
		t.Run(u.name, func(t *testing.T) {
			u.eq.SetInput(constStreamer{value: 0.5})

			if got := u.eq.Param(); got != 0 {
				t.Errorf("new EQ param = %v, want 0dB", got)
			}
			// 0dB bypasses the filter; the input passes unchanged.
			samples := pull(u.eq, 8)
			if got := samples[0][0]; got != 0.5 {
				t.Errorf("flat band altered signal: %v", got)
			}

			u.eq.SetParam(-12)
			if got := u.eq.Param(); got != -12 {
				t.Errorf("param = %v, want -12", got)
			}
			// Engaged filter still streams full blocks.
			n, ok := u.eq.Stream(make([][2]float64, 8))
			if n != 8 || !ok {
				t.Errorf("engaged EQ Stream = (%d, %v)", n, ok)
			}
		})
	}
}

func TestTicker(t *testing.T) {
	ctx := newTestContext(t)
	tk := ctx.NewTicker(time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire")
	}
}
