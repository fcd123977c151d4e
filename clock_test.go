package sequencer

import (
	"context"
	"testing"
	"time"
)

func TestTickIntervalScalesWithTempo(t *testing.T) {
	fast := tickInterval(240)
	slow := tickInterval(60)
	if fast >= slow {
		t.Fatalf("expected faster tempo to yield shorter tick interval: fast=%v slow=%v", fast, slow)
	}
}

func TestTickIntervalDefaultsForNonPositiveBpm(t *testing.T) {
	if tickInterval(0) != tickInterval(120) {
		t.Fatal("expected non-positive bpm to fall back to 120bpm interval")
	}
}

func TestClockResetZeroesTickAndEngines(t *testing.T) {
	p := NewProject()
	c := NewClock(p)

	p.MasterTick = 42
	c.tick = 42
	eng := p.Tracks[0].Engine().(*NoteTrackEngine)
	eng.gateOutputs[0] = true

	c.Reset()

	if c.tick != 0 {
		t.Fatalf("expected tick reset to 0, got %d", c.tick)
	}
	if p.MasterTick != 0 {
		t.Fatalf("expected MasterTick reset to 0, got %d", p.MasterTick)
	}
	if eng.gateOutputs[0] {
		t.Fatal("expected Reset to reset track engines (gate output cleared)")
	}
}

func TestClockRunInvokesOnTickWhilePlaying(t *testing.T) {
	p := NewProject()
	p.TempoBpm = 6000 // fast tick rate so the test completes quickly
	p.Playing = true
	c := NewClock(p)

	ticked := make(chan Tick, 1)
	c.OnTick = func(tick Tick) {
		select {
		case ticked <- tick:
		default:
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	select {
	case <-ticked:
	default:
		t.Fatal("expected at least one OnTick callback within the timeout")
	}
}
