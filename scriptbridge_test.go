package sequencer

import "testing"

func newTeletypeEngineForTest() *TeletypeTrackEngine {
	t := NewTrack()
	t.ChangeMode(TrackTeletype)
	t.Teletype.Scenes[0].MetroEnabled = true
	return t.Engine().(*TeletypeTrackEngine)
}

func TestScriptBridgeScopedEngineRestoresPrevious(t *testing.T) {
	outer := newTeletypeEngineForTest()
	inner := newTeletypeEngineForTest()

	WithActiveEngine(outer, func() {
		if ActiveEngine() != outer {
			t.Fatal("expected outer to be active")
		}
		WithActiveEngine(inner, func() {
			if ActiveEngine() != inner {
				t.Fatal("expected inner to be active")
			}
		})
		if ActiveEngine() != outer {
			t.Fatal("expected outer restored after inner scope exits")
		}
	})
	if ActiveEngine() != nil {
		t.Fatal("expected nil active engine after outer scope exits")
	}
}

func TestTeleTrSetsGateOnActiveEngine(t *testing.T) {
	e := newTeletypeEngineForTest()
	WithActiveEngine(e, func() {
		teleTr(0, 1)
	})
	if !e.GateOutput(0) {
		t.Fatal("expected gate 0 to be set")
	}
}

func TestTeleTrPulseAutoClears(t *testing.T) {
	e := newTeletypeEngineForTest()
	WithActiveEngine(e, func() {
		teleTrPulse(1, 10)
	})
	if !e.GateOutput(1) {
		t.Fatal("expected pulse to raise gate immediately")
	}
	e.Update(0.005)
	if !e.GateOutput(1) {
		t.Fatal("expected gate still high before pulse expiry")
	}
	e.Update(0.010)
	if e.GateOutput(1) {
		t.Fatal("expected gate cleared after pulse expiry")
	}
}

func TestTeleCvOutOfScopeIsNoOp(t *testing.T) {
	// No active engine installed: shims must not panic.
	teleTr(0, 1)
	teleCv(0, 100, false)
	if got := teleGetCv(0); got != 0 {
		t.Fatalf("expected 0 with no active engine, got %d", got)
	}
}
