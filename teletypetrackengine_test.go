package sequencer

import "testing"

func newTeletypeEngine(t *testing.T) (*Track, *TeletypeTrackEngine) {
	t.Helper()
	tr := NewTrack()
	tr.ChangeMode(TrackTeletype)
	e, ok := tr.Engine().(*TeletypeTrackEngine)
	if !ok {
		t.Fatal("expected a *TeletypeTrackEngine")
	}
	return tr, e
}

func TestTeletypeTrackEngineBeginPulseAutoClears(t *testing.T) {
	_, e := newTeletypeEngine(t)

	e.BeginPulse(0, 10)
	if !e.GateOutput(0) {
		t.Fatal("expected gate to be set immediately after BeginPulse")
	}

	e.Update(0.005) // 5ms elapsed, pulse still pending
	if !e.GateOutput(0) {
		t.Fatal("expected gate to remain set before the pulse expires")
	}

	e.Update(0.010) // total 15ms, past the 10ms pulse width
	if e.GateOutput(0) {
		t.Fatal("expected gate to clear once the pulse duration elapses")
	}
}

func TestTeletypeTrackEngineSetCvSnapsWithoutSlew(t *testing.T) {
	_, e := newTeletypeEngine(t)
	e.SetCv(0, 2.5, false)
	if e.CvOutput(0) != 2.5 {
		t.Fatalf("expected immediate snap to 2.5V, got %v", e.CvOutput(0))
	}
}

func TestTeletypeTrackEngineSetCvSlewsGradually(t *testing.T) {
	_, e := newTeletypeEngine(t)
	e.SetCvSlew(0, 100)
	e.SetCv(0, 5, true)

	if e.CvOutput(0) == 5 {
		t.Fatal("expected slewed CV to not snap immediately")
	}
	for i := 0; i < 50; i++ {
		e.Update(0.01)
	}
	if got := e.CvOutput(0); got < 4.9 {
		t.Fatalf("expected CV to approach target after slewing, got %v", got)
	}
}

func TestTeletypeTrackEngineCvRawReflectsRange(t *testing.T) {
	_, e := newTeletypeEngine(t)
	e.scene.CvOutputs[0] = CvOutputConfig{Range: VoltageRange{Low: -5, High: 5}, Scale: -1}
	e.SetCv(0, 0, false)
	if got := e.CvRaw(0); got < 8000 || got > 8500 {
		t.Fatalf("expected midpoint CV to be roughly mid-scale raw value, got %d", got)
	}
}

func TestTeletypeTrackEngineResetClearsGatesAndCvs(t *testing.T) {
	_, e := newTeletypeEngine(t)
	e.SetGate(0, true)
	e.SetCv(1, 3, false)

	e.Reset()

	if e.GateOutput(0) {
		t.Fatal("expected Reset to clear gates")
	}
	if e.CvOutput(1) != 0 {
		t.Fatal("expected Reset to clear CVs")
	}
}

func TestTeletypeTrackEngineResetMetroTimerZeroesAccumulator(t *testing.T) {
	_, e := newTeletypeEngine(t)
	e.metroAccum = 5
	e.ResetMetroTimer()
	if e.metroAccum != 0 {
		t.Fatalf("expected metroAccum reset to 0, got %d", e.metroAccum)
	}
}
