package sequencer

import "testing"

func TestCurveEvalClampsProgress(t *testing.T) {
	if got := CurveRampUp.Eval(-1); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := CurveRampUp.Eval(2); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
}

func TestCurveTriangleSymmetry(t *testing.T) {
	rising := CurveTriangle.Eval(0.25)
	falling := CurveTriangle.Eval(0.75)
	if rising != falling {
		t.Fatalf("expected symmetric triangle values, got rising=%v falling=%v", rising, falling)
	}
}

func TestCurveSequenceValueScalesToMinMax(t *testing.T) {
	s := NewCurveSequence()
	s.Steps[0] = CurveStep{Shape: CurveRampUp, Min: -2, Max: 2}
	if got := s.Value(0, 0); got != -2 {
		t.Fatalf("expected value at t=0 to equal Min, got %v", got)
	}
	if got := s.Value(0, 1); got != 2 {
		t.Fatalf("expected value at t=1 to equal Max, got %v", got)
	}
}

func TestCurveTrackEngineTickAdvancesPhaseAndWraps(t *testing.T) {
	tr := NewTrack()
	tr.ChangeMode(TrackCurve)
	seq := &tr.CurvePatterns[tr.PatternIndex]
	seq.Divisor = 4

	e, ok := tr.Engine().(*CurveTrackEngine)
	if !ok {
		t.Fatal("expected a *CurveTrackEngine")
	}
	e.Reset()

	for tick := Tick(0); tick < 4; tick++ {
		e.Tick(tick)
	}
	if e.cursor != 1 {
		t.Fatalf("expected cursor to advance to step 1 after one full step span, got %d", e.cursor)
	}
}

func TestCurveTrackEngineGateOnHoldsGate(t *testing.T) {
	tr := NewTrack()
	tr.ChangeMode(TrackCurve)
	seq := &tr.CurvePatterns[tr.PatternIndex]
	seq.Divisor = 4
	seq.Steps[0].GateType = CurveGateOn

	e, _ := tr.Engine().(*CurveTrackEngine)
	e.Reset()

	res := e.Tick(0)
	if res&GateUpdate == 0 {
		t.Fatal("expected the first tick to report a gate update")
	}
	if !e.GateOutput(0) {
		t.Fatal("expected CurveGateOn to hold the gate high")
	}
}

func TestCurveTrackEngineGatePulseTracksHalfPhase(t *testing.T) {
	tr := NewTrack()
	tr.ChangeMode(TrackCurve)
	seq := &tr.CurvePatterns[tr.PatternIndex]
	seq.Divisor = 4
	seq.Steps[0].GateType = CurveGatePulse

	e, _ := tr.Engine().(*CurveTrackEngine)
	e.Reset()

	e.Tick(0) // phase starts at 0, pulse should be on
	if !e.GateOutput(0) {
		t.Fatal("expected pulse gate to be on during the first half of the step")
	}
}
