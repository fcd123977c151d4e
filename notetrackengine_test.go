package sequencer

import "testing"

func TestNoteTrackEngineTickAdvancesGate(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	seq := &tr.NotePatterns[tr.PatternIndex]
	seq.Divisor = 4
	seq.FirstStep = 0
	seq.LastStep = 3
	seq.Steps[0].Gate = true
	seq.Steps[0].GateProbability = 7
	seq.Steps[0].Length = 7

	fired := false
	for tick := Tick(0); tick < 10; tick++ {
		res := e.Tick(tick)
		if res&GateUpdate != 0 && e.GateOutput(0) {
			fired = true
		}
	}
	if !fired {
		t.Fatal("expected a gate to fire within the first bar")
	}
}

func TestNoteTrackEngineResetClearsState(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	e.gateOutputs[0] = true
	e.activity = true

	e.Reset()

	if e.gateOutputs[0] {
		t.Fatal("expected Reset to clear gate output")
	}
	if e.Activity() {
		t.Fatal("expected Reset to clear activity")
	}
	if e.cursor != int(e.seq.FirstStep) {
		t.Fatalf("expected cursor reset to FirstStep, got %d", e.cursor)
	}
}

func TestNoteTrackEngineChangePatternClearsQueues(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	e.gateQueue.Push(GateEvent{Tick: 100, Gate: true})
	e.cvQueue.Push(CvEvent{Tick: 100, Cv: 1})

	tr.PatternIndex = 1
	e.ChangePattern()

	if e.gateQueue.DrainDue(1000) != nil {
		t.Fatal("expected gate queue to be cleared on pattern change")
	}
	if e.seq != &tr.NotePatterns[1] {
		t.Fatal("expected engine to rebind to the new pattern index")
	}
}

func TestNoteTrackEngineFillUsesAlternateSequence(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	tr.Fill = true

	seq, id := e.activeSequence()
	if seq != e.fillSeq || id != e.fillSeqID {
		t.Fatal("expected fill flag to select the fill sequence")
	}
}

func TestNoteTrackEngineUpdateNoOpOnNonPositiveDt(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	e.cvOutput = 2
	e.cvTarget = 5
	e.slideActive = true

	e.Update(0)

	if e.cvOutput != 2 {
		t.Fatalf("expected Update(0) to be a no-op, got cvOutput=%v", e.cvOutput)
	}
}

func TestNoteTrackEngineUpdateSnapsWithoutSlide(t *testing.T) {
	tr := NewTrack()
	e := NewNoteTrackEngine(tr)
	e.cvOutput = 0
	e.cvTarget = 3
	e.slideActive = false

	e.Update(0.01)

	if e.cvOutput != 3 {
		t.Fatalf("expected Update to snap cvOutput to target, got %v", e.cvOutput)
	}
}
