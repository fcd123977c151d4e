package sequencer

// IndexedTrackEngine plays back an IndexedSequence's variable-duration
// steps, advancing a cumulative-tick scanner instead of a uniform step
// grid (§4.3 supplemented feature).
type IndexedTrackEngine struct {
	track *Track
	seq   *IndexedSequence

	offset uint32 // ticks elapsed since the scanner wrapped
	cursor int

	cvOutput Volts
	gateOn   bool
	activity bool

	scaleOverride int8 // -1 = use project scale
}

// NewIndexedTrackEngine constructs an engine bound to the track's
// currently selected pattern.
func NewIndexedTrackEngine(t *Track) *IndexedTrackEngine {
	e := &IndexedTrackEngine{track: t, scaleOverride: -1}
	e.bindSequence()
	return e
}

func (e *IndexedTrackEngine) TrackMode() TrackMode { return TrackIndexed }

func (e *IndexedTrackEngine) bindSequence() {
	e.seq = &e.track.IndexedPatterns[e.track.PatternIndex]
}

func (e *IndexedTrackEngine) Reset() {
	e.offset = 0
	e.cursor = 0
	e.gateOn = false
	e.activity = false
}

func (e *IndexedTrackEngine) Restart() { e.Reset() }

func (e *IndexedTrackEngine) ChangePattern() {
	e.bindSequence()
	e.Reset()
}

func (e *IndexedTrackEngine) Activity() bool { return e.activity }

func (e *IndexedTrackEngine) GateOutput(channel int) bool {
	if channel != 0 {
		return false
	}
	return e.gateOn
}

func (e *IndexedTrackEngine) CvOutput(channel int) Volts {
	if channel != 0 {
		return 0
	}
	return e.cvOutput
}

func (e *IndexedTrackEngine) SequenceProgress() float32 {
	total := e.seq.TotalTicks()
	if total == 0 {
		return 0
	}
	return float32(e.offset) / float32(total)
}

func (e *IndexedTrackEngine) LinkData() *LinkData {
	return &LinkData{Note: e.cvOutput, Gate: e.gateOn}
}

func (e *IndexedTrackEngine) ReceiveMidi(port int, msg MidiMessage) bool { return false }
func (e *IndexedTrackEngine) MonitorMidi(tick Tick, msg MidiMessage)     {}

// Tick advances the cumulative-duration scanner by one tick, re-deriving
// the current step and gate state from StepAtOffset each time a step
// boundary is crossed (§4.3).
func (e *IndexedTrackEngine) Tick(tick Tick) TickResult {
	var result TickResult

	total := e.seq.TotalTicks()
	if total == 0 {
		return result
	}

	step, within := e.seq.StepAtOffset(e.offset)
	if step != e.cursor {
		e.cursor = step
		result |= CvUpdate
	}

	st := &e.seq.Steps[e.cursor]
	gateOnTicks := uint32(uint32(st.GateLengthPct) * uint32(st.DurationTicks) / 100)
	wantGate := st.Gate && within < gateOnTicks
	if wantGate != e.gateOn {
		e.gateOn = wantGate
		result |= GateUpdate
	}

	if within == 0 {
		scale := ScaleAt(e.resolveScale())
		e.cvOutput = scale.NoteToVolts(int(st.Note), e.resolveRoot())
		e.activity = true
		result |= CvUpdate
	}

	e.offset++
	if e.offset >= total {
		e.offset = 0
	}

	return result
}

func (e *IndexedTrackEngine) resolveScale() int8 {
	if e.scaleOverride >= 0 {
		return e.scaleOverride
	}
	if e.track.Project != nil {
		return e.track.Project.Scale
	}
	return ScaleChromatic
}

func (e *IndexedTrackEngine) resolveRoot() int8 {
	if e.track.Project != nil {
		return e.track.Project.RootNote
	}
	return 0
}

func (e *IndexedTrackEngine) Update(dt float32) {}
