package sequencer

// TrackMode tags which engine variant a Track currently holds.
type TrackMode uint8

const (
	TrackNote TrackMode = iota
	TrackCurve
	TrackDiscreteMap
	TrackIndexed
	TrackTeletype
)

// MidiMessage is the minimal MIDI event shape a TrackEngine reacts to,
// independent of any particular MIDI transport library.
type MidiMessage struct {
	Status byte
	Data1  byte
	Data2  byte
}

// LinkData exposes a track's current note/gate for another track to
// follow, used by the harmony-role re-quantization in NoteTrackEngine.
type LinkData struct {
	Note Volts
	Gate bool
}

// TrackEngine is the contract every track-kind engine implements,
// consumed by the mixer and (for Teletype tracks) the script bridge.
// Preconditions (§6.1): Tick is monotone nondecreasing within a playback
// run; Reset is idempotent; Update with dt<=0 is a no-op.
type TrackEngine interface {
	TrackMode() TrackMode
	Reset()
	Restart()
	Tick(tick Tick) TickResult
	Update(dt float32)
	ChangePattern()
	Activity() bool
	GateOutput(channel int) bool
	CvOutput(channel int) Volts
	SequenceProgress() float32
	LinkData() *LinkData
	ReceiveMidi(port int, msg MidiMessage) bool
	MonitorMidi(tick Tick, msg MidiMessage)
}

// Track is a tagged union of the five track kinds; ChangeMode clears and
// reinitializes the chosen variant (§3.2).
type Track struct {
	Mode TrackMode

	NotePatterns       [ConfigPatternCount + ConfigSnapshotCount]NoteSequence
	CurvePatterns      [ConfigPatternCount + ConfigSnapshotCount]CurveSequence
	DiscreteMapPatterns [ConfigPatternCount + ConfigSnapshotCount]DiscreteMapSequence
	IndexedPatterns    [ConfigPatternCount + ConfigSnapshotCount]IndexedSequence
	Teletype           TeletypeTrack

	PatternIndex int
	Mute         bool
	FillMuted    bool
	Fill         bool

	// Project is a back-reference set by NewProject, used for
	// scale/root-note inheritance and harmony-role master lookups.
	Project *Project

	engine TrackEngine
}

// NewTrack returns a Note-mode track with default-constructed pattern
// slots.
func NewTrack() *Track {
	t := &Track{Mode: TrackNote}
	for i := range t.NotePatterns {
		t.NotePatterns[i] = *NewNoteSequence()
	}
	for i := range t.CurvePatterns {
		t.CurvePatterns[i] = *NewCurveSequence()
	}
	for i := range t.DiscreteMapPatterns {
		t.DiscreteMapPatterns[i] = *NewDiscreteMapSequence()
	}
	for i := range t.IndexedPatterns {
		t.IndexedPatterns[i] = *NewIndexedSequence()
	}
	t.Teletype = *NewTeletypeTrack()
	t.engine = NewNoteTrackEngine(t)
	return t
}

// Engine returns the track's currently active engine.
func (t *Track) Engine() TrackEngine { return t.engine }

// ChangeMode switches the track to a different variant, clearing and
// reinitializing the chosen engine (§3.2 "changing track mode clears and
// reinitializes the chosen variant").
func (t *Track) ChangeMode(mode TrackMode) {
	t.Mode = mode
	switch mode {
	case TrackNote:
		t.engine = NewNoteTrackEngine(t)
	case TrackCurve:
		t.engine = NewCurveTrackEngine(t)
	case TrackDiscreteMap:
		t.engine = NewDiscreteMapTrackEngine(t)
	case TrackIndexed:
		t.engine = NewIndexedTrackEngine(t)
	case TrackTeletype:
		t.engine = NewTeletypeTrackEngine(t)
	}
}

// ActiveFillFlag implements §4.2 "Fill and mute": fill() =
// (fillMuted || !mute) ? trackEngine.fill : false.
func (t *Track) ActiveFillFlag() bool {
	if t.FillMuted || !t.Mute {
		return t.Fill
	}
	return false
}
