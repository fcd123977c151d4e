package sequencer

// GateMode selects which of a step's retrigger pulses actually gate.
type GateMode uint8

const (
	GateModeAll GateMode = iota
	GateModeFirst
	GateModeHold
	GateModeFirstLast
)

// HarmonyRole is the chord tone a follower track plays relative to its
// master track.
type HarmonyRole uint8

const (
	HarmonyUseSequence HarmonyRole = iota // 0: defer to the sequence-level role
	HarmonyNone
	HarmonyThird
	HarmonyFifth
	HarmonySeventh
	HarmonyNinth
)

// Step is one logical grid position of a NoteSequence. The source packs
// this into two 32-bit words; the target keeps the same field set as a
// plain struct since Go gives no compactness benefit for manual bit
// packing here and every field is exercised by NoteTrackEngine.
type Step struct {
	Gate  bool
	Slide bool

	GateProbability int8 // 0..7
	Length          int8 // 0..7, step-fraction the gate stays open
	LengthVariationRange       int8 // -8..+7
	LengthVariationProbability int8 // 0..7

	Note                   int8 // -64..+63
	NoteVariationRange     int8 // -64..+63
	NoteVariationProbability int8 // 0..7

	Retrigger           int8 // 0..3, subdivisions-1
	RetriggerProbability int8 // 0..7
	GateOffset          int8 // -7..+7, ticks relative to step start
	Condition           uint8 // 0..127

	// AccumulatorStepValue encodes: 0=off, 1=global, 2..8=-7..-1, 9..15=+1..+7.
	AccumulatorStepValue uint8

	PulseCount int8 // 0..7, meaning 1..8 pulses
	GateMode   GateMode

	HarmonyRoleOverride HarmonyRole // 0..5
	InversionOverride   int8        // 0..4, 0 = use sequence inversion
}

// RunMode selects how the playback cursor advances across steps.
type RunMode uint8

const (
	RunForward RunMode = iota
	RunReverse
	RunPingPong
	RunRandom
	RunRandomWalk
	RunAddressedByCv
)

// SequenceMode selects the step-advancement dialect.
type SequenceMode uint8

const (
	ModeLinear SequenceMode = iota
	ModeReRene
	ModeIkra
)

// Voicing controls chord-role re-quantization for a harmony follower step.
type Voicing struct {
	RootFromC0 bool // see SPEC_FULL.md §14 Open Question decision
	Inversion  int8 // 0..4
}

const noteSequenceStepCount = 64

// NoteSequence is an ordered array of 64 Steps plus sequence-level
// parameters.
type NoteSequence struct {
	Scale    int8 // -1 = inherit
	RootNote int8 // -1 = inherit

	Divisor         uint16 // 1..768 ticks per step-grid
	ClockMultiplier float32 // 0.5..1.5x
	ResetMeasure    uint8   // 0..128 bars, 0 disables

	RunMode   RunMode
	FirstStep uint8 // 0..63
	LastStep  uint8 // 0..63
	Mode      SequenceMode

	HarmonyRole   HarmonyRole
	HarmonyMaster int8 // track index of the master track, -1 = none
	Voicing       Voicing

	Accumulator Accumulator

	Steps [noteSequenceStepCount]Step
}

// NewNoteSequence returns a sequence with spec defaults: divisor one
// sequencer-PPQN step, full step range, forward run, chromatic/inherit
// scale and root.
func NewNoteSequence() *NoteSequence {
	s := &NoteSequence{
		Scale:           -1,
		RootNote:        -1,
		Divisor:         uint16(ConfigSequencePPQN / 4),
		ClockMultiplier: 1.0,
		LastStep:        noteSequenceStepCount - 1,
		HarmonyMaster:   -1,
	}
	s.Accumulator = *NewAccumulator()
	return s
}

// Clamp enforces the firstStep <= lastStep invariant (§3.1) by swapping
// out-of-order bounds rather than rejecting the write, matching the §7
// "out-of-range enum on load" clamp policy.
func (s *NoteSequence) Clamp() {
	if s.FirstStep > s.LastStep {
		s.FirstStep, s.LastStep = s.LastStep, s.FirstStep
	}
	if int(s.LastStep) >= noteSequenceStepCount {
		s.LastStep = noteSequenceStepCount - 1
	}
}
