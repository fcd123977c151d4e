package sequencer

// GateEvent is a scheduled gate on/off transition. ShouldTickAccumulator
// and SequenceID only matter under Spread-RTRIG (§4.2.1): they record
// that firing this gate must first tick the accumulator belonging to
// SequenceID, and only if that sequence is still the engine's live
// sequence.
type GateEvent struct {
	Tick                  Tick
	Gate                  bool
	ShouldTickAccumulator bool
	SequenceID            uint8

	// BaseNote and AccumScale are the two extra fields the Gate struct
	// grows under Spread-RTRIG (§9 DESIGN NOTES): the pitch computed
	// without the accumulator term, and the scale to apply the
	// post-tick accumulator value by. Unused when
	// ShouldTickAccumulator is false.
	BaseNote   Volts
	AccumScale Volts
}

// CvEvent is a scheduled CV target change, optionally slewed rather than
// snapped.
type CvEvent struct {
	Tick  Tick
	Cv    Volts
	Slide bool
}
