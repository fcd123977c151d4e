package sequencer

const indexedSequenceStepCount = 32

// IndexedStep is a variable-duration step: the scanner advances by
// cumulative durations rather than a fixed grid.
type IndexedStep struct {
	Note          int8
	Gate          bool
	DurationTicks uint16 // length of this step in ticks
	GateLengthPct uint8  // 0..100, percentage of DurationTicks gate stays high
}

// IndexedSequence plays back variable-duration steps with a scanner that
// advances by cumulative durations instead of a uniform step grid.
type IndexedSequence struct {
	Steps     [indexedSequenceStepCount]IndexedStep
	NumSteps  uint8 // active step count, <= indexedSequenceStepCount
}

// NewIndexedSequence returns a sequence of 32 active steps, each
// ConfigSequencePPQN/4 ticks long with a 50% gate length and its gate
// switched off.
func NewIndexedSequence() *IndexedSequence {
	s := &IndexedSequence{NumSteps: indexedSequenceStepCount}
	for i := range s.Steps {
		s.Steps[i] = IndexedStep{DurationTicks: uint16(ConfigSequencePPQN / 4), GateLengthPct: 50}
	}
	return s
}

// TotalTicks is the cumulative duration of the active step range,
// used by the scanner to wrap playback.
func (s *IndexedSequence) TotalTicks() uint32 {
	var total uint32
	for i := 0; i < int(s.NumSteps); i++ {
		total += uint32(s.Steps[i].DurationTicks)
	}
	return total
}

// StepAtOffset returns the index of the step containing tick offset
// `offset` into the active range, plus the offset's position within that
// step (for gate-length percentage evaluation).
func (s *IndexedSequence) StepAtOffset(offset uint32) (step int, within uint32) {
	var cum uint32
	for i := 0; i < int(s.NumSteps); i++ {
		d := uint32(s.Steps[i].DurationTicks)
		if offset < cum+d {
			return i, offset - cum
		}
		cum += d
	}
	return int(s.NumSteps) - 1, 0
}
