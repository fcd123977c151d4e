package sequencer

import (
	"math"

	"github.com/onoma2/stepseq/internal/projectfile"
)

// DiscreteMapClockSource selects where the moving voltage that drives
// threshold crossings comes from.
type DiscreteMapClockSource uint8

const (
	ClockInternalSaw DiscreteMapClockSource = iota
	ClockInternalTri
	ClockExternal
)

// ThresholdMode selects whether a stage's threshold is an absolute
// position in [rangeLow, rangeHigh] or a proportional weight of the
// range span, recomputed cumulatively (§3.1 Invariant, Length mode).
type ThresholdMode uint8

const (
	ThresholdPosition ThresholdMode = iota
	ThresholdLength
)

// CrossDirection selects which threshold crossings a Stage reacts to.
type CrossDirection uint8

const (
	DirRise CrossDirection = iota
	DirFall
	DirBoth
	DirOff
)

// Stage is one of a DiscreteMapSequence's 32 threshold entries.
type Stage struct {
	Threshold int8 // -100..+100
	Direction CrossDirection
	NoteIndex int8 // -63..+64
}

const discreteMapStageCount = 32

// ScaleSource selects whether a DiscreteMap track quantizes against the
// project scale or a track-local override.
type ScaleSource uint8

const (
	ScaleSourceProject ScaleSource = iota
	ScaleSourceTrack
)

// DiscreteMapSequence is a threshold-crossing detector converting a
// moving voltage into discrete stage triggers with hysteresis-free,
// first-crossing-wins scanning (§4.4).
type DiscreteMapSequence struct {
	ClockSource   DiscreteMapClockSource
	Divisor       uint16
	ThresholdMode ThresholdMode
	Loop          bool
	RangeLow      float32
	RangeHigh     float32
	SlewEnabled   bool
	ScaleSource   ScaleSource
	RootNote      int8

	Stages [discreteMapStageCount]Stage

	dirty               bool
	lengthThresholdAbs  [discreteMapStageCount]float32 // cached absolute breakpoints
}

// NewDiscreteMapSequence returns a sequence spanning a typical bipolar
// CV range with all stages off.
func NewDiscreteMapSequence() *DiscreteMapSequence {
	s := &DiscreteMapSequence{
		Divisor:   uint16(ConfigSequencePPQN * 4),
		RangeLow:  -5,
		RangeHigh: 5,
	}
	for i := range s.Stages {
		s.Stages[i].Direction = DirOff
	}
	s.dirty = true
	return s
}

// MarkDirty flags the length-mode threshold cache stale. Call after any
// sequence threshold edit, rangeLow/rangeHigh change, or mode flip
// (§4.4 "Dirtied by").
func (s *DiscreteMapSequence) MarkDirty() { s.dirty = true }

// recompute rebuilds the length-mode cumulative breakpoints (§4.4
// "Length-mode threshold recomputation"). Lazily invoked from
// ThresholdAt when s.dirty.
func (s *DiscreteMapSequence) recompute() {
	var total float64
	for _, st := range s.Stages {
		total += math.Abs(float64(st.Threshold))
	}
	span := float64(s.RangeHigh - s.RangeLow)

	var cum float64
	for i, st := range s.Stages {
		cum += math.Abs(float64(st.Threshold))
		var frac float64
		if total > 0 {
			frac = cum / total
		}
		s.lengthThresholdAbs[i] = s.RangeLow + float32(frac*span)
	}
	s.dirty = false
}

// StagesToRecords converts all 32 stages into their on-disk form
// (§4.4/§6.3 "Discrete-map stage contributes (int8 threshold, u8
// direction, int8 noteIndex)").
func (s *DiscreteMapSequence) StagesToRecords() [discreteMapStageCount]projectfile.StageRecord {
	var out [discreteMapStageCount]projectfile.StageRecord
	for i, st := range s.Stages {
		out[i] = projectfile.StageRecord{
			Threshold: st.Threshold,
			Direction: uint8(st.Direction),
			NoteIndex: st.NoteIndex,
		}
	}
	return out
}

// LoadStageRecords restores all 32 stages from their on-disk form and
// marks the length-mode threshold cache stale.
func (s *DiscreteMapSequence) LoadStageRecords(recs [discreteMapStageCount]projectfile.StageRecord) {
	for i, r := range recs {
		s.Stages[i] = Stage{
			Threshold: r.Threshold,
			Direction: CrossDirection(r.Direction),
			NoteIndex: r.NoteIndex,
		}
	}
	s.MarkDirty()
}

// ThresholdAt returns the absolute threshold value for stage i in the
// current ThresholdMode, normalized into [RangeLow, RangeHigh] for
// Position mode or looked up from the lazily recomputed cumulative cache
// for Length mode.
func (s *DiscreteMapSequence) ThresholdAt(i int) float32 {
	switch s.ThresholdMode {
	case ThresholdLength:
		if s.dirty {
			s.recompute()
		}
		return s.lengthThresholdAbs[i]
	default: // ThresholdPosition
		// Stage.Threshold is -100..100, map linearly onto the range.
		frac := (float32(s.Stages[i].Threshold) + 100) / 200
		return s.RangeLow + frac*(s.RangeHigh-s.RangeLow)
	}
}
