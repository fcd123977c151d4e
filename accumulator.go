package sequencer

import (
	"strconv"

	"github.com/onoma2/stepseq/internal/projectfile"
)

// AccumulatorDirection selects how currentValue moves on each tick.
type AccumulatorDirection uint8

const (
	AccumUp AccumulatorDirection = iota
	AccumDown
	AccumFreeze
)

// AccumulatorOrder is the normalization policy applied after a directional
// step.
type AccumulatorOrder uint8

const (
	AccumWrap AccumulatorOrder = iota
	AccumPendulum
	AccumRandom
	AccumHold
)

// AccumulatorPolarity controls whether currentValue is displayed/used as
// signed or unsigned in the owning sequence's UI-facing helpers; it does
// not affect tick() arithmetic.
type AccumulatorPolarity uint8

const (
	AccumUnipolar AccumulatorPolarity = iota
	AccumBipolar
)

// Accumulator is a stateful integer walker whose value adds to a step's
// note/velocity each time it fires. It is mutated during playback while
// the owning NoteSequence's schema is otherwise immutable, so Accumulator
// is the one piece of playback state a sequence record carries directly
// (see §9 DESIGN NOTES, "mutable accumulator").
type Accumulator struct {
	Enabled      bool
	Direction    AccumulatorDirection
	Order        AccumulatorOrder
	Polarity     AccumulatorPolarity
	MinValue     int8
	MaxValue     int8
	StepValue    int8
	CurrentValue int8

	// pendulumReversed tracks the internal walk direction under Pendulum
	// order (true while walking opposite to Direction); it is flipped at
	// each bound without changing the user-facing Direction field (§4.7).
	pendulumReversed bool

	rng randSource
}

// randSource is the minimal interface Accumulator needs from a PRNG,
// satisfied by *math/rand.Rand or this package's lcg, so that Random
// order remains reproducible under test when a seeded source is
// supplied via SetRandSource.
type randSource interface {
	Intn(n int) int
}

// lcg is a tiny deterministic LCG used when no explicit source has
// been set; it keeps Accumulator free of any dependency on math/rand's
// global state (see SPEC_FULL.md determinism requirement).
type lcg struct{ state uint64 }

func (l *lcg) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return int((l.state >> 33) % uint64(n))
}

// NewAccumulator returns a disabled accumulator at currentValue=0 with a
// deterministic default PRNG for Random order.
func NewAccumulator() *Accumulator {
	return &Accumulator{rng: &lcg{state: 0x9E3779B97F4A7C15}}
}

// SetRandSource overrides the PRNG used for Random order, for
// reproducible tests.
func (a *Accumulator) SetRandSource(r randSource) { a.rng = r }

// Tick mutates currentValue per §4.7: a directional step followed by an
// order-policy normalization.
func (a *Accumulator) Tick() {
	if !a.Enabled {
		return
	}

	v := int(a.CurrentValue)
	step := int(a.StepValue)
	if a.Order == AccumPendulum && a.pendulumReversed {
		step = -step
	}

	switch a.Direction {
	case AccumUp:
		v += step
	case AccumDown:
		v -= step
	case AccumFreeze:
		// no change
	}

	lo, hi := int(a.MinValue), int(a.MaxValue)
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1

	switch a.Order {
	case AccumWrap:
		if span > 0 {
			if v > hi {
				v = lo + (v-hi-1)%span
			} else if v < lo {
				v = hi - (lo-v-1)%span
			}
		}
	case AccumPendulum:
		// Reflect off whichever bound was crossed; flip the internal
		// walk direction, never the user-facing Direction.
		if span > 0 {
			for v > hi || v < lo {
				if v > hi {
					v = hi - (v - hi)
				} else {
					v = lo + (lo - v)
				}
				a.pendulumReversed = !a.pendulumReversed
			}
		}
	case AccumRandom:
		if span > 0 {
			v = lo + a.rng.Intn(span)
		}
	case AccumHold:
		if v > hi {
			v = hi
		} else if v < lo {
			v = lo
		}
	}

	a.CurrentValue = int8(v)
}

// decodeAccumulatorStepValue decodes a Step.AccumulatorStepValue field
// (0..15) into (useAccumulator, overridesGlobal, overrideValue) per §3.1:
// 0=off, 1=global stepValue, 2..8=-7..-1, 9..15=+1..+7.
func decodeAccumulatorStepValue(v uint8) (use bool, overrideStep bool, overrideValue int8) {
	switch {
	case v == 0:
		return false, false, 0
	case v == 1:
		return true, false, 0
	case v >= 2 && v <= 8:
		return true, true, int8(v) - 9 // 2->-7 ... 8->-1
	case v >= 9 && v <= 15:
		return true, true, int8(v) - 8 // 9->+1 ... 15->+7
	default:
		return false, false, 0
	}
}

// TickWithStepOverride applies a per-step override of StepValue (if any)
// for exactly one Tick() call, restoring the sequence-level StepValue
// afterward. Used by NoteTrackEngine when Step.AccumulatorStepValue
// encodes an override (§3.1, §4.7 "Per-step override").
func (a *Accumulator) TickWithStepOverride(encoded uint8) {
	use, overrides, value := decodeAccumulatorStepValue(encoded)
	if !use {
		return
	}
	if !overrides {
		a.Tick()
		return
	}
	saved := a.StepValue
	a.StepValue = value
	a.Tick()
	a.StepValue = saved
}

// Describe formats the accumulator state for a UI list-model-style
// consumer, grounded on AccumulatorListModel.h in original_source/ without
// pulling in any rendering code.
func (a *Accumulator) Describe() string {
	if !a.Enabled {
		return "off"
	}
	dir := [...]string{"up", "down", "freeze"}[a.Direction]
	ord := [...]string{"wrap", "pendulum", "random", "hold"}[a.Order]
	return dir + "/" + ord
}

// ToRecord converts the accumulator's 9 fixed-width fields into their
// on-disk form (§6.3 "Accumulator contributes 9 fixed-width fields").
func (a *Accumulator) ToRecord() projectfile.AccumulatorRecord {
	var enabled uint8
	if a.Enabled {
		enabled = 1
	}
	return projectfile.AccumulatorRecord{
		Enabled:      enabled,
		Direction:    uint8(a.Direction),
		Order:        uint8(a.Order),
		Polarity:     uint8(a.Polarity),
		MinValue:     a.MinValue,
		MaxValue:     a.MaxValue,
		StepValue:    a.StepValue,
		CurrentValue: a.CurrentValue,
	}
}

// LoadRecord restores the accumulator's persisted fields from rec,
// leaving pendulumReversed and rng untouched (playback-only state, never
// serialized).
func (a *Accumulator) LoadRecord(rec projectfile.AccumulatorRecord) {
	a.Enabled = rec.Enabled != 0
	a.Direction = AccumulatorDirection(rec.Direction)
	a.Order = AccumulatorOrder(rec.Order)
	a.Polarity = AccumulatorPolarity(rec.Polarity)
	a.MinValue = rec.MinValue
	a.MaxValue = rec.MaxValue
	a.StepValue = rec.StepValue
	a.CurrentValue = rec.CurrentValue
}

// AccumulatorStepLabel formats a Step.AccumulatorStepValue field the way
// AccumulatorStepsListModel.h renders it, for a UI layer to reuse.
func AccumulatorStepLabel(encoded uint8) string {
	use, overrides, value := decodeAccumulatorStepValue(encoded)
	if !use {
		return "off"
	}
	if !overrides {
		return "global"
	}
	if value > 0 {
		return "+" + strconv.Itoa(int(value))
	}
	return strconv.Itoa(int(value))
}
