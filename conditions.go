package sequencer

// condition values 0..127 select how Step.Condition gates whether a step
// actually fires, on top of (but evaluated before) GateProbability.
// Evaluated against the engine's per-step history: a per-position
// execution counter (for the Euclidean / every-N family) and the
// per-position previous result (for the pre/not-pre family).
const (
	condNone    = 0
	condFill    = 1
	condNotFill = 2
	condPre     = 3
	condNotPre  = 4
	// 5..124: the "X:Y" every-N family, 12 divisors (Y=2..13) x 10
	// phases (X=1..10), covers the Euclidean-subdivision conditions the
	// spec names (a step configured "2:4" fires on every 4th execution,
	// on the 2nd).
	condEveryNBase = 5
	everyNDivisors = 12
	everyNPhases   = 10
)

// conditionHistory is the per-track-engine state the condition evaluator
// needs: one execution counter and one last-result flag per step
// position (§4.2 "per-condition history").
type conditionHistory struct {
	counter    [noteSequenceStepCount]uint16
	lastResult [noteSequenceStepCount]bool
}

// evaluate decides whether step `pos` fires given its Condition field,
// the engine's fill flag, and this engine's history. It always advances
// the history for `pos` (both branches of a condition roll still count
// as an execution), matching "if false, skip gate but still advance
// pattern cursor" from §4.2 step 1.
func (h *conditionHistory) evaluate(pos int, cond uint8, fillActive bool) bool {
	var result bool

	switch {
	case cond == condNone:
		result = true
	case cond == condFill:
		result = fillActive
	case cond == condNotFill:
		result = !fillActive
	case cond == condPre:
		result = h.lastResult[pos]
	case cond == condNotPre:
		result = !h.lastResult[pos]
	case int(cond) >= condEveryNBase && int(cond) < condEveryNBase+everyNDivisors*everyNPhases:
		offset := int(cond) - condEveryNBase
		divisorIdx := offset / everyNPhases
		phaseIdx := offset % everyNPhases
		divisor := divisorIdx + 2                // 2..13
		phase := phaseIdx % divisor               // wrap phase into [0,divisor)
		n := h.counter[pos] % uint16(divisor)
		result = int(n) == phase
	default:
		result = true
	}

	h.counter[pos]++
	h.lastResult[pos] = result
	return result
}
