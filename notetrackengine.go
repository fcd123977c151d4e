package sequencer

// NoteTrackEngine drives gate + CV for a step sequencer with retriggers,
// probability, slides, accumulator modulation and the experimental
// spread-RTRIG mode (§4.2).
type NoteTrackEngine struct {
	track *Track
	seq   *NoteSequence // bound sequence; re-bound on pattern change
	seqID uint8         // identifies seq for stale-event validation

	fillSeq   *NoteSequence
	fillSeqID uint8

	cursor     int
	direction  int8 // +1 or -1, used by PingPong/RandomWalk
	phaseAccum float64
	barTicks   uint32
	conditions conditionHistory

	gateQueue eventQueue[GateEvent]
	cvQueue   eventQueue[CvEvent]

	gateOutputs [1]bool // Note tracks drive a single gate channel
	cvOutput    Volts
	cvTarget    Volts
	slideActive bool
	slideTau    float32 // seconds, configures the exponential slide rate

	activity bool

	// Routable modulation targets (Component G writes these).
	OctaveOffset     int8
	TransposeOffset  int8
	AccumulatorScale Volts

	rng lcg
}

// NewNoteTrackEngine constructs an engine bound to the track's currently
// selected pattern.
func NewNoteTrackEngine(t *Track) *NoteTrackEngine {
	e := &NoteTrackEngine{track: t, slideTau: 0.05, AccumulatorScale: 1.0 / 12.0}
	e.rng.state = 0xD1B54A32D192ED03
	e.bindSequence()
	return e
}

func (e *NoteTrackEngine) TrackMode() TrackMode { return TrackNote }

func (e *NoteTrackEngine) bindSequence() {
	e.seq = &e.track.NotePatterns[e.track.PatternIndex]
	e.seqID = uint8(e.track.PatternIndex)
	fillIdx := (e.track.PatternIndex + 1) % len(e.track.NotePatterns)
	e.fillSeq = &e.track.NotePatterns[fillIdx]
	e.fillSeqID = uint8(fillIdx)
	e.seq.Clamp()
}

// activeSequence returns whichever sequence (main or fill) is live right
// now, per §4.2 "Fill and mute".
func (e *NoteTrackEngine) activeSequence() (*NoteSequence, uint8) {
	if e.track.ActiveFillFlag() {
		return e.fillSeq, e.fillSeqID
	}
	return e.seq, e.seqID
}

func (e *NoteTrackEngine) Reset() {
	e.cursor = int(e.seq.FirstStep)
	e.direction = 1
	e.phaseAccum = 0
	e.barTicks = 0
	e.conditions = conditionHistory{}
	e.gateQueue.Clear()
	e.cvQueue.Clear()
	e.gateOutputs[0] = false
	e.activity = false
}

func (e *NoteTrackEngine) Restart() {
	e.Reset()
}

// ChangePattern re-binds the engine to the track's current pattern index
// and clears any queued events to prevent stale-gate firing (§4.2,
// §4.8 "Queues must be cleared on ... pattern change for Note tracks").
func (e *NoteTrackEngine) ChangePattern() {
	e.bindSequence()
	e.gateQueue.Clear()
	e.cvQueue.Clear()
}

func (e *NoteTrackEngine) Activity() bool { return e.activity }

func (e *NoteTrackEngine) GateOutput(channel int) bool {
	if channel != 0 {
		return false
	}
	return e.gateOutputs[0]
}

func (e *NoteTrackEngine) CvOutput(channel int) Volts {
	if channel != 0 {
		return 0
	}
	return e.cvOutput
}

func (e *NoteTrackEngine) SequenceProgress() float32 {
	seq, _ := e.activeSequence()
	span := int(seq.LastStep) - int(seq.FirstStep) + 1
	if span <= 0 {
		return 0
	}
	return float32(e.cursor-int(seq.FirstStep)) / float32(span)
}

func (e *NoteTrackEngine) LinkData() *LinkData {
	return &LinkData{Note: e.cvOutput, Gate: e.gateOutputs[0]}
}

func (e *NoteTrackEngine) ReceiveMidi(port int, msg MidiMessage) bool { return false }
func (e *NoteTrackEngine) MonitorMidi(tick Tick, msg MidiMessage)     {}

const ticksPerBar = PPQN * 4

// Tick advances the track's tick grid and, once per divisor boundary,
// the step cursor. It drains due events first per §4.8.
func (e *NoteTrackEngine) Tick(tick Tick) TickResult {
	var result TickResult

	seq, seqID := e.activeSequence()

	for _, ge := range e.gateQueue.DrainDue(tick) {
		if ge.ShouldTickAccumulator {
			if ge.SequenceID == seqID {
				// Ordering guarantee (§4.2.1): tick before computing CV.
				seq.Accumulator.Tick()
				e.cvOutput = ge.BaseNote + Volts(seq.Accumulator.CurrentValue)*ge.AccumScale
				e.cvTarget = e.cvOutput
				e.slideActive = false
				result |= CvUpdate
			}
			// else: stale event, pattern changed since scheduling; the
			// gate still fires but the accumulator tick is suppressed (§7).
		}
		e.gateOutputs[0] = ge.Gate
		e.activity = true
		result |= GateUpdate
	}
	for _, ce := range e.cvQueue.DrainDue(tick) {
		e.cvTarget = ce.Cv
		e.slideActive = ce.Slide
		if !ce.Slide {
			e.cvOutput = ce.Cv
		}
		result |= CvUpdate
	}

	e.barTicks++
	if seq.ResetMeasure > 0 && e.barTicks >= ticksPerBar*uint32(seq.ResetMeasure) {
		e.barTicks = 0
		e.cursor = int(seq.FirstStep)
		e.direction = 1
	}

	mult := seq.ClockMultiplier
	if mult <= 0 {
		mult = 1
	}
	e.phaseAccum += float64(mult)
	if seq.Divisor == 0 {
		return result
	}
	if e.phaseAccum >= float64(seq.Divisor) {
		e.phaseAccum -= float64(seq.Divisor)
		// Play the step under the cursor, then move the cursor on, so the
		// first step played after Reset is FirstStep.
		e.triggerStep(tick, seq, seqID)
		e.advanceStep(seq)
	}

	return result
}

func (e *NoteTrackEngine) advanceStep(seq *NoteSequence) {
	first, last := int(seq.FirstStep), int(seq.LastStep)
	span := last - first + 1
	if span <= 0 {
		e.cursor = first
		return
	}

	switch seq.RunMode {
	case RunForward:
		e.cursor++
		if e.cursor > last {
			e.cursor = first
		}
	case RunReverse:
		e.cursor--
		if e.cursor < first {
			e.cursor = last
		}
	case RunPingPong:
		e.cursor += int(e.direction)
		if e.cursor > last {
			e.cursor = last - 1
			if e.cursor < first {
				e.cursor = first
			}
			e.direction = -1
		} else if e.cursor < first {
			e.cursor = first + 1
			if e.cursor > last {
				e.cursor = last
			}
			e.direction = 1
		}
	case RunRandom:
		e.cursor = first + e.rng.Intn(span)
	case RunRandomWalk:
		step := e.rng.Intn(3) - 1 // -1, 0, +1
		e.cursor += step
		if e.cursor > last {
			e.cursor = last
		} else if e.cursor < first {
			e.cursor = first
		}
	default:
		e.cursor++
		if e.cursor > last {
			e.cursor = first
		}
	}
}

// rollProbability maps a 0..7 level onto a (level+1)/8 chance of true.
func (e *NoteTrackEngine) rollProbability(level int8) bool {
	if level >= 7 {
		return true
	}
	if level <= 0 {
		return e.rng.Intn(8) == 0
	}
	return e.rng.Intn(8) < int(level)+1
}

// triggerStep implements §4.2 "Step evaluation (triggerStep)" for the
// step under the cursor; Tick advances the cursor after it returns.
func (e *NoteTrackEngine) triggerStep(stepStartTick Tick, seq *NoteSequence, seqID uint8) {
	pos := e.cursor
	step := &seq.Steps[pos]

	if !step.Gate {
		e.conditions.evaluate(pos, step.Condition, e.track.Fill)
		return
	}

	if !e.conditions.evaluate(pos, step.Condition, e.track.Fill) {
		return // condition false: skip gate
	}
	if !e.rollProbability(step.GateProbability) {
		return
	}

	stepTicks := Tick(uint32(seq.Divisor))

	usesAccumulator := step.AccumulatorStepValue != 0
	spreadThisStep := usesAccumulator && ConfigExperimentalSpreadRTrigTicks

	baseNote := e.computeBaseNote(seq, step)

	var note Volts
	if usesAccumulator && !spreadThisStep {
		// Burst mode (default): tick once, before CV is calculated, then
		// every retrigger in the step shares this one value (§4.2.1).
		seq.Accumulator.TickWithStepOverride(step.AccumulatorStepValue)
		note = baseNote + Volts(seq.Accumulator.CurrentValue)*e.AccumulatorScale
	} else {
		note = baseNote
	}

	// Retrigger subdivisions.
	r := 1
	if e.rollProbability(step.RetriggerProbability) {
		r = int(step.Retrigger) + 1
	}
	if r < 1 {
		r = 1
	}
	if r > 4 {
		r = 4
	}

	subDuration := uint32(stepTicks) / uint32(r)
	if subDuration == 0 {
		subDuration = 1
	}

	lengthFrac := e.stepLengthFraction(step)

	for sub := 0; sub < r; sub++ {
		subStart := stepStartTick + Tick(uint32(sub)*subDuration)
		e.scheduleSubdivision(subStart, subDuration, lengthFrac, step, baseNote, spreadThisStep, seqID)
	}

	if !spreadThisStep {
		// Single CV event covering the whole step; slide if this step
		// requests it.
		e.cvQueue.Push(CvEvent{Tick: stepStartTick, Cv: note, Slide: step.Slide})
	}
	// In spread mode CV is instead recomputed per gate-on by Tick()'s
	// drain loop, reading ge.BaseNote + the post-tick accumulator value.
}

// stepLengthFraction computes the gate-on fraction of a subdivision from
// Step.Length (0..7) with LengthVariation applied via its own probability
// roll.
func (e *NoteTrackEngine) stepLengthFraction(step *Step) float32 {
	length := int(step.Length)
	if e.rollProbability(step.LengthVariationProbability) {
		length += int(step.LengthVariationRange)
	}
	if length < 0 {
		length = 0
	}
	if length > 7 {
		length = 7
	}
	return float32(length+1) / 8
}

// scheduleSubdivision enqueues the gate on/off pulses for one retrigger
// subdivision, expanding PulseCount/GateMode within it (§3.1 supplemented
// feature, SPEC_FULL.md §13). In spread mode every subdivision's leading
// pulse carries the accumulator tick; in burst mode none of them do (the
// tick already happened in triggerStep).
func (e *NoteTrackEngine) scheduleSubdivision(subStart Tick, subDuration uint32, lengthFrac float32, step *Step, baseNote Volts, spreadThisStep bool, seqID uint8) {
	offset := int32(step.GateOffset)
	start := int64(subStart) + int64(offset)
	if start < int64(subStart)-int64(subDuration) {
		start = int64(subStart) - int64(subDuration)
	}
	gs := Tick(start)

	gateOnTicks := uint32(float32(subDuration) * lengthFrac)
	if gateOnTicks == 0 {
		gateOnTicks = 1
	}
	if gateOnTicks > subDuration {
		gateOnTicks = subDuration
	}

	if step.GateMode == GateModeHold {
		e.pushGateOn(gs, spreadThisStep, seqID, baseNote)
		e.pushGateOff(gs + Tick(gateOnTicks))
		return
	}

	pulses := int(step.PulseCount) + 1
	if pulses < 1 {
		pulses = 1
	}
	pulseDur := gateOnTicks / uint32(pulses)
	if pulseDur == 0 {
		pulseDur = 1
	}

	for p := 0; p < pulses; p++ {
		fire := false
		switch step.GateMode {
		case GateModeAll:
			fire = true
		case GateModeFirst:
			fire = p == 0
		case GateModeFirstLast:
			fire = p == 0 || p == pulses-1
		}
		if !fire {
			continue
		}
		pStart := gs + Tick(uint32(p)*pulseDur)
		dur := pulseDur / 2
		if dur == 0 {
			dur = 1
		}
		e.pushGateOn(pStart, spreadThisStep && p == 0, seqID, baseNote)
		e.pushGateOff(pStart + Tick(dur))
	}
}

func (e *NoteTrackEngine) pushGateOn(t Tick, shouldTick bool, seqID uint8, baseNote Volts) {
	e.gateQueue.Push(GateEvent{
		Tick: t, Gate: true,
		ShouldTickAccumulator: shouldTick,
		SequenceID:            seqID,
		BaseNote:              baseNote,
		AccumScale:            e.AccumulatorScale,
	})
}

func (e *NoteTrackEngine) pushGateOff(t Tick) {
	e.gateQueue.Push(GateEvent{Tick: t, Gate: false})
}

// Update applies CV slide interpolation (§4.8 step 2). dt<=0 is a no-op
// per the §6.1 precondition.
func (e *NoteTrackEngine) Update(dt float32) {
	if dt <= 0 {
		return
	}
	if !e.slideActive {
		e.cvOutput = e.cvTarget
		return
	}
	rate := 1 - expNeg(dt/e.slideTau)
	e.cvOutput += (e.cvTarget - e.cvOutput) * Volts(rate)
}
