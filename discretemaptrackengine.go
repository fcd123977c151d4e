package sequencer

// DiscreteMapTrackEngine drives a moving internal voltage (saw or
// triangle) against a DiscreteMapSequence's 32 stages, firing a gate
// pulse on each first-crossing-wins threshold crossing and quantizing
// the stage's NoteIndex to CV (§4.4).
type DiscreteMapTrackEngine struct {
	track *Track
	seq   *DiscreteMapSequence

	phaseAccum float64
	voltage    float32 // the internal moving voltage
	rising     bool    // triangle direction

	lastStage int // -1 until the first crossing

	cvOutput     Volts
	cvTarget     Volts
	gateQueue    eventQueue[GateEvent]
	gateOn       bool
	slewEnabled  bool
	activity     bool
}

// discreteMapGatePulseTicks is the fixed gate-on width for a crossing
// pulse (§4.4 "gate pulse ~12 ticks").
const discreteMapGatePulseTicks = 12

// NewDiscreteMapTrackEngine constructs an engine bound to the track's
// currently selected pattern.
func NewDiscreteMapTrackEngine(t *Track) *DiscreteMapTrackEngine {
	e := &DiscreteMapTrackEngine{track: t, lastStage: -1}
	e.bindSequence()
	return e
}

func (e *DiscreteMapTrackEngine) TrackMode() TrackMode { return TrackDiscreteMap }

func (e *DiscreteMapTrackEngine) bindSequence() {
	e.seq = &e.track.DiscreteMapPatterns[e.track.PatternIndex]
}

func (e *DiscreteMapTrackEngine) Reset() {
	e.phaseAccum = 0
	e.voltage = e.seq.RangeLow
	e.rising = true
	e.lastStage = -1
	e.gateQueue.Clear()
	e.gateOn = false
	e.activity = false
}

func (e *DiscreteMapTrackEngine) Restart() { e.Reset() }

func (e *DiscreteMapTrackEngine) ChangePattern() {
	e.bindSequence()
	e.gateQueue.Clear()
	e.seq.MarkDirty()
}

func (e *DiscreteMapTrackEngine) Activity() bool { return e.activity }

func (e *DiscreteMapTrackEngine) GateOutput(channel int) bool {
	if channel != 0 {
		return false
	}
	return e.gateOn
}

func (e *DiscreteMapTrackEngine) CvOutput(channel int) Volts {
	if channel != 0 {
		return 0
	}
	return e.cvOutput
}

func (e *DiscreteMapTrackEngine) SequenceProgress() float32 {
	span := e.seq.RangeHigh - e.seq.RangeLow
	if span == 0 {
		return 0
	}
	return (e.voltage - e.seq.RangeLow) / span
}

func (e *DiscreteMapTrackEngine) LinkData() *LinkData {
	return &LinkData{Note: e.cvOutput, Gate: e.gateOn}
}

func (e *DiscreteMapTrackEngine) ReceiveMidi(port int, msg MidiMessage) bool { return false }
func (e *DiscreteMapTrackEngine) MonitorMidi(tick Tick, msg MidiMessage)     {}

// Tick advances the internal moving voltage by one divisor-scaled step
// and scans stages in order for the first threshold crossing (§4.4
// "first-crossing-wins").
func (e *DiscreteMapTrackEngine) Tick(tick Tick) TickResult {
	var result TickResult

	for _, ge := range e.gateQueue.DrainDue(tick) {
		e.gateOn = ge.Gate
		result |= GateUpdate
	}

	if e.seq.ClockSource == ClockExternal || e.seq.Divisor == 0 {
		return result
	}

	prev := e.voltage
	span := e.seq.RangeHigh - e.seq.RangeLow
	step := span / float32(e.seq.Divisor)

	switch e.seq.ClockSource {
	case ClockInternalSaw:
		e.voltage += step
		if e.voltage > e.seq.RangeHigh {
			if e.seq.Loop {
				e.voltage = e.seq.RangeLow
			} else {
				e.voltage = e.seq.RangeHigh
			}
		}
	case ClockInternalTri:
		if e.rising {
			e.voltage += step
			if e.voltage >= e.seq.RangeHigh {
				e.voltage = e.seq.RangeHigh
				e.rising = false
			}
		} else {
			e.voltage -= step
			if e.voltage <= e.seq.RangeLow {
				e.voltage = e.seq.RangeLow
				e.rising = true
			}
		}
	}

	for i := 0; i < discreteMapStageCount; i++ {
		st := &e.seq.Stages[i]
		if st.Direction == DirOff {
			continue
		}
		th := e.seq.ThresholdAt(i)
		crossedRise := prev < th && e.voltage >= th
		crossedFall := prev > th && e.voltage <= th
		fire := (st.Direction == DirRise && crossedRise) ||
			(st.Direction == DirFall && crossedFall) ||
			(st.Direction == DirBoth && (crossedRise || crossedFall))
		if !fire {
			continue
		}
		e.lastStage = i
		e.fireStage(tick, st)
		result |= CvUpdate
		break // first-crossing-wins: stop scanning after the first hit
	}

	return result
}

func (e *DiscreteMapTrackEngine) fireStage(tick Tick, st *Stage) {
	scale := ScaleAt(e.scaleIndex())
	// Root only applies under a chromatic scale (§4.4); a modal scale's
	// note table already encodes its own tonal center.
	e.cvTarget = scale.NoteToVolts(int(st.NoteIndex), 0)
	if scale.IsChromatic {
		e.cvTarget += Volts(e.rootNote()) / 12
	}
	if !e.seq.SlewEnabled {
		e.cvOutput = e.cvTarget
	}
	e.activity = true
	e.gateQueue.Push(GateEvent{Tick: tick, Gate: true})
	e.gateQueue.Push(GateEvent{Tick: tick + discreteMapGatePulseTicks, Gate: false})
}

func (e *DiscreteMapTrackEngine) scaleIndex() int8 {
	if e.seq.ScaleSource == ScaleSourceTrack {
		return ScaleChromatic // track-local scale override not yet surfaced beyond chromatic
	}
	if e.track.Project != nil {
		return e.track.Project.Scale
	}
	return ScaleChromatic
}

func (e *DiscreteMapTrackEngine) rootNote() int8 {
	if e.seq.ScaleSource == ScaleSourceTrack {
		return e.seq.RootNote
	}
	if e.track.Project != nil {
		return e.track.Project.RootNote
	}
	return 0
}

// Update applies slew when enabled, reusing the exponential approach
// shared with Note-track CV slide (§4.4, §9 DESIGN NOTES shared helper).
func (e *DiscreteMapTrackEngine) Update(dt float32) {
	if dt <= 0 {
		return
	}
	if !e.seq.SlewEnabled {
		e.cvOutput = e.cvTarget
		return
	}
	const slewTau = 0.03
	rate := 1 - expNeg(dt/slewTau)
	e.cvOutput += (e.cvTarget - e.cvOutput) * Volts(rate)
}
