// Package geode implements the six-voice polyrhythmic envelope engine
// used as a drone/ambient voice source independent of the step grid
// (§4.6).
package geode

import "math"

const VoiceCount = 6

// Mode selects how a voice's trigger-time velocity is computed.
type Mode uint8

const (
	ModeTransient Mode = iota
	ModeSustain
	ModeCycle
)

// Curve selects the envelope's rise/fall shape.
type Curve uint8

const (
	CurveStep Curve = iota
	CurveLog
	CurveLinear
	CurveSmooth
)

func curveFor(curve float32) Curve {
	switch {
	case curve < -0.5:
		return CurveStep
	case curve < 0:
		return CurveLog
	case curve < 0.5:
		return CurveLinear
	default:
		return CurveSmooth
	}
}

// tuneNum/tuneDen give each voice index a small rational detune ratio
// applied to its time scale, a fixed six-entry table (unison for voice 0,
// simple harmonic ratios thereafter).
var tuneNum = [VoiceCount]int{1, 3, 2, 5, 3, 7}
var tuneDen = [VoiceCount]int{1, 2, 1, 4, 2, 4}

// Voice is one of the engine's six independently triggered envelope
// generators.
type Voice struct {
	Phase            float32
	Divs             int // 1..64
	RepeatsTotal     int // -1..255, -1 = infinite
	RepeatsRemaining int
	StepIndex        int
	Active           bool

	Level       float32
	TargetLevel float32

	RiseTimeMs float32
	FallTimeMs float32

	EnvelopePhase float32
	InAttack      bool

	currentTimeMs float32
}

// Engine holds the six voices and the last-seen measure fraction used to
// derive per-update phase deltas.
type Engine struct {
	Voices [VoiceCount]Voice

	prevMeasureFraction float32
}

// NewEngine returns an engine with all voices idle.
func NewEngine() *Engine {
	return &Engine{}
}

// TriggerVoice resets voice i's phase to 0 and arms it for divs/repeats
// wraps, clearing any in-progress envelope (§4.6 "Triggering").
func (e *Engine) TriggerVoice(i int, divs int, repeats int) {
	if i < 0 || i >= VoiceCount {
		return
	}
	v := &e.Voices[i]
	v.Phase = 0
	v.Divs = divs
	v.RepeatsTotal = repeats
	v.RepeatsRemaining = repeats
	v.StepIndex = 0
	v.Active = true
	v.Level = 0
	v.TargetLevel = 0
	v.EnvelopePhase = 0
	v.InAttack = false
}

// TriggerAllVoices fans TriggerVoice out to every voice.
func (e *Engine) TriggerAllVoices(divs int, repeats int) {
	for i := range e.Voices {
		e.TriggerVoice(i, divs, repeats)
	}
}

// physics computes a wrap's trigger-time velocity per the selected mode
// (§4.6 step 3).
func physics(stepIndex int, run float32, mode Mode) float32 {
	switch mode {
	case ModeTransient:
		cycle := 1 + int(run*7)
		if cycle < 1 {
			cycle = 1
		}
		if stepIndex%cycle == 0 {
			return 1.0
		}
		return 0.3
	case ModeSustain:
		damp := 0.05 + 0.20*run
		return float32(math.Pow(float64(1-damp), float64(stepIndex)))
	case ModeCycle:
		rate := 1 + 3*run
		burstProgress := float32(stepIndex%8) / 8
		return 0.5 + 0.5*float32(math.Sin(float64(burstProgress*rate*2*math.Pi)))
	default:
		return 0
	}
}

// timeParamToMs maps a 0..1 time knob logarithmically onto 5ms..5000ms.
func timeParamToMs(time float32) float32 {
	if time < 0 {
		time = 0
	}
	if time > 1 {
		time = 1
	}
	const lo, hi = 5.0, 5000.0
	return float32(lo * math.Pow(hi/lo, float64(time)))
}

// shapeUp/shapeDown apply a Curve to a 0..1 envelope phase, producing the
// attack/decay interpolation fraction respectively.
func shapeUp(c Curve, t float32) float32 {
	switch c {
	case CurveStep:
		if t >= 1 {
			return 1
		}
		return 0
	case CurveLog:
		return float32(1 - math.Pow(1-float64(t), 2))
	case CurveSmooth:
		return t * t * (3 - 2*t)
	default: // CurveLinear
		return t
	}
}

func shapeDown(c Curve, t float32) float32 {
	return 1 - shapeUp(c, t)
}

// Update advances every active voice by one ~1kHz tick (§4.6 "Update").
// dtMs is the elapsed time in milliseconds since the previous call;
// measureFraction is the current position (0..1) within the running
// musical measure.
func (e *Engine) Update(dtMs float32, measureFraction float32, time float32, intone float32, ramp float32, curve float32, run float32, mode Mode) {
	measureDelta := measureFraction - e.prevMeasureFraction
	for measureDelta < 0 {
		measureDelta += 1
	}
	e.prevMeasureFraction = measureFraction

	shape := curveFor(curve)

	for i := range e.Voices {
		v := &e.Voices[i]
		if !v.Active {
			continue
		}

		v.Phase += measureDelta * float32(v.Divs)
		wrapped := false
		for v.Phase >= 1 {
			v.Phase -= 1
			wrapped = true
			if v.RepeatsTotal >= 0 {
				v.RepeatsRemaining--
				if v.RepeatsRemaining < 0 {
					v.Active = false
					break
				}
			}
		}
		if !v.Active {
			continue
		}

		if wrapped {
			v.TargetLevel = physics(v.StepIndex, run, mode)
			v.StepIndex++

			scale := float32(math.Pow(2, float64(intone*(float32(i)-3.5)/5))) * float32(tuneNum[i]) / float32(tuneDen[i])
			totalMs := timeParamToMs(time) * scale
			rampClamped := ramp
			if rampClamped < 0.01 {
				rampClamped = 0.01
			}
			if rampClamped > 0.99 {
				rampClamped = 0.99
			}
			v.RiseTimeMs = totalMs * rampClamped
			v.FallTimeMs = totalMs - v.RiseTimeMs
			v.EnvelopePhase = 0
			v.InAttack = true
			v.currentTimeMs = v.RiseTimeMs
		}

		if v.currentTimeMs <= 0 {
			v.currentTimeMs = 1
		}
		v.EnvelopePhase += dtMs / v.currentTimeMs
		if v.EnvelopePhase >= 1 {
			v.EnvelopePhase = 1
			if v.InAttack {
				v.InAttack = false
				v.EnvelopePhase = 0
				v.currentTimeMs = v.FallTimeMs
				if v.currentTimeMs <= 0 {
					v.currentTimeMs = 1
				}
			}
		}

		if v.InAttack {
			v.Level = shapeUp(shape, v.EnvelopePhase) * v.TargetLevel
		} else {
			v.Level = shapeDown(shape, v.EnvelopePhase) * v.TargetLevel
		}
	}
}

// Mix returns the JF-style mix rule: max over voices of level_i/(i+1),
// de-emphasizing higher-indexed voices (§4.6 step 6, §8.1 invariant 6).
func (e *Engine) Mix() float32 {
	var mix float32
	for i, v := range e.Voices {
		m := v.Level / float32(i+1)
		if m > mix {
			mix = m
		}
	}
	return mix
}

// OutputRaw maps the mixed level onto a 14-bit DAC range offset by
// offsetRaw (§4.6 "Output").
func (e *Engine) OutputRaw(offsetRaw int32) int32 {
	mix := e.Mix()
	return offsetRaw + int32(mix*(16383-float32(offsetRaw)))
}

// VoiceOutputRaw is OutputRaw's per-voice equivalent, used by a caller
// that wants individual voice monitoring rather than the mixed output.
func (e *Engine) VoiceOutputRaw(i int, offsetRaw int32) int32 {
	if i < 0 || i >= VoiceCount {
		return offsetRaw
	}
	level := e.Voices[i].Level
	return offsetRaw + int32(level*(16383-float32(offsetRaw)))
}
