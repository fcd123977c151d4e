package sequencer

// TeletypeTrackEngine drives a scripted scene: a metro clock fires at a
// configured period and, between metro firings, the active scene's
// scripts (run by RunScript in scriptrunner.go through the C-ABI shims
// in scriptbridge.go) set this engine's four trigger and four CV channels
// directly (§4.11, §6.2).
type TeletypeTrackEngine struct {
	track *Track
	scene *TeletypeScene

	metroPeriodTicks uint32
	metroAccum       uint32

	gates [4]bool
	cvs   [4]Volts

	// pulseRemainingMs counts down a tele_tr_pulse-scheduled trigger;
	// <=0 means no pulse is pending on that channel.
	pulseRemainingMs [4]float32

	// cvTarget/cvSlewMs/cvSlewEnabled back tele_cv's optional slew
	// (§6.2 "set CV output i target; optionally enable slew").
	cvTarget     [4]Volts
	cvSlewMs     [4]float32
	cvSlewEnabled [4]bool

	activity bool

	// OnMetro is invoked once per metro firing; AttachScriptRunner
	// (scriptrunner.go) wires this to the scene's metro script. Nil until
	// a script runner is attached.
	OnMetro func(tick Tick)
}

// NewTeletypeTrackEngine constructs an engine bound to the track's
// currently selected scene.
func NewTeletypeTrackEngine(t *Track) *TeletypeTrackEngine {
	e := &TeletypeTrackEngine{track: t}
	e.bindScene()
	return e
}

func (e *TeletypeTrackEngine) TrackMode() TrackMode { return TrackTeletype }

func (e *TeletypeTrackEngine) bindScene() {
	e.scene = &e.track.Teletype.Scenes[e.track.PatternIndex]
	e.metroPeriodTicks = e.metroTicks()
}

// metroTicks converts the scene's TimeBase into a tick period, treating
// TimeBaseMs as approximate at the sequencer's nominal PPQN/tempo
// (SyncMetroFromState recomputes it with the same approximation).
func (e *TeletypeTrackEngine) metroTicks() uint32 {
	tb := e.scene.Time
	switch tb.Unit {
	case TimeBaseClock:
		d := uint32(tb.Divisor)
		if d == 0 {
			d = 1
		}
		return d
	default: // TimeBaseMs, approximated at PPQN ticks/beat, 120bpm nominal
		return uint32(float32(e.scene.MetroPeriodMs) * float32(PPQN) / 500)
	}
}

func (e *TeletypeTrackEngine) Reset() {
	e.metroAccum = 0
	e.gates = [4]bool{}
	e.cvs = [4]Volts{}
	e.activity = false
	if e.scene.ResetMetroOnLoad {
		e.metroAccum = 0
	}
}

func (e *TeletypeTrackEngine) Restart() { e.Reset() }

func (e *TeletypeTrackEngine) ChangePattern() {
	e.bindScene()
	e.Reset()
}

func (e *TeletypeTrackEngine) Activity() bool { return e.activity }

func (e *TeletypeTrackEngine) GateOutput(channel int) bool {
	if channel < 0 || channel >= len(e.gates) {
		return false
	}
	return e.gates[channel]
}

func (e *TeletypeTrackEngine) CvOutput(channel int) Volts {
	if channel < 0 || channel >= len(e.cvs) {
		return 0
	}
	return e.cvs[channel]
}

func (e *TeletypeTrackEngine) SequenceProgress() float32 {
	if e.metroPeriodTicks == 0 {
		return 0
	}
	return float32(e.metroAccum) / float32(e.metroPeriodTicks)
}

func (e *TeletypeTrackEngine) LinkData() *LinkData {
	return &LinkData{Note: e.cvs[0], Gate: e.gates[0]}
}

// ReceiveMidi reports whether this scene takes MIDI input: true when the
// scene names a MIDI port and a script runner is attached. The message
// itself is not dispatched to any script.
func (e *TeletypeTrackEngine) ReceiveMidi(port int, msg MidiMessage) bool {
	return e.scene.MidiPort != "" && e.OnMetro != nil
}

func (e *TeletypeTrackEngine) MonitorMidi(tick Tick, msg MidiMessage) {}

// Tick advances the metro accumulator and fires OnMetro on each period
// boundary (§4.11 "metro script runs on its own configured period").
func (e *TeletypeTrackEngine) Tick(tick Tick) TickResult {
	var result TickResult
	if !e.scene.MetroEnabled || e.metroPeriodTicks == 0 {
		return result
	}
	e.metroAccum++
	if e.metroAccum >= e.metroPeriodTicks {
		e.metroAccum = 0
		if e.OnMetro != nil {
			e.OnMetro(tick)
			e.activity = true
			result |= GateUpdate | CvUpdate
		}
	}
	return result
}

// Update advances pulse countdowns and any in-progress CV slew. dt is
// in seconds (§4.1's dt-driven evolution convention used elsewhere in
// the package).
func (e *TeletypeTrackEngine) Update(dt float32) {
	if dt <= 0 {
		return
	}
	dtMs := dt * 1000

	for i := range e.pulseRemainingMs {
		if e.pulseRemainingMs[i] <= 0 {
			continue
		}
		e.pulseRemainingMs[i] -= dtMs
		if e.pulseRemainingMs[i] <= 0 {
			e.pulseRemainingMs[i] = 0
			e.gates[i] = false
		}
	}

	for i := range e.cvs {
		if !e.cvSlewEnabled[i] || e.cvSlewMs[i] <= 0 {
			e.cvs[i] = e.cvTarget[i]
			continue
		}
		rate := 1 - expNeg(dt/(e.cvSlewMs[i]/1000))
		e.cvs[i] += (e.cvTarget[i] - e.cvs[i]) * Volts(rate)
	}
}

// SetGate and SetCv are the engine-side targets for the tele_tr /
// tele_cv C-ABI shims (§6.2): scriptbridge.go calls these, never the
// other way around.
func (e *TeletypeTrackEngine) SetGate(channel int, on bool) {
	if channel < 0 || channel >= len(e.gates) {
		return
	}
	e.gates[channel] = on
	e.pulseRemainingMs[channel] = 0
}

// BeginPulse raises channel's gate and schedules it to auto-clear after
// ms milliseconds, the engine-side target for tele_tr_pulse (§6.2).
func (e *TeletypeTrackEngine) BeginPulse(channel int, ms float32) {
	if channel < 0 || channel >= len(e.gates) {
		return
	}
	e.gates[channel] = true
	e.pulseRemainingMs[channel] = ms
}

// SetCvSlew sets channel's slew time in milliseconds, the engine-side
// target for tele_cv_slew (§6.2).
func (e *TeletypeTrackEngine) SetCvSlew(channel int, ms float32) {
	if channel < 0 || channel >= len(e.cvSlewMs) {
		return
	}
	e.cvSlewMs[channel] = ms
}

// SetCvOffset sets channel's output-config millivolt offset at
// runtime, the engine-side target for tele_cv_off (§6.2 prose).
func (e *TeletypeTrackEngine) SetCvOffset(channel int, mv int16) {
	if channel < 0 || channel >= len(e.scene.CvOutputs) {
		return
	}
	e.scene.CvOutputs[channel].OffsetMv = mv
}

func (e *TeletypeTrackEngine) SetCv(channel int, v Volts, slew bool) {
	if channel < 0 || channel >= len(e.cvs) {
		return
	}
	cfg := e.scene.CvOutputs[channel]
	if cfg.Scale >= 0 {
		v = ScaleAt(cfg.Scale).NoteToVolts(int(v*12), cfg.RootNote)
	}
	lo, hi := cfg.Range.Low, cfg.Range.High
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	target := v + Volts(cfg.OffsetMv)/1000

	e.cvTarget[channel] = target
	e.cvSlewEnabled[channel] = slew
	if !slew {
		e.cvs[channel] = target
	}
}

// CvRaw returns channel's current CV as a 14-bit DAC value, the
// engine-side target for tele_get_cv (§6.2).
func (e *TeletypeTrackEngine) CvRaw(channel int) uint16 {
	if channel < 0 || channel >= len(e.cvs) {
		return 0
	}
	cfg := e.scene.CvOutputs[channel]
	span := cfg.Range.High - cfg.Range.Low
	if span <= 0 {
		return 0
	}
	frac := (e.cvs[channel] - cfg.Range.Low) / span
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return uint16(frac * 16383)
}

// InputState returns the track's external trigger/CV input routing
// state, the engine-side target for tele_get_input_state (§6.2). This
// engine has no hardware input of its own; it always reports false.
func (e *TeletypeTrackEngine) InputState(i int) bool { return false }

// TimeTicks returns the engine's monotonic millisecond timebase, the
// engine-side target for tele_get_ticks (§6.2). It is derived from the
// project's master tick at the same nominal 120bpm metroTicks assumes.
func (e *TeletypeTrackEngine) TimeTicks() uint32 {
	if e.track.Project == nil {
		return 0
	}
	return uint32(uint64(e.track.Project.MasterTick) * 500 / PPQN)
}

// SyncMetroFromState re-derives the metro period from the scene after a
// script mutates MetroPeriodMs/Time, the engine-side target for
// tele_metro_updated (§6.2).
func (e *TeletypeTrackEngine) SyncMetroFromState() {
	e.metroPeriodTicks = e.metroTicks()
}

// ResetMetroTimer restarts the metro accumulator, the engine-side
// target for tele_metro_reset (§6.2).
func (e *TeletypeTrackEngine) ResetMetroTimer() {
	e.metroAccum = 0
}
