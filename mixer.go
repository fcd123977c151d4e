package sequencer

// Frame is one rendered instant of every track's outputs, the shape the
// output mixer hands to a hardware DAC driver, cmd/seqplay's audio
// callback, or cmd/seqrender's offline writer (§4.10 Component K).
type Frame struct {
	Gates [ConfigTrackCount]bool
	Cvs   [ConfigTrackCount]Volts
}

// Mixer gathers each track's channel-0 gate/CV into a single per-frame
// snapshot, clamping CV to the mixer's configured output range before
// handoff (§4.10 "Output Mixer").
type Mixer struct {
	Range VoltageRange
}

// NewMixer returns a mixer clamping to a standard 5V bipolar range.
func NewMixer() *Mixer {
	return &Mixer{Range: RangeBipolar5V}
}

// Render samples every track's primary gate/CV output into a Frame.
// Tracks driving more than one output channel (Teletype) are sampled
// only on channel 0 here; the remaining channels are available via
// Track.Engine().CvOutput/GateOutput directly for callers that need
// them.
func (m *Mixer) Render(p *Project) Frame {
	var f Frame
	for i, t := range p.Tracks {
		if t == nil {
			continue
		}
		eng := t.Engine()
		f.Gates[i] = eng.GateOutput(0) && !t.Mute
		v := eng.CvOutput(0)
		f.Cvs[i] = m.clamp(v)
	}
	return f
}

func (m *Mixer) clamp(v Volts) Volts {
	if v < m.Range.Low {
		return m.Range.Low
	}
	if v > m.Range.High {
		return m.Range.High
	}
	return v
}
