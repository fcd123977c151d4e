package sequencer

// FrameRenderer wires a Clock's frame callback to a Mixer, producing
// one Frame of gate/CV outputs per frame tick (§6.4). It is the piece
// that turns the tick/frame loop's side effects on track engines into
// the hardware I/O vector a DAC/GPIO driver would consume.
type FrameRenderer struct {
	Clock *Clock
	Mixer *Mixer

	// OnFrame receives each rendered Frame; a caller wires this to its
	// own DAC/GPIO driver or, for offline rendering, to a trace writer.
	OnFrame func(Frame)
}

// NewFrameRenderer attaches a FrameRenderer to clock, rendering through
// a freshly constructed Mixer.
func NewFrameRenderer(clock *Clock) *FrameRenderer {
	fr := &FrameRenderer{Clock: clock, Mixer: NewMixer()}
	clock.OnFrame = fr.render
	return fr
}

func (fr *FrameRenderer) render(dt float32) {
	if fr.OnFrame == nil {
		return
	}
	fr.OnFrame(fr.Mixer.Render(fr.Clock.Project))
}
