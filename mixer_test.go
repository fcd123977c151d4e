package sequencer

import "testing"

func TestMixerRenderSkipsNilTracks(t *testing.T) {
	p := NewProject()
	p.Tracks[3] = nil

	m := NewMixer()
	f := m.Render(p)

	if f.Gates[3] {
		t.Fatal("expected nil track to report no gate")
	}
}

func TestMixerRenderMutesGate(t *testing.T) {
	p := NewProject()
	p.Tracks[0].Mute = true

	m := NewMixer()
	f := m.Render(p)
	if f.Gates[0] {
		t.Fatal("expected muted track's gate to be suppressed")
	}
}

func TestMixerClampsToRange(t *testing.T) {
	m := &Mixer{Range: VoltageRange{Low: -1, High: 1}}
	if got := m.clamp(5); got != 1 {
		t.Fatalf("clamp(5) = %v, want 1", got)
	}
	if got := m.clamp(-5); got != -1 {
		t.Fatalf("clamp(-5) = %v, want -1", got)
	}
	if got := m.clamp(0.5); got != 0.5 {
		t.Fatalf("clamp(0.5) = %v, want 0.5", got)
	}
}
