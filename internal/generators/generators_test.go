package generators

import "testing"

// TestAphexGoldenVector pins §8.3 scenario 5: given fixed parameters the
// note sequence must exactly match a recorded golden vector. Aphex's
// note computation does not consult the RNG, so the vector is
// reproducible by hand from the algorithm definition in §4.5.
func TestAphexGoldenVector(t *testing.T) {
	p := AlgorithmParameters{
		Type: TypeAphex, Flow: 5, Ornament: 3, Power: 8, Glide: 4, Steps: 16, Seed: 1,
	}
	got := Generate(p).NoteSequence

	want := []float64{-19, 2, 4, 6, 0, -19, 4, 6, 0, 2, -19, 6, 0, 2, 4, -19}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("note[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestGenerateFillsAllVectorsToStepsLength(t *testing.T) {
	p := AlgorithmParameters{Type: TypeTritrance, Flow: 2, Ornament: 1, Power: 4, Steps: 12, Seed: 42}
	sd := Generate(p)

	vectors := map[string][]float64{
		"note":        sd.NoteSequence,
		"gate":        sd.GateSequence,
		"velocity":    sd.VelocitySequence,
		"slide":       sd.SlideSequence,
		"accent":      sd.AccentSequence,
		"probability": sd.ProbabilitySequence,
		"gateOffset":  sd.GateOffsetSequence,
		"isTrill":     sd.IsTrillSequence,
	}
	for name, v := range vectors {
		if len(v) != p.Steps {
			t.Errorf("%s length = %d, want %d", name, len(v), p.Steps)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	p := AlgorithmParameters{Type: TypeMarkov, Flow: 3, Ornament: 2, Power: 5, Glide: 10, Steps: 32, Seed: 7}
	a := Generate(p)
	b := Generate(p)

	for i := range a.NoteSequence {
		if a.NoteSequence[i] != b.NoteSequence[i] {
			t.Fatalf("note[%d] differs across identical seeded runs: %v vs %v", i, a.NoteSequence[i], b.NoteSequence[i])
		}
		if a.GateOffsetSequence[i] != b.GateOffsetSequence[i] {
			t.Fatalf("gateOffset[%d] differs across identical seeded runs", i)
		}
	}
}

func TestSpectrumLength(t *testing.T) {
	p := AlgorithmParameters{Type: TypeTest, Flow: 1, Steps: 16, Seed: 3}
	sd := Generate(p)
	if len(sd.Spectrum) != 16/2+1 {
		t.Fatalf("spectrum length = %d, want %d", len(sd.Spectrum), 16/2+1)
	}
	if len(sd.SpectrumOversample) != (2*16)/2+1 {
		t.Fatalf("oversampled spectrum length = %d, want %d", len(sd.SpectrumOversample), (2*16)/2+1)
	}
}
