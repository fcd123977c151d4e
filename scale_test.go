package sequencer

import "testing"

func TestScaleAtClampsOutOfRangeIndices(t *testing.T) {
	if got := ScaleAt(-1); got.Name != "Chromatic" {
		t.Fatalf("expected negative index to clamp to Chromatic, got %s", got.Name)
	}
	if got := ScaleAt(127); got.Name != builtinScales[len(builtinScales)-1].Name {
		t.Fatalf("expected overflow index to clamp to the last scale, got %s", got.Name)
	}
}

func TestNoteToVoltsOneVoltPerOctave(t *testing.T) {
	s := ScaleAt(ScaleChromatic)
	low := s.NoteToVolts(0, 0)
	high := s.NoteToVolts(12, 0)
	if high-low != 1.0 {
		t.Fatalf("expected one octave to be 1.0V, got %v", high-low)
	}
}

func TestNoteToVoltsWrapsNegativeIndices(t *testing.T) {
	s := ScaleAt(ScaleMajor)
	v := s.NoteToVolts(-1, 0)
	// The top degree one octave down, computed in semitones so the
	// float32 rounding matches NoteToVolts's semitone/12 conversion.
	vWrapped := Volts(float32(int(s.notes[len(s.notes)-1])-12) / 12.0)
	if v != vWrapped {
		t.Fatalf("expected negative note index to wrap down an octave: got %v want %v", v, vWrapped)
	}
}

func TestFloorDivMatchesEuclideanExpectation(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{7, 3, 2},
		{-7, 3, -3},
		{-1, 7, -1},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Fatalf("floorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
