package teletrack

import (
	"bytes"
	"strings"
	"testing"
)

// TestWriteParseWriteRoundTrip pins §8.2's round-trip law: writing a
// track, reparsing it, and writing it again must produce byte-identical
// output on the second emission.
func TestWriteParseWriteRoundTrip(t *testing.T) {
	tr := NewTrack()
	tr.Name = "acid-test"
	tr.Scenes[0].Scripts[0] = []string{"TR.P 1 1", "CV 1 V 2.5"}
	tr.Scenes[0].MetroScript = []string{"TR.TOG 1"}
	tr.Scenes[0].IO.TriggerInputs[0] = "CLOCK"
	tr.Scenes[0].IO.CvInputs[0] = "CV1"
	tr.Scenes[0].CvOutputs[0].RangeName = "10V Unipolar"
	tr.Scenes[0].CvOutputs[0].OffsetMv = -120
	tr.Scenes[0].CvOutputs[0].Scale = "Major"
	tr.Scenes[0].CvOutputs[0].Root = "C"
	tr.Scenes[0].PatternA.Len = 16
	tr.Scenes[0].PatternA.Wrap = 1
	tr.Scenes[0].PatternA.Values[0] = 5
	tr.Scenes[0].PatternA.Values[17] = -3
	tr.Scenes[19].MidiPort = "USB"
	tr.Scenes[19].MidiChannel = "3"

	var first bytes.Buffer
	if err := Write(&first, tr); err != nil {
		t.Fatalf("first Write: %v", err)
	}

	reparsed, err := Parse(strings.NewReader(first.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var second bytes.Buffer
	if err := Write(&second, reparsed); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	if first.String() != second.String() {
		t.Fatalf("round trip not byte-identical:\n--- first ---\n%s\n--- second ---\n%s", first.String(), second.String())
	}
}

func TestParsePreservesPatternValuesAcrossChunks(t *testing.T) {
	tr := NewTrack()
	tr.Scenes[3].PatternB.Values[0] = 1
	tr.Scenes[3].PatternB.Values[16] = 2
	tr.Scenes[3].PatternB.Values[32] = 3
	tr.Scenes[3].PatternB.Values[48] = 4

	var buf bytes.Buffer
	if err := Write(&buf, tr); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := got.Scenes[3].PatternB
	if p.Values[0] != 1 || p.Values[16] != 2 || p.Values[32] != 3 || p.Values[48] != 4 {
		t.Fatalf("chunk values not preserved: %+v", p.Values)
	}
}

func TestParseSkipsInvalidLines(t *testing.T) {
	input := "NAME foo\n#IO\nSLOT 1\nGARBAGE LINE HERE\nBOOT 1\n#PATS\nSLOT 1\nP1 LEN 8\n"
	tr, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tr.Name != "foo" {
		t.Fatalf("name = %q, want foo", tr.Name)
	}
	if !tr.Scenes[0].Boot {
		t.Fatal("expected BOOT to parse despite preceding garbage line")
	}
	if tr.Scenes[0].PatternA.Len != 8 {
		t.Fatalf("PatternA.Len = %d, want 8", tr.Scenes[0].PatternA.Len)
	}
}

func TestScriptHeaderRouting(t *testing.T) {
	input := "NAME x\n#S2-3\nTR.P 1 1\n#M2\nTR.TOG 2\n"
	tr, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tr.Scenes[1].Scripts[2]) != 1 || tr.Scenes[1].Scripts[2][0] != "TR.P 1 1" {
		t.Fatalf("scene 2 script 3 = %v", tr.Scenes[1].Scripts[2])
	}
	if len(tr.Scenes[1].MetroScript) != 1 || tr.Scenes[1].MetroScript[0] != "TR.TOG 2" {
		t.Fatalf("scene 2 metro = %v", tr.Scenes[1].MetroScript)
	}
}
