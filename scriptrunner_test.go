package sequencer

import "testing"

func TestRunScriptAppliesTriggerAndCv(t *testing.T) {
	e := newTeletypeEngineForTest()
	e.scene.CvOutputs[0] = CvOutputConfig{Range: RangeBipolar5V, Scale: -1}

	RunScript(e, []string{
		"TR.P 1 1",
		"GARBAGE LINE",
		"CV 1 16383 0",
	})

	if !e.GateOutput(0) {
		t.Fatal("expected gate 0 set by TR.P")
	}
	if got := e.CvOutput(0); got < 4.99 {
		t.Fatalf("expected CV near range high, got %v", got)
	}
}

func TestAttachScriptRunnerFiresMetroScript(t *testing.T) {
	e := newTeletypeEngineForTest()
	e.scene.MetroScript = "TR.P 2 1"
	e.metroPeriodTicks = 1
	AttachScriptRunner(e)

	e.Tick(1)

	if !e.GateOutput(1) {
		t.Fatal("expected metro script to set gate 1")
	}
}
