package sequencer

import "github.com/onoma2/stepseq/internal/teletrack"

// RunScript executes a parsed scene script (or metro script) against
// engine under the scoped active-engine guard, dispatching each valid
// command through the C-ABI shims in scriptbridge.go (§4.10, §6.2).
// Each raw line is parsed with internal/teletrack.ParseCommandLine;
// lines that fail to parse are skipped.
func RunScript(engine *TeletypeTrackEngine, lines []string) {
	WithActiveEngine(engine, func() {
		for _, line := range lines {
			cmd, ok := teletrack.ParseCommandLine(line)
			if !ok {
				continue
			}
			runCommand(cmd)
		}
	})
}

func runCommand(cmd teletrack.Command) {
	switch cmd.Op {
	case teletrack.OpTriggerSet:
		teleTr(cmd.Args[0]-1, int16(cmd.Args[1]))
	case teletrack.OpTriggerPulse:
		teleTrPulse(cmd.Args[0]-1, int16(cmd.Args[1]))
	case teletrack.OpCv:
		teleCv(cmd.Args[0]-1, int16(cmd.Args[1]), cmd.Args[2] != 0)
	case teletrack.OpCvSlew:
		teleCvSlew(cmd.Args[0]-1, int16(cmd.Args[1]))
	case teletrack.OpCvOffset:
		teleCvOff(cmd.Args[0]-1, int16(cmd.Args[1]))
	}
}

// AttachScriptRunner wires engine's OnMetro hook to run its currently
// selected scene's metro script on each metro firing and, if the scene's
// Boot flag is set, runs the fixed boot script (TR.PULSE 1 10) once,
// immediately. ResetMetroOnLoad is not consulted, and the boot script is
// not run again on Reset or ChangePattern.
func AttachScriptRunner(engine *TeletypeTrackEngine) {
	engine.OnMetro = func(tick Tick) {
		RunScript(engine, engine.scene.metroScriptLines())
	}
	if engine.scene.Boot {
		RunScript(engine, []string{"TR.PULSE 1 10"})
	}
}

// metroScriptLines splits the scene's unparsed metro script text into
// lines for RunScript.
func (s *TeletypeScene) metroScriptLines() []string {
	return splitScriptLines(s.MetroScript)
}

func splitScriptLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return lines
}
