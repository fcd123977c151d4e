// seqdump prints the parsed structure of a TeletypeTrack file to
// stdout, for inspecting scene I/O routing, CV output configuration
// and pattern contents without a UI.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/onoma2/stepseq/internal/teletrack"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("seqdump: ")

	if len(os.Args) <= 1 {
		log.Fatal("Missing track filename")
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	track, err := teletrack.Parse(f)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("NAME %s\n", track.Name)
	for i, scene := range track.Scenes {
		if !sceneInUse(scene) {
			continue
		}
		fmt.Printf("\nSLOT %d\n", i+1)
		dumpIO(scene)
		dumpScripts(i+1, scene)
		dumpPattern("P1", scene.PatternA)
		dumpPattern("P2", scene.PatternB)
	}
}

func sceneInUse(s teletrack.Scene) bool {
	if s.PatternA.Len > 0 || s.PatternB.Len > 0 {
		return true
	}
	for _, script := range s.Scripts {
		if len(script) > 0 {
			return true
		}
	}
	return len(s.MetroScript) > 0
}

func dumpIO(s teletrack.Scene) {
	for i, v := range s.IO.TriggerInputs {
		if v != "" {
			fmt.Printf("  TI-TR%d %s\n", i+1, v)
		}
	}
	for i, v := range s.IO.TriggerOutputs {
		if v != "" {
			fmt.Printf("  TO-TR%d %s\n", i+1, v)
		}
	}
	for i, cfg := range s.CvOutputs {
		fmt.Printf("  CV%d %s OFF=%dmV Q=%s ROOT=%s\n", i+1, cfg.RangeName, cfg.OffsetMv, cfg.Scale, cfg.Root)
	}
}

func dumpScripts(slot int, s teletrack.Scene) {
	for i, lines := range s.Scripts {
		if len(lines) == 0 {
			continue
		}
		fmt.Printf("  #S%d-%d\n", slot, i+1)
		for _, l := range lines {
			fmt.Printf("    %s\n", l)
		}
	}
	if len(s.MetroScript) > 0 {
		fmt.Printf("  #M%d\n", slot)
		for _, l := range s.MetroScript {
			fmt.Printf("    %s\n", l)
		}
	}
}

func dumpPattern(label string, p teletrack.Pattern) {
	if p.Len == 0 {
		return
	}
	fmt.Printf("  %s LEN=%d WRAP=%d START=%d END=%d\n", label, p.Len, p.Wrap, p.Start, p.End)
	fmt.Printf("  %s VALS %v\n", label, p.Values[:p.Len])
}
