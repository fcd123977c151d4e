// Package teletrack implements the line-oriented TeletypeTrack file
// format (§4.11): parsing, validation (invalid lines are silently
// skipped per §7) and canonical re-emission. Round-tripping a Track
// through Write -> Parse -> Write must be byte-identical on the second
// emission (§8.2).
package teletrack

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SlotCount is the number of scene slots a Track file holds, matching
// the sequencer package's ConfigPatternCount + ConfigSnapshotCount.
const SlotCount = 20

const patternValueCount = 64
const patternChunkSize = 16

// Pattern is one 64-value pattern slot, stored as four 16-value chunks
// on disk but flat in memory (§4.11 "Patterns of length 64 must accept
// four 16-value chunks").
type Pattern struct {
	Values [patternValueCount]int16
	Len    uint8
	Wrap   uint8
	Start  uint8
	End    uint8

	// chunkCursor counts how many VALS lines Parse has consumed for this
	// pattern so far; it is parse-only bookkeeping, never written out.
	chunkCursor uint8
}

// CvOutputConfig is one scene's per-output range/quantization settings.
type CvOutputConfig struct {
	RangeName string
	OffsetMv  int16
	Scale     string
	Root      string
}

// IORouting is one scene's trigger/CV input-output wiring.
type IORouting struct {
	TriggerInputs  [4]string
	CvInputs       [2]string
	TriggerOutputs [4]string
}

// Scene is one slot's full configuration: four scripts, a metro script,
// two pattern slots, I/O routing, CV output config and timing.
type Scene struct {
	Scripts     [4][]string
	MetroScript []string

	PatternA Pattern
	PatternB Pattern

	IO        IORouting
	CvOutputs [4]CvOutputConfig

	MidiPort    string
	MidiChannel string

	Boot             bool
	TimeBaseUnit     string // "MS" or "CLOCK"
	ClkDiv           uint16
	ClkMultPct       uint16 // 50..150, stored as a percentage per the spec's CLK.MULT 100 example
	ResetMetroOnLoad bool
	MetroEnabled     bool
	MetroPeriodMs    uint32
}

// Track is the in-memory form of a parsed TeletypeTrack file.
type Track struct {
	Name   string
	Scenes [SlotCount]Scene
}

// NewTrack returns a track with SlotCount default-constructed scenes.
func NewTrack() *Track {
	t := &Track{}
	for i := range t.Scenes {
		t.Scenes[i].TimeBaseUnit = "CLOCK"
		t.Scenes[i].ClkDiv = 12
		t.Scenes[i].ClkMultPct = 100
		t.Scenes[i].MidiChannel = "Omni"
		for j := range t.Scenes[i].CvOutputs {
			t.Scenes[i].CvOutputs[j] = CvOutputConfig{RangeName: "5V Bipolar", Scale: "Default"}
		}
	}
	return t
}

// Parse reads a TeletypeTrack file. Invalid or unrecognized lines are
// silently skipped (§7 "Parse errors ... offending line is skipped,
// playback continues").
func Parse(r io.Reader) (*Track, error) {
	t := NewTrack()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var section string  // "", "io", "script", "pats"
	var slot int        // 0-based current slot
	var scriptSlot int   // which of the 4 scripts, or -1 for metro
	var patSlot string   // "P1" or "P2" within #PATS

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "NAME ") {
			t.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "NAME "))
			continue
		}
		if trimmed == "#IO" {
			section = "io"
			continue
		}
		if trimmed == "#PATS" {
			section = "pats"
			continue
		}
		// Script/metro headers: "#S<slot>-<script>" selects scene <slot>'s
		// script <script> (1..4); "#M<slot>" selects scene <slot>'s metro
		// script. This canonical numbering is this codec's own scheme,
		// not a transcription of the hardware's internal slot/script
		// field packing (§4.11's example elides that detail).
		if strings.HasPrefix(trimmed, "#S") {
			if s, script, ok := parseScriptHeader(trimmed); ok {
				section = "script"
				slot = s
				scriptSlot = script
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#M") {
			if idx, err := strconv.Atoi(strings.TrimPrefix(trimmed, "#M")); err == nil && idx >= 1 && idx <= SlotCount {
				section = "script"
				slot = idx - 1
				scriptSlot = -1
			}
			continue
		}

		switch section {
		case "io":
			parseIOLine(t, &slot, trimmed)
		case "script":
			if slot < 0 || slot >= SlotCount {
				continue
			}
			if scriptSlot == -1 {
				t.Scenes[slot].MetroScript = append(t.Scenes[slot].MetroScript, trimmed)
			} else if scriptSlot >= 0 && scriptSlot < 4 {
				t.Scenes[slot].Scripts[scriptSlot] = append(t.Scenes[slot].Scripts[scriptSlot], trimmed)
			}
		case "pats":
			parsePatsLine(t, &slot, &patSlot, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseScriptHeader decodes a "#S<slot>-<script>" header into a 0-based
// scene slot and 0-based script index (0..3). Returns ok=false for
// anything that doesn't match, so Parse can silently skip it per §7.
func parseScriptHeader(header string) (slot int, script int, ok bool) {
	body := strings.TrimPrefix(header, "#S")
	parts := strings.SplitN(body, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	s, err := strconv.Atoi(parts[0])
	if err != nil || s < 1 || s > SlotCount {
		return 0, 0, false
	}
	sc, err := strconv.Atoi(parts[1])
	if err != nil || sc < 1 || sc > 4 {
		return 0, 0, false
	}
	return s - 1, sc - 1, true
}

func parseIOLine(t *Track, slot *int, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "SLOT":
		if len(fields) >= 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= SlotCount {
				*slot = n - 1
			}
		}
	case "TI-TR1", "TI-TR2", "TI-TR3", "TI-TR4":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		idx := int(fields[0][5] - '1')
		t.Scenes[*slot].IO.TriggerInputs[idx] = strings.Join(fields[1:], " ")
	case "TI-IN":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		t.Scenes[*slot].IO.CvInputs[0] = strings.Join(fields[1:], " ")
	case "TO-TR1", "TO-TR2", "TO-TR3", "TO-TR4":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		idx := int(fields[0][5] - '1')
		t.Scenes[*slot].IO.TriggerOutputs[idx] = strings.Join(fields[1:], " ")
	case "CV1", "CV2", "CV3", "CV4":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 3 {
			return
		}
		idx := int(fields[0][2] - '1')
		cfg := &t.Scenes[*slot].CvOutputs[idx]
		switch fields[1] {
		case "RNG":
			cfg.RangeName = strings.Join(fields[2:], " ")
		case "OFF":
			if v, err := strconv.Atoi(fields[2]); err == nil {
				cfg.OffsetMv = int16(v)
			}
		case "Q":
			cfg.Scale = strings.Join(fields[2:], " ")
		case "ROOT":
			cfg.Root = strings.Join(fields[2:], " ")
		}
	case "MIDI":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 3 {
			return
		}
		switch fields[1] {
		case "PORT":
			t.Scenes[*slot].MidiPort = fields[2]
		case "CH":
			t.Scenes[*slot].MidiChannel = fields[2]
		}
	case "BOOT":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		t.Scenes[*slot].Boot = fields[1] != "0"
	case "TIMEBASE":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		t.Scenes[*slot].TimeBaseUnit = fields[1]
	case "CLK.DIV":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		if v, err := strconv.Atoi(fields[1]); err == nil {
			t.Scenes[*slot].ClkDiv = uint16(v)
		}
	case "CLK.MULT":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		if v, err := strconv.Atoi(fields[1]); err == nil {
			t.Scenes[*slot].ClkMultPct = uint16(v)
		}
	case "RESET.METRO":
		if *slot < 0 || *slot >= SlotCount || len(fields) < 2 {
			return
		}
		t.Scenes[*slot].ResetMetroOnLoad = fields[1] != "0"
	}
}

func parsePatsLine(t *Track, slot *int, patSlot *string, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	if fields[0] == "SLOT" {
		if len(fields) >= 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= SlotCount {
				*slot = n - 1
			}
		}
		return
	}
	if *slot < 0 || *slot >= SlotCount || len(fields) < 3 {
		return
	}
	if fields[0] != "P1" && fields[0] != "P2" {
		return
	}
	*patSlot = fields[0]
	pat := patternFor(&t.Scenes[*slot], *patSlot)

	switch fields[1] {
	case "LEN":
		if v, err := strconv.Atoi(fields[2]); err == nil {
			pat.Len = uint8(v)
		}
	case "WRAP":
		if v, err := strconv.Atoi(fields[2]); err == nil {
			pat.Wrap = uint8(v)
		}
	case "START":
		if v, err := strconv.Atoi(fields[2]); err == nil {
			pat.Start = uint8(v)
		}
	case "END":
		if v, err := strconv.Atoi(fields[2]); err == nil {
			pat.End = uint8(v)
		}
	case "VALS":
		vals := fields[2:]
		chunk := int(pat.chunkCursor) % (patternValueCount / patternChunkSize)
		for i := 0; i < patternChunkSize && i < len(vals); i++ {
			if v, err := strconv.Atoi(vals[i]); err == nil {
				pat.Values[chunk*patternChunkSize+i] = int16(v)
			}
		}
		pat.chunkCursor++
	}
}

func patternFor(s *Scene, patSlot string) *Pattern {
	if patSlot == "P2" {
		return &s.PatternB
	}
	return &s.PatternA
}

// Write canonically re-emits a Track in the format Parse reads. Calling
// Parse on Write's output and then Write again must reproduce the same
// bytes (§8.2's round-trip law) — Write never consults chunkCursor or
// any other parse-only bookkeeping, only the Scene/Pattern fields a
// second Parse would itself populate.
func Write(w io.Writer, t *Track) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "NAME %s\n", t.Name); err != nil {
		return err
	}

	if err := writeIOSection(bw, t); err != nil {
		return err
	}
	if err := writeScriptSections(bw, t); err != nil {
		return err
	}
	if err := writePatsSection(bw, t); err != nil {
		return err
	}

	return bw.Flush()
}

func writeIOSection(bw *bufio.Writer, t *Track) error {
	if _, err := fmt.Fprintln(bw, "#IO"); err != nil {
		return err
	}
	for i := range t.Scenes {
		s := &t.Scenes[i]
		if _, err := fmt.Fprintf(bw, "SLOT %d\n", i+1); err != nil {
			return err
		}
		for ti, v := range s.IO.TriggerInputs {
			if v == "" {
				continue
			}
			if _, err := fmt.Fprintf(bw, "TI-TR%d %s\n", ti+1, v); err != nil {
				return err
			}
		}
		if s.IO.CvInputs[0] != "" {
			if _, err := fmt.Fprintf(bw, "TI-IN %s\n", s.IO.CvInputs[0]); err != nil {
				return err
			}
		}
		for to, v := range s.IO.TriggerOutputs {
			if v == "" {
				continue
			}
			if _, err := fmt.Fprintf(bw, "TO-TR%d %s\n", to+1, v); err != nil {
				return err
			}
		}
		for ci, cfg := range s.CvOutputs {
			if cfg.RangeName != "" {
				if _, err := fmt.Fprintf(bw, "CV%d RNG %s\n", ci+1, cfg.RangeName); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "CV%d OFF %d\n", ci+1, cfg.OffsetMv); err != nil {
				return err
			}
			if cfg.Scale != "" {
				if _, err := fmt.Fprintf(bw, "CV%d Q %s\n", ci+1, cfg.Scale); err != nil {
					return err
				}
			}
			if cfg.Root != "" {
				if _, err := fmt.Fprintf(bw, "CV%d ROOT %s\n", ci+1, cfg.Root); err != nil {
					return err
				}
			}
		}
		if s.MidiPort != "" {
			if _, err := fmt.Fprintf(bw, "MIDI PORT %s\n", s.MidiPort); err != nil {
				return err
			}
		}
		if s.MidiChannel != "" {
			if _, err := fmt.Fprintf(bw, "MIDI CH %s\n", s.MidiChannel); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "BOOT %d\n", boolToInt(s.Boot)); err != nil {
			return err
		}
		if s.TimeBaseUnit != "" {
			if _, err := fmt.Fprintf(bw, "TIMEBASE %s\n", s.TimeBaseUnit); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "CLK.DIV %d\n", s.ClkDiv); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "CLK.MULT %d\n", s.ClkMultPct); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "RESET.METRO %d\n", boolToInt(s.ResetMetroOnLoad)); err != nil {
			return err
		}
	}
	return nil
}

func writeScriptSections(bw *bufio.Writer, t *Track) error {
	for i := range t.Scenes {
		s := &t.Scenes[i]
		for sc, lines := range s.Scripts {
			if len(lines) == 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "#S%d-%d\n", i+1, sc+1); err != nil {
				return err
			}
			for _, line := range lines {
				if _, err := fmt.Fprintln(bw, line); err != nil {
					return err
				}
			}
		}
		if len(s.MetroScript) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "#M%d\n", i+1); err != nil {
			return err
		}
		for _, line := range s.MetroScript {
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePatsSection(bw *bufio.Writer, t *Track) error {
	if _, err := fmt.Fprintln(bw, "#PATS"); err != nil {
		return err
	}
	for i := range t.Scenes {
		s := &t.Scenes[i]
		if _, err := fmt.Fprintf(bw, "SLOT %d\n", i+1); err != nil {
			return err
		}
		if err := writePattern(bw, "P1", &s.PatternA); err != nil {
			return err
		}
		if err := writePattern(bw, "P2", &s.PatternB); err != nil {
			return err
		}
	}
	return nil
}

func writePattern(bw *bufio.Writer, label string, pat *Pattern) error {
	if _, err := fmt.Fprintf(bw, "%s LEN %d\n", label, pat.Len); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%s WRAP %d\n", label, pat.Wrap); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%s START %d\n", label, pat.Start); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%s END %d\n", label, pat.End); err != nil {
		return err
	}
	chunks := patternValueCount / patternChunkSize
	for c := 0; c < chunks; c++ {
		if _, err := fmt.Fprintf(bw, "%s VALS", label); err != nil {
			return err
		}
		for i := 0; i < patternChunkSize; i++ {
			if _, err := fmt.Fprintf(bw, " %d", pat.Values[c*patternChunkSize+i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
