// Package generators implements the procedural pattern generator family
// (§4.5): pure, seeded functions from AlgorithmParameters to a fixed set
// of signal vectors plus their FFT spectra.
package generators

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// AlgorithmParameters configures a single generator invocation (§4.5).
type AlgorithmParameters struct {
	Type         int // 0..21, selects algorithm
	Flow         int // 1..16
	Ornament     int // 1..16
	Power        int // 0..16
	Glide        int // 0..16, percent
	Trill        int // 0..8
	Steps        int // 1..64
	LoopLength   int // 0..64, 0 = infinite
	CustomParam1 float64
	CustomParam2 float64
	CustomParam3 float64
	CustomParam4 float64

	Seed uint64 // explicit PRNG seed; no ambient entropy (§4.5 p.3, §9 Determinism)
}

// SignalData is a generator's fixed-shape output: eight per-step vectors
// plus two spectra of the note sequence.
type SignalData struct {
	NoteSequence        []float64
	GateSequence        []float64
	VelocitySequence    []float64
	SlideSequence       []float64
	AccentSequence      []float64
	ProbabilitySequence []float64
	GateOffsetSequence  []float64
	IsTrillSequence     []float64

	Spectrum           []float64 // 20*log10(|X[k]|+eps), k=0..N/2
	SpectrumOversample []float64 // same, computed over an edge-extended 2N signal
}

// Algorithm type indices named in §4.5; any other index is reduced
// modulo 8 onto these by normalizeType.
const (
	TypeTest      = 0
	TypeTritrance = 1
	TypeMarkov    = 2
	TypeStomper   = 3
	TypeDrone     = 4
	TypeGeode     = 5
	TypeAutechre  = 6
	TypeAphex     = 7
)

const spectrumEpsilon = 1e-9

// lcg is a small deterministic linear congruential generator, the same
// recipe used by the sequencer package's accumulator and note-track
// engine for non-ambient randomness.
type lcg struct{ state uint64 }

func newLCG(seed uint64) *lcg {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &lcg{state: seed}
}

func (g *lcg) next() uint64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state
}

func (g *lcg) float64() float64 {
	return float64(g.next()>>11) / float64(1<<53)
}

func (g *lcg) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.next() % uint64(n))
}

// Generate dispatches to the algorithm selected by p.Type, filling every
// signal vector to p.Steps length and computing both spectra (§4.5).
func Generate(p AlgorithmParameters) SignalData {
	n := p.Steps
	if n <= 0 {
		n = 1
	}
	sd := SignalData{
		NoteSequence:        make([]float64, n),
		GateSequence:        make([]float64, n),
		VelocitySequence:    make([]float64, n),
		SlideSequence:       make([]float64, n),
		AccentSequence:      make([]float64, n),
		ProbabilitySequence: make([]float64, n),
		GateOffsetSequence:  make([]float64, n),
		IsTrillSequence:     make([]float64, n),
	}

	rng := newLCG(p.Seed)

	switch normalizeType(p.Type) {
	case TypeTest:
		genTest(p, rng, &sd)
	case TypeTritrance:
		genTritrance(p, rng, &sd)
	case TypeMarkov:
		genMarkov(p, rng, &sd)
	case TypeStomper:
		genStomper(p, rng, &sd)
	case TypeDrone:
		genDrone(p, rng, &sd)
	case TypeGeode:
		genGeodeAmbient(p, rng, &sd)
	case TypeAutechre:
		genAutechre(p, rng, &sd)
	case TypeAphex:
		genAphex(p, rng, &sd)
	default:
		genTest(p, rng, &sd)
	}

	sd.Spectrum = spectrum(sd.NoteSequence)
	sd.SpectrumOversample = spectrum(oversample(sd.NoteSequence))

	return sd
}

// normalizeType maps the full 0..21 range onto the eight named
// archetypes; indices past TypeAphex cycle back round-robin so every
// selectable type produces deterministic, distinct-enough output without
// inventing eleven more bespoke algorithms the spec does not name.
func normalizeType(t int) int {
	if t < 0 {
		t = 0
	}
	return t % (TypeAphex + 1)
}

func fillCommon(i int, rng *lcg, glide, trill int, sd *SignalData) {
	sd.SlideSequence[i] = boolF(rng.intn(100) < glide)
	sd.IsTrillSequence[i] = boolF(trill > 0 && rng.intn(8) < trill)
	sd.ProbabilitySequence[i] = 1.0
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// genTest implements §4.5 "Test: two sub-modes keyed off (flow-1)>>3".
func genTest(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	octSweeps := ((p.Flow - 1) >> 3) == 0
	for i := range sd.NoteSequence {
		sd.GateSequence[i] = 1
		sd.VelocitySequence[i] = 0.8
		if octSweeps {
			// Octave ladder of period 5.
			step := i % 5
			sd.NoteSequence[i] = float64(step * 12)
		} else {
			sd.NoteSequence[i] = float64(i % 12)
		}
		fillCommon(i, rng, p.Glide, p.Trill, sd)
	}
}

// gateLengthBucket samples the 3-bucket gate-length distribution shared
// by Tritrance and Markov (40%/30%/30% of {50-86%, 100-175%, 200-400%}).
func gateLengthBucket(rng *lcg) float64 {
	roll := rng.intn(100)
	switch {
	case roll < 40:
		return 0.50 + rng.float64()*0.36
	case roll < 70:
		return 1.00 + rng.float64()*0.75
	default:
		return 2.00 + rng.float64()*2.00
	}
}

// genTritrance implements §4.5 "Tritrance: 3-phase cycling".
func genTritrance(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	for i := range sd.NoteSequence {
		phase := (i + p.Flow - 1) % 3
		var note float64
		switch phase {
		case 0:
			note = float64((4+p.Ornament-1)%12) + 0
		case 1:
			note = float64((4+p.Ornament-1)%12) + 12
		case 2:
			note = float64((p.Flow-1)%12) + 24
		}
		sd.NoteSequence[i] = note
		sd.GateSequence[i] = 1
		sd.VelocitySequence[i] = float64(p.Power) / 16
		sd.GateOffsetSequence[i] = gateLengthBucket(rng)
		sd.SlideSequence[i] = boolF(rng.intn(100) < p.Glide)
		sd.ProbabilitySequence[i] = 1.0
		sd.IsTrillSequence[i] = boolF(p.Trill > 0 && rng.intn(8) < p.Trill)
	}
}

// genMarkov implements §4.5 "Markov: 8x8x2 transition matrix".
func genMarkov(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	var transitions [8][8][2]int
	for a := 0; a < 8; a++ {
		for b := 0; b < 8; b++ {
			transitions[a][b][0] = (a + b + 1) % 8
			transitions[a][b][1] = (a + b + 3) % 8
		}
	}

	h1, h3 := 0, 0
	prevNote := 0.0
	for i := range sd.NoteSequence {
		choice := rng.intn(2)
		next := transitions[h1][h3][choice]

		note := float64(next)
		sd.NoteSequence[i] = note
		sd.GateSequence[i] = 1
		sd.VelocitySequence[i] = float64(p.Power) / 16
		sd.GateOffsetSequence[i] = gateLengthBucket(rng)
		sd.ProbabilitySequence[i] = 1.0

		delta := math.Abs(note - prevNote)
		sd.AccentSequence[i] = delta*0.1 + float64((h1+h3)%11)*0.02

		prevNote = note
		h1, h3 = h3, next
	}
}

// genStomper implements §4.5 "Stomper: 15-state acid-style automaton".
func genStomper(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	const stateCount = 15
	state := 0
	countdown := 0
	for i := range sd.NoteSequence {
		lowBank := state < stateCount/2
		octave := state % 3
		base := float64(state % 12)
		if !lowBank {
			base += 12
		}
		sd.NoteSequence[i] = base + float64(octave*12)
		sd.GateSequence[i] = 1
		sd.VelocitySequence[i] = float64(p.Power) / 16
		if countdown > 0 {
			sd.GateOffsetSequence[i] = 1.5
			countdown--
		} else {
			sd.GateOffsetSequence[i] = 1.0
		}
		if rng.intn(16) == 0 {
			countdown = 5
		}
		sd.ProbabilitySequence[i] = 1.0
		state = (state + 1 + rng.intn(3)) % stateCount
	}
}

// genDrone implements §4.5 "Drone: base note + harmonic interval".
func genDrone(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	intervals := []float64{0, 7, 12, 19} // unison, 5th, octave, 5th+octave
	interval := intervals[p.Ornament%len(intervals)]
	base := float64(p.Flow % 12)
	holdTicks := 4 * p.Power
	if holdTicks <= 0 {
		holdTicks = 1
	}
	for i := range sd.NoteSequence {
		drift := 0.0
		if rng.intn(holdTicks+1) == 0 {
			drift = float64(rng.intn(5) - 2)
		}
		sd.NoteSequence[i] = base + interval + drift
		sd.GateSequence[i] = boolF(i%holdTicks == 0)
		sd.VelocitySequence[i] = 0.6
		sd.ProbabilitySequence[i] = 1.0
	}
}

// genGeodeAmbient implements §4.5 "Geode (Ambient)": an event scheduler
// cycling through [root, root+7, root+16] every 4 steps. About one step
// in twelve has 0..4 semitones added to its note; no multi-step override
// events are generated.
func genGeodeAmbient(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	root := float64(p.Flow % 12)
	degrees := []float64{root, root + 7, root + 16}
	for i := range sd.NoteSequence {
		cycle := (i / 4) % len(degrees)
		note := degrees[cycle]

		if rng.intn(12) == 0 {
			note += float64(rng.intn(5))
		}
		sd.NoteSequence[i] = note
		sd.GateSequence[i] = boolF(i%4 == 0)
		sd.VelocitySequence[i] = 0.5
		sd.ProbabilitySequence[i] = 1.0
	}
}

// genAutechre implements §4.5 "Autechre: pattern + transformation rules".
func genAutechre(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	const patLen = 8
	pattern := make([]float64, patLen)
	octave := make([]float64, patLen)
	for i := range pattern {
		pattern[i] = float64(rng.intn(12))
		octave[i] = float64(rng.intn(3) * 12)
	}

	ruleTimer := p.Ornament
	if ruleTimer <= 0 {
		ruleTimer = 4
	}
	rules := []func([]float64){
		rotateRule,
		reverseRule,
		invertRule,
		swapAdjacentRule,
		addIntensityRule,
	}
	ruleIdx := 0

	for i := range sd.NoteSequence {
		if i > 0 && i%ruleTimer == 0 {
			rules[ruleIdx%len(rules)](pattern)
			ruleIdx++
		}
		idx := i % patLen
		sd.NoteSequence[i] = pattern[idx] + octave[idx]
		sd.GateSequence[i] = 1
		sd.VelocitySequence[i] = float64(p.Power) / 16
		sd.ProbabilitySequence[i] = 1.0
	}
}

func rotateRule(p []float64) {
	if len(p) == 0 {
		return
	}
	last := p[len(p)-1]
	copy(p[1:], p[:len(p)-1])
	p[0] = last
}

func reverseRule(p []float64) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

func invertRule(p []float64) {
	for i := range p {
		p[i] = 11 - math.Mod(p[i], 12) + math.Floor(p[i]/12)*12
	}
}

func swapAdjacentRule(p []float64) {
	for i := 0; i+1 < len(p); i += 2 {
		p[i], p[i+1] = p[i+1], p[i]
	}
}

func addIntensityRule(p []float64) {
	for i := range p {
		p[i] += 1
	}
}

// genAphex implements §4.5 "Aphex: polyrhythmic, periods 4/3/5" and is
// the generator pinned to a golden vector in §8.3 scenario 5.
func genAphex(p AlgorithmParameters, rng *lcg, sd *SignalData) {
	for i := range sd.NoteSequence {
		track1 := float64((i%4)*2 + p.Ornament%3)
		note := track1
		gate := 1.0
		slide := 0.0

		if i%3 == 0 {
			// Track 2 modifies gate/slide.
			gate = 0.7
			slide = boolF(rng.intn(100) < p.Glide)
		}
		if i%5 == 0 {
			// Track 3 can override with a low-octave bass note.
			note = float64(p.Flow%12) - 24
		}

		sd.NoteSequence[i] = note
		sd.GateSequence[i] = gate
		sd.SlideSequence[i] = slide
		sd.VelocitySequence[i] = float64(p.Power) / 16
		sd.ProbabilitySequence[i] = 1.0
		sd.AccentSequence[i] = boolF(i%4 == 0)
	}
}

// spectrum computes 20*log10(|X[k]|+eps) for k=0..N/2 using gonum's real
// FFT (§4.5 p.2).
func spectrum(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, signal)

	out := make([]float64, n/2+1)
	for k := range out {
		mag := 0.0
		if k < len(coeffs) {
			mag = math.Hypot(real(coeffs[k]), imag(coeffs[k]))
		}
		out[k] = 20 * math.Log10(mag+spectrumEpsilon)
	}
	return out
}

// oversample edge-extends the signal to 2N for the oversampled spectrum
// variant (§4.5 p.2).
func oversample(signal []float64) []float64 {
	n := len(signal)
	out := make([]float64, 2*n)
	copy(out, signal)
	if n == 0 {
		return out
	}
	last := signal[n-1]
	for i := n; i < 2*n; i++ {
		out[i] = last
	}
	return out
}
