package sequencer

// resolveScale implements the scale-inheritance chain: sequence.Scale
// (-1 inherits) falls back to the owning project's scale selection.
func (e *NoteTrackEngine) resolveScale(seq *NoteSequence) *Scale {
	idx := seq.Scale
	if idx < 0 {
		idx = e.projectScale()
	}
	return ScaleAt(idx)
}

func (e *NoteTrackEngine) projectScale() int8 {
	if e.track.Project != nil {
		return e.track.Project.Scale
	}
	return ScaleChromatic
}

func (e *NoteTrackEngine) resolveRootNote(seq *NoteSequence) int8 {
	if seq.RootNote >= 0 {
		return seq.RootNote
	}
	if e.track.Project != nil {
		return e.track.Project.RootNote
	}
	return 0
}

// computeBaseNote computes a step's pitch before any accumulator
// contribution: scale/root quantization, note variation, octave/transpose
// offsets and harmony-role re-quantization (§4.2 steps 3-4).
func (e *NoteTrackEngine) computeBaseNote(seq *NoteSequence, step *Step) Volts {
	scale := e.resolveScale(seq)
	rootNote := e.resolveRootNote(seq)

	note := int(step.Note)
	if e.rollProbability(step.NoteVariationProbability) {
		note += int(step.NoteVariationRange)
	}

	volts := scale.NoteToVolts(note, rootNote)
	volts += Volts(e.OctaveOffset)
	volts += Volts(e.TransposeOffset) / 12.0

	return e.applyHarmonyRole(seq, step, volts, scale, rootNote)
}

// applyHarmonyRole implements §4.2 step 4: if the resolved role is a
// chord tone, it takes the master track's current note, adds the role's
// fixed semitone offset (third 4, fifth 7, seventh 10, ninth 14) and then
// applies inversion. The result is not re-quantized to the active scale.
func (e *NoteTrackEngine) applyHarmonyRole(seq *NoteSequence, step *Step, volts Volts, scale *Scale, rootNote int8) Volts {
	role := step.HarmonyRoleOverride
	if role == HarmonyUseSequence {
		role = seq.HarmonyRole
	}
	if role == HarmonyNone || role == HarmonyUseSequence {
		return volts
	}
	if seq.HarmonyMaster < 0 || e.track.Project == nil {
		return volts
	}
	master := e.track.Project.trackAt(int(seq.HarmonyMaster))
	if master == nil || master == e.track {
		return volts
	}
	link := master.Engine().LinkData()
	if link == nil {
		return volts
	}

	degreeSemitones := map[HarmonyRole]int{
		HarmonyThird:   4,
		HarmonyFifth:   7,
		HarmonySeventh: 10,
		HarmonyNinth:   14,
	}
	semis, ok := degreeSemitones[role]
	if !ok {
		return volts
	}
	chordNote := Volts(float32(semis) / 12.0)
	out := link.Note + chordNote

	inversion := step.InversionOverride
	if inversion == 0 {
		inversion = seq.Voicing.Inversion
	}
	if inversion > 0 {
		out -= Volts(inversion) // drop the voiced note down `inversion` octaves

		root := e.voicingRoot(seq, scale, rootNote)
		for out < root {
			out += 1
		}
	}

	return out
}

// voicingRoot implements the SPEC_FULL.md §14 Open Question decision:
// RootFromC0=false uses the step's own resolved root, RootFromC0=true
// uses scale-relative C0.
func (e *NoteTrackEngine) voicingRoot(seq *NoteSequence, scale *Scale, rootNote int8) Volts {
	if seq.Voicing.RootFromC0 {
		return scale.NoteToVolts(0, 0)
	}
	return scale.NoteToVolts(0, rootNote)
}
