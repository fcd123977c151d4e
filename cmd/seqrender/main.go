// seqrender drives a Project through a fixed number of ticks offline
// and writes the mixer's per-track gate/CV output as a 16-channel,
// 16-bit PCM WAVE trace (8 CV channels followed by 8 gate channels),
// for inspecting a project's output without a DAC.
package main

import (
	"flag"
	"log"
	"os"

	sequencer "github.com/onoma2/stepseq"
	"github.com/onoma2/stepseq/wav"
)

const (
	traceChannels = 16 // 8 CV + 8 gate
	sampleRate    = 1000
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("seqrender: ")

	out := flag.String("out", "", "output WAVE trace file")
	ticks := flag.Int("ticks", 4*sequencer.PPQN, "number of ticks to render")
	bpm := flag.Float64("bpm", 120, "tempo in beats per minute")
	flag.Parse()

	if *out == "" {
		log.Fatal("missing -out file")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w, err := wav.NewWriter(f, sampleRate, traceChannels)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Finish()

	p := sequencer.NewProject()
	p.TempoBpm = float32(*bpm)
	p.Playing = true

	mixer := sequencer.NewMixer()
	dt := float32(1) / float32(sampleRate)

	samples := make([][]int16, traceChannels)
	for i := range samples {
		samples[i] = make([]int16, 1)
	}

	for i := 0; i < *ticks; i++ {
		p.TickAll(sequencer.Tick(i))
		p.UpdateAll(dt)
		frame := mixer.Render(p)
		for ch := 0; ch < 8; ch++ {
			samples[ch][0] = cvToSample(frame.Cvs[ch])
			samples[8+ch][0] = gateToSample(frame.Gates[ch])
		}
		if err := w.WriteFrame(samples); err != nil {
			log.Fatal(err)
		}
	}
}

func cvToSample(v sequencer.Volts) int16 {
	const fullScale = 10 // +/-10V maps onto the int16 range
	scaled := float32(v) / fullScale * 32767
	if scaled > 32767 {
		scaled = 32767
	}
	if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}

func gateToSample(on bool) int16 {
	if on {
		return 32767
	}
	return 0
}
