// A very simple WAVE file writer, generalized to an arbitrary channel
// count so a render trace of per-track CV and gate outputs can share
// the same container format as an audio render.
// Wrote my own after trying out a couple of others I found but
// both required me to know the quantity of audio data before I
// write it.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format
// documentation.

package wav

import (
	"encoding/binary"
	"io"
)

const PCM = 1

type Writer struct {
	WS       io.WriteSeeker
	channels int
}

type Format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// WriteFrame interleaves N channels of samples, one slice per channel,
// all of equal length. Each call appends len(samples[0]) frames.
func (w *Writer) WriteFrame(samples [][]int16) error {
	if len(samples) != w.channels {
		return io.ErrShortWrite
	}
	if len(samples) == 0 {
		return nil
	}
	n := len(samples[0])
	frame := make([]int16, w.channels)
	for i := 0; i < n; i++ {
		for ch := range samples {
			frame[ch] = samples[ch][i]
		}
		if err := binary.Write(w.WS, binary.LittleEndian, frame); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Finish() (int64, error) {
	wlen, err := w.WS.Seek(0, io.SeekCurrent)

	offset, err := w.WS.Seek(4, io.SeekStart)
	if offset != 4 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}
	offset, err = w.WS.Seek(40, io.SeekStart)
	if offset != 40 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}

	return wlen, nil
}

// NewWriter returns a writer for a channels-channel, 16-bit PCM WAVE
// file at sampleRate. channels is typically 2 for audio, or 16 for
// cmd/seqrender's trace (8 CV channels followed by 8 gate channels).
func NewWriter(ws io.WriteSeeker, sampleRate int, channels int) (*Writer, error) {
	writer := &Writer{WS: ws, channels: channels}

	if _, err := ws.Write([]byte("RIFF")); err != nil {
		return nil, err
	}

	// Write out zero for now, come back and fill this later
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	// Write format chunk
	if _, err := ws.Write([]byte("fmt ")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(16)); err != nil {
		return nil, err
	}
	format := Format{AudioFormat: PCM, Channels: uint16(channels), SampleRate: uint32(sampleRate), BitsPerSample: 16}
	format.ByteRate = uint32(sampleRate) * uint32(channels) * (16 / 8)
	format.BlockAlign = uint16(channels) * (16 / 8)
	if err := binary.Write(ws, binary.LittleEndian, format); err != nil {
		return nil, err
	}

	// Write data chunk header
	if _, err := ws.Write([]byte("data")); err != nil {
		return nil, err
	}
	// Write out zero for the data size for now, come back and fill this later
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	return writer, nil
}
