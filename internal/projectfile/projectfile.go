// Package projectfile implements the binary project record format
// (§6.3): a versioned, fixed-width encoding of an Accumulator and of a
// DiscreteMapSequence stage, using encoding/binary in the declaration
// order each subsystem owns. Fields are written in declaration order;
// a round trip (Encode -> Decode) must reproduce the original values
// exactly (§8.2).
package projectfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// FormatVersion is bumped whenever a record's on-disk layout changes.
const FormatVersion = 1

var byteOrder = binary.LittleEndian

// AccumulatorRecord is the 9 fixed-width fields an Accumulator
// contributes to a project file, in declaration order (§4.7, §6.3).
type AccumulatorRecord struct {
	Enabled      uint8
	Direction    uint8
	Order        uint8
	Polarity     uint8
	MinValue     int8
	MaxValue     int8
	StepValue    int8
	CurrentValue int8
	Reserved     uint8 // pads the record to a 9th byte, always written 0
}

// EncodeAccumulator writes r's 9 fields to w in declaration order.
func EncodeAccumulator(w io.Writer, r AccumulatorRecord) error {
	return binary.Write(w, byteOrder, r)
}

// DecodeAccumulator reads an AccumulatorRecord from r.
func DecodeAccumulator(r io.Reader) (AccumulatorRecord, error) {
	var rec AccumulatorRecord
	err := binary.Read(r, byteOrder, &rec)
	return rec, err
}

// StageRecord is a DiscreteMapSequence stage's on-disk form:
// (int8 threshold, u8 direction, int8 noteIndex) per §4.4/§6.3.
type StageRecord struct {
	Threshold int8
	Direction uint8
	NoteIndex int8
}

// EncodeStage writes one stage record to w.
func EncodeStage(w io.Writer, r StageRecord) error {
	return binary.Write(w, byteOrder, r)
}

// DecodeStage reads one stage record from r.
func DecodeStage(r io.Reader) (StageRecord, error) {
	var rec StageRecord
	err := binary.Read(r, byteOrder, &rec)
	return rec, err
}

// StageCount is the fixed number of stages a DiscreteMapSequence
// serializes, matching the sequencer package's discreteMapStageCount.
const StageCount = 32

// EncodeStages writes StageCount stage records in index order.
func EncodeStages(w io.Writer, stages [StageCount]StageRecord) error {
	for i, st := range stages {
		if err := EncodeStage(w, st); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return nil
}

// DecodeStages reads StageCount stage records in index order.
func DecodeStages(r io.Reader) ([StageCount]StageRecord, error) {
	var stages [StageCount]StageRecord
	for i := range stages {
		st, err := DecodeStage(r)
		if err != nil {
			return stages, fmt.Errorf("stage %d: %w", i, err)
		}
		stages[i] = st
	}
	return stages, nil
}

// Header is the leading fixed-width record of every project file: a
// magic tag and the format version it was written with.
type Header struct {
	Magic   [4]byte
	Version uint32
}

var magic = [4]byte{'S', 'Q', 'P', 'F'}

// WriteHeader emits the file's leading Header record.
func WriteHeader(w io.Writer) error {
	return binary.Write(w, byteOrder, Header{Magic: magic, Version: FormatVersion})
}

// ReadHeader reads and validates the leading Header record.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, byteOrder, &h); err != nil {
		return h, err
	}
	if h.Magic != magic {
		return h, fmt.Errorf("projectfile: bad magic %q", h.Magic)
	}
	if h.Version > FormatVersion {
		return h, fmt.Errorf("projectfile: version %d newer than reader %d", h.Version, FormatVersion)
	}
	return h, nil
}

// EncodeAccumulatorToBytes is a convenience wrapper returning the
// fixed-width encoding of r as a standalone byte slice, e.g. for
// embedding inside a larger track record.
func EncodeAccumulatorToBytes(r AccumulatorRecord) []byte {
	var buf bytes.Buffer
	// EncodeAccumulator only fails on a broken io.Writer; bytes.Buffer
	// never returns an error from Write.
	_ = EncodeAccumulator(&buf, r)
	return buf.Bytes()
}
