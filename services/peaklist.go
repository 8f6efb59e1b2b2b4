package services

import (
	"encoding/binary"
	"fmt"
	"math"
)

const float64Size = 8

// PeakList is the decoded peak data of one spectrum.
type PeakList struct {
	Intensity []float64 `json:"intensity"`
	MZ        []float64 `json:"mz"`
}

// DecodePeaks unpacks little-endian IEEE-754 doubles as written by the
// ingestion pipeline. The input length must be a multiple of 8.
func DecodePeaks(b []byte) ([]float64, error) {
	if len(b)%float64Size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedPeakData, len(b), float64Size)
	}
	out := make([]float64, len(b)/float64Size)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*float64Size:]))
	}
	return out, nil
}

// EncodePeaks is the inverse of DecodePeaks.
func EncodePeaks(values []float64) []byte {
	out := make([]byte, len(values)*float64Size)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*float64Size:], math.Float64bits(v))
	}
	return out
}

// DecodePeakList decodes both arrays of a spectrum row.
func DecodePeakList(intensity, mz []byte) (*PeakList, error) {
	in, err := DecodePeaks(intensity)
	if err != nil {
		return nil, fmt.Errorf("intensity: %w", err)
	}
	m, err := DecodePeaks(mz)
	if err != nil {
		return nil, fmt.Errorf("mz: %w", err)
	}
	if len(in) != len(m) {
		return nil, fmt.Errorf("%w: %d intensities, %d m/z values", ErrPeakLengthMismatch, len(in), len(m))
	}
	return &PeakList{Intensity: in, MZ: m}, nil
}
