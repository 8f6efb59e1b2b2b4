package services

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDecodePeaksLength(t *testing.T) {
	values, err := DecodePeaks(make([]byte, 24))
	if err != nil {
		t.Fatalf("DecodePeaks: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("decoded length: want=3 got=%d", len(values))
	}

	_, err = DecodePeaks(make([]byte, 23))
	if !errors.Is(err, ErrMalformedPeakData) {
		t.Fatalf("23 bytes: want ErrMalformedPeakData, got=%v", err)
	}
}

func TestDecodePeaksValues(t *testing.T) {
	want := []float64{101.0712, 0, -1.5, math.MaxFloat64, math.SmallestNonzeroFloat64}
	got, err := DecodePeaks(EncodePeaks(want))
	if err != nil {
		t.Fatalf("DecodePeaks: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decoded values: want=%v got=%v", want, got)
	}
}

func TestDecodePeaksLittleEndian(t *testing.T) {
	// 1.0 = 0x3FF0000000000000
	got, err := DecodePeaks([]byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f})
	if err != nil {
		t.Fatalf("DecodePeaks: %v", err)
	}
	if len(got) != 1 || got[0] != 1.0 {
		t.Fatalf("decoded value: want=[1] got=%v", got)
	}
}

func TestDecodePeaksEmpty(t *testing.T) {
	got, err := DecodePeaks(nil)
	if err != nil {
		t.Fatalf("DecodePeaks: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("empty input: want empty non-nil slice, got=%#v", got)
	}
}

func TestDecodePeakListMismatch(t *testing.T) {
	_, err := DecodePeakList(EncodePeaks([]float64{1, 2}), EncodePeaks([]float64{1}))
	if !errors.Is(err, ErrPeakLengthMismatch) {
		t.Fatalf("want ErrPeakLengthMismatch, got=%v", err)
	}

	_, err = DecodePeakList(make([]byte, 9), EncodePeaks([]float64{1}))
	if !errors.Is(err, ErrMalformedPeakData) {
		t.Fatalf("want ErrMalformedPeakData, got=%v", err)
	}
}

func TestDecodePeakList(t *testing.T) {
	pl, err := DecodePeakList(EncodePeaks([]float64{10, 20}), EncodePeaks([]float64{300.1, 400.2}))
	if err != nil {
		t.Fatalf("DecodePeakList: %v", err)
	}
	if !reflect.DeepEqual(pl.Intensity, []float64{10, 20}) || !reflect.DeepEqual(pl.MZ, []float64{300.1, 400.2}) {
		t.Fatalf("peak list: got=%+v", pl)
	}
}
