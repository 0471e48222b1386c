// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{"x=0 returns y1", 0, 1, 2, 3, 0, 1},
		{"x=1 returns y2", 0, 1, 2, 3, 1, 2},
		{"linear ramp stays linear", 1, 2, 3, 4, 0.25, 2.25},
		{"constant stays constant", 0.5, 0.5, 0.5, 0.5, 0.7, 0.5},
		{"symmetric peak", 0, 1, 1, 0, 0.5, 1.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	t.Parallel()

	if got := Lerp(-1, 1, 0.25); got != -0.5 {
		t.Errorf("Lerp() = %v, want -0.5", got)
	}
	if got := Lerp(3, 7, 0); got != 3 {
		t.Errorf("Lerp() = %v, want 3", got)
	}
}

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-3, -32767},
		{0.5, 16383},
		{-0.5, -16383},
	}
	for _, tt := range tests {
		if got := Float32ToInt16(tt.in); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEightBitConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   uint8
		f    float32
		wide int16
	}{
		{128, 0, 0},
		{0, -1, -32768},
		{255, 127.0 / 128, 127 << 8},
		{192, 0.5, 64 << 8},
	}
	for _, tt := range tests {
		if got := Uint8ToFloat32(tt.in); got != tt.f {
			t.Errorf("Uint8ToFloat32(%d) = %v, want %v", tt.in, got, tt.f)
		}
		if got := Uint8ToInt16(tt.in); got != tt.wide {
			t.Errorf("Uint8ToInt16(%d) = %d, want %d", tt.in, got, tt.wide)
		}
	}
}

func TestInt16ToFloat32(t *testing.T) {
	t.Parallel()

	if got := Int16ToFloat32(-32768); got != -1 {
		t.Errorf("Int16ToFloat32(-32768) = %v", got)
	}
	if got := Int16ToFloat32(16384); got != 0.5 {
		t.Errorf("Int16ToFloat32(16384) = %v", got)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	b.ReportAllocs()
	var sink float32
	for b.Loop() {
		sink += CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	}
	_ = sink
}
