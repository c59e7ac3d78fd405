// SPDX-License-Identifier: MIT
package region

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tests := []struct {
		desc     string
		duration float64
		want     Region
	}{
		{"Long track", 120, Region{0, 30}},
		{"Exactly default", 30, Region{0, 30}},
		{"Short track", 12.5, Region{0, 12.5}},
		{"Zero duration", 0, Region{}},
		{"Negative duration", -3, Region{}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, Default(tt.duration))
		})
	}
}

func TestInitial(t *testing.T) {
	assert.Equal(t, Region{0, 10}, Initial(60, 10))
	assert.Equal(t, Region{0, 8}, Initial(8, 10))
	assert.Equal(t, Region{0, 60}, Initial(60, 0), "non-positive length selects the whole track")
}

func TestEmptyAndContains(t *testing.T) {
	r := Region{Start: 10, End: 40}
	assert.False(t, r.Empty())
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(40))
	assert.True(t, r.Contains(25))
	assert.False(t, r.Contains(9.99))
	assert.False(t, r.Contains(40.01))

	inverted := Region{Start: 20, End: 5}
	assert.True(t, inverted.Empty())
	assert.False(t, inverted.Contains(10))

	point := Region{Start: 7, End: 7}
	assert.True(t, point.Empty())
	assert.False(t, point.Contains(7))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Region{0, 30}.Validate(120))

	err := Region{30, 30}.Validate(120)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmpty))

	assert.Error(t, Region{-1, 30}.Validate(120))
	assert.Error(t, Region{10, 121}.Validate(120))
}

func TestShiftPreservesWidth(t *testing.T) {
	tests := []struct {
		desc string
		in   Region
		dt   float64
		want Region
	}{
		{"Inside", Region{10, 40}, 5, Region{15, 45}},
		{"Past start", Region{10, 40}, -15, Region{0, 30}},
		{"Past end", Region{10, 40}, 100, Region{90, 120}},
		{"No move", Region{10, 40}, 0, Region{10, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := tt.in.Shift(tt.dt, 120)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in.Width(), got.Width())
		})
	}
}

func TestShiftKeepsDyadicWidthExact(t *testing.T) {
	r := Region{Start: 2.25, End: 9.75}
	for _, dt := range []float64{-100, -2.25, -0.125, 0.5, 3.0625, 50.25, 100} {
		got := r.Shift(dt, 60)
		assert.Equal(t, 7.5, got.End-got.Start, "dt=%v", dt)
	}
}

func TestShiftClampedWidthExact(t *testing.T) {
	r := Region{Start: 0.8, End: 2.1}
	assert.Equal(t, Region{Start: 0, End: r.Width()}, r.Shift(-5, 60))
	got := r.Shift(100, 60)
	assert.Equal(t, 60.0, got.End)
	assert.InDelta(t, r.Width(), got.Width(), 1e-12)
}

// Decimal widths are not representable, so start+width can round by one ulp.
func TestShiftFractionalWidthWithinOneRounding(t *testing.T) {
	r := Region{Start: 3.3, End: 7.7}
	for _, dt := range []float64{-10, -0.1, 0.37, 1.9, 200} {
		got := r.Shift(dt, 60)
		assert.InDelta(t, r.Width(), got.Width(), 1e-9, "dt=%v", dt)
		assert.GreaterOrEqual(t, got.Start, 0.0)
		assert.LessOrEqual(t, got.End, 60.0)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(11, 0, 10))
	// Inverted bounds resolve to the lower bound.
	assert.Equal(t, 4.0, Clamp(1, 4, 2))
	assert.False(t, math.IsNaN(Clamp(1, 4, 2)))
}
