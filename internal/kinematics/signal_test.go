package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannWindow(t *testing.T) {
	t.Parallel()

	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5, 0}, HannWindow(5), 1e-12)
	assert.Equal(t, []float64{1}, HannWindow(1))
	assert.Nil(t, HannWindow(0))
}

func TestSmoothingKernel(t *testing.T) {
	t.Parallel()

	k := SmoothingKernel()
	require.Len(t, k, 5)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.25, 0}, k, 1e-12)

	sum := 0.0
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestConvolveSame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		x      []float64
		kernel []float64
		want   []float64
	}{
		{
			name:   "hann kernel partial overlap at edges",
			x:      []float64{1, 2, 3},
			kernel: []float64{0, 0.25, 0.5, 0.25, 0},
			want:   []float64{1, 2, 2},
		},
		{
			name:   "impulse spreads symmetrically",
			x:      []float64{0, 0, 4, 0, 0},
			kernel: []float64{0, 0.25, 0.5, 0.25, 0},
			want:   []float64{0, 1, 2, 1, 0},
		},
		{
			name:   "even kernel",
			x:      []float64{1, 2, 3},
			kernel: []float64{1, 1},
			want:   []float64{1, 3, 5},
		},
		{
			name:   "input shorter than kernel",
			x:      []float64{2, 4},
			kernel: []float64{0, 0.25, 0.5, 0.25, 0},
			want:   []float64{2, 2.5},
		},
		{
			name:   "empty input",
			x:      nil,
			kernel: []float64{1},
			want:   []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvolveSame(tt.x, tt.kernel)
			require.Len(t, got, len(tt.x))
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestGradient(t *testing.T) {
	t.Parallel()

	t.Run("quadratic on uneven grid", func(t *testing.T) {
		// f = t², exact at the interior point for second-order differences.
		g := Gradient([]float64{0, 1, 9}, []float64{0, 1, 3})
		assert.InDeltaSlice(t, []float64{1, 2, 4}, g, 1e-12)
	})

	t.Run("linear on uniform grid", func(t *testing.T) {
		g := Gradient([]float64{0, 2, 4, 6}, []float64{0, 1, 2, 3})
		assert.InDeltaSlice(t, []float64{2, 2, 2, 2}, g, 1e-12)
	})

	t.Run("two points use one-sided differences", func(t *testing.T) {
		g := Gradient([]float64{3, 7}, []float64{0, 0.5})
		assert.InDeltaSlice(t, []float64{8, 8}, g, 1e-12)
	})

	t.Run("single point", func(t *testing.T) {
		assert.Equal(t, []float64{0}, Gradient([]float64{5}, []float64{1}))
	})
}

func TestFindPeaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		x         []float64
		minHeight float64
		want      []int
	}{
		{"single peak", []float64{0, 250, 500, 250, 0}, 50, []int{2}},
		{"two peaks", []float64{0, 2, 1, 3, 0}, 0, []int{1, 3}},
		{"height filter", []float64{0, 2, 1, 3, 0}, 2.5, []int{3}},
		{"height is inclusive", []float64{0, 50, 0}, 50, []int{1}},
		{"plateau reports middle", []float64{0, 1, 1, 1, 0}, 0, []int{2}},
		{"even plateau rounds down", []float64{0, 1, 1, 0}, 0, []int{1}},
		{"edges are never peaks", []float64{5, 1, 5}, 0, nil},
		{"plateau reaching the end", []float64{0, 1, 1}, 0, nil},
		{"monotonic", []float64{1, 2, 3, 4}, 0, nil},
		{"too short", []float64{1, 2}, 0, nil},
		{"empty", nil, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPeaks(tt.x, tt.minHeight))
		})
	}
}

func TestCountSignChanges(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	tests := []struct {
		name string
		x    []float64
		want int
	}{
		{"alternating", []float64{1, -1, 1}, 2},
		{"all positive", []float64{1, 2, 3}, 0},
		{"zero counts as positive", []float64{1, 0, 2}, 0},
		{"negative zero counts as negative", []float64{0, negZero}, 1},
		{"into negative and back", []float64{3, -2, -1, 0, 4}, 2},
		{"empty", nil, 0},
		{"single", []float64{-1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountSignChanges(tt.x))
		})
	}
}
