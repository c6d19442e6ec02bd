package simulation_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/simulation"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		key  string
		want uint32
	}{
		{"", 2166136261},
		{"a", 3826002220},
		{"24h|centre|PM25|2024-01-01 10:30", 1251769924},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, simulation.HashKey(tt.key))
		})
	}
}

func TestStream_GoldenSequence(t *testing.T) {
	s := simulation.NewStream(12345)

	want := []float64{
		0.9797282677609473,
		0.3067522644996643,
		0.484205421525985,
		0.817934412509203,
		0.5094283693470061,
	}
	for i, w := range want {
		assert.Equal(t, w, s.Float64(), "value %d", i)
	}
}

func TestStream_ZeroSeed(t *testing.T) {
	s := simulation.NewStream(0)
	assert.Equal(t, 0.26642920868471265, s.Float64())
	assert.Equal(t, 0.0003297457005828619, s.Float64())
	assert.Equal(t, 0.2232720274478197, s.Float64())
}

func TestStream_Range(t *testing.T) {
	s := simulation.StreamFor("range-check")
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestStream_RestartAndSkip(t *testing.T) {
	s := simulation.NewStream(12345)
	first := s.Float64()
	s.Float64()

	s.Restart()
	assert.Equal(t, first, s.Float64())
	assert.Equal(t, uint32(12345), s.Seed())

	s.Restart()
	s.Skip(2)
	assert.Equal(t, 0.484205421525985, s.Float64())
}

func TestStream_IndependentInstances(t *testing.T) {
	var wg sync.WaitGroup
	results := make([][]float64, 8)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := simulation.NewStream(12345)
			for j := 0; j < 100; j++ {
				results[i] = append(results[i], s.Float64())
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i])
	}
}
