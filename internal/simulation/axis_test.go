package simulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartcity/smartcity/internal/simulation"
)

func TestBuildAxis_Lengths(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period simulation.Period
		want   int
		first  string
		last   string
	}{
		{simulation.Period1h, 12, "09:35", "10:30"},
		{simulation.Period6h, 24, "04:45", "10:30"},
		{simulation.Period24h, 48, "11:00", "10:30"},
		{simulation.Period7d, 7, "Tue", "Mon"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			axis := simulation.BuildAxis(tt.period, now)
			assert.Len(t, axis, tt.want)
			assert.Equal(t, tt.want, tt.period.Points())
			assert.Equal(t, tt.first, axis[0])
			assert.Equal(t, tt.last, axis[len(axis)-1])
		})
	}
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, simulation.Period1h, simulation.ParsePeriod("1h"))
	assert.Equal(t, simulation.Period7d, simulation.ParsePeriod("7D"))
	assert.Equal(t, simulation.Period24h, simulation.ParsePeriod(""))
	assert.Equal(t, simulation.Period24h, simulation.ParsePeriod("3d"))
}

func TestPeriod_Window(t *testing.T) {
	assert.Equal(t, time.Hour, simulation.Period1h.Window())
	assert.Equal(t, 6*time.Hour, simulation.Period6h.Window())
	assert.Equal(t, 24*time.Hour, simulation.Period24h.Window())
	assert.Equal(t, 168*time.Hour, simulation.Period7d.Window())
}
