package alert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/alert"
)

func TestSimulatorPolicy_Evaluate(t *testing.T) {
	policy := alert.DefaultSimulatorPolicy()
	at := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	t.Run("pm25 above threshold raises one critical alert", func(t *testing.T) {
		alerts := policy.Evaluate(alert.Sample{Zone: "centre", PM25: 55, PM10: 60, Ref: "7", At: at})
		require.Len(t, alerts, 1)

		a := alerts[0]
		assert.Equal(t, "iot-pm25-centre-7", a.ID)
		assert.Equal(t, alert.PollutantPM25, a.Pollutant)
		assert.Equal(t, 55.0, a.Value)
		assert.Equal(t, 50.0, a.Threshold)
		assert.Equal(t, "µg/m³", a.Unit)
		assert.True(t, a.Critical)
		assert.False(t, a.Read)
		assert.Equal(t, "Niveau PM2.5 élevé : 55 µg/m³ (seuil : 50 µg/m³).", a.Message)
		assert.Equal(t, "10:30:00", a.Clock())
	})

	t.Run("pm25 below threshold raises nothing", func(t *testing.T) {
		assert.Empty(t, policy.Evaluate(alert.Sample{Zone: "centre", PM25: 40, PM10: 60}))
	})

	t.Run("threshold itself is not a breach", func(t *testing.T) {
		assert.Empty(t, policy.Evaluate(alert.Sample{Zone: "nord", PM25: 50, PM10: 80}))
	})

	t.Run("both pollutants", func(t *testing.T) {
		alerts := policy.Evaluate(alert.Sample{Zone: "industrie", PM25: 51, PM10: 81, Ref: "3"})
		require.Len(t, alerts, 2)
		assert.Equal(t, "iot-pm25-industrie-3", alerts[0].ID)
		assert.Equal(t, "iot-pm10-industrie-3", alerts[1].ID)
		assert.True(t, alerts[1].Critical)
	})
}

func TestLivePolicy_Evaluate(t *testing.T) {
	policy := alert.DefaultLivePolicy()

	tests := []struct {
		name     string
		aqi      int
		wantLen  int
		critical bool
	}{
		{"at threshold", 100, 0, false},
		{"above threshold", 101, 1, false},
		{"at critical bound", 150, 1, false},
		{"above critical bound", 151, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := policy.Evaluate(alert.Sample{Zone: "Marseille", AQI: tt.aqi})
			require.Len(t, alerts, tt.wantLen)
			if tt.wantLen == 0 {
				return
			}
			assert.Equal(t, tt.critical, alerts[0].Critical)
			assert.Equal(t, alert.PollutantAQI, alerts[0].Pollutant)
			assert.Equal(t, 50000, alerts[0].PeopleAffected)
			assert.Equal(t, "Alerte Qualité de l'Air - Marseille", alerts[0].Title)
		})
	}
}
