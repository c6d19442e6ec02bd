package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/smartcity/smartcity/internal/alert"
)

// DemoWeather is the weather shown when no stored reading exists.
type DemoWeather struct {
	Temperature int
	Wind        int
	Humidity    int
}

// SnapshotWeather draws demo weather for the minute containing now.
func SnapshotWeather(now time.Time) DemoWeather {
	s := StreamFor("snapshot|" + now.Format(MinuteLayout))
	return DemoWeather{
		Temperature: int(math.RoundToEven(14 + s.Float64()*14)),
		Wind:        int(math.RoundToEven(5 + s.Float64()*18)),
		Humidity:    int(math.RoundToEven(45 + s.Float64()*35)),
	}
}

// DemoAlerts returns the fallback alerts for the minute containing now.
// The PM10 alert is critical from 80 µg/m³ upward.
func DemoAlerts(now time.Time) []alert.Alert {
	s := StreamFor("alerts|" + now.Format(MinuteLayout))
	pm10 := int(math.RoundToEven(72 + s.Float64()*20))

	return []alert.Alert{{
		ID:             "demo1",
		Title:          "Alerte PM10 – Données de démonstration",
		Message:        fmt.Sprintf("Niveau PM10: %dµg/m³ (données simulées)", pm10),
		Zone:           "Zone de démonstration",
		Pollutant:      alert.PollutantPM10,
		Value:          float64(pm10),
		Unit:           alert.UnitMicrograms,
		Threshold:      80,
		Critical:       pm10 >= 80,
		PeopleAffected: 15000,
		CreatedAt:      now,
	}}
}

// DefaultSnapshotPM25 is used when no PM2.5 alert carries a value.
const DefaultSnapshotPM25 = 40

// SnapshotAQI derives the headline index from alerts, using the first PM2.5
// alert's value or DefaultSnapshotPM25.
func SnapshotAQI(alerts []alert.Alert) int {
	pm25 := float64(DefaultSnapshotPM25)
	for _, a := range alerts {
		if a.Pollutant == alert.PollutantPM25 {
			pm25 = a.Value
			break
		}
	}
	return int(Bounds{Min: 10, Max: 180}.Clamp(pm25 * 1.6))
}
