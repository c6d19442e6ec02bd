package simulation

import (
	"math"
	"strconv"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
)

// SensorReading is one simulated sensor measurement.
type SensorReading struct {
	Zone        airquality.Zone
	PM25        int
	PM10        int
	NO2         int
	O3          int
	AQI         int
	Temperature int
	Wind        int
	Humidity    int
}

// Tick computes the simulated reading of a zone's sensor at tick t.
// The signal is a closed-form wave; no randomness is involved.
func Tick(zone airquality.Zone, t int) SensorReading {
	zf := DashboardProfile().Factor(zone)
	x := float64(t)

	wave := func(base, a, pa, b, pb float64) float64 {
		return (base + a*math.Sin(x/pa) + b*math.Cos(x/pb)) * zf
	}

	pm25 := Bounds{Min: 5, Max: 120}.RoundClamp(wave(30, 12, 18, 4, 9))

	return SensorReading{
		Zone:        zone,
		PM25:        pm25,
		PM10:        Bounds{Min: 5, Max: 160}.RoundClamp(wave(55, 18, 22, 5, 11)),
		NO2:         Bounds{Min: 5, Max: 240}.RoundClamp(wave(48, 22, 20, 6, 13)),
		O3:          Bounds{Min: 5, Max: 200}.RoundClamp(wave(40, 15, 26, 4, 15)),
		AQI:         Bounds{Min: 10, Max: 180}.RoundClamp(float64(pm25) * 1.7),
		Temperature: Bounds{Min: -5, Max: 45}.RoundClamp(14 + 10*math.Sin(x/30)),
		Wind:        Bounds{Min: 0, Max: 60}.RoundClamp(6 + 8*math.Cos(x/25)),
		Humidity:    Bounds{Min: 10, Max: 95}.RoundClamp(50 + 20*math.Sin(x/28)),
	}
}

// TickAlerts evaluates a simulated reading with the simulator policy.
func TickAlerts(r SensorReading, t int, at time.Time) []alert.Alert {
	return alert.DefaultSimulatorPolicy().Evaluate(alert.Sample{
		Zone: string(r.Zone),
		PM25: float64(r.PM25),
		PM10: float64(r.PM10),
		AQI:  r.AQI,
		Ref:  strconv.Itoa(t),
		At:   at,
	})
}
