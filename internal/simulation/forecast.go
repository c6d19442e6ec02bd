package simulation

import (
	"math"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
)

// DefaultForecastBase is the PM2.5 level forecasts start from when none is given.
const DefaultForecastBase = 36

// ForecastPoint is one hourly PM2.5 prediction.
type ForecastPoint struct {
	H    string `json:"h"`
	PM25 int    `json:"pm25"`
}

var forecastZoneFactor = map[airquality.Zone]float64{
	airquality.ZoneIndustrie: 1.12,
	airquality.ZoneNord:      0.92,
}

// ForecastPM25 returns hours+1 hourly points starting at now. It is a smooth
// closed-form curve around the zone-adjusted base, not a fitted model.
func ForecastPM25(base float64, hours int, zone airquality.Zone, now time.Time) []ForecastPoint {
	zf, ok := forecastZoneFactor[zone]
	if !ok {
		zf = 1.0
	}
	start := math.Max(5, math.RoundToEven(base*zf))

	out := make([]ForecastPoint, 0, hours+1)
	for i := 0; i <= hours; i++ {
		x := float64(i)
		wave := 6*math.Sin(x/3) + 2*math.Cos(x/5.5)
		bump := 0.0
		if i%4 == 0 {
			bump = 2
		}
		out = append(out, ForecastPoint{
			H:    now.Add(time.Duration(i) * time.Hour).Format("15:04"),
			PM25: int(math.Max(5, math.RoundToEven(start+wave+bump))),
		})
	}
	return out
}
