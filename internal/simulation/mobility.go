package simulation

import (
	"math"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
)

// Mobility is the traffic and transit load of a zone.
type Mobility struct {
	Zone        airquality.Zone `json:"zone"`
	Traffic     int             `json:"trafficIndex"`
	TransitLoad int             `json:"publicTransportLoad"`
	Incidents   int             `json:"incidentsCount"`
}

// MobilityIndex computes the index from the wall clock; it cycles every
// 1800·2π seconds.
func MobilityIndex(zone airquality.Zone, now time.Time) Mobility {
	base := 65.0
	switch zone {
	case airquality.ZoneCentre:
		base = 55
	case airquality.ZoneNord:
		base = 45
	}

	wave := 15 * (math.Sin(float64(now.Unix())/1800) + 1) / 2
	traffic := int(math.RoundToEven(math.Min(100, base+wave)))

	incidents := 0
	if traffic > 75 {
		incidents = 1
	}

	return Mobility{
		Zone:        zone,
		Traffic:     traffic,
		TransitLoad: int(math.RoundToEven(math.Min(100, 40+wave))),
		Incidents:   incidents,
	}
}
