package models

import (
	"github.com/smartcity/smartcity/internal/dashboard"
	"github.com/smartcity/smartcity/internal/iot"
)

// SnapshotKPIs are the snapshot headline values.
type SnapshotKPIs struct {
	AQI         int         `json:"aqi"`
	Temperature int         `json:"temperature"`
	Wind        int         `json:"wind"`
	Humidity    int         `json:"humidity"`
	Sensors     iot.Sensors `json:"sensors"`
}

// SnapshotIoT describes where the snapshot values came from.
type SnapshotIoT struct {
	LastUpdate *Timestamp   `json:"last_update"`
	Sensors    []iot.Latest `json:"sensors"`
	Source     string       `json:"source"`
}

// Snapshot is the city overview body.
type Snapshot struct {
	UpdatedAt string       `json:"updatedAt"`
	KPIs      SnapshotKPIs `json:"kpis"`
	Alerts    []Alert      `json:"alerts"`
	IoT       SnapshotIoT  `json:"iot"`
}

// NewSnapshot converts the dashboard snapshot.
func NewSnapshot(s *dashboard.Snapshot) Snapshot {
	out := Snapshot{
		UpdatedAt: s.UpdatedAt.Format(ClockLayout),
		KPIs: SnapshotKPIs{
			AQI:         s.KPIs.AQI,
			Temperature: s.KPIs.Temperature,
			Wind:        s.KPIs.Wind,
			Humidity:    s.KPIs.Humidity,
			Sensors:     s.KPIs.Sensors,
		},
		Alerts: NewAlerts(s.Alerts),
		IoT: SnapshotIoT{
			Sensors: s.Sensors,
			Source:  s.Source,
		},
	}
	if out.IoT.Sensors == nil {
		out.IoT.Sensors = []iot.Latest{}
	}
	if s.LastUpdate != nil {
		ts := Timestamp(*s.LastUpdate)
		out.IoT.LastUpdate = &ts
	}
	return out
}
