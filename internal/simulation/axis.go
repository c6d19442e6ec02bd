package simulation

import (
	"strings"
	"time"
)

// Period is the time window a chart covers.
type Period string

const (
	Period1h  Period = "1h"
	Period6h  Period = "6h"
	Period24h Period = "24h"
	Period7d  Period = "7d"
)

// Periods lists the supported periods.
var Periods = []Period{Period1h, Period6h, Period24h, Period7d}

// ParsePeriod maps a query value to a period, falling back to 24h.
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Period1h:
		return Period1h
	case Period6h:
		return Period6h
	case Period7d:
		return Period7d
	default:
		return Period24h
	}
}

type axisLayout struct {
	points int
	step   time.Duration
	format string
}

func (p Period) layout() axisLayout {
	switch p {
	case Period1h:
		return axisLayout{points: 12, step: 5 * time.Minute, format: "15:04"}
	case Period6h:
		return axisLayout{points: 24, step: 15 * time.Minute, format: "15:04"}
	case Period7d:
		return axisLayout{points: 7, step: 24 * time.Hour, format: "Mon"}
	default:
		return axisLayout{points: 48, step: 30 * time.Minute, format: "15:04"}
	}
}

// Points returns the number of labels on the period's axis.
func (p Period) Points() int {
	return p.layout().points
}

// Window returns the span of history the period looks back over.
func (p Period) Window() time.Duration {
	switch p {
	case Period1h:
		return time.Hour
	case Period6h:
		return 6 * time.Hour
	case Period7d:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// LabelFormat returns the time layout used for the period's labels.
func (p Period) LabelFormat() string {
	return p.layout().format
}

// BuildAxis returns the period's labels, oldest first, ending at now.
// Sub-day periods use HH:MM labels; 7d uses weekday abbreviations.
func BuildAxis(p Period, now time.Time) []string {
	l := p.layout()
	out := make([]string, 0, l.points)
	for i := l.points - 1; i >= 0; i-- {
		out = append(out, now.Add(-time.Duration(i)*l.step).Format(l.format))
	}
	return out
}
