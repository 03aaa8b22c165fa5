package gps

import "fmt"

type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

const (
	kmPerMile   = 1.609344
	metersPerFt = 0.3048
)

// ParseUnits accepts "metric"/"km" and "imperial"/"miles".
func ParseUnits(s string) (Units, error) {
	switch s {
	case "", "metric", "km", "si":
		return Metric, nil
	case "imperial", "miles", "mi":
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown units %q", s)
	}
}

// Distance converts miles.
func (u Units) Distance(miles float64) float64 {
	if u == Imperial {
		return miles
	}
	return miles * kmPerMile
}

// Speed converts miles per hour.
func (u Units) Speed(mph float64) float64 {
	return u.Distance(mph)
}

// Altitude converts feet.
func (u Units) Altitude(ft float64) float64 {
	if u == Imperial {
		return ft
	}
	return ft * metersPerFt
}

func (u Units) DistanceLabel() string {
	if u == Imperial {
		return "miles"
	}
	return "km"
}

func (u Units) SpeedLabel() string {
	if u == Imperial {
		return "mph"
	}
	return "kph"
}

func (u Units) AltitudeLabel() string {
	if u == Imperial {
		return "ft"
	}
	return "m"
}
