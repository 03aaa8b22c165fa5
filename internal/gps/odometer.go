package gps

// Odometer removes the quirks of the recorder's distance field for one
// session: the non-zero starting value, wraps of the 12-bit counter every
// OdometerMax miles, and small backwards corrections the receiver makes
// after a sudden stop. An Odometer must not be reused across sessions.
type Odometer struct {
	Units Units

	offset float64
	prev   float64
	base   float64
}

// NewOdometer returns an odometer with no observation yet.
func NewOdometer(units Units) *Odometer {
	return &Odometer{Units: units, offset: -1, prev: -1}
}

// Correct takes a raw distance in miles and returns the distance covered
// since the first observation, never smaller than the previous result,
// converted to the odometer units.
func (o *Odometer) Correct(raw float64) float64 {
	raw += o.base
	if o.offset < 0 {
		o.offset = raw
	}
	raw -= o.offset

	// Only a wrap can move the counter back by more than half its range.
	if o.prev-raw > OdometerMax*0.5 {
		raw += OdometerMax
		o.base += OdometerMax
	}

	if raw < o.prev {
		raw = o.prev
	} else {
		o.prev = raw
	}
	return o.Units.Distance(raw)
}
