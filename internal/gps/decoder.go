package gps

// Result is the decoded content of one GPS session body.
type Result struct {
	Fixes []Fix `json:"fixes"`
	// Trailing counts bytes after the last complete packet. They are
	// dropped.
	Trailing int `json:"trailing,omitempty"`
}

// Decoder turns GPS session bodies into fixes.
type Decoder struct {
	Units Units
}

// Decode walks a GPS session body packet by packet. A fresh Odometer is
// used for every call. Decoding stops at an unimplemented packet type and
// returns the fixes decoded so far together with a *PacketTypeError.
func (d Decoder) Decode(body []byte) (Result, error) {
	var res Result
	odo := NewOdometer(d.units())
	elapsed := 0.0
	i := 0
	for i < len(body) {
		t := body[i]
		n := PacketLength(t)
		if n == 0 {
			return res, &PacketTypeError{Offset: i, Type: t}
		}
		if n > len(body)-i {
			break
		}
		pkt := body[i : i+n]
		fix := Fix{Offset: i, Elapsed: elapsed}
		switch t {
		case PacketError:
			fix.Kind = KindError
			fix.ErrorCode = pkt[1]
		case PacketStatus:
			fix.Kind = KindStatus
			fix.Status = decodeStatus(pkt[1:5], odo)
		case PacketTimeDate:
			fix.Kind = KindTimeDate
			fix.Date = decodeTimeDate(pkt[1:5])
		case PacketFull:
			fix.Kind = KindFullPosition
			fix.Status = decodeStatus(pkt[1:5], odo)
			fix.Position = d.decodePosition(pkt[5:])
		default:
			return res, &PacketTypeError{Offset: i, Type: t}
		}
		res.Fixes = append(res.Fixes, fix)
		elapsed += TimeStep
		i += n
	}
	res.Trailing = len(body) - i
	return res, nil
}

func (d Decoder) units() Units {
	if d.Units == "" {
		return Metric
	}
	return d.Units
}

// decodeStatus reads status, speed-high/odo-high, speed low and odo low.
func decodeStatus(b []byte, odo *Odometer) *StatusInfo {
	status, hsb, speedLo, odoLo := b[0], b[1], b[2], b[3]
	speed := float64(int(speedLo)+int(hsb&0xF0)<<4) * SpeedUnit
	raw := float64(int(odoLo)+int(hsb&0x0F)<<8) * DistanceUnit
	return &StatusInfo{
		Sensor:      (status & 0xF0) >> 4,
		Acquisition: (status & 0x0C) >> 2,
		Battery:     status & 0x03,
		Speed:       odo.Units.Speed(speed),
		Distance:    odo.Correct(raw),
		RawDistance: raw,
	}
}

// decodeTimeDate reads month/year, minute/day, day/hour and seconds.
// The year is 2001 based, unlike session headers.
func decodeTimeDate(b []byte) *DateTime {
	moYr, miDa, daHr, sec := b[0], b[1], b[2], b[3]
	return &DateTime{
		Year:    int(moYr&0x0F) + 2001,
		Month:   int(moYr&0xF0) >> 4,
		Day:     int(miDa&0x03)<<3 + int(daHr&0xE0)>>5,
		Hour:    int(daHr & 0x1F),
		Minute:  int(miDa&0xFC) >> 2,
		Seconds: decodeSeconds(sec),
	}
}

func decodeSeconds(b byte) float64 {
	return float64(int(b&0xFC)>>2) + float64(b&0x03)*0.25
}

// decodePosition reads the tail of a full packet: altitude, true and
// magnetic heading, latitude, longitude and seconds.
func (d Decoder) decodePosition(b []byte) *PositionInfo {
	alt := int(b[0]) | int(b[1])<<8
	return &PositionInfo{
		Altitude:        d.units().Altitude(float64(alt - AltitudeOffset)),
		TrueHeading:     float64(b[2]) * HeadingUnit,
		MagneticHeading: float64(b[3]) * HeadingUnit,
		Latitude:        decodeAngle(b[4], b[5], b[6]),
		Longitude:       decodeAngle(b[7], b[8], b[9]),
		Seconds:         decodeSeconds(b[10]),
	}
}

// decodeAngle converts a 24-bit field into degrees in [-180, 180).
func decodeAngle(b0, b1, b2 byte) float64 {
	deg := float64(int(b0)|int(b1)<<8|int(b2)<<16) * LatLonUnit
	if deg >= 180 {
		deg -= 360
	}
	return deg
}
