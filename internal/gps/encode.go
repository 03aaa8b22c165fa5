package gps

// RawStatus holds the stored status, speed and distance fields before
// any scaling.
type RawStatus struct {
	Sensor      uint8
	Acquisition uint8
	Battery     uint8
	Speed       uint16 // 12 bits, SpeedUnit
	Distance    uint16 // 12 bits, DistanceUnit
}

// RawPosition holds the stored navigation fields of a full packet.
type RawPosition struct {
	Altitude        uint16
	TrueHeading     uint8
	MagneticHeading uint8
	Latitude        uint32 // 24 bits
	Longitude       uint32 // 24 bits
	Seconds         uint8  // whole seconds, 6 bits
	Quarters        uint8  // quarter seconds, 2 bits
}

func (s RawStatus) bytes() []byte {
	return []byte{
		s.Sensor<<4 | (s.Acquisition&0x03)<<2 | s.Battery&0x03,
		byte((s.Speed>>8)&0x0F)<<4 | byte((s.Distance>>8)&0x0F),
		byte(s.Speed),
		byte(s.Distance),
	}
}

// AppendError appends an error packet carrying code.
func AppendError(dst []byte, code byte) []byte {
	return append(dst, PacketError, code)
}

// AppendStatus appends a status/speed/distance packet.
func AppendStatus(dst []byte, s RawStatus) []byte {
	dst = append(dst, PacketStatus)
	return append(dst, s.bytes()...)
}

// AppendTimeDate appends a time/date packet. Year must be 2001..2016.
func AppendTimeDate(dst []byte, dt DateTime) []byte {
	whole := int(dt.Seconds)
	quarters := int((dt.Seconds - float64(whole)) * 4)
	return append(dst,
		PacketTimeDate,
		byte(dt.Month&0x0F)<<4|byte((dt.Year-2001)&0x0F),
		byte(dt.Minute&0x3F)<<2|byte((dt.Day>>3)&0x03),
		byte(dt.Day&0x07)<<5|byte(dt.Hour&0x1F),
		byte(whole&0x3F)<<2|byte(quarters&0x03),
	)
}

// AppendFull appends a 17-byte full packet.
func AppendFull(dst []byte, s RawStatus, p RawPosition) []byte {
	dst = append(dst, PacketFull)
	dst = append(dst, s.bytes()...)
	return append(dst,
		byte(p.Altitude), byte(p.Altitude>>8),
		p.TrueHeading, p.MagneticHeading,
		byte(p.Latitude), byte(p.Latitude>>8), byte(p.Latitude>>16),
		byte(p.Longitude), byte(p.Longitude>>8), byte(p.Longitude>>16),
		(p.Seconds&0x3F)<<2|p.Quarters&0x03,
		0,
	)
}
