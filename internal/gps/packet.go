package gps

import (
	"errors"
	"fmt"
)

// Packet type bytes. The low nibble of every type except PacketFull is the
// packet length in bytes, type byte included.
const (
	PacketError    = 0x12
	PacketStatus   = 0x15
	PacketAltitude = 0x25
	PacketPosition = 0x37
	PacketTimeDate = 0x45
	PacketMotion   = 0x59
	PacketFull     = 0xF0

	PacketFullLength = 17
	PacketLengthMask = 0x0F
)

// Packet error codes.
const (
	MissingPacket   = 0x00
	CorruptedPacket = 0x04
)

// Sensor status values reported in the high nibble of the status byte.
const (
	SensorOK            = 0x00
	SensorNoCarrier     = 0x01
	SensorNoMotion      = 0x02
	SensorLowBattery    = 0x03
	SensorSystemFailure = 0x09
	SensorMemoryFailure = 0x0A
	SensorDriftFailure  = 0x0B
)

const (
	// TimeStep is the nominal spacing between packets in seconds.
	TimeStep = 3.57

	SpeedUnit    = 0.1   // mph
	DistanceUnit = 0.001 // mile
	HeadingUnit  = 2     // degrees
	// AltitudeOffset is subtracted from the stored altitude; a stored zero
	// means 2000 feet below sea level.
	AltitudeOffset = 2000
	// OdometerMax is the wrap point of the 12-bit distance field in miles.
	OdometerMax = 4.096
)

// LatLonUnit converts a 24-bit position field into degrees.
const LatLonUnit = 180.0 / (1 << 23)

var ErrUnimplementedPacketType = errors.New("unimplemented GPS packet type")

// PacketTypeError reports a packet the decoder cannot handle.
type PacketTypeError struct {
	Offset int
	Type   byte
}

func (e *PacketTypeError) Error() string {
	return fmt.Sprintf("%v 0x%02x at body offset %d", ErrUnimplementedPacketType, e.Type, e.Offset)
}

func (e *PacketTypeError) Unwrap() error {
	return ErrUnimplementedPacketType
}

// PacketLength returns the length of the packet starting with type byte t.
func PacketLength(t byte) int {
	if t == PacketFull {
		return PacketFullLength
	}
	return int(t & PacketLengthMask)
}

// PacketName returns a short label for a packet type byte.
func PacketName(t byte) string {
	switch t {
	case PacketError:
		return "error"
	case PacketStatus:
		return "status"
	case PacketAltitude:
		return "altitude"
	case PacketPosition:
		return "position"
	case PacketTimeDate:
		return "timedate"
	case PacketMotion:
		return "motion"
	case PacketFull:
		return "full"
	default:
		return fmt.Sprintf("0x%02x", t)
	}
}
