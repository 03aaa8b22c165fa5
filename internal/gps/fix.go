package gps

type Kind string

const (
	KindError        Kind = "error"
	KindStatus       Kind = "status"
	KindTimeDate     Kind = "timedate"
	KindFullPosition Kind = "full"
)

// Fix is one decoded packet. Exactly the fields that belong to Kind are
// set: ErrorCode for KindError, Status for KindStatus, Date for
// KindTimeDate, and Status plus Position for KindFullPosition.
type Fix struct {
	Kind    Kind    `json:"kind"`
	Offset  int     `json:"offset"`
	Elapsed float64 `json:"elapsed"`

	ErrorCode byte          `json:"errorCode,omitempty"`
	Status    *StatusInfo   `json:"status,omitempty"`
	Date      *DateTime     `json:"date,omitempty"`
	Position  *PositionInfo `json:"position,omitempty"`
}

// StatusInfo carries the status, speed and distance fields. Speed and
// Distance are in the decoder units; Distance is odometer corrected.
type StatusInfo struct {
	Sensor      uint8   `json:"sensor"`
	Acquisition uint8   `json:"acquisition"`
	Battery     uint8   `json:"battery"`
	Speed       float64 `json:"speed"`
	Distance    float64 `json:"distance"`
	RawDistance float64 `json:"rawDistance"`
}

// DateTime is the receiver's UTC clock.
type DateTime struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Day     int     `json:"day"`
	Hour    int     `json:"hour"`
	Minute  int     `json:"minute"`
	Seconds float64 `json:"seconds"`
}

// PositionInfo holds the navigation fields of a full packet. Altitude is
// in the decoder units, headings and coordinates in degrees.
type PositionInfo struct {
	Altitude        float64 `json:"altitude"`
	TrueHeading     float64 `json:"trueHeading"`
	MagneticHeading float64 `json:"magneticHeading"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Seconds         float64 `json:"seconds"`
}

// IsError reports whether the fix marks a missing or corrupted packet.
func (f Fix) IsError() bool {
	return f.Kind == KindError
}
