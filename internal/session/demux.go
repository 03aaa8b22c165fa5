package session

import (
	"example.com/timexdr/internal/eeprom"
	"example.com/timexdr/internal/gps"
)

// Demux splits a multi-device session into a heart-rate and a GPS session.
// Both inherit the parent timestamps with the device tag replaced. Each
// record in the parent body starts with a tag byte: a heart-rate tag is
// followed by one sample byte, a GPS tag by one whole GPS packet.
func Demux(s *eeprom.Session) (hr, gpsSession eeprom.Session, err error) {
	hr = subSession(s, TagHR)
	gpsSession = subSession(s, TagGPS)
	body := s.Body
	hrBody := make([]byte, 0, len(body)/2)
	gpsBody := make([]byte, 0, len(body))
	hrOrigin := make([]int, 0, len(body)/2)
	gpsOrigin := make([]int, 0, len(body))

	i := 0
	for i < len(body) {
		tag := body[i]
		switch tag & TagMask {
		case TagHR:
			if i+2 > len(body) {
				return hr, gpsSession, demuxError(s, i, tag, ErrMalformedMultiSession)
			}
			hrBody = append(hrBody, body[i+1])
			hrOrigin = append(hrOrigin, s.StreamOffset(i+1))
			i += 2
		case TagGPS:
			if i+1 >= len(body) {
				return hr, gpsSession, demuxError(s, i, tag, ErrMalformedMultiSession)
			}
			n := gps.PacketLength(body[i+1])
			if n == 0 || i+1+n > len(body) {
				return hr, gpsSession, demuxError(s, i, tag, ErrMalformedMultiSession)
			}
			gpsBody = append(gpsBody, body[i+1:i+1+n]...)
			for k := i + 1; k < i+1+n; k++ {
				gpsOrigin = append(gpsOrigin, s.StreamOffset(k))
			}
			i += 1 + n
		default:
			return hr, gpsSession, demuxError(s, i, tag, ErrUnknownSubRecordType)
		}
	}
	hr.Body, hr.Origin = hrBody, hrOrigin
	gpsSession.Body, gpsSession.Origin = gpsBody, gpsOrigin
	return hr, gpsSession, nil
}

func subSession(s *eeprom.Session, tag byte) eeprom.Session {
	sub := eeprom.Session{Index: s.Index, Offset: s.Offset, Header: s.Header, Footer: s.Footer}
	sub.Header.Device = tag
	sub.Footer.Device = tag
	return sub
}

func demuxError(s *eeprom.Session, i int, tag byte, err error) error {
	return &DecodeError{Session: s.Index, Offset: s.StreamOffset(i), Tag: tag, Err: err}
}
