package eeprom

// Split slices the logical stream into sessions using the boundaries from
// ReadAccessTable. The first session starts at FirstSession and every later
// session starts where the previous one ended. Any boundary that is not
// strictly increasing, leaves room for less than a header and footer, or
// points past the stream fails with ErrCorruptedIndex: once one boundary
// is wrong none of the following ones can be trusted.
func Split(stream []byte, ends []int) ([]Session, error) {
	sessions := make([]Session, 0, len(ends))
	start := FirstSession
	for i, end := range ends {
		slot := i + 1
		if end <= start {
			return nil, &IndexError{Slot: slot, Start: start, End: end, Reason: "address not increasing"}
		}
		bodyLen := end - start - HeaderSize - FooterSize
		if bodyLen < 0 {
			return nil, &IndexError{Slot: slot, Start: start, End: end, Reason: "session shorter than header and footer"}
		}
		if end > len(stream) {
			return nil, &IndexError{Slot: slot, Start: start, End: end, Reason: "address beyond image"}
		}
		hdr, err := ParseHeader(stream[start : start+HeaderSize])
		if err != nil {
			return nil, err
		}
		ftr, err := ParseHeader(stream[end-FooterSize : end])
		if err != nil {
			return nil, err
		}
		bodyStart := start + HeaderSize
		sessions = append(sessions, Session{
			Index:  i,
			Offset: start,
			Header: hdr,
			Footer: ftr,
			Body:   stream[bodyStart : bodyStart+bodyLen : bodyStart+bodyLen],
		})
		start = end
	}
	return sessions, nil
}

// Sessions runs the deframer, the access table walk and the splitter over
// a raw EEPROM image.
func Sessions(raw []byte) ([]byte, []Session, error) {
	stream := Deframe(raw)
	ends, err := ReadAccessTable(stream)
	if err != nil {
		return stream, nil, err
	}
	sessions, err := Split(stream, ends)
	if err != nil {
		return stream, nil, err
	}
	return stream, sessions, nil
}
