package eeprom

// PageCount returns the number of EEPROM pages needed to hold n bytes.
func PageCount(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 0
	}
	pages := n / pageSize
	if n%pageSize != 0 {
		pages++
	}
	return pages
}

// Deframe strips the transfer marker byte that leads every EEPROM page and
// returns the contiguous logical stream. A trailing partial page keeps
// everything after its marker byte. raw is not modified.
func Deframe(raw []byte) []byte {
	pages := PageCount(len(raw), PageSize)
	out := make([]byte, 0, len(raw)-pages)
	for p := 0; p < pages; p++ {
		start := p*PageSize + 1
		end := (p + 1) * PageSize
		if end > len(raw) {
			end = len(raw)
		}
		if start >= end {
			continue
		}
		out = append(out, raw[start:end]...)
	}
	return out
}

// Frame is the inverse of Deframe: it splits a logical stream into pages of
// DataPageSize bytes and prefixes each with marker. The final page is padded
// with zeros so that the result is a whole number of pages.
func Frame(stream []byte, marker byte) []byte {
	pages := PageCount(len(stream), DataPageSize)
	if pages == 0 {
		pages = 1
	}
	out := make([]byte, pages*PageSize)
	for p := 0; p < pages; p++ {
		out[p*PageSize] = marker
		start := p * DataPageSize
		end := start + DataPageSize
		if end > len(stream) {
			end = len(stream)
		}
		if start < end {
			copy(out[p*PageSize+1:], stream[start:end])
		}
	}
	return out
}
