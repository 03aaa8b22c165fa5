package eeprom

import (
	"bufio"
	"fmt"
	"io"
)

// Dump writes a hex listing of a raw EEPROM image, 16 bytes per line with
// the byte offset in front and an empty line between pages.
func Dump(w io.Writer, raw []byte) error {
	bw := bufio.NewWriter(w)
	for i, b := range raw {
		if i > 0 && i%PageSize == 0 {
			bw.WriteString("\n")
		}
		if i%16 == 0 {
			fmt.Fprintf(bw, "\n%08x:\t", i)
		}
		fmt.Fprintf(bw, "%02x ", b)
	}
	bw.WriteString("\n")
	return bw.Flush()
}
