package adapter

import (
	"bytes"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// ESC/POS command bytes.
// Reference: Epson ESC/POS Application Programming Guide.
const (
	esc = 0x1B
	gs  = 0x1D
)

// Encode turns a rendered ticket into the ESC/POS byte stream understood by
// Epson-compatible thermal printers. Each line carries its own style
// commands; the cut marker becomes a partial cut with feed.
func Encode(t *ticket.Ticket) []byte {
	var buf bytes.Buffer

	// ESC @ - initialize printer
	buf.Write([]byte{esc, '@'})

	for _, line := range t.Lines {
		writeStyle(&buf, line.Style)
		buf.WriteString(line.Text)
		buf.WriteByte('\n')
	}

	if t.Cut {
		// Feed past the tear bar, then GS V partial cut
		buf.Write([]byte{'\n', '\n'})
		buf.Write([]byte{gs, 'V', 66, 0})
	}

	return buf.Bytes()
}

func writeStyle(buf *bytes.Buffer, s ticket.Style) {
	// ESC a - justification
	var align byte
	switch s.Align {
	case ticket.AlignCenter:
		align = 1
	case ticket.AlignRight:
		align = 2
	}
	buf.Write([]byte{esc, 'a', align})

	// ESC E - emphasis
	var bold byte
	if s.Bold {
		bold = 1
	}
	buf.Write([]byte{esc, 'E', bold})

	// GS B - reverse black/white
	var invert byte
	if s.Invert {
		invert = 1
	}
	buf.Write([]byte{gs, 'B', invert})

	// GS ! - character size, width in the high nibble
	w, h := s.Width, s.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	buf.Write([]byte{gs, '!', byte((w-1)<<4 | (h - 1))})
}
