// Package ticket renders orders into styled thermal-printer tickets. The
// model mirrors the ESC/POS command set: a mutable style applied to each
// emitted text line, plus a terminal paper-cut marker.
package ticket

import "strings"

// PaperWidth is the line width of an 80mm thermal roll in character cells.
const PaperWidth = 48

// Align is the horizontal alignment of a printed line.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Style is the text decoration applied to a line. The zero value is the
// printer default (plain, single size, left aligned); Width and Height
// below 1 are treated as 1.
type Style struct {
	Bold   bool
	Width  int
	Height int
	Invert bool
	Align  Align
}

func (s Style) normalized() Style {
	if s.Width < 1 {
		s.Width = 1
	}
	if s.Height < 1 {
		s.Height = 1
	}
	return s
}

// Scaled reports whether the line uses an enlarged font.
func (s Style) Scaled() bool {
	return s.Width > 1 || s.Height > 1
}

// Line is one emitted text line with the style that was active when it was
// emitted.
type Line struct {
	Text  string
	Style Style
}

// Styled returns the display form of the line: scaling is approximated by
// uppercasing, bold and invert become textual decorations, and alignment
// pads against the given width. The result never exceeds width cells.
// Blank lines pass through untouched.
func (l Line) Styled(width int) string {
	if l.Text == "" {
		return ""
	}
	out := l.Text
	if l.Style.Scaled() {
		out = strings.ToUpper(out)
	}
	if l.Style.Bold {
		out = "**" + out + "**"
	}
	if l.Style.Invert {
		out = "!! " + out + " !!"
	}
	runes := []rune(out)
	switch l.Style.Align {
	case AlignCenter:
		if pad := (width - len(runes)) / 2; pad > 0 {
			runes = append([]rune(strings.Repeat(" ", pad)), runes...)
		}
	case AlignRight:
		if pad := width - len(runes); pad > 0 {
			runes = append([]rune(strings.Repeat(" ", pad)), runes...)
		}
	}
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}

// Ticket is a fully rendered print job: styled lines plus the terminal cut
// marker. It carries no state shared with the renderer that produced it.
type Ticket struct {
	Lines []Line
	Cut   bool
}

// Text returns the plain text of every line joined by newlines, without
// styling. Useful for assertions and diagnostics.
func (t *Ticket) Text() string {
	parts := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// Builder accumulates styled lines the way code drives an ESC/POS printer:
// set a style, emit text, eventually cut.
type Builder struct {
	style  Style
	ticket Ticket
}

func NewBuilder() *Builder {
	return &Builder{style: Style{}.normalized()}
}

// Set replaces the active style. Fields left at their zero value revert to
// the printer default, matching escpos set() semantics.
func (b *Builder) Set(s Style) {
	b.style = s.normalized()
}

// Reset restores the default style.
func (b *Builder) Reset() {
	b.Set(Style{})
}

// Text emits one or more lines under the active style. Embedded newlines
// split into separate lines; empty lines are emitted unstyled.
func (b *Builder) Text(s string) {
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			b.ticket.Lines = append(b.ticket.Lines, Line{})
			continue
		}
		b.ticket.Lines = append(b.ticket.Lines, Line{Text: line, Style: b.style})
	}
}

// Rule emits a full-width separator of the given character.
func (b *Builder) Rule(ch string) {
	b.Text(strings.Repeat(ch, PaperWidth))
}

// Feed emits n blank lines.
func (b *Builder) Feed(n int) {
	for i := 0; i < n; i++ {
		b.Text("")
	}
}

// Cut marks the end of the ticket.
func (b *Builder) Cut() {
	b.ticket.Cut = true
}

// Ticket returns the accumulated ticket.
func (b *Builder) Ticket() *Ticket {
	return &b.ticket
}
