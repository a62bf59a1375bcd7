package pdfpage

import (
	"strconv"
)

// streamScanner walks a decoded PDF page content stream and collects the
// drawn geometry and text marks together with the color state they were
// painted under. It tracks only what the deletion detector and the table
// grid need: path construction, paint operators, color operators, and
// text positioning/showing. Transformation matrices are not applied; SOV
// forms are drawn in unrotated page space.
type streamScanner struct {
	data []byte
	pos  int

	// operand accumulation
	nums    []float64
	lastStr string
	arrStr  string

	// graphics state
	stroke Color
	fill   Color
	stack  []scannerState

	// current path
	curX, curY float64
	pending    []Segment

	// text state
	fontSize float64
	leading  float64
	tx, ty   float64
	lineX    float64

	segments []Segment
	marks    []Mark
}

type scannerState struct {
	stroke Color
	fill   Color
}

// scanContent extracts segments and marks from one page's content stream.
func scanContent(data []byte) ([]Segment, []Mark) {
	s := &streamScanner{
		data:   data,
		stroke: Color{},
		fill:   Color{},
	}
	s.run()
	return s.segments, s.marks
}

func (s *streamScanner) run() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isStreamSpace(c):
			s.pos++
		case c == '%':
			s.skipLine()
		case c == '/':
			s.readName()
		case c == '(':
			s.lastStr = s.readLiteralString()
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.skipDict()
			} else {
				s.lastStr = s.readHexString()
			}
		case c == '[':
			s.pos++
			s.arrStr = ""
			s.readArray()
		case c == ']':
			s.pos++
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			s.readNumber()
		default:
			op := s.readOperator()
			s.apply(op)
		}
	}
}

// readArray collects the string operands of a TJ-style array, ignoring
// kerning numbers.
func (s *streamScanner) readArray() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == ']':
			s.pos++
			s.lastStr = s.arrStr
			return
		case c == '(':
			s.arrStr += s.readLiteralString()
		case c == '<':
			s.arrStr += s.readHexString()
		default:
			s.pos++
		}
	}
}

func (s *streamScanner) apply(op string) {
	switch op {
	// graphics state
	case "q":
		s.stack = append(s.stack, scannerState{stroke: s.stroke, fill: s.fill})
	case "Q":
		if n := len(s.stack); n > 0 {
			st := s.stack[n-1]
			s.stack = s.stack[:n-1]
			s.stroke, s.fill = st.stroke, st.fill
		}

	// color operators
	case "RG":
		if c, ok := s.popRGB(); ok {
			s.stroke = c
		}
	case "rg":
		if c, ok := s.popRGB(); ok {
			s.fill = c
		}
	case "G":
		if g, ok := s.pop1(); ok {
			s.stroke = Color{R: g, G: g, B: g}
		}
	case "g":
		if g, ok := s.pop1(); ok {
			s.fill = Color{R: g, G: g, B: g}
		}
	case "K":
		if c, ok := s.popCMYK(); ok {
			s.stroke = c
		}
	case "k":
		if c, ok := s.popCMYK(); ok {
			s.fill = c
		}
	case "SC", "SCN":
		if c, ok := s.popColorN(); ok {
			s.stroke = c
		}
	case "sc", "scn":
		if c, ok := s.popColorN(); ok {
			s.fill = c
		}

	// path construction
	case "m":
		if len(s.nums) >= 2 {
			n := len(s.nums)
			s.curX, s.curY = s.nums[n-2], s.nums[n-1]
		}
	case "l":
		if len(s.nums) >= 2 {
			n := len(s.nums)
			x, y := s.nums[n-2], s.nums[n-1]
			s.pending = append(s.pending, Segment{Kind: SegmentLine, BBox: normRect(s.curX, s.curY, x, y)})
			s.curX, s.curY = x, y
		}
	case "c", "v", "y":
		need := 6
		if op != "c" {
			need = 4
		}
		if len(s.nums) >= need {
			n := len(s.nums)
			x, y := s.nums[n-2], s.nums[n-1]
			bbox := normRect(s.curX, s.curY, x, y)
			for i := n - need; i < n-2; i += 2 {
				bbox = expandRect(bbox, s.nums[i], s.nums[i+1])
			}
			s.pending = append(s.pending, Segment{Kind: SegmentCurve, BBox: bbox})
			s.curX, s.curY = x, y
		}
	case "re":
		if len(s.nums) >= 4 {
			n := len(s.nums)
			x, y, w, h := s.nums[n-4], s.nums[n-3], s.nums[n-2], s.nums[n-1]
			s.pending = append(s.pending,
				Segment{Kind: SegmentRectEdge, BBox: normRect(x, y, x+w, y)},
				Segment{Kind: SegmentRectEdge, BBox: normRect(x, y+h, x+w, y+h)},
				Segment{Kind: SegmentRectEdge, BBox: normRect(x, y, x, y+h)},
				Segment{Kind: SegmentRectEdge, BBox: normRect(x+w, y, x+w, y+h)},
			)
			s.curX, s.curY = x, y
		}

	// path painting
	case "S", "s", "B", "B*", "b", "b*":
		s.emitPending(s.stroke)
	case "f", "F", "f*":
		s.emitPending(s.fill)
	case "n":
		s.pending = s.pending[:0]

	// text state and positioning
	case "BT":
		s.tx, s.ty, s.lineX = 0, 0, 0
	case "ET":
	case "Tf":
		if sz, ok := s.pop1(); ok {
			s.fontSize = sz
		}
	case "TL":
		if l, ok := s.pop1(); ok {
			s.leading = l
		}
	case "Td":
		if len(s.nums) >= 2 {
			n := len(s.nums)
			s.lineX += s.nums[n-2]
			s.ty += s.nums[n-1]
			s.tx = s.lineX
		}
	case "TD":
		if len(s.nums) >= 2 {
			n := len(s.nums)
			s.leading = -s.nums[n-1]
			s.lineX += s.nums[n-2]
			s.ty += s.nums[n-1]
			s.tx = s.lineX
		}
	case "Tm":
		if len(s.nums) >= 6 {
			n := len(s.nums)
			s.lineX = s.nums[n-2]
			s.tx = s.nums[n-2]
			s.ty = s.nums[n-1]
		}
	case "T*":
		s.ty -= s.leading
		s.tx = s.lineX

	// text showing
	case "Tj":
		s.emitMark(s.lastStr)
	case "'":
		s.ty -= s.leading
		s.tx = s.lineX
		s.emitMark(s.lastStr)
	case "\"":
		s.ty -= s.leading
		s.tx = s.lineX
		s.emitMark(s.lastStr)
	case "TJ":
		s.emitMark(s.lastStr)

	case "BI":
		s.skipInlineImage()
	}

	s.nums = s.nums[:0]
}

func (s *streamScanner) emitPending(c Color) {
	for _, seg := range s.pending {
		seg.Stroke = c
		s.segments = append(s.segments, seg)
	}
	s.pending = s.pending[:0]
}

func (s *streamScanner) emitMark(text string) {
	if text == "" {
		return
	}
	size := s.fontSize
	if size <= 0 {
		size = 10
	}
	// Advance width is approximated; marks are only inspected for color
	// and rough position.
	w := 0.5 * size * float64(len(text))
	s.marks = append(s.marks, Mark{
		Text: text,
		BBox: Rect{X0: s.tx, Y0: s.ty, X1: s.tx + w, Y1: s.ty + size},
		Fill: s.fill,
	})
	s.tx += w
}

// operand helpers

func (s *streamScanner) pop1() (float64, bool) {
	if len(s.nums) < 1 {
		return 0, false
	}
	return s.nums[len(s.nums)-1], true
}

func (s *streamScanner) popRGB() (Color, bool) {
	if len(s.nums) < 3 {
		return Color{}, false
	}
	n := len(s.nums)
	return Color{R: s.nums[n-3], G: s.nums[n-2], B: s.nums[n-1]}, true
}

func (s *streamScanner) popCMYK() (Color, bool) {
	if len(s.nums) < 4 {
		return Color{}, false
	}
	n := len(s.nums)
	c, m, y, k := s.nums[n-4], s.nums[n-3], s.nums[n-2], s.nums[n-1]
	return Color{
		R: (1 - c) * (1 - k),
		G: (1 - m) * (1 - k),
		B: (1 - y) * (1 - k),
	}, true
}

// popColorN interprets SCN/scn operands: three components are treated as
// RGB, one as gray; anything else (patterns, separation) is ignored.
func (s *streamScanner) popColorN() (Color, bool) {
	switch len(s.nums) {
	case 3:
		return s.popRGB()
	case 1:
		g, _ := s.pop1()
		return Color{R: g, G: g, B: g}, true
	default:
		return Color{}, false
	}
}

// lexing helpers

func isStreamSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *streamScanner) skipLine() {
	for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
		s.pos++
	}
}

func (s *streamScanner) readName() {
	s.pos++ // leading slash
	for s.pos < len(s.data) && !isStreamSpace(s.data[s.pos]) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
}

func (s *streamScanner) readNumber() {
	start := s.pos
	s.pos++
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			s.pos++
		} else {
			break
		}
	}
	if v, err := strconv.ParseFloat(string(s.data[start:s.pos]), 64); err == nil {
		s.nums = append(s.nums, v)
	}
}

func (s *streamScanner) readOperator() string {
	start := s.pos
	for s.pos < len(s.data) && !isStreamSpace(s.data[s.pos]) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		// lone delimiter that nothing consumed; step over it
		s.pos++
		return ""
	}
	return string(s.data[start:s.pos])
}

// readLiteralString decodes a (...) string including balanced parentheses
// and the standard escape sequences.
func (s *streamScanner) readLiteralString() string {
	s.pos++ // opening paren
	var out []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return string(out)
			}
			e := s.data[s.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b', 'f':
			case '(', ')', '\\':
				out = append(out, e)
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && s.pos+1 < len(s.data); k++ {
						nx := s.data[s.pos+1]
						if nx < '0' || nx > '7' {
							break
						}
						s.pos++
						val = val*8 + int(nx-'0')
					}
					out = append(out, byte(val))
				}
			}
			s.pos++
		case '(':
			depth++
			out = append(out, c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return string(out)
			}
			out = append(out, c)
		default:
			out = append(out, c)
			s.pos++
		}
	}
	return string(out)
}

func (s *streamScanner) readHexString() string {
	s.pos++ // opening angle
	var out []byte
	var hi byte
	half := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
			half = false
		} else {
			hi = v
			half = true
		}
	}
	if half {
		out = append(out, hi<<4)
	}
	return string(out)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (s *streamScanner) skipDict() {
	depth := 0
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == '<' && s.data[s.pos+1] == '<' {
			depth++
			s.pos += 2
			continue
		}
		if s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			depth--
			s.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		s.pos++
	}
	s.pos = len(s.data)
}

func (s *streamScanner) skipInlineImage() {
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			(s.pos == 0 || isStreamSpace(s.data[s.pos-1])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}

func normRect(x0, y0, x1, y1 float64) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func expandRect(r Rect, x, y float64) Rect {
	if x < r.X0 {
		r.X0 = x
	}
	if x > r.X1 {
		r.X1 = x
	}
	if y < r.Y0 {
		r.Y0 = y
	}
	if y > r.Y1 {
		r.Y1 = y
	}
	return r
}
