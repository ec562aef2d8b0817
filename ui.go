package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	dark "github.com/thiagokokada/dark-mode-go"

	"autochat/chatloop"
)

const (
	panelWidth   = 480
	panelPad     = 8
	itemSpacing  = 6
	fieldRows    = 4
	sliderWidth  = 260
	comboWidth   = 220
	windowMargin = 24
)

type uiTheme struct {
	panel, title, text, disabled color.Color
	field, border, accent, error color.Color
	background                   color.Color
}

var (
	darkTheme = uiTheme{
		background: color.RGBA{0x14, 0x15, 0x18, 0xff},
		panel:      color.RGBA{0x22, 0x24, 0x2a, 0xf0},
		title:      color.RGBA{0x2f, 0x45, 0x6b, 0xff},
		text:       color.RGBA{0xe6, 0xe6, 0xe6, 0xff},
		disabled:   color.RGBA{0x8c, 0x8c, 0x8c, 0xff},
		field:      color.RGBA{0x33, 0x36, 0x3e, 0xff},
		border:     color.RGBA{0x55, 0x59, 0x63, 0xff},
		accent:     color.RGBA{0x42, 0x87, 0xf5, 0xff},
		error:      color.RGBA{0xff, 0x5a, 0x5a, 0xff},
	}
	lightTheme = uiTheme{
		background: color.RGBA{0xf2, 0xf2, 0xf2, 0xff},
		panel:      color.RGBA{0xff, 0xff, 0xff, 0xf0},
		title:      color.RGBA{0x9b, 0xbc, 0xee, 0xff},
		text:       color.RGBA{0x1a, 0x1a, 0x1a, 0xff},
		disabled:   color.RGBA{0x80, 0x80, 0x80, 0xff},
		field:      color.RGBA{0xe4, 0xe6, 0xea, 0xff},
		border:     color.RGBA{0xa8, 0xac, 0xb4, 0xff},
		accent:     color.RGBA{0x2a, 0x6d, 0xd9, 0xff},
		error:      color.RGBA{0xc8, 0x1e, 0x1e, 0xff},
	}
)

// pickTheme follows the desktop's dark mode setting, defaulting to dark.
func pickTheme() uiTheme {
	isDark, err := dark.IsDarkMode()
	if err == nil && !isDark {
		return lightTheme
	}
	return darkTheme
}

// uiInput is the input state for one frame.
type uiInput struct {
	mouseX, mouseY float64
	clicked        bool // pressed this frame
	held           bool
	chars          []rune
	backspace      bool
	enter          bool
	paste          string
}

type uiOpKind int

const (
	opRect uiOpKind = iota
	opText
	opLine
)

type uiOp struct {
	kind       uiOpKind
	x, y, w, h float64
	s          string
	c          color.Color
}

type rect struct{ x, y, w, h float64 }

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// immUI implements chatloop.UI. Widgets are laid out and hit-tested while
// plugins draw during Update; the recorded ops are painted in Draw.
type immUI struct {
	face  text.Face
	lineH float64
	theme uiTheme
	in    uiInput

	ops    []uiOp
	popups []uiOp

	windows   int
	originX   float64
	originY   float64
	cursorY   float64
	rowY      float64
	rowBottom float64
	lastRight float64
	sameLine  bool
	panelOp   int

	focus     string
	openCombo string
	drag      string
	frame     int

	// claimed is set when a widget used this frame's click.
	claimed bool
}

var _ chatloop.UI = (*immUI)(nil)

func newImmUI(face text.Face, theme uiTheme) *immUI {
	return &immUI{face: face, lineH: lineHeight(face), theme: theme}
}

// beginFrame starts recording a frame with the given input.
func (u *immUI) beginFrame(in uiInput) {
	u.in = in
	u.ops = u.ops[:0]
	u.popups = u.popups[:0]
	u.windows = 0
	u.claimed = false
	u.frame++
	if !in.held {
		u.drag = ""
	}
}

// endFrame drops focus and closes popups when the click landed elsewhere.
func (u *immUI) endFrame() {
	if u.in.clicked && !u.claimed {
		u.focus = ""
		u.openCombo = ""
	}
}

// wantsKeyboard reports whether a text field has focus.
func (u *immUI) wantsKeyboard() bool { return u.focus != "" }

func (u *immUI) hit(r rect) bool {
	if u.in.clicked && !u.claimed && r.contains(u.in.mouseX, u.in.mouseY) {
		u.claimed = true
		return true
	}
	return false
}

func (u *immUI) rectOp(r rect, c color.Color) {
	u.ops = append(u.ops, uiOp{kind: opRect, x: r.x, y: r.y, w: r.w, h: r.h, c: c})
}

func (u *immUI) textOp(x, y float64, s string, c color.Color) {
	u.ops = append(u.ops, uiOp{kind: opText, x: x, y: y, s: s, c: c})
}

func (u *immUI) lineOp(x0, y0, x1, y1 float64, c color.Color) {
	u.ops = append(u.ops, uiOp{kind: opLine, x: x0, y: y0, w: x1 - x0, h: y1 - y0, c: c})
}

// place reserves a w by h cell on the current row and returns its corner.
func (u *immUI) place(w, h float64) (float64, float64) {
	var x, y float64
	if u.sameLine {
		x, y = u.lastRight+itemSpacing, u.rowY
		u.sameLine = false
	} else {
		x, y = u.originX+panelPad, u.cursorY
		u.rowY = y
		u.rowBottom = y
	}
	u.lastRight = x + w
	if y+h > u.rowBottom {
		u.rowBottom = y + h
	}
	u.cursorY = u.rowBottom + itemSpacing
	return x, y
}

func (u *immUI) contentWidth() float64 { return panelWidth - 2*panelPad }

func (u *immUI) Begin(title string, open *bool) bool {
	if open != nil && !*open {
		u.panelOp = -1
		return false
	}
	u.originX = windowMargin + float64(u.windows*windowMargin)
	u.originY = windowMargin + float64(u.windows*windowMargin)
	u.windows++

	// Placeholder for the panel background; End sizes it.
	u.panelOp = len(u.ops)
	u.rectOp(rect{u.originX, u.originY, panelWidth, 0}, u.theme.panel)

	bar := rect{u.originX, u.originY, panelWidth, u.lineH + 4}
	u.rectOp(bar, u.theme.title)
	u.textOp(u.originX+panelPad, u.originY+2, title, u.theme.text)
	if open != nil {
		closeBox := rect{u.originX + panelWidth - u.lineH - 2, u.originY + 2, u.lineH, u.lineH}
		u.textOp(closeBox.x+u.lineH/4, closeBox.y, "x", u.theme.text)
		if u.hit(closeBox) {
			*open = false
		}
	}
	u.cursorY = bar.y + bar.h + itemSpacing
	u.sameLine = false
	return true
}

func (u *immUI) End() {
	if u.panelOp >= 0 && u.panelOp < len(u.ops) {
		u.ops[u.panelOp].h = u.cursorY - u.originY + panelPad - itemSpacing
	}
}

func (u *immUI) Text(s string)                       { u.wrapped(s, u.theme.text) }
func (u *immUI) TextDisabled(s string)               { u.wrapped(s, u.theme.disabled) }
func (u *immUI) Separator()                          { u.separator() }
func (u *immUI) SameLine()                           { u.sameLine = true }
func (u *immUI) Spacing()                            { u.cursorY += itemSpacing }
func (u *immUI) TextColored(c color.Color, s string) { u.wrapped(s, c) }

func (u *immUI) wrapped(s string, c color.Color) {
	maxW := u.contentWidth()
	if u.sameLine {
		maxW = u.originX + panelWidth - panelPad - u.lastRight - itemSpacing
	}
	w, lines := wrapText(s, u.face, math.Max(maxW, 40))
	x, y := u.place(float64(w), float64(len(lines))*u.lineH)
	for i, line := range lines {
		u.textOp(x, y+float64(i)*u.lineH, line, c)
	}
}

func (u *immUI) separator() {
	_, y := u.place(u.contentWidth(), 1)
	u.lineOp(u.originX+panelPad, y, u.originX+panelWidth-panelPad, y, u.theme.border)
}

func (u *immUI) Checkbox(label string, v *bool) bool {
	box := u.lineH - 4
	w := box + itemSpacing + measureWidth(label, u.face)
	x, y := u.place(w, u.lineH)
	r := rect{x, y, w, u.lineH}
	u.rectOp(rect{x, y + 2, box, box}, u.theme.field)
	if *v {
		u.rectOp(rect{x + 3, y + 5, box - 6, box - 6}, u.theme.accent)
	}
	u.textOp(x+box+itemSpacing, y, label, u.theme.text)
	if u.hit(r) {
		*v = !*v
		return true
	}
	return false
}

func (u *immUI) Button(label string) bool {
	w := measureWidth(label, u.face) + 2*panelPad
	x, y := u.place(w, u.lineH+4)
	r := rect{x, y, w, u.lineH + 4}
	u.rectOp(r, u.theme.border)
	u.textOp(x+panelPad, y+2, label, u.theme.text)
	return u.hit(r)
}

// InputTextMultiline edits *v while focused. Enter inserts a newline and
// the buffer never grows past maxBytes.
func (u *immUI) InputTextMultiline(id string, v *string, maxBytes int) bool {
	w := u.contentWidth()
	_, lines := wrapText(*v, u.face, w-2*panelPad)
	rows := len(lines)
	if rows < fieldRows {
		rows = fieldRows
	}
	if rows > 2*fieldRows {
		rows = 2 * fieldRows
	}
	h := float64(rows)*u.lineH + 4
	x, y := u.place(w, h)
	r := rect{x, y, w, h}
	if u.hit(r) {
		u.focus = id
	}

	before := *v
	if u.focus == id {
		buf := *v
		if len(u.in.chars) > 0 {
			buf += string(u.in.chars)
		}
		if u.in.paste != "" {
			buf += u.in.paste
		}
		if u.in.enter {
			buf += "\n"
		}
		if u.in.backspace && buf != "" {
			_, size := utf8.DecodeLastRuneInString(buf)
			buf = buf[:len(buf)-size]
		}
		*v = clipBytes(buf, maxBytes)
	}

	border := u.theme.border
	if u.focus == id {
		border = u.theme.accent
	}
	u.rectOp(r, border)
	u.rectOp(rect{x + 1, y + 1, w - 2, h - 2}, u.theme.field)

	_, lines = wrapText(*v, u.face, w-2*panelPad)
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		ly := y + 2 + float64(i)*u.lineH
		u.textOp(x+panelPad, ly, line, u.theme.text)
		u.underlineMisspellings(x+panelPad, ly+u.lineH-2, line)
	}
	if u.focus == id && (u.frame/30)%2 == 0 {
		last := ""
		if len(lines) > 0 {
			last = lines[len(lines)-1]
		}
		cx := x + panelPad + measureWidth(last, u.face)
		cy := y + 2 + float64(max(len(lines)-1, 0))*u.lineH
		u.lineOp(cx, cy+2, cx, cy+u.lineH-2, u.theme.text)
	}
	if u.focus == id {
		u.suggest(*v)
	}
	return *v != before
}

func (u *immUI) underlineMisspellings(x, y float64, line string) {
	rs := []rune(line)
	for _, sp := range findMisspellings(line) {
		x0 := x + measureWidth(string(rs[:sp.Start]), u.face)
		x1 := x + measureWidth(string(rs[:sp.End]), u.face)
		u.lineOp(x0, y, x1, y, u.theme.error)
	}
}

// suggest offers corrections for the word being typed.
func (u *immUI) suggest(s string) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
	if len(fields) == 0 || !strings.HasSuffix(s, fields[len(fields)-1]) {
		return
	}
	word := strings.ToLower(fields[len(fields)-1])
	if len(findMisspellings(word)) == 0 {
		return
	}
	if sug := suggestCorrections(word, 3); len(sug) > 0 {
		u.wrapped("Did you mean: "+strings.Join(sug, ", "), u.theme.disabled)
	}
}

func isWordRune(r rune) bool { return r == '\'' || unicode.IsLetter(r) }

// clipBytes cuts s to at most n bytes without splitting a rune.
func clipBytes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (u *immUI) SliderInt(id string, v *int, min, max int) bool {
	x, y := u.place(sliderWidth, u.lineH+4)
	r := rect{x, y, sliderWidth, u.lineH + 4}
	if u.hit(r) {
		u.drag = id
	}
	before := *v
	if u.drag == id && u.in.held && max > min {
		frac := (u.in.mouseX - x) / sliderWidth
		frac = math.Min(math.Max(frac, 0), 1)
		*v = min + int(math.Round(frac*float64(max-min)))
	}
	u.rectOp(r, u.theme.field)
	if max > min {
		frac := float64(*v-min) / float64(max-min)
		frac = math.Min(math.Max(frac, 0), 1)
		u.rectOp(rect{x, y, frac * sliderWidth, r.h}, u.theme.accent)
	}
	label := fmt.Sprintf("%d", *v)
	u.textOp(x+(sliderWidth-measureWidth(label, u.face))/2, y+2, label, u.theme.text)
	return *v != before
}

func (u *immUI) Combo(id string, items []string, selected *int) bool {
	x, y := u.place(comboWidth, u.lineH+4)
	r := rect{x, y, comboWidth, u.lineH + 4}
	current := ""
	if *selected >= 0 && *selected < len(items) {
		current = items[*selected]
	}
	u.rectOp(r, u.theme.field)
	u.textOp(x+panelPad, y+2, current, u.theme.text)
	u.textOp(x+comboWidth-panelPad-measureWidth("v", u.face), y+2, "v", u.theme.disabled)

	changed := false
	if u.openCombo == id {
		list := rect{x, y + r.h, comboWidth, float64(len(items)) * u.lineH}
		u.popups = append(u.popups, uiOp{kind: opRect, x: list.x, y: list.y, w: list.w, h: list.h, c: u.theme.panel})
		for i, item := range items {
			c := u.theme.text
			if i == *selected {
				c = u.theme.accent
			}
			u.popups = append(u.popups, uiOp{kind: opText, x: x + panelPad, y: list.y + float64(i)*u.lineH, s: item, c: c})
		}
		if u.hit(list) {
			i := int((u.in.mouseY - list.y) / u.lineH)
			if i >= 0 && i < len(items) && i != *selected {
				*selected = i
				changed = true
			}
			u.openCombo = ""
		} else if u.hit(r) {
			u.openCombo = ""
		}
		return changed
	}
	if u.hit(r) {
		u.openCombo = id
	}
	return false
}

// paint draws the recorded frame onto screen.
func (u *immUI) paint(screen *ebiten.Image) {
	for _, op := range u.ops {
		u.paintOp(screen, op)
	}
	for _, op := range u.popups {
		u.paintOp(screen, op)
	}
}

func (u *immUI) paintOp(screen *ebiten.Image, op uiOp) {
	switch op.kind {
	case opRect:
		vector.DrawFilledRect(screen, float32(op.x), float32(op.y), float32(op.w), float32(op.h), op.c, false)
	case opLine:
		vector.StrokeLine(screen, float32(op.x), float32(op.y), float32(op.x+op.w), float32(op.y+op.h), 1, op.c, false)
	case opText:
		do := &text.DrawOptions{}
		do.GeoM.Translate(op.x, op.y)
		do.ColorScale.ScaleWithColor(op.c)
		text.Draw(screen, op.s, u.face, do)
	}
}
