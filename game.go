package main

import (
	"image/color"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	clipboard "golang.design/x/clipboard"
)

const (
	initialWindowW, initialWindowH = 960, 640

	maxHistory    = 100
	consoleRows   = 6
	keyRepeatRate = 32 * time.Millisecond
)

// clipboardReady is set once clipboard.Init succeeds.
var clipboardReady bool

func readClipboard() string {
	if !clipboardReady {
		return ""
	}
	return string(clipboard.Read(clipboard.FmtText))
}

func writeClipboard(s string) {
	if clipboardReady {
		clipboard.Write(clipboard.FmtText, []byte(s))
	}
}

// inputBar is the chat entry line with command history.
type inputBar struct {
	text       []rune
	pos        int
	history    []string
	historyPos int
}

func (b *inputBar) insert(rs []rune) {
	if len(rs) == 0 {
		return
	}
	b.pos = min(max(b.pos, 0), len(b.text))
	b.text = append(b.text[:b.pos], append(append([]rune(nil), rs...), b.text[b.pos:]...)...)
	b.pos += len(rs)
}

func (b *inputBar) backspace() {
	if b.pos <= 0 || len(b.text) == 0 {
		return
	}
	b.text = append(b.text[:b.pos-1], b.text[b.pos:]...)
	b.pos--
}

func (b *inputBar) left() {
	if b.pos > 0 {
		b.pos--
	}
}

func (b *inputBar) right() {
	if b.pos < len(b.text) {
		b.pos++
	}
}

func (b *inputBar) set(s string) {
	b.text = []rune(s)
	b.pos = len(b.text)
}

func (b *inputBar) historyUp() {
	if len(b.history) == 0 {
		return
	}
	if b.historyPos > 0 {
		b.historyPos--
	} else {
		b.historyPos = 0
	}
	b.set(b.history[b.historyPos])
}

func (b *inputBar) historyDown() {
	if len(b.history) == 0 {
		return
	}
	if b.historyPos < len(b.history)-1 {
		b.historyPos++
		b.set(b.history[b.historyPos])
		return
	}
	b.historyPos = len(b.history)
	b.set("")
}

// take returns the line, records it in the history and clears the bar.
func (b *inputBar) take() string {
	line := strings.TrimSpace(string(b.text))
	b.set("")
	if line != "" {
		if n := len(b.history); n == 0 || b.history[n-1] != line {
			b.history = append(b.history, line)
		}
		if len(b.history) > maxHistory {
			b.history = b.history[len(b.history)-maxHistory:]
		}
	}
	b.historyPos = len(b.history)
	return line
}

// submitLine runs a line typed by the user. Plain text goes to /say.
func submitLine(h *pluginHost, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		line = "/s " + line
	}
	return h.run(userOwner, line)
}

// Game is the sandbox client: a chat pane, a console pane, an input bar and
// whatever windows the plugins draw.
type Game struct {
	host  *pluginHost
	ui    *immUI
	face  text.Face
	theme uiTheme
	input inputBar

	now           func() time.Time
	last          time.Time
	lastBackspace time.Time
	width, height int

	quit atomic.Bool
}

func newGame(h *pluginHost, face text.Face, theme uiTheme) *Game {
	return &Game{
		host:   h,
		ui:     newImmUI(face, theme),
		face:   face,
		theme:  theme,
		now:    time.Now,
		width:  initialWindowW,
		height: initialWindowH,
	}
}

// frameDelta returns the time since the previous frame. The first frame
// gets one tick.
func (g *Game) frameDelta(now time.Time) time.Duration {
	var delta time.Duration
	if g.last.IsZero() {
		delta = time.Second / time.Duration(ebiten.TPS())
	} else {
		delta = now.Sub(g.last)
	}
	g.last = now
	if delta < 0 {
		delta = 0
	}
	return delta
}

func (g *Game) Update() error {
	if g.quit.Load() {
		return ebiten.Termination
	}
	now := g.now()
	g.host.update(g.frameDelta(now))

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.host.openUI()
	}

	in := g.pollInput(now)
	keyboardToUI := g.ui.wantsKeyboard()
	uiIn := in
	if !keyboardToUI {
		uiIn.chars, uiIn.backspace, uiIn.enter, uiIn.paste = nil, false, false, ""
	}
	g.ui.beginFrame(uiIn)
	g.host.draw(g.ui)
	g.ui.endFrame()

	if !keyboardToUI {
		g.updateInputBar(in)
	}
	return nil
}

func (g *Game) pollInput(now time.Time) uiInput {
	mx, my := ebiten.CursorPosition()
	in := uiInput{
		mouseX:  float64(mx),
		mouseY:  float64(my),
		clicked: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		held:    ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		chars:   ebiten.AppendInputChars(nil),
		enter:   inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) ||
		(inpututil.KeyPressDuration(ebiten.KeyBackspace) > 30 && now.Sub(g.lastBackspace) > keyRepeatRate) {
		in.backspace = true
		g.lastBackspace = now
	}
	if ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		in.paste = readClipboard()
	}
	return in
}

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) updateInputBar(in uiInput) {
	b := &g.input
	b.insert(in.chars)
	if in.paste != "" {
		b.insert([]rune(strings.ReplaceAll(in.paste, "\n", " ")))
	}
	if ctrlPressed() && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		writeClipboard(string(b.text))
	}
	if in.backspace {
		b.backspace()
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		b.left()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		b.right()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		b.historyUp()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		b.historyDown()
	}
	if in.enter {
		if err := submitLine(g.host, b.take()); err != nil {
			consoleMessage(err.Error())
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.theme.background)

	lh := g.ui.lineH
	w := float64(g.width)
	inputY := float64(g.height) - lh - 8
	consoleTop := inputY - float64(consoleRows)*lh - 8

	g.drawLines(screen, chatLog.Snapshot(), 8, consoleTop-4)
	vector.StrokeLine(screen, 0, float32(consoleTop-2), float32(w), float32(consoleTop-2), 1, g.theme.border, false)
	g.drawLines(screen, consoleLog.Snapshot(), consoleTop, inputY-4)

	vector.DrawFilledRect(screen, 0, float32(inputY-2), float32(w), float32(lh+8), g.theme.field, false)
	prompt := "> " + string(g.input.text)
	g.drawText(screen, prompt, 8, inputY+2, g.theme.text)
	if !g.ui.wantsKeyboard() {
		cx := 8 + measureWidth("> "+string(g.input.text[:g.input.pos]), g.face)
		vector.StrokeLine(screen, float32(cx), float32(inputY+2), float32(cx), float32(inputY+lh), 1, g.theme.text, false)
	}

	g.ui.paint(screen)
}

// drawLines fills [top, bottom) with the newest messages that fit.
func (g *Game) drawLines(screen *ebiten.Image, msgs []timedMessage, top, bottom float64) {
	lh := g.ui.lineH
	maxW := float64(g.width) - 16
	y := bottom
	for i := len(msgs) - 1; i >= 0 && y > top; i-- {
		m := msgs[i]
		line := m.Text
		if gs.ConsoleTimestamps {
			line = "[" + m.Time.Format(gs.TimestampFormat) + "] " + line
		}
		_, rows := wrapText(line, g.face, maxW)
		c := g.theme.text
		if m.Err {
			c = g.theme.error
		}
		for j := len(rows) - 1; j >= 0 && y-lh >= top; j-- {
			y -= lh
			g.drawText(screen, rows[j], 8, y, c)
		}
	}
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.face, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	if outsideWidth > 512 && outsideHeight > 384 {
		gs.WindowWidth, gs.WindowHeight = outsideWidth, outsideHeight
	}
	return outsideWidth, outsideHeight
}
