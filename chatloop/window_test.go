package chatloop

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWindow(t *testing.T, s Settings) (*Plugin, *fakeHost, *memStore, *fakeClock) {
	t.Helper()
	p, host, store, clock := newTestPlugin(t, s)
	p.OpenConfig()
	return p, host, store, clock
}

func TestWindowClosedDrawsNothing(t *testing.T) {
	_, host, _, _ := newTestPlugin(t, DefaultSettings())
	ui := newScriptUI()
	host.draw(ui)
	assert.Empty(t, ui.texts)
}

func TestWindowCollapsedDrawsNothing(t *testing.T) {
	_, host, _, _ := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	ui.collapse = true
	host.draw(ui)
	assert.Empty(t, ui.texts)
}

func TestWindowShowsCounter(t *testing.T) {
	_, host, _, _ := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	host.draw(ui)

	assert.True(t, ui.hasText("13/500 characters (max)"))
	assert.False(t, ui.hasText("Limit reached"))
	assert.True(t, ui.hasText("Idle"))
}

func TestWindowEditsMessage(t *testing.T) {
	p, host, store, _ := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	ui.input["##msg"] = "Selling potions\r\ncheap!"
	host.draw(ui)

	assert.Equal(t, "Selling potions cheap!", p.Settings().Message)
	assert.Equal(t, "Selling potions cheap!", store.s.Message)
	assert.Equal(t, "Selling potions\r\ncheap!", p.Window().buf, "editor keeps the raw text")
}

// typingUI feeds one rune per frame into the message editor, appending to
// the current buffer the way the host's text field does.
type typingUI struct {
	*scriptUI
	keys []rune
}

func (u *typingUI) InputTextMultiline(id string, v *string, maxBytes int) bool {
	if id != "##msg" || len(u.keys) == 0 {
		return false
	}
	*v += string(u.keys[0])
	u.keys = u.keys[1:]
	return true
}

func TestWindowTypingKeepsSpaces(t *testing.T) {
	for _, tc := range []struct {
		typed, want string
	}{
		{"Hello world", "Hello world"},
		{"Hello\nworld", "Hello world"},
		{"Hello  world ", "Hello  world"},
	} {
		p, host, store, _ := openWindow(t, DefaultSettings())
		p.Window().buf, p.Window().bufSet = "", true
		ui := &typingUI{scriptUI: newScriptUI(), keys: []rune(tc.typed)}
		for range tc.typed {
			host.draw(ui)
		}
		assert.Equal(t, tc.want, p.Settings().Message, "typed %q", tc.typed)
		assert.Equal(t, tc.want, store.s.Message, "typed %q", tc.typed)
	}
}

func TestWindowLimitReached(t *testing.T) {
	p, host, _, _ := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	ui.input["##msg"] = strings.Repeat("m", 900)
	host.draw(ui)
	assert.Len(t, p.Settings().Message, MaxMessageLength)

	ui = newScriptUI()
	host.draw(ui)
	assert.True(t, ui.hasText("500/500 characters (max)"))
	assert.True(t, ui.hasText("Limit reached"))
}

func TestWindowSliderAndCombo(t *testing.T) {
	p, host, store, _ := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	ui.slider["##interval"] = 4000
	ui.combo["##channel"] = int(Linkshell2)
	host.draw(ui)

	assert.Equal(t, MaxIntervalSeconds, p.Settings().IntervalSeconds)
	assert.Equal(t, Linkshell2, store.s.Channel)

	ui = newScriptUI()
	ui.combo["##channel"] = 500
	host.draw(ui)
	assert.Equal(t, Linkshell2, p.Settings().Channel, "out of range selection ignored")
}

func TestWindowToggles(t *testing.T) {
	p, host, store, _ := openWindow(t, DefaultSettings())

	ui := newScriptUI()
	ui.check["Enable (Start/Stop)"] = true
	host.draw(ui)
	assert.True(t, store.s.Enabled)

	ui = newScriptUI()
	ui.buttons["Stop"] = true
	host.draw(ui)
	assert.False(t, p.Settings().Enabled)

	ui = newScriptUI()
	ui.buttons["Start"] = true
	host.draw(ui)
	assert.True(t, p.Settings().Enabled)
}

func TestWindowToggleRestartsCountdown(t *testing.T) {
	p, host, _, _ := openWindow(t, enabledSettings(10))
	for i := 0; i < 12; i++ {
		host.tick(500 * time.Millisecond)
	}
	host.tick(250 * time.Millisecond)
	require.InDelta(t, 6.0, p.Dispatcher().Elapsed(), 1e-9)

	ui := newScriptUI()
	ui.check["Enable (Start/Stop)"] = false
	ui.buttons["Start"] = true
	host.draw(ui)
	require.True(t, p.Settings().Enabled)
	assert.Zero(t, p.Dispatcher().Elapsed())
}

func TestWindowSendNowBypassesTimer(t *testing.T) {
	p, host, _, clock := openWindow(t, DefaultSettings())
	ui := newScriptUI()
	ui.buttons["Send now"] = true
	host.draw(ui)

	assert.Equal(t, []string{"/s Hello, world!"}, host.commands)
	assert.False(t, p.Settings().Enabled, "manual send does not enable the timer")

	clock.Advance(90 * time.Second)
	ui = newScriptUI()
	host.draw(ui)
	assert.True(t, ui.hasText("last sent 1 minute ago"))
	assert.True(t, ui.hasText("(1 total)"))
}

func TestWindowSanitizesStaleSettings(t *testing.T) {
	p, host, store, _ := openWindow(t, DefaultSettings())
	saves := store.saves
	p.cfg.IntervalSeconds = 1

	require.True(t, p.Operational())
	host.draw(newScriptUI())
	assert.Equal(t, MinIntervalSeconds, p.Settings().IntervalSeconds)
	assert.Equal(t, saves+1, store.saves)
}

func TestWindowCountdown(t *testing.T) {
	p, host, _, _ := openWindow(t, enabledSettings(60))
	host.tick(15 * time.Second)
	require.InDelta(t, 15.0, p.Dispatcher().Elapsed(), 1e-9)

	ui := newScriptUI()
	host.draw(ui)
	assert.True(t, ui.hasText("Next message in"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.NotEmpty(t, formatDuration(time.Hour))
	assert.NotEqual(t, formatDuration(5*time.Second), formatDuration(5*time.Minute))
}
