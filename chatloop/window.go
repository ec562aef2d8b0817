package chatloop

import (
	"fmt"
	"image/color"

	"github.com/sirupsen/logrus"
)

// UI is the immediate-mode widget set a host provides to draw plugin
// windows. Widgets that edit a value return true on the frame the user
// changed it.
type UI interface {
	Begin(title string, open *bool) bool
	End()

	Text(s string)
	TextDisabled(s string)
	TextColored(c color.Color, s string)
	Separator()
	Spacing()
	SameLine()

	Checkbox(label string, v *bool) bool
	InputTextMultiline(id string, v *string, maxBytes int) bool
	SliderInt(id string, v *int, min, max int) bool
	Combo(id string, items []string, selected *int) bool
	Button(label string) bool
}

// editBufferBytes bounds the editor buffer. It is larger than
// MaxMessageLength so pasted text can be normalised before it is cut.
const editBufferBytes = 2048

var warnColor = color.RGBA{R: 0xff, G: 0x99, A: 0xff}

// Window is the configuration panel.
type Window struct {
	IsOpen bool

	title      string
	cfg        *Config
	dispatcher *Dispatcher
	log        logrus.FieldLogger
	status     *statusFormatter

	buf    string
	bufSet bool
}

func newWindow(cfg *Config, d *Dispatcher, svc Services) *Window {
	return &Window{
		title:      PluginName + " - Configuration",
		cfg:        cfg,
		dispatcher: d,
		log:        svc.Log,
		status:     newStatusFormatter(svc.Now),
	}
}

// Draw renders the panel. Errors come from the manual send.
func (w *Window) Draw(ui UI) error {
	if !w.IsOpen {
		return nil
	}
	if !ui.Begin(w.title, &w.IsOpen) {
		ui.End()
		return nil
	}
	defer ui.End()

	cfg := w.cfg
	if cfg.Sanitize() {
		w.log.Debug("[AutoChat] configuration sanitized via window draw; persisting changes")
		cfg.saveOrLog("sanitized settings")
	}

	enabled := cfg.Enabled
	if ui.Checkbox("Enable (Start/Stop)", &enabled) {
		w.setEnabled(enabled, "configuration window")
	}

	ui.Separator()

	// Message
	if !w.bufSet {
		w.buf = cfg.Message
		w.bufSet = true
	}
	ui.Text("Message to Send")
	// buf stays raw while editing so a typed space or newline survives
	// until the next character; only the stored message is normalized.
	if ui.InputTextMultiline("##msg", &w.buf, editBufferBytes) {
		normalized := NormalizeMessage(w.buf)
		if normalized != cfg.Message {
			cfg.Message = normalized
			cfg.saveOrLog("message")
			w.log.Debug("[AutoChat] configuration message updated via window")
		}
	}
	n := len([]rune(cfg.Message))
	ui.TextDisabled(fmt.Sprintf("%d/%d characters (max)", n, MaxMessageLength))
	if n >= MaxMessageLength {
		ui.SameLine()
		ui.TextColored(warnColor, "Limit reached")
	}

	// Interval
	interval := cfg.IntervalSeconds
	ui.Text("Interval (Seconds)")
	if ui.SliderInt("##interval", &interval, MinIntervalSeconds, MaxIntervalSeconds) {
		cfg.IntervalSeconds = ClampInterval(interval)
		cfg.saveOrLog("interval")
		w.log.Debugf("[AutoChat] interval updated to %ds via window", cfg.IntervalSeconds)
	}
	ui.SameLine()
	ui.TextDisabled(w.status.interval(cfg.IntervalSeconds))

	// Channel
	ui.Text("Chat-Channel")
	sel := int(cfg.Channel)
	if ui.Combo("##channel", ChannelNames(), &sel) {
		if c := Channel(sel); c.Valid() && c != cfg.Channel {
			cfg.Channel = c
			cfg.saveOrLog("channel")
			w.log.Debugf("[AutoChat] channel changed to %s via window", cfg.Channel)
		}
	}

	ui.Separator()

	var sendErr error
	if ui.Button("Send now") {
		w.log.Debug("[AutoChat] manual send triggered via configuration window")
		_, sendErr = w.dispatcher.SendNow()
	}
	ui.SameLine()
	label := "Start"
	if cfg.Enabled {
		label = "Stop"
	}
	if ui.Button(label) {
		w.setEnabled(!cfg.Enabled, "quick toggle button")
	}

	ui.TextDisabled(w.status.line(w.dispatcher))

	ui.Spacing()
	ui.TextDisabled("Please note that excessive automated messaging may violate game policies. Use responsibly.")
	return sendErr
}

func (w *Window) setEnabled(on bool, via string) {
	if w.cfg.Enabled != on {
		w.dispatcher.Reset()
	}
	w.cfg.Enabled = on
	w.cfg.saveOrLog("enabled state")
	state := "disabled"
	if on {
		state = "enabled"
	}
	w.log.Infof("[AutoChat] plugin %s via %s", state, via)
}

// resync reloads the editor buffer from the settings, used after the message
// was changed outside the window.
func (w *Window) resync() { w.bufSet = false }
