package chatloop

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// PluginName is the owner name the plugin registers its hooks under.
	PluginName = "AutoChat"
	// CommandName is the slash command that opens the configuration window.
	CommandName = "/autochat"
)

const commandHelp = "Opens the AutoChat configuration window. " +
	"Also: on, off, toggle, send, status, channel <name>, interval <seconds>, message <text>."

// Plugin wires the dispatcher, window and fail-safe controller to the host.
type Plugin struct {
	svc        Services
	log        logrus.FieldLogger
	cfg        *Config
	dispatcher *Dispatcher
	window     *Window
	hooks      *hookSet
	failsafe   *Controller
}

// New loads the settings and attaches the plugin to the host. It only
// returns an error when a required service is missing. A failure while
// starting up trips the fail-safe instead; check Operational.
func New(svc Services) (*Plugin, error) {
	if err := svc.validate(); err != nil {
		return nil, err
	}
	svc.Log = svc.Log.WithField("plugin", PluginName)

	p := &Plugin{
		svc:   svc,
		log:   svc.Log,
		cfg:   newConfig(DefaultSettings(), svc.Store, svc.Log),
		hooks: &hookSet{owner: PluginName, command: CommandName, svc: svc},
	}
	p.dispatcher = NewDispatcher(p.cfg, svc)
	p.window = newWindow(p.cfg, p.dispatcher, svc)
	p.failsafe = newController(p.cfg, p.dispatcher, p.hooks, svc)

	start := svc.Now()
	p.failsafe.Guard("initialization", p.init)
	if p.failsafe.Operational() {
		if took := svc.Now().Sub(start); took > InitTimeout {
			p.failsafe.Trip(ReasonInitTimeout, fmt.Errorf("took %s, budget %s", took.Round(time.Millisecond), InitTimeout))
		}
	}
	return p, nil
}

func (p *Plugin) init() error {
	s, err := p.svc.Store.Load()
	persist := true
	if err != nil {
		// Keep a file we could not read untouched until the user edits.
		p.log.WithError(err).Warn("[AutoChat] could not load settings, using defaults")
		persist = false
	}
	p.cfg.Settings = s
	if p.cfg.Sanitize() && persist {
		p.cfg.saveOrLog("sanitized settings")
	}

	p.hooks.attachDraw(p.drawUI)
	p.hooks.attachOpenUI(p.OpenConfig)
	if !p.hooks.attachCommand(CommandInfo{Handler: p.onCommand, HelpMessage: commandHelp}) {
		p.log.Warnf("[AutoChat] command %s is taken, use the plugin menu to open the window", CommandName)
	}
	p.hooks.attachUpdate(p.onUpdate)

	p.log.WithField("settings", p.cfg.Settings.String()).Info("[AutoChat] loaded")
	return nil
}

func (p *Plugin) onUpdate(delta time.Duration) {
	p.failsafe.Guard("tick handler", func() error {
		return p.dispatcher.Tick(delta)
	})
}

func (p *Plugin) drawUI(ui UI) {
	p.failsafe.Guard("draw handler", func() error {
		return p.window.Draw(ui)
	})
}

func (p *Plugin) onCommand(command, args string) {
	p.failsafe.Guard("command handler", func() error {
		return p.runCommand(strings.TrimSpace(args))
	})
}

// OnCommand handles the slash command as if the host had invoked it.
func (p *Plugin) OnCommand(command, args string) { p.onCommand(command, args) }

// OpenConfig shows the configuration window.
func (p *Plugin) OpenConfig() {
	p.failsafe.Guard("open window", func() error {
		p.window.IsOpen = true
		return nil
	})
}

// SendNow is the manual trigger used by the window and the send sub-command.
func (p *Plugin) SendNow() {
	p.failsafe.Guard("manual send", func() error {
		_, err := p.dispatcher.SendNow()
		return err
	})
}

func (p *Plugin) runCommand(args string) error {
	if args == "" {
		p.window.IsOpen = true
		return nil
	}
	verb, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(verb) {
	case "on", "start":
		p.window.setEnabled(true, "command")
	case "off", "stop":
		p.window.setEnabled(false, "command")
	case "toggle":
		p.window.setEnabled(!p.cfg.Enabled, "command")
	case "send", "now":
		sent, err := p.dispatcher.SendNow()
		if err != nil {
			return err
		}
		if !sent {
			p.svc.Chat.Print("[AutoChat] slow down, manual sends are rate limited")
		}
	case "status":
		p.svc.Chat.Print("[AutoChat] " + p.cfg.Settings.String() + " · " + p.window.status.line(p.dispatcher))
	case "channel":
		c, ok := ParseChannel(rest)
		if !ok {
			p.svc.Chat.Print("[AutoChat] unknown channel " + strconv.Quote(rest))
			return nil
		}
		p.cfg.Channel = c
		p.cfg.saveOrLog("channel")
		p.svc.Chat.Print("[AutoChat] channel set to " + c.String())
	case "interval":
		n, err := strconv.Atoi(rest)
		if err != nil {
			p.svc.Chat.Print("[AutoChat] interval must be a number of seconds")
			return nil
		}
		p.cfg.IntervalSeconds = ClampInterval(n)
		p.cfg.saveOrLog("interval")
		p.svc.Chat.Print(fmt.Sprintf("[AutoChat] interval set to %ds", p.cfg.IntervalSeconds))
	case "message", "msg":
		p.cfg.Message = NormalizeMessage(rest)
		p.cfg.saveOrLog("message")
		p.window.resync()
		p.svc.Chat.Print(fmt.Sprintf("[AutoChat] message set (%d/%d characters)", len([]rune(p.cfg.Message)), MaxMessageLength))
	default:
		p.svc.Chat.Print("[AutoChat] usage: " + CommandName + " [" + strings.Join(subcommands, "|") + "]")
	}
	return nil
}

var subcommands = []string{"on", "off", "toggle", "send", "status", "channel <name>", "interval <seconds>", "message <text>"}

// Operational reports whether the fail-safe has not tripped.
func (p *Plugin) Operational() bool { return p.failsafe.Operational() }

// FailSafe exposes the controller, mostly for hosts that show plugin state.
func (p *Plugin) FailSafe() *Controller { return p.failsafe }

// Settings returns a copy of the current settings.
func (p *Plugin) Settings() Settings { return p.cfg.Settings }

// Dispatcher returns the interval dispatcher.
func (p *Plugin) Dispatcher() *Dispatcher { return p.dispatcher }

// Window returns the configuration window.
func (p *Plugin) Window() *Window { return p.window }

// Dispose detaches every hook. It is safe to call more than once and after
// the fail-safe tripped.
func (p *Plugin) Dispose() {
	p.hooks.detachAll()
	p.window.IsOpen = false
	p.log.Debug("[AutoChat] disposed")
}
