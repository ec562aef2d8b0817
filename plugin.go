package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	open "github.com/skratchdot/open-golang/open"

	"autochat/chatloop"
)

const (
	// userOwner marks lines typed into the input bar. They are never
	// rate limited.
	userOwner = "user"

	pluginSpamLimit  = 30
	pluginSpamWindow = 5 * time.Second
)

var (
	errUnknownCommand = errors.New("unknown command")
	errNotLoggedIn    = errors.New("not logged in")
	errNothingToSay   = errors.New("nothing to say")
	errPluginDisabled = errors.New("plugin disabled")
)

// builtinCommands are handled by the host itself and cannot be claimed by
// plugins.
var builtinCommands = []string{"help", "login", "logout", "who", "plugins", "datadir", "stats"}

// openPath opens a file or folder with the desktop's default handler.
var openPath = open.Run

type pluginCommand struct {
	owner string
	info  chatloop.CommandInfo
}

// pluginHost is the sandbox's plugin registry. Every hook is keyed by the
// owner that registered it so a misbehaving plugin can be cut off as a
// whole.
type pluginHost struct {
	client *session
	now    func() time.Time

	mu          sync.Mutex
	owners      []string
	commands    map[string]pluginCommand
	updates     map[string]chatloop.UpdateFunc
	draws       map[string]chatloop.DrawFunc
	openUIs     map[string]func()
	disabled    map[string]string
	sendHistory map[string][]time.Time

	// spamKill disables owners that send more than pluginSpamLimit lines
	// within pluginSpamWindow.
	spamKill bool
}

func newPluginHost(client *session) *pluginHost {
	return &pluginHost{
		client:      client,
		now:         time.Now,
		commands:    make(map[string]pluginCommand),
		updates:     make(map[string]chatloop.UpdateFunc),
		draws:       make(map[string]chatloop.DrawFunc),
		openUIs:     make(map[string]func()),
		disabled:    make(map[string]string),
		sendHistory: make(map[string][]time.Time),
		spamKill:    true,
	}
}

// services builds the capability set handed to the plugin named owner.
func (h *pluginHost) services(owner string, store chatloop.Store) chatloop.Services {
	return chatloop.Services{
		Chat:      hostChat{},
		Commands:  ownerCommands{host: h, owner: owner},
		Framework: h,
		UI:        h,
		Client:    h.client,
		Store:     store,
		Notifier:  desktopNotifier{},
		Log:       logger,
		Now:       h.now,
	}
}

func (h *pluginHost) track(owner string) {
	for _, o := range h.owners {
		if o == owner {
			return
		}
	}
	h.owners = append(h.owners, owner)
}

func (h *pluginHost) isDisabled(owner string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.disabled[owner]
	return ok
}

// disableOwner drops every hook and command owner registered. Later
// registrations from the same owner are ignored.
func (h *pluginHost) disableOwner(owner, reason string) {
	h.mu.Lock()
	if _, done := h.disabled[owner]; done {
		h.mu.Unlock()
		return
	}
	h.track(owner)
	h.disabled[owner] = reason
	delete(h.updates, owner)
	delete(h.draws, owner)
	delete(h.openUIs, owner)
	delete(h.sendHistory, owner)
	for key, cmd := range h.commands {
		if cmd.owner == owner {
			delete(h.commands, key)
		}
	}
	h.mu.Unlock()
	logger.WithField("plugin", owner).Warnf("disabled: %s", reason)
}

// recordSend reports whether owner just crossed the spam limit.
func (h *pluginHost) recordSend(owner string) bool {
	if !h.spamKill {
		return false
	}
	now := h.now()
	cutoff := now.Add(-pluginSpamWindow)
	h.mu.Lock()
	times := h.sendHistory[owner]
	n := 0
	for _, t := range times {
		if t.After(cutoff) {
			times[n] = t
			n++
		}
	}
	times = append(times[:n], now)
	h.sendHistory[owner] = times
	count := len(times)
	h.mu.Unlock()
	if count > pluginSpamLimit {
		h.disableOwner(owner, "sent too many lines")
		return true
	}
	return false
}

// chatloop.Framework

func (h *pluginHost) AddUpdate(owner string, fn chatloop.UpdateFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, off := h.disabled[owner]; off || fn == nil {
		return
	}
	h.track(owner)
	h.updates[owner] = fn
}

func (h *pluginHost) RemoveUpdate(owner string) {
	h.mu.Lock()
	delete(h.updates, owner)
	h.mu.Unlock()
}

// chatloop.UIBuilder

func (h *pluginHost) AddDraw(owner string, fn chatloop.DrawFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, off := h.disabled[owner]; off || fn == nil {
		return
	}
	h.track(owner)
	h.draws[owner] = fn
}

func (h *pluginHost) RemoveDraw(owner string) {
	h.mu.Lock()
	delete(h.draws, owner)
	h.mu.Unlock()
}

func (h *pluginHost) AddOpenUI(owner string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, off := h.disabled[owner]; off || fn == nil {
		return
	}
	h.track(owner)
	h.openUIs[owner] = fn
}

func (h *pluginHost) RemoveOpenUI(owner string) {
	h.mu.Lock()
	delete(h.openUIs, owner)
	h.mu.Unlock()
}

// update runs every plugin's frame hook.
func (h *pluginHost) update(delta time.Duration) {
	h.mu.Lock()
	owners := append([]string(nil), h.owners...)
	fns := make([]chatloop.UpdateFunc, len(owners))
	for i, o := range owners {
		fns[i] = h.updates[o]
	}
	h.mu.Unlock()
	for i, fn := range fns {
		if fn != nil {
			h.guard(owners[i], "update", func() { fn(delta) })
		}
	}
}

// draw lets every plugin record its windows into ui.
func (h *pluginHost) draw(ui chatloop.UI) {
	h.mu.Lock()
	owners := append([]string(nil), h.owners...)
	fns := make([]chatloop.DrawFunc, len(owners))
	for i, o := range owners {
		fns[i] = h.draws[o]
	}
	h.mu.Unlock()
	for i, fn := range fns {
		if fn != nil {
			h.guard(owners[i], "draw", func() { fn(ui) })
		}
	}
}

// openUI asks every plugin to show its main window.
func (h *pluginHost) openUI() {
	h.mu.Lock()
	owners := append([]string(nil), h.owners...)
	fns := make([]func(), len(owners))
	for i, o := range owners {
		fns[i] = h.openUIs[o]
	}
	h.mu.Unlock()
	for i, fn := range fns {
		if fn != nil {
			h.guard(owners[i], "open UI", fn)
		}
	}
}

// guard runs fn and disables owner if it panics.
func (h *pluginHost) guard(owner, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("plugin", owner).Errorf("%s panic: %v", what, r)
			h.disableOwner(owner, what+" panic")
		}
	}()
	fn()
}

func commandKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

func isBuiltin(key string) bool {
	for _, b := range builtinCommands {
		if b == key {
			return true
		}
	}
	return false
}

func (h *pluginHost) registerCommand(owner, name string, info chatloop.CommandInfo) bool {
	key := commandKey(name)
	if key == "" || info.Handler == nil {
		return false
	}
	_, isChannel := chatloop.ParseChannel(key)
	h.mu.Lock()
	if _, off := h.disabled[owner]; off {
		h.mu.Unlock()
		return false
	}
	if _, exists := h.commands[key]; exists || isBuiltin(key) || isChannel {
		h.mu.Unlock()
		consoleMessage(fmt.Sprintf("[plugin] command conflict: /%s already registered", key))
		return false
	}
	h.track(owner)
	h.commands[key] = pluginCommand{owner: owner, info: info}
	h.mu.Unlock()
	consoleMessage("[plugin] command registered: /" + key)
	logDebug("[plugin] %s registered /%s", owner, key)
	return true
}

func (h *pluginHost) removeCommand(owner, name string) bool {
	key := commandKey(name)
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd, ok := h.commands[key]
	if !ok || cmd.owner != owner {
		return false
	}
	delete(h.commands, key)
	return true
}

// run executes a command line on behalf of owner: built-ins first, then chat
// channels, then plugin commands.
func (h *pluginHost) run(owner, line string) error {
	if owner != userOwner {
		if h.isDisabled(owner) {
			return fmt.Errorf("%w: %s", errPluginDisabled, owner)
		}
		if h.recordSend(owner) {
			return fmt.Errorf("%w: %s sent too many lines", errPluginDisabled, owner)
		}
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return fmt.Errorf("%w: %q", errUnknownCommand, line)
	}
	name, args, _ := strings.Cut(line[1:], " ")
	key := strings.ToLower(name)
	args = strings.TrimSpace(args)

	if isBuiltin(key) {
		return h.builtin(key, args)
	}
	if ch, ok := chatloop.ParseChannel(key); ok {
		return h.speak(ch, args)
	}
	h.mu.Lock()
	cmd, ok := h.commands[key]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: /%s", errUnknownCommand, key)
	}
	h.guard(cmd.owner, "command", func() { cmd.info.Handler("/"+key, args) })
	return nil
}

// speak echoes a line into the chat pane the way the server would. Yellow
// text (/echo) stays local and works while logged out.
func (h *pluginHost) speak(ch chatloop.Channel, text string) error {
	if text == "" {
		return errNothingToSay
	}
	if ch == chatloop.YellowText {
		chatMessage(text)
		return nil
	}
	if !h.client.IsLoggedIn() {
		return errNotLoggedIn
	}
	chatMessage(fmt.Sprintf("[%s] %s: %s", ch, h.client.Name(), text))
	statLineSent(ch.String())
	return nil
}

func (h *pluginHost) builtin(key, args string) error {
	switch key {
	case "help":
		for _, line := range h.helpLines() {
			consoleMessage(line)
		}
	case "login":
		if err := h.client.Login(args, h.now()); err != nil {
			return err
		}
		consoleMessage("Logged in as " + h.client.Name())
		if gs.LastCharacter != h.client.Name() {
			gs.LastCharacter = h.client.Name()
			saveSettings()
		}
	case "logout":
		if h.client.Logout() {
			consoleMessage("Logged out")
		}
	case "who":
		if h.client.IsLoggedIn() {
			since := humanize.RelTime(h.client.Since(), h.now(), "ago", "from now")
			consoleMessage(fmt.Sprintf("Logged in as %s since %s", h.client.Name(), since))
		} else {
			consoleMessage("Not logged in")
		}
	case "plugins":
		for _, line := range h.pluginLines() {
			consoleMessage(line)
		}
	case "datadir":
		consoleMessage(dataDirPath)
		if err := openPath(dataDirPath); err != nil {
			logWarn("open data directory: %v", err)
		}
	case "stats":
		for _, line := range statsSummary() {
			consoleMessage(line)
		}
	}
	return nil
}

func (h *pluginHost) helpLines() []string {
	out := []string{"Commands: /" + strings.Join(builtinCommands, ", /")}
	out = append(out, "Chat: /s, /sh, /y, /p, /a, /fc, /l1-8, /cl1-8, /echo")
	h.mu.Lock()
	keys := make([]string, 0, len(h.commands))
	for k := range h.commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("/%s - %s", k, h.commands[k].info.HelpMessage))
	}
	h.mu.Unlock()
	return out
}

func (h *pluginHost) pluginLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.owners) == 0 {
		return []string{"No plugins loaded"}
	}
	out := make([]string, 0, len(h.owners))
	for _, o := range h.owners {
		if reason, off := h.disabled[o]; off {
			out = append(out, fmt.Sprintf("%s: disabled (%s)", o, reason))
			continue
		}
		out = append(out, o+": running")
	}
	return out
}

// ownerCommands is the CommandManager handed to one plugin.
type ownerCommands struct {
	host  *pluginHost
	owner string
}

func (c ownerCommands) AddHandler(command string, info chatloop.CommandInfo) bool {
	return c.host.registerCommand(c.owner, command, info)
}

func (c ownerCommands) RemoveHandler(command string) bool {
	return c.host.removeCommand(c.owner, command)
}

func (c ownerCommands) ProcessCommand(cmd string) error {
	return c.host.run(c.owner, cmd)
}

// hostChat prints plugin output into the chat pane.
type hostChat struct{}

func (hostChat) Print(msg string)      { chatMessage(msg) }
func (hostChat) PrintError(msg string) { chatError(msg) }
