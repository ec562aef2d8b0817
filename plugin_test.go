package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autochat/chatloop"
)

func newTestHost(t *testing.T) (*pluginHost, *time.Time) {
	t.Helper()
	resetLogs(t)
	resetStats(t)
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	h := newPluginHost(&session{})
	h.now = func() time.Time { return now }
	return h, &now
}

func noopHandler(string, string) {}

func TestRegisterCommandConflicts(t *testing.T) {
	h, _ := newTestHost(t)
	info := chatloop.CommandInfo{Handler: noopHandler, HelpMessage: "test"}

	if !h.registerCommand("a", "/Foo", info) {
		t.Fatalf("first registration refused")
	}
	if h.registerCommand("b", "/foo", info) {
		t.Fatalf("duplicate registration accepted")
	}
	if !hasText(&consoleLog, "[plugin] command conflict: /foo already registered") {
		t.Fatalf("conflict not reported: %v", consoleLog.Snapshot())
	}
	for _, cmd := range []string{"/login", "/s", "/l3", "/echo"} {
		if h.registerCommand("b", cmd, info) {
			t.Fatalf("%s should be reserved", cmd)
		}
	}
	if h.registerCommand("b", "/bar", chatloop.CommandInfo{}) {
		t.Fatalf("registration without handler accepted")
	}
}

func TestRemoveCommandOnlyByOwner(t *testing.T) {
	h, _ := newTestHost(t)
	h.registerCommand("a", "/foo", chatloop.CommandInfo{Handler: noopHandler})
	if h.removeCommand("b", "/foo") {
		t.Fatalf("another owner removed /foo")
	}
	if !h.removeCommand("a", "foo") {
		t.Fatalf("owner could not remove /foo")
	}
	if err := h.run(userOwner, "/foo"); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("run after remove = %v", err)
	}
}

func TestRunRoutesPluginCommand(t *testing.T) {
	h, _ := newTestHost(t)
	var gotCmd, gotArgs string
	h.registerCommand("a", "/foo", chatloop.CommandInfo{Handler: func(cmd, args string) {
		gotCmd, gotArgs = cmd, args
	}})
	if err := h.run(userOwner, "/FOO  bar baz "); err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotCmd != "/foo" || gotArgs != "bar baz" {
		t.Fatalf("handler got %q %q", gotCmd, gotArgs)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	h, _ := newTestHost(t)
	if err := h.run(userOwner, "/nope"); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("err = %v, want unknown command", err)
	}
	if err := h.run(userOwner, "no slash"); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("err = %v, want unknown command", err)
	}
	if err := h.run(userOwner, "   "); err != nil {
		t.Fatalf("blank line: %v", err)
	}
}

func TestChannelCommandsNeedLogin(t *testing.T) {
	h, now := newTestHost(t)
	if err := h.run(userOwner, "/s hello"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("err = %v, want not logged in", err)
	}
	if err := h.client.Login("Tess", *now); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := h.run(userOwner, "/s hello"); err != nil {
		t.Fatalf("say: %v", err)
	}
	if got := lastText(&chatLog); got != "[Say] Tess: hello" {
		t.Fatalf("chat = %q", got)
	}
	if err := h.run(userOwner, "/cl2 hi all"); err != nil {
		t.Fatalf("cwls: %v", err)
	}
	if got := lastText(&chatLog); got != "[CrossWorldLinkshell2] Tess: hi all" {
		t.Fatalf("chat = %q", got)
	}
	if err := h.run(userOwner, "/sh"); !errors.Is(err, errNothingToSay) {
		t.Fatalf("empty shout = %v", err)
	}
	statsMu.Lock()
	say, cwls := stats.Lines["Say"], stats.Lines["CrossWorldLinkshell2"]
	statsMu.Unlock()
	if say != 1 || cwls != 1 {
		t.Fatalf("stats = %d/%d, want 1/1", say, cwls)
	}
}

func TestEchoWorksLoggedOut(t *testing.T) {
	h, _ := newTestHost(t)
	if err := h.run(userOwner, "/echo just me"); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if got := lastText(&chatLog); got != "just me" {
		t.Fatalf("chat = %q", got)
	}
}

func TestBuiltinCommands(t *testing.T) {
	h, _ := newTestHost(t)
	if err := h.run(userOwner, "/login"); !errors.Is(err, errNoCharacter) {
		t.Fatalf("login without name = %v", err)
	}
	if err := h.run(userOwner, "/login Tess"); err != nil {
		t.Fatalf("login: %v", err)
	}
	h.run(userOwner, "/who")
	if got := lastText(&consoleLog); !strings.HasPrefix(got, "Logged in as Tess since ") {
		t.Fatalf("who = %q", got)
	}
	h.run(userOwner, "/logout")
	h.run(userOwner, "/who")
	if got := lastText(&consoleLog); got != "Not logged in" {
		t.Fatalf("who = %q", got)
	}
	h.run(userOwner, "/login")
	if !h.client.IsLoggedIn() || h.client.Name() != "Tess" {
		t.Fatalf("relogin did not restore Tess")
	}

	opened := ""
	openPath = func(p string) error { opened = p; return nil }
	defer func() { openPath = func(string) error { return nil } }()
	h.run(userOwner, "/datadir")
	if opened != dataDirPath {
		t.Fatalf("opened %q, want %q", opened, dataDirPath)
	}

	h.run(userOwner, "/plugins")
	if got := lastText(&consoleLog); got != "No plugins loaded" {
		t.Fatalf("plugins = %q", got)
	}
}

func TestSpamKillDisablesOwner(t *testing.T) {
	h, now := newTestHost(t)
	h.client.Login("Tess", *now)
	h.AddUpdate("spammer", func(time.Duration) {})
	cmds := ownerCommands{host: h, owner: "spammer"}
	cmds.AddHandler("/spam", chatloop.CommandInfo{Handler: noopHandler})

	for i := 0; i < pluginSpamLimit; i++ {
		if err := cmds.ProcessCommand("/s buy"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := cmds.ProcessCommand("/s buy"); !errors.Is(err, errPluginDisabled) {
		t.Fatalf("send over limit = %v", err)
	}
	if !h.isDisabled("spammer") {
		t.Fatalf("spammer still enabled")
	}
	if _, ok := h.updates["spammer"]; ok {
		t.Fatalf("update hook kept")
	}
	if err := h.run(userOwner, "/spam"); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("command kept: %v", err)
	}
	h.AddUpdate("spammer", func(time.Duration) {})
	if _, ok := h.updates["spammer"]; ok {
		t.Fatalf("disabled owner re-registered")
	}
	if got := h.pluginLines(); len(got) != 1 || got[0] != "spammer: disabled (sent too many lines)" {
		t.Fatalf("plugins = %v", got)
	}
}

func TestSpamWindowSlides(t *testing.T) {
	h, now := newTestHost(t)
	h.client.Login("Tess", *now)
	cmds := ownerCommands{host: h, owner: "chatty"}
	for round := 0; round < 3; round++ {
		for i := 0; i < pluginSpamLimit; i++ {
			if err := cmds.ProcessCommand("/s hi"); err != nil {
				t.Fatalf("round %d send %d: %v", round, i, err)
			}
		}
		*now = now.Add(pluginSpamWindow + time.Second)
	}
}

func TestUserIsNeverRateLimited(t *testing.T) {
	h, now := newTestHost(t)
	h.client.Login("Tess", *now)
	for i := 0; i < 2*pluginSpamLimit; i++ {
		if err := submitLine(h, "hello"); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
	}
}

func TestPanickingHookDisablesOwner(t *testing.T) {
	h, _ := newTestHost(t)
	ran := false
	h.AddUpdate("bad", func(time.Duration) { panic("boom") })
	h.AddUpdate("good", func(time.Duration) { ran = true })
	h.update(time.Second)
	if !ran {
		t.Fatalf("good hook skipped")
	}
	if !h.isDisabled("bad") {
		t.Fatalf("bad hook not disabled")
	}
	if !hasText(&consoleLog, "[bad] update panic: boom") {
		t.Fatalf("panic not reported: %v", consoleLog.Snapshot())
	}
}

func newAutoChat(t *testing.T, h *pluginHost) (*chatloop.Plugin, *chatloop.FileStore) {
	t.Helper()
	store := chatloop.NewFileStore(filepath.Join(t.TempDir(), "plugins", "AutoChat.json"))
	p, err := chatloop.New(h.services(chatloop.PluginName, store))
	if err != nil {
		t.Fatalf("chatloop.New: %v", err)
	}
	t.Cleanup(p.Dispose)
	if !p.Operational() {
		t.Fatalf("plugin failed to start: %v", p.FailSafe().Err())
	}
	return p, store
}

func TestAutoChatSendsThroughHost(t *testing.T) {
	h, now := newTestHost(t)
	_, store := newAutoChat(t, h)
	h.client.Login("Tess", *now)

	for _, line := range []string{
		"/autochat message Hello there",
		"/autochat interval 5",
		"/autochat channel fc",
		"/autochat on",
	} {
		if err := submitLine(h, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	for i := 0; i < 9; i++ {
		h.update(500 * time.Millisecond)
	}
	if hasText(&chatLog, "[FreeCompany] Tess: Hello there") {
		t.Fatalf("sent before the interval elapsed")
	}
	h.update(500 * time.Millisecond)
	if got := lastText(&chatLog); got != "[FreeCompany] Tess: Hello there" {
		t.Fatalf("chat = %q", got)
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !saved.Enabled || saved.IntervalSeconds != 5 || saved.Channel != chatloop.FreeCompany || saved.Message != "Hello there" {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestAutoChatIdleWhileLoggedOut(t *testing.T) {
	h, _ := newTestHost(t)
	newAutoChat(t, h)
	submitLine(h, "/autochat interval 5")
	submitLine(h, "/autochat on")
	for i := 0; i < 20; i++ {
		h.update(500 * time.Millisecond)
	}
	for _, e := range chatLog.Snapshot() {
		if strings.HasPrefix(e.Text, "[Say]") {
			t.Fatalf("sent while logged out: %q", e.Text)
		}
	}
}

func TestSpamKillTripsAutoChatFailSafe(t *testing.T) {
	h, now := newTestHost(t)
	p, store := newAutoChat(t, h)
	h.client.Login("Tess", *now)
	submitLine(h, "/autochat interval 5")
	submitLine(h, "/autochat on")

	h.mu.Lock()
	for i := 0; i < pluginSpamLimit; i++ {
		h.sendHistory[chatloop.PluginName] = append(h.sendHistory[chatloop.PluginName], *now)
	}
	h.mu.Unlock()

	for i := 0; i < 10; i++ {
		h.update(500 * time.Millisecond)
	}
	if p.Operational() {
		t.Fatalf("fail-safe did not trip")
	}
	if !errors.Is(p.FailSafe().Err(), errPluginDisabled) {
		t.Fatalf("cause = %v", p.FailSafe().Err())
	}
	var notice bool
	for _, e := range chatLog.Snapshot() {
		if e.Err && strings.Contains(e.Text, "stopped after a critical error") {
			notice = true
		}
	}
	if !notice {
		t.Fatalf("no failure notice in chat: %v", chatLog.Snapshot())
	}
	for _, e := range consoleLog.Snapshot() {
		if strings.Contains(e.Text, "[AutoChat] [AutoChat]") {
			t.Fatalf("notice repeated in console: %q", e.Text)
		}
	}
	saved, _ := store.Load()
	if saved.Enabled {
		t.Fatalf("enabled flag not cleared on trip")
	}
	if err := h.run(userOwner, chatloop.CommandName); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("command still registered: %v", err)
	}
}

func TestOpenUIOpensAutoChatWindow(t *testing.T) {
	h, _ := newTestHost(t)
	p, _ := newAutoChat(t, h)
	if p.Window().IsOpen {
		t.Fatalf("window open at start")
	}
	h.openUI()
	if !p.Window().IsOpen {
		t.Fatalf("open UI hook did not open the window")
	}
}

func TestHelpListsPluginCommands(t *testing.T) {
	h, _ := newTestHost(t)
	newAutoChat(t, h)
	h.run(userOwner, "/help")
	found := false
	for _, e := range consoleLog.Snapshot() {
		if strings.HasPrefix(e.Text, chatloop.CommandName+" - ") {
			found = true
		}
	}
	if !found {
		t.Fatalf("help missing %s: %v", chatloop.CommandName, consoleLog.Snapshot())
	}
}
