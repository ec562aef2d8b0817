package chatloop

import (
	"errors"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeHost implements every host service in memory.
type fakeHost struct {
	loggedIn bool

	printed  []string
	errors   []string
	commands []string
	cmdErr   error
	panicOn  string

	handlers map[string]CommandInfo
	updates  map[string]UpdateFunc
	draws    map[string]DrawFunc
	openUIs  map[string]func()
	refuse   bool

	removeCalls map[string]int
	notices     []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		loggedIn:    true,
		handlers:    map[string]CommandInfo{},
		updates:     map[string]UpdateFunc{},
		draws:       map[string]DrawFunc{},
		openUIs:     map[string]func(){},
		removeCalls: map[string]int{},
	}
}

func (h *fakeHost) Print(msg string)      { h.printed = append(h.printed, msg) }
func (h *fakeHost) PrintError(msg string) { h.errors = append(h.errors, msg) }

func (h *fakeHost) AddHandler(command string, info CommandInfo) bool {
	if h.refuse {
		return false
	}
	h.handlers[command] = info
	return true
}

func (h *fakeHost) RemoveHandler(command string) bool {
	h.removeCalls["command"]++
	_, ok := h.handlers[command]
	delete(h.handlers, command)
	return ok
}

func (h *fakeHost) ProcessCommand(cmd string) error {
	if h.panicOn != "" && cmd == h.panicOn {
		panic("host exploded")
	}
	if h.cmdErr != nil {
		return h.cmdErr
	}
	h.commands = append(h.commands, cmd)
	return nil
}

func (h *fakeHost) AddUpdate(owner string, fn UpdateFunc) { h.updates[owner] = fn }
func (h *fakeHost) RemoveUpdate(owner string) {
	h.removeCalls["update"]++
	delete(h.updates, owner)
}

func (h *fakeHost) AddDraw(owner string, fn DrawFunc) { h.draws[owner] = fn }
func (h *fakeHost) RemoveDraw(owner string) {
	h.removeCalls["draw"]++
	delete(h.draws, owner)
}

func (h *fakeHost) AddOpenUI(owner string, fn func()) { h.openUIs[owner] = fn }
func (h *fakeHost) RemoveOpenUI(owner string) {
	h.removeCalls["openui"]++
	delete(h.openUIs, owner)
}

func (h *fakeHost) IsLoggedIn() bool { return h.loggedIn }

func (h *fakeHost) Notify(title, body string) { h.notices = append(h.notices, body) }

// tick drives the registered update hook like the host's frame loop.
func (h *fakeHost) tick(delta time.Duration) {
	if fn := h.updates[PluginName]; fn != nil {
		fn(delta)
	}
}

func (h *fakeHost) draw(ui UI) {
	if fn := h.draws[PluginName]; fn != nil {
		fn(ui)
	}
}

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	s       Settings
	loadErr error
	saveErr error
	panics  bool
	saves   int
}

func (m *memStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return DefaultSettings(), m.loadErr
	}
	return m.s, nil
}

func (m *memStore) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("disk on fire")
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.s = s
	m.saves++
	return nil
}

var errBoom = errors.New("boom")

// fakeClock is a controllable time source.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testServices(h *fakeHost, store Store, clock *fakeClock) (Services, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return Services{
		Chat:      h,
		Commands:  h,
		Framework: h,
		UI:        h,
		Client:    h,
		Store:     store,
		Notifier:  h,
		Log:       logger,
		Now:       clock.Now,
	}, hook
}

// scriptUI is a UI that records what was drawn and replays scripted input.
type scriptUI struct {
	texts    []string
	open     bool
	collapse bool

	check   map[string]bool
	input   map[string]string
	slider  map[string]int
	combo   map[string]int
	buttons map[string]bool
}

func newScriptUI() *scriptUI {
	return &scriptUI{
		check:   map[string]bool{},
		input:   map[string]string{},
		slider:  map[string]int{},
		combo:   map[string]int{},
		buttons: map[string]bool{},
	}
}

func (u *scriptUI) Begin(title string, open *bool) bool {
	u.open = *open
	return !u.collapse
}
func (u *scriptUI) End()                                {}
func (u *scriptUI) Text(s string)                       { u.texts = append(u.texts, s) }
func (u *scriptUI) TextDisabled(s string)               { u.texts = append(u.texts, s) }
func (u *scriptUI) TextColored(_ color.Color, s string) { u.texts = append(u.texts, s) }
func (u *scriptUI) Separator()                          {}
func (u *scriptUI) Spacing()                            {}
func (u *scriptUI) SameLine()                           {}

func (u *scriptUI) Checkbox(label string, v *bool) bool {
	nv, ok := u.check[label]
	if !ok {
		return false
	}
	delete(u.check, label)
	*v = nv
	return true
}

func (u *scriptUI) InputTextMultiline(id string, v *string, maxBytes int) bool {
	nv, ok := u.input[id]
	if !ok {
		return false
	}
	delete(u.input, id)
	if len(nv) > maxBytes {
		nv = nv[:maxBytes]
	}
	*v = nv
	return true
}

func (u *scriptUI) SliderInt(id string, v *int, min, max int) bool {
	nv, ok := u.slider[id]
	if !ok {
		return false
	}
	delete(u.slider, id)
	*v = nv
	return true
}

func (u *scriptUI) Combo(id string, items []string, selected *int) bool {
	nv, ok := u.combo[id]
	if !ok {
		return false
	}
	delete(u.combo, id)
	*selected = nv
	return true
}

func (u *scriptUI) Button(label string) bool {
	if u.buttons[label] {
		delete(u.buttons, label)
		return true
	}
	return false
}

func (u *scriptUI) hasText(sub string) bool {
	for _, t := range u.texts {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}
