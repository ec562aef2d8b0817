package chatloop

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrMissingService is returned by New when a required host service is nil.
var ErrMissingService = errors.New("missing host service")

// Chat prints into the local chat log.
type Chat interface {
	Print(msg string)
	PrintError(msg string)
}

// CommandHandler receives a registered slash command and its arguments.
type CommandHandler func(command, args string)

// CommandInfo describes a slash command registration.
type CommandInfo struct {
	Handler     CommandHandler
	HelpMessage string
}

// CommandManager registers slash commands and runs command lines through the
// host's normal input path.
type CommandManager interface {
	AddHandler(command string, info CommandInfo) bool
	RemoveHandler(command string) bool
	ProcessCommand(cmd string) error
}

// UpdateFunc is called once per host frame with the time since the last one.
type UpdateFunc func(delta time.Duration)

// Framework delivers frame updates.
type Framework interface {
	AddUpdate(owner string, fn UpdateFunc)
	RemoveUpdate(owner string)
}

// DrawFunc renders plugin windows.
type DrawFunc func(ui UI)

// UIBuilder hosts plugin windows. Open-UI callbacks run when the user asks
// the host to show the plugin's configuration or main window.
type UIBuilder interface {
	AddDraw(owner string, fn DrawFunc)
	RemoveDraw(owner string)
	AddOpenUI(owner string, fn func())
	RemoveOpenUI(owner string)
}

// ClientState reports whether the client is logged in and able to chat.
type ClientState interface {
	IsLoggedIn() bool
}

// Notifier shows out-of-band notices, such as desktop notifications.
type Notifier interface {
	Notify(title, body string)
}

// Services are the host capabilities the plugin is built on.
// Notifier, Log and Now are optional.
type Services struct {
	Chat      Chat
	Commands  CommandManager
	Framework Framework
	UI        UIBuilder
	Client    ClientState
	Store     Store
	Notifier  Notifier
	Log       logrus.FieldLogger
	Now       func() time.Time
}

func (s *Services) validate() error {
	switch {
	case s.Chat == nil:
		return missing("Chat")
	case s.Commands == nil:
		return missing("Commands")
	case s.Framework == nil:
		return missing("Framework")
	case s.UI == nil:
		return missing("UI")
	case s.Client == nil:
		return missing("Client")
	case s.Store == nil:
		return missing("Store")
	}
	if s.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.Log = l
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return nil
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingService, name)
}
