package chatloop

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// InitTimeout is the wall-clock budget for plugin initialization. Running
// over it trips the controller like any other failure.
const InitTimeout = 10 * time.Second

// ReasonInitTimeout is the trip reason used when InitTimeout is exceeded.
const ReasonInitTimeout = "initialization timeout"

// Controller stops the plugin after the first unexpected failure. Once
// tripped it stays tripped; only a new plugin instance recovers.
type Controller struct {
	operational atomic.Bool

	cfg        *Config
	dispatcher *Dispatcher
	hooks      *hookSet
	chat       Chat
	notifier   Notifier
	log        logrus.FieldLogger

	reason string
	cause  error
}

func newController(cfg *Config, d *Dispatcher, hooks *hookSet, svc Services) *Controller {
	c := &Controller{
		cfg:        cfg,
		dispatcher: d,
		hooks:      hooks,
		chat:       svc.Chat,
		notifier:   svc.Notifier,
		log:        svc.Log,
	}
	c.operational.Store(true)
	return c
}

// Operational reports whether the controller has not tripped.
func (c *Controller) Operational() bool { return c.operational.Load() }

// Reason returns why the controller tripped, or "" if it has not.
func (c *Controller) Reason() string { return c.reason }

// Err returns the error that tripped the controller, if there was one.
func (c *Controller) Err() error { return c.cause }

// Guard runs fn unless the controller has tripped. An error returned by fn,
// or a panic inside it, trips the controller.
func (c *Controller) Guard(entry string, fn func() error) {
	if !c.Operational() {
		return
	}
	if err := c.call(fn); err != nil {
		c.Trip(entry+" failed", err)
	}
}

func (c *Controller) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn()
}

// Trip disables the plugin. Only the first call has any effect; it returns
// false for every later call.
func (c *Controller) Trip(reason string, err error) bool {
	if !c.operational.CompareAndSwap(true, false) {
		return false
	}
	c.reason = reason
	c.cause = err

	entry := c.log.WithField("reason", reason)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error("[AutoChat] critical failure, plugin disabled")

	if c.hooks != nil {
		c.hooks.detachAll()
	}
	if c.dispatcher != nil {
		c.dispatcher.Reset()
	}
	if c.cfg != nil && c.cfg.Enabled {
		c.cfg.Enabled = false
		c.persistDisabled()
	}
	c.notify(reason, err)
	return true
}

// persistDisabled is the last line of defence: nothing it does may escape.
func (c *Controller) persistDisabled() {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithError(panicError(r)).Error("[AutoChat] saving disabled state panicked")
		}
	}()
	if err := c.cfg.Save(); err != nil {
		c.log.WithError(err).Error("[AutoChat] could not save disabled state")
	}
}

func (c *Controller) notify(reason string, err error) {
	msg := FailureNotice(reason, err)
	defer func() {
		if r := recover(); r != nil {
			c.log.WithError(panicError(r)).Error("[AutoChat] failure notice panicked")
		}
	}()
	c.chat.PrintError(msg)
	if c.notifier != nil {
		c.notifier.Notify(PluginName, msg)
	}
}

// FailureNotice formats the message shown to the user when the plugin stops.
func FailureNotice(reason string, err error) string {
	msg := "[AutoChat] stopped after a critical error (" + reason + ")"
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg + ". Reload the plugin to use it again."
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
