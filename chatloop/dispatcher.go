package chatloop

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// TickStep is how much frame time is batched before the dispatcher
// evaluates the interval.
const TickStep = 500 * time.Millisecond

// intervalEpsilon absorbs floating point drift when comparing the
// accumulated time against the interval.
const intervalEpsilon = 1e-6

// Manual sends are limited to a short burst, then one every two seconds.
const (
	manualSendBurst = 2
	manualSendEvery = 2 * time.Second
)

// Dispatcher accumulates frame time and sends the configured message every
// IntervalSeconds while the feature is enabled and the client is logged in.
type Dispatcher struct {
	cfg    *Config
	chat   Chat
	cmds   CommandManager
	client ClientState
	log    logrus.FieldLogger
	now    func() time.Time

	tickAccum float64
	elapsed   float64

	manual   *rate.Limiter
	lastSent time.Time
	sent     int
}

// NewDispatcher builds a dispatcher over cfg using the host services in svc.
func NewDispatcher(cfg *Config, svc Services) *Dispatcher {
	now := svc.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		cfg:    cfg,
		chat:   svc.Chat,
		cmds:   svc.Commands,
		client: svc.Client,
		log:    svc.Log,
		now:    now,
		manual: rate.NewLimiter(rate.Every(manualSendEvery), manualSendBurst),
	}
}

// Tick advances the dispatcher by delta. It returns the error of a send that
// fired during this tick, if any.
func (d *Dispatcher) Tick(delta time.Duration) error {
	if delta > 0 {
		d.tickAccum += delta.Seconds()
	}
	if d.tickAccum < TickStep.Seconds() {
		return nil
	}
	step := d.tickAccum
	d.tickAccum = 0

	if !d.active() {
		d.elapsed = 0
		return nil
	}

	d.elapsed += step
	if d.elapsed+intervalEpsilon >= float64(d.cfg.IntervalSeconds) {
		d.elapsed = 0
		return d.TrySend()
	}
	return nil
}

func (d *Dispatcher) active() bool {
	return d.cfg.Enabled && d.cfg.IntervalSeconds >= 1 && d.client.IsLoggedIn()
}

// TrySend sends the configured message once. An empty message is skipped
// without error. A stale stored message is corrected and persisted first.
func (d *Dispatcher) TrySend() error {
	msg := NormalizeMessage(d.cfg.Message)
	if msg != d.cfg.Message {
		d.cfg.Message = msg
		d.cfg.saveOrLog("corrected message")
		d.log.Debug("[AutoChat] stored message was normalized before sending")
	}
	if msg == "" {
		return nil
	}

	prefix := d.cfg.Channel.Prefix()
	if prefix == "" {
		d.chat.Print(msg)
	} else {
		line := prefix + " " + msg
		if err := d.cmds.ProcessCommand(line); err != nil {
			return fmt.Errorf("send to %s: %w", d.cfg.Channel, err)
		}
	}
	d.lastSent = d.now()
	d.sent++
	d.log.WithField("channel", d.cfg.Channel.String()).Debug("[AutoChat] message sent")
	return nil
}

// SendNow is the manual trigger. It bypasses the interval but is rate
// limited; a suppressed press returns false and no error.
func (d *Dispatcher) SendNow() (bool, error) {
	if !d.manual.AllowN(d.now(), 1) {
		d.log.Debug("[AutoChat] manual send suppressed, pressed too quickly")
		return false, nil
	}
	if err := d.TrySend(); err != nil {
		return false, err
	}
	return true, nil
}

// Reset drops all accumulated time.
func (d *Dispatcher) Reset() {
	d.tickAccum = 0
	d.elapsed = 0
}

// Elapsed returns the seconds accumulated towards the next send.
func (d *Dispatcher) Elapsed() float64 { return d.elapsed }

// Active reports whether the dispatcher is currently counting.
func (d *Dispatcher) Active() bool { return d.active() }

// Remaining returns the time until the next send, or zero when idle.
func (d *Dispatcher) Remaining() time.Duration {
	if !d.active() {
		return 0
	}
	left := float64(d.cfg.IntervalSeconds) - d.elapsed - d.tickAccum
	if left < 0 {
		left = 0
	}
	return time.Duration(left * float64(time.Second))
}

// LastSent returns when the last message went out; zero if never.
func (d *Dispatcher) LastSent() time.Time { return d.lastSent }

// SentCount returns how many messages were sent by this dispatcher.
func (d *Dispatcher) SentCount() int { return d.sent }
