package chatloop

import "fmt"

// SettingsVersion is the schema version written by this package.
const SettingsVersion = 1

// Interval bounds, in seconds.
const (
	MinIntervalSeconds     = 5
	MaxIntervalSeconds     = 3600
	DefaultIntervalSeconds = 300
)

// DefaultMessage is the message a fresh install starts with.
const DefaultMessage = "Hello, world!"

// Settings is the persisted plugin configuration.
type Settings struct {
	Version         int     `json:"version"`
	Enabled         bool    `json:"enabled"`
	Message         string  `json:"message"`
	IntervalSeconds int     `json:"intervalSeconds"`
	Channel         Channel `json:"channel"`
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		Version:         SettingsVersion,
		Enabled:         false,
		Message:         DefaultMessage,
		IntervalSeconds: DefaultIntervalSeconds,
		Channel:         Say,
	}
}

// ClampInterval forces n into [MinIntervalSeconds, MaxIntervalSeconds].
func ClampInterval(n int) int {
	if n < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if n > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return n
}

// Sanitize repairs out-of-range values in place and reports whether anything
// changed. The caller is expected to persist the settings when it returns
// true.
func (s *Settings) Sanitize() bool {
	changed := false
	if msg := NormalizeMessage(s.Message); msg != s.Message {
		s.Message = msg
		changed = true
	}
	if n := ClampInterval(s.IntervalSeconds); n != s.IntervalSeconds {
		s.IntervalSeconds = n
		changed = true
	}
	if !s.Channel.Valid() {
		s.Channel = Say
		changed = true
	}
	if s.Version != SettingsVersion {
		s.Version = SettingsVersion
		changed = true
	}
	return changed
}

func (s Settings) String() string {
	state := "off"
	if s.Enabled {
		state = "on"
	}
	return fmt.Sprintf("%s, every %ds to %s, %d chars", state, s.IntervalSeconds, s.Channel, len([]rune(s.Message)))
}
