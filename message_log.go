package main

import (
	"sync"
	"time"
)

type timedMessage struct {
	Text string
	Time time.Time
	Err  bool
}

// messageLog is a bounded, timestamped line buffer.
type messageLog struct {
	mu      sync.Mutex
	entries []timedMessage
	max     int
	now     func() time.Time
}

func (l *messageLog) Add(msg string) { l.add(msg, false) }

// AddError records a line that should be rendered as an error.
func (l *messageLog) AddError(msg string) { l.add(msg, true) }

func (l *messageLog) add(msg string, isErr bool) {
	if msg == "" {
		return
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	entry := timedMessage{Text: msg, Time: now(), Err: isErr}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if l.max > 0 && len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	l.mu.Unlock()
}

func (l *messageLog) Snapshot() []timedMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]timedMessage, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *messageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *messageLog) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
