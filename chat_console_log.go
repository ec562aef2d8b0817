package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// textLog writes old-client style transcripts:
// "<root>/<CharName>/CL Log YYYY/MM/DD HH.MM.SS.txt".
type textLog struct {
	mu   sync.Mutex
	root string
	path string
	char string
	now  func() time.Time
}

// transcript is disabled until main points it at the data directory.
var transcript = &textLog{}

// appendChatLog appends a chat line to the transcript.
func appendChatLog(msg string) { transcript.Append(clientSession.Name(), msg) }

// appendConsoleLog appends a console line to the transcript.
func appendConsoleLog(msg string) { transcript.Append(clientSession.Name(), msg) }

func (l *textLog) SetRoot(dir string) {
	l.mu.Lock()
	l.root = dir
	l.path = ""
	l.char = ""
	l.mu.Unlock()
}

// Path returns the file currently written to, if any.
func (l *textLog) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Append writes msg to char's transcript. Lines logged before anyone logs in
// go to the last character's file, or nowhere.
func (l *textLog) Append(char, msg string) {
	if msg == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.root == "" {
		return
	}
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	l.ensure(strings.TrimSpace(char), now)
	if l.path == "" {
		return
	}

	line := strings.ReplaceAll(msg, "\r", "\n")
	line = strings.TrimRight(line, "\n")

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(textLogStamp(now) + line + "\n")
	_ = f.Close()
}

// ensure rotates to a new file when the character changes.
func (l *textLog) ensure(char string, now time.Time) {
	if char == "" || char == l.char {
		return
	}
	dir := filepath.Join(l.root, char, "CL Log "+fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	name := fmt.Sprintf("%02d %02d.%02d.%02d.txt", now.Day(), now.Hour(), now.Minute(), now.Second())
	l.path = filepath.Join(dir, name)
	l.char = char

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		_, _ = f.WriteString(fmt.Sprintf("=== Session started %s as %s ===\n", now.Format(time.RFC3339), char))
		_ = f.Close()
	}
}

// textLogStamp renders the old client format, M/D/YY H:MM:SSa, with no
// leading zeros on month, day or hour.
func textLogStamp(now time.Time) string {
	hour := now.Hour()
	ampm := byte('a')
	if hour >= 12 {
		ampm = 'p'
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d/%d/%.2d %d:%.2d:%.2d%c ",
		int(now.Month()), now.Day(), now.Year()%100,
		hour12, now.Minute(), now.Second(), ampm,
	)
}
