package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// chatStats counts lines sent per channel across sessions.
type chatStats struct {
	Lines    map[string]int `json:"lines"`
	Sessions int            `json:"sessions"`
}

const statsFile = "stats.json"

// dataDirPath holds the absolute path to the directory for settings, logs
// and transcripts. On macOS it is the app's container directory; elsewhere
// it sits next to the executable. -data or AUTOCHAT_DATA_DIR override it.
var dataDirPath = defaultDataDir()

func defaultDataDir() string {
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			if filepath.Base(home) == "Data" && filepath.Base(filepath.Dir(home)) == "com.autochat.sandbox" {
				home = filepath.Dir(home)
			} else {
				home = filepath.Join(home, "Library", "Containers", "com.autochat.sandbox")
			}
			return home
		}
	}
	if exe, err := os.Executable(); err == nil {
		if dir, err := filepath.Abs(filepath.Dir(exe)); err == nil {
			return filepath.Join(dir, "data")
		}
	}
	return "data"
}

var (
	stats      chatStats
	statsMu    sync.Mutex
	statsDirty bool
)

func loadStats() {
	statsMu.Lock()
	defer statsMu.Unlock()
	stats = chatStats{Lines: make(map[string]int)}

	path := filepath.Join(dataDirPath, statsFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		logWarn("load stats: %v", err)
	default:
		if err := json.Unmarshal(data, &stats); err != nil {
			logWarn("load stats: %v", err)
		}
		if stats.Lines == nil {
			stats.Lines = make(map[string]int)
		}
	}
	stats.Sessions++
	statsDirty = true
}

func saveStats() {
	statsMu.Lock()
	if !statsDirty {
		statsMu.Unlock()
		return
	}
	statsDirty = false
	data, err := json.MarshalIndent(stats, "", "  ")
	statsMu.Unlock()
	if err != nil {
		logError("save stats: %v", err)
		return
	}
	path := filepath.Join(dataDirPath, statsFile)
	if err := os.MkdirAll(dataDirPath, 0o755); err != nil {
		logError("save stats: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logError("save stats: %v", err)
	}
}

// flushStats saves dirty stats every interval until ctx is done.
func flushStats(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			saveStats()
			return
		case <-ticker.C:
			saveStats()
		}
	}
}

func statLineSent(channel string) {
	statsMu.Lock()
	if stats.Lines == nil {
		stats.Lines = make(map[string]int)
	}
	stats.Lines[channel]++
	statsDirty = true
	statsMu.Unlock()
}

// statsSummary lists channels by line count, busiest first.
func statsSummary() []string {
	statsMu.Lock()
	defer statsMu.Unlock()
	type row struct {
		name string
		n    int
	}
	rows := make([]row, 0, len(stats.Lines))
	total := 0
	for name, n := range stats.Lines {
		rows = append(rows, row{name, n})
		total += n
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].name < rows[j].name
	})
	out := []string{fmt.Sprintf("%s lines sent over %s", humanize.Comma(int64(total)), sessionsLabel(stats.Sessions))}
	for _, r := range rows {
		out = append(out, fmt.Sprintf("  %s: %s", r.name, humanize.Comma(int64(r.n))))
	}
	return out
}

func sessionsLabel(n int) string {
	if n == 1 {
		return "1 session"
	}
	return humanize.Comma(int64(n)) + " sessions"
}
