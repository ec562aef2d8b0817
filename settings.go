package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	SETTINGS_VERSION = 1
	settingsFile     = "settings.json"
)

// settings are the sandbox's own preferences. Plugin settings live in
// their own files under plugins/.
type settings struct {
	Version int

	WindowWidth  int
	WindowHeight int

	ConsoleTimestamps bool
	TimestampFormat   string

	// PluginSpamKill disables plugins that send too many lines at once.
	PluginSpamKill bool

	// Theme is "dark", "light" or empty to follow the desktop.
	Theme string

	LastCharacter string
}

var gsdef = settings{
	Version:           SETTINGS_VERSION,
	WindowWidth:       initialWindowW,
	WindowHeight:      initialWindowH,
	ConsoleTimestamps: true,
	TimestampFormat:   "3:04PM",
	PluginSpamKill:    true,
}

var gs = gsdef

// loadSettings reads settings.json. A missing, unreadable or outdated file
// leaves the defaults in place and returns false.
func loadSettings() bool {
	path := filepath.Join(dataDirPath, settingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		gs = gsdef
		return false
	}
	tmp := gsdef
	if err := json.Unmarshal(data, &tmp); err != nil {
		logWarn("load settings: %v", err)
		gs = gsdef
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = gsdef
		return false
	}
	gs = tmp
	if gs.WindowWidth < 512 {
		gs.WindowWidth = initialWindowW
	}
	if gs.WindowHeight < 384 {
		gs.WindowHeight = initialWindowH
	}
	if strings.TrimSpace(gs.TimestampFormat) == "" {
		gs.TimestampFormat = gsdef.TimestampFormat
	}
	return true
}

func saveSettings() {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	path := filepath.Join(dataDirPath, settingsFile)
	if err := os.WriteFile(path+".tmp", data, 0o644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		logError("save settings: %v", err)
	}
}

func (s settings) uiTheme() uiTheme {
	switch strings.ToLower(s.Theme) {
	case "dark":
		return darkTheme
	case "light":
		return lightTheme
	}
	return pickTheme()
}
