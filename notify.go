package main

import (
	"os"
	"runtime"

	"github.com/gen2brain/beeep"
)

var beeepNotify = func(title, body string) error { return beeep.Notify(title, body, "") }

// notifyDesktop shows a desktop notification, best-effort and non-fatal.
func notifyDesktop(title, body string) {
	if body == "" {
		return
	}
	// Skip on headless Linux without DISPLAY; beeep would error.
	if runtime.GOOS == "linux" && (os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "") {
		return
	}
	if err := beeepNotify(title, body); err != nil {
		logDebug("desktop notification: %v", err)
	}
}

// desktopNotifier raises plugin notices on the desktop. The in-app copy
// already reaches the chat pane through PrintError.
type desktopNotifier struct{}

func (desktopNotifier) Notify(title, body string) { notifyDesktop(title, body) }
