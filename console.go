package main

const maxMessages = 1000

var (
	consoleLog = messageLog{max: maxMessages}
	chatLog    = messageLog{max: maxMessages}
)

// consoleMessage records a system line: host notices, log warnings and
// command errors.
func consoleMessage(msg string) {
	if msg == "" {
		return
	}
	consoleLog.Add(msg)
	appendConsoleLog(msg)
}

// chatMessage records a line in the chat pane.
func chatMessage(msg string) {
	if msg == "" {
		return
	}
	chatLog.Add(msg)
	appendChatLog(msg)
}

func chatError(msg string) {
	if msg == "" {
		return
	}
	chatLog.AddError(msg)
	appendChatLog(msg)
}
