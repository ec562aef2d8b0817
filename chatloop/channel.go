package chatloop

import (
	"fmt"
	"strings"
)

// Channel selects where the message is sent.
type Channel int

const (
	Say Channel = iota
	Shout
	Yell
	Party
	Alliance
	FreeCompany
	Linkshell1
	Linkshell2
	Linkshell3
	Linkshell4
	Linkshell5
	Linkshell6
	Linkshell7
	Linkshell8
	CrossWorldLinkshell1
	CrossWorldLinkshell2
	CrossWorldLinkshell3
	CrossWorldLinkshell4
	CrossWorldLinkshell5
	CrossWorldLinkshell6
	CrossWorldLinkshell7
	CrossWorldLinkshell8
	// YellowText prints the message locally instead of sending a command.
	YellowText

	channelCount
)

var channelNames = [channelCount]string{
	Say:                  "Say",
	Shout:                "Shout",
	Yell:                 "Yell",
	Party:                "Party",
	Alliance:             "Alliance",
	FreeCompany:          "FreeCompany",
	Linkshell1:           "Linkshell1",
	Linkshell2:           "Linkshell2",
	Linkshell3:           "Linkshell3",
	Linkshell4:           "Linkshell4",
	Linkshell5:           "Linkshell5",
	Linkshell6:           "Linkshell6",
	Linkshell7:           "Linkshell7",
	Linkshell8:           "Linkshell8",
	CrossWorldLinkshell1: "CrossWorldLinkshell1",
	CrossWorldLinkshell2: "CrossWorldLinkshell2",
	CrossWorldLinkshell3: "CrossWorldLinkshell3",
	CrossWorldLinkshell4: "CrossWorldLinkshell4",
	CrossWorldLinkshell5: "CrossWorldLinkshell5",
	CrossWorldLinkshell6: "CrossWorldLinkshell6",
	CrossWorldLinkshell7: "CrossWorldLinkshell7",
	CrossWorldLinkshell8: "CrossWorldLinkshell8",
	YellowText:           "YellowText",
}

var channelPrefixes = [channelCount]string{
	Say:                  "/s",
	Shout:                "/sh",
	Yell:                 "/y",
	Party:                "/p",
	Alliance:             "/a",
	FreeCompany:          "/fc",
	Linkshell1:           "/l1",
	Linkshell2:           "/l2",
	Linkshell3:           "/l3",
	Linkshell4:           "/l4",
	Linkshell5:           "/l5",
	Linkshell6:           "/l6",
	Linkshell7:           "/l7",
	Linkshell8:           "/l8",
	CrossWorldLinkshell1: "/cl1",
	CrossWorldLinkshell2: "/cl2",
	CrossWorldLinkshell3: "/cl3",
	CrossWorldLinkshell4: "/cl4",
	CrossWorldLinkshell5: "/cl5",
	CrossWorldLinkshell6: "/cl6",
	CrossWorldLinkshell7: "/cl7",
	CrossWorldLinkshell8: "/cl8",
	YellowText:           "",
}

// Valid reports whether c is one of the enumerated channels.
func (c Channel) Valid() bool { return c >= 0 && c < channelCount }

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Prefix returns the command prefix for c. An empty prefix means the message
// is printed directly instead of being dispatched as a command; that is the
// case for YellowText and for any value outside the enumeration.
func (c Channel) Prefix() string {
	if !c.Valid() {
		return ""
	}
	return channelPrefixes[c]
}

// ChannelPrefix is the function form of Channel.Prefix.
func ChannelPrefix(c Channel) string { return c.Prefix() }

// Channels lists every channel in display order.
func Channels() []Channel {
	out := make([]Channel, channelCount)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// ChannelNames lists the display names of Channels.
func ChannelNames() []string {
	return append([]string(nil), channelNames[:]...)
}

// ParseChannel resolves a channel by display name or by command prefix,
// ignoring case and a leading slash.
func ParseChannel(s string) (Channel, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return 0, false
	}
	bare := strings.TrimPrefix(key, "/")
	for i := Channel(0); i < channelCount; i++ {
		if strings.ToLower(channelNames[i]) == bare {
			return i, true
		}
		if p := channelPrefixes[i]; p != "" && p[1:] == bare {
			return i, true
		}
	}
	switch bare {
	case "free company", "fcompany":
		return FreeCompany, true
	case "echo", "yellow", "print":
		return YellowText, true
	}
	return 0, false
}
