// Package chatloop implements the AutoChat plugin: a configurable message that
// is sent into a chat channel on a fixed interval.
//
// The host drives everything. It calls the update hook with the time elapsed
// since the previous frame, the draw hook with an immediate-mode UI, and the
// registered slash command. Any unexpected error or panic inside one of those
// entry points trips the fail-safe controller, which detaches the plugin from
// the host, disables the feature and tells the user once.
package chatloop
