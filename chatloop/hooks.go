package chatloop

// hookSet tracks which host hooks are attached. Every attach and detach is
// guarded by its flag, so detaching twice never reaches the host twice.
type hookSet struct {
	owner   string
	command string
	svc     Services

	update bool
	draw   bool
	cmd    bool
	openUI bool
}

func (h *hookSet) attachUpdate(fn UpdateFunc) {
	if h.update {
		return
	}
	h.svc.Framework.AddUpdate(h.owner, fn)
	h.update = true
}

func (h *hookSet) attachDraw(fn DrawFunc) {
	if h.draw {
		return
	}
	h.svc.UI.AddDraw(h.owner, fn)
	h.draw = true
}

func (h *hookSet) attachOpenUI(fn func()) {
	if h.openUI {
		return
	}
	h.svc.UI.AddOpenUI(h.owner, fn)
	h.openUI = true
}

// attachCommand reports false when the host refused the registration, for
// example because another plugin owns the command.
func (h *hookSet) attachCommand(info CommandInfo) bool {
	if h.cmd {
		return true
	}
	if !h.svc.Commands.AddHandler(h.command, info) {
		return false
	}
	h.cmd = true
	return true
}

func (h *hookSet) detachAll() {
	if h.update {
		h.svc.Framework.RemoveUpdate(h.owner)
		h.update = false
	}
	if h.cmd {
		h.svc.Commands.RemoveHandler(h.command)
		h.cmd = false
	}
	if h.draw {
		h.svc.UI.RemoveDraw(h.owner)
		h.draw = false
	}
	if h.openUI {
		h.svc.UI.RemoveOpenUI(h.owner)
		h.openUI = false
	}
}

func (h *hookSet) attached() bool {
	return h.update || h.draw || h.cmd || h.openUI
}
