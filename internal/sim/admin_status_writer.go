package sim

// AdminStatusWriter allows writers to receive admin server status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// SetAdminStatus forwards the admin status to every writer that shows it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	seen := make(map[AdminStatusWriter]bool)
	forward := func(v any) {
		if sw, ok := v.(AdminStatusWriter); ok && !seen[sw] {
			seen[sw] = true
			sw.SetAdminStatus(listening)
		}
	}
	for _, w := range mw.agentWriters {
		forward(w)
	}
	for _, w := range mw.roleWriters {
		forward(w)
	}
	for _, w := range mw.teamWriters {
		forward(w)
	}
}
