package logsink

import "time"

// reset returns the package to its pre-Init state.
func reset() {
	active.Store(nil)
	maxLevel.Store(int64(levelOff))
}

func (s *Sink) setClock(now func() time.Time) { s.now = now }
