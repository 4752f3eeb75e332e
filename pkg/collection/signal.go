package collection

// signal is the shared listener list for the package's managers: subscribe
// with an unsubscribe handle, fire once per public mutating call. The
// listener set is snapshotted before iteration so a callback may unsubscribe
// itself.
type signal struct {
	listeners []func()
	ids       []int
	nextID    int
}

func (s *signal) listen(fn func()) func() {
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, fn)
	s.ids = append(s.ids, id)
	return func() {
		for i, lid := range s.ids {
			if lid == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				return
			}
		}
	}
}

func (s *signal) fire() {
	snapshot := make([]func(), len(s.listeners))
	copy(snapshot, s.listeners)
	for _, fn := range snapshot {
		fn()
	}
}
