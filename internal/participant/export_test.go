package participant

import "time"

// SetClock replaces the store clock.
func SetClock(s *SQLStore, now func() time.Time) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.now = now
}
