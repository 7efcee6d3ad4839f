package session

import "time"

// SetNowForTest overrides the service clock from the external test package.
func (s *Service) SetNowForTest(now func() time.Time) { s.now = now }
