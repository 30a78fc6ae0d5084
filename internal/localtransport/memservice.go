// SPDX-License-Identifier: GPL-3.0-or-later

package localtransport

import "sync"

// MemService is a minimal in-process existence tracker standing in for a
// real local-transport service: whether it is currently offered. It backs
// MemRuntime, the in-process reference Runtime this module ships so the
// bridging engine can be exercised end to end without the real cgo
// iceoryx2 binding, which is out of scope for this module (see DESIGN.md).
type MemService struct {
	mu      sync.RWMutex
	offered bool
}

// NewMemService returns a service initially not offered.
func NewMemService() *MemService {
	return &MemService{}
}

// SetOffered records whether the service is currently offered.
func (s *MemService) SetOffered(v bool) {
	s.mu.Lock()
	s.offered = v
	s.mu.Unlock()
}

// Offered reports the service's current availability.
func (s *MemService) Offered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offered
}
