package service

import (
	"strings"
	"sync"
)

// DefaultStatus is reported until an operator changes it.
const DefaultStatus = "Online"

// StatusService owns the operator-set system status string.
type StatusService struct {
	mu     sync.RWMutex
	status string
}

func NewStatusService(initial string) *StatusService {
	initial = strings.TrimSpace(initial)
	if initial == "" {
		initial = DefaultStatus
	}
	return &StatusService{status: initial}
}

func (s *StatusService) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Set replaces the status and returns the value now in effect. A blank
// status leaves the current one in place.
func (s *StatusService) Set(status string) string {
	status = strings.TrimSpace(status)
	s.mu.Lock()
	defer s.mu.Unlock()
	if status != "" {
		s.status = status
	}
	return s.status
}
