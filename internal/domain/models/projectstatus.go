// internal/domain/models/projectstatus.go
package models

import "strings"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusPending   ProjectStatus = "pending"
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
)

// DefaultProjectStatus is assigned when a project is created without a status.
const DefaultProjectStatus = StatusPending

// ProjectStatuses lists every valid status in display order.
var ProjectStatuses = []ProjectStatus{StatusPending, StatusActive, StatusCompleted}

// IsValid reports whether s is one of the enumerated statuses.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// ParseProjectStatus normalizes raw input (trim + lowercase) and reports whether
// the result is a valid status. Empty input yields DefaultProjectStatus.
func ParseProjectStatus(raw string) (ProjectStatus, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return DefaultProjectStatus, true
	}
	s := ProjectStatus(v)
	return s, s.IsValid()
}
