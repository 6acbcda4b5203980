package models

import (
	"strings"
	"time"
)

// Label is an optional display name attached to an issue, such as its
// priority or status. The tracker may omit any of them independently.
type Label struct {
	Name  string
	Valid bool
}

// SomeLabel returns a present Label.
func SomeLabel(name string) Label {
	return Label{Name: name, Valid: true}
}

// Or returns the name, or fallback when the label is absent.
func (l Label) Or(fallback string) string {
	if !l.Valid {
		return fallback
	}
	return l.Name
}

// Issue is a work item read from the tracker.
type Issue struct {
	Created     time.Time
	ProjectID   *int64
	Key         string
	Summary     string
	Description string
	Priority    Label
	Assignee    Label
	Status      Label
}

// ProjectKeyOf returns the key prefix of an issue key, e.g. "PRJ" for "PRJ-12".
func ProjectKeyOf(issueKey string) string {
	if i := strings.LastIndexByte(issueKey, '-'); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}

// Project is a tracker project.
type Project struct {
	ID   int64
	Key  string
	Name string
}

// User is a project member that can be assigned issues.
type User struct {
	ID     int64
	UserID string
	Name   string
}

// IssueType is a project-scoped issue category such as "Bug" or "Task".
type IssueType struct {
	ID   int64
	Name string
}

// Category is a project-scoped tag for issues.
type Category struct {
	ID   int64
	Name string
}

// Int64Ptr is a convenience for optional ids.
func Int64Ptr(v int64) *int64 {
	return &v
}
