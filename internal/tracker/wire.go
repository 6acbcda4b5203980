package tracker

import (
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// Response shapes of the Backlog API v2. Only the fields the dashboard reads
// are declared.

type namedRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

type issueJSON struct {
	ProjectID   *int64    `json:"projectId"`
	Priority    *namedRef `json:"priority"`
	Assignee    *namedRef `json:"assignee"`
	Status      *namedRef `json:"status"`
	IssueKey    string    `json:"issueKey"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Created     string    `json:"created"`
	ID          int64     `json:"id"`
}

type projectJSON struct {
	ProjectKey string `json:"projectKey"`
	Name       string `json:"name"`
	ID         int64  `json:"id"`
}

type userJSON struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	ID     int64  `json:"id"`
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"errors"`
}

func label(ref *namedRef) models.Label {
	if ref == nil {
		return models.Label{}
	}
	return models.SomeLabel(ref.Name)
}

func (j issueJSON) toModel() models.Issue {
	issue := models.Issue{
		Key:         j.IssueKey,
		Summary:     j.Summary,
		Description: j.Description,
		ProjectID:   j.ProjectID,
		Priority:    label(j.Priority),
		Assignee:    label(j.Assignee),
		Status:      label(j.Status),
	}
	if j.Created != "" {
		if t, err := time.Parse(time.RFC3339, j.Created); err == nil {
			issue.Created = t
		}
	}
	return issue
}

func (j projectJSON) toModel() models.Project {
	return models.Project{ID: j.ID, Key: j.ProjectKey, Name: j.Name}
}

func (j userJSON) toModel() models.User {
	return models.User{ID: j.ID, UserID: j.UserID, Name: j.Name}
}

func (e errorBody) message() string {
	var parts []string
	for _, item := range e.Errors {
		if item.Message != "" {
			parts = append(parts, item.Message)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
