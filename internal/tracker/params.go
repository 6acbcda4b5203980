package tracker

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// DefaultPriorityID is Backlog's "Normal" priority.
const DefaultPriorityID int64 = 3

// IssueQuery selects issues by creation date.
type IssueQuery struct {
	CreatedSince models.Date
	CreatedUntil models.Date
	ProjectIDs   []int64
	Count        int
	Offset       int
}

func (q IssueQuery) values() url.Values {
	v := url.Values{}
	if !q.CreatedSince.IsZero() {
		v.Set("createdSince", q.CreatedSince.String())
	}
	if !q.CreatedUntil.IsZero() {
		v.Set("createdUntil", q.CreatedUntil.String())
	}
	for _, id := range q.ProjectIDs {
		v.Add("projectId[]", strconv.FormatInt(id, 10))
	}
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("sort", "created")
	v.Set("order", "asc")
	return v
}

// CreateIssueParams is the form sent to create an issue.
type CreateIssueParams struct {
	AssigneeID  *int64
	Summary     string  `validate:"required,max=255"`
	Description string  `validate:"max=100000"`
	DueDate     string  `validate:"omitempty,datetime=2006-01-02"`
	CategoryIDs []int64 `validate:"dive,gt=0"`
	ProjectID   int64   `validate:"required,gt=0"`
	IssueTypeID int64   `validate:"required,gt=0"`
	PriorityID  int64   `validate:"gte=0"`
}

// Validate checks required fields.
func (p *CreateIssueParams) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func (p *CreateIssueParams) values() url.Values {
	v := url.Values{}
	v.Set("projectId", strconv.FormatInt(p.ProjectID, 10))
	v.Set("summary", p.Summary)
	v.Set("issueTypeId", strconv.FormatInt(p.IssueTypeID, 10))

	priority := p.PriorityID
	if priority == 0 {
		priority = DefaultPriorityID
	}
	v.Set("priorityId", strconv.FormatInt(priority, 10))

	if p.Description != "" {
		v.Set("description", p.Description)
	}
	if p.DueDate != "" {
		v.Set("dueDate", p.DueDate)
	}
	if p.AssigneeID != nil {
		v.Set("assigneeId", strconv.FormatInt(*p.AssigneeID, 10))
	}
	for _, id := range p.CategoryIDs {
		v.Add("categoryId[]", strconv.FormatInt(id, 10))
	}
	return v
}
