// Package drafts turns chat messages into tracker issues and prepares
// coding work for existing issues.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/genai"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

const titleFallbackRunes = 50

var slackURLPattern = regexp.MustCompile(`^https://[a-zA-Z0-9-]+\.slack\.com/archives/[A-Z0-9]+/p[0-9]+`)

var (
	// ErrInvalidRequest means a request failed validation.
	ErrInvalidRequest = errors.New("invalid draft request")
	// ErrEmptyIssueKey means PrepareCoding was called without a key.
	ErrEmptyIssueKey = errors.New("issue key is empty")
)

// Generator produces text from prompts.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImages(ctx context.Context, prompt string, images []models.Image) (string, error)
}

// IssueTracker creates and reads issues.
type IssueTracker interface {
	CreateIssue(ctx context.Context, p tracker.CreateIssueParams) (*models.Issue, error)
	GetIssue(ctx context.Context, issueKey string) (*models.Issue, error)
}

// Recorder is the part of the ledger that counts activity.
type Recorder interface {
	RecordDraftGenerated(ctx context.Context) error
	RecordItemCreated(ctx context.Context, itemKey string) error
}

// GitSettings describe the Backlog-hosted repository used for coding prep.
type GitSettings struct {
	SpaceID    string
	RepoName   string
	RemoteName string
}

// DraftRequest is the input of GenerateDraft.
type DraftRequest struct {
	Text      string `validate:"required"`
	SourceURL string
	Images    []models.Image
}

// DraftResult is a generated draft plus non-fatal warnings.
type DraftResult struct {
	Draft    models.Draft
	Warnings []string
}

// Service runs the draft and coding-prep workflows.
type Service struct {
	gen      Generator
	tracker  IssueTracker
	recorder Recorder
	git      GitSettings
	validate *validator.Validate
}

// NewService creates a Service.
func NewService(gen Generator, tr IssueTracker, rec Recorder, git GitSettings) *Service {
	if git.RemoteName == "" {
		git.RemoteName = "origin"
	}
	return &Service{
		gen:      gen,
		tracker:  tr,
		recorder: rec,
		git:      git,
		validate: validator.New(),
	}
}

// IsValidSlackURL reports whether u links to a Slack message.
func IsValidSlackURL(u string) bool {
	return slackURLPattern.MatchString(u)
}

type draftReply struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GenerateDraft asks the generator for a title and description. A reply
// that is not the expected JSON still yields a draft: the title falls back
// to the start of the message and the description to the raw reply.
func (s *Service) GenerateDraft(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	result := &DraftResult{}
	var sourceSection string
	if req.SourceURL != "" {
		if IsValidSlackURL(req.SourceURL) {
			sourceSection = "\n\n## 参照元 Slack\n" + req.SourceURL
		} else {
			result.Warnings = append(result.Warnings, "Slack URL の形式が正しくありません")
		}
	}

	raw, err := s.gen.GenerateText(ctx, draftPrompt(req.Text))
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	fallbackTitle := truncateRunes(req.Text, titleFallbackRunes)
	draft := models.Draft{Title: fallbackTitle, Description: raw}
	if reply, err := genai.ExtractJSON[draftReply](raw, nil); err == nil {
		if reply.Title != "" {
			draft.Title = reply.Title
		}
		if reply.Description != "" {
			draft.Description = reply.Description
		}
	} else {
		logger.Debug("Draft reply was not JSON; using fallbacks", "error", err)
	}

	if len(req.Images) > 0 {
		desc, err := s.gen.GenerateWithImages(ctx, imagePrompt, req.Images)
		if err != nil {
			return nil, fmt.Errorf("failed to describe images: %w", err)
		}
		draft.Description += "\n\n## 添付画像の内容\n" + desc
	}
	draft.Description += sourceSection
	result.Draft = draft

	if err := s.recorder.RecordDraftGenerated(ctx); err != nil {
		logger.Warn("Failed to record generated draft", "error", err)
	}
	return result, nil
}

// SubmitDraft creates the issue and records it in the ledger.
func (s *Service) SubmitDraft(ctx context.Context, p tracker.CreateIssueParams) (*models.Issue, error) {
	p.Summary = strings.TrimSpace(p.Summary)
	if p.PriorityID == 0 {
		p.PriorityID = tracker.DefaultPriorityID
	}

	issue, err := s.tracker.CreateIssue(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	if err := s.recorder.RecordItemCreated(ctx, issue.Key); err != nil {
		logger.Warn("Failed to record created issue", "key", issue.Key, "error", err)
	}
	logger.Info("Issue created", "key", issue.Key)
	return issue, nil
}

type codingReply struct {
	BranchName    string   `json:"branchName"`
	CommitMessage string   `json:"commitMessage"`
	Notes         string   `json:"notes"`
	Tasks         []string `json:"tasks"`
}

// PrepareCoding builds a task list, branch name, commit message and git
// commands for an existing issue.
func (s *Service) PrepareCoding(ctx context.Context, issueKey string) (*models.CodingPlan, error) {
	key := strings.ToUpper(strings.TrimSpace(issueKey))
	if key == "" {
		return nil, ErrEmptyIssueKey
	}

	issue, err := s.tracker.GetIssue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load issue %s: %w", key, err)
	}
	if issue.Key != "" {
		key = issue.Key
	}
	lowerKey := strings.ToLower(key)

	raw, err := s.gen.GenerateText(ctx, codingPrompt(key, issue.Summary, issue.Description, lowerKey))
	if err != nil {
		return nil, fmt.Errorf("failed to generate coding plan: %w", err)
	}

	plan := &models.CodingPlan{
		IssueKey:      key,
		Tasks:         []string{raw},
		BranchName:    "feature/" + lowerKey + "-task",
		CommitMessage: "[" + key + "] 機能実装",
	}
	if reply, err := genai.ExtractJSON[codingReply](raw, nil); err == nil {
		if len(reply.Tasks) > 0 {
			plan.Tasks = reply.Tasks
		}
		if reply.BranchName != "" {
			plan.BranchName = reply.BranchName
		}
		if reply.CommitMessage != "" {
			plan.CommitMessage = reply.CommitMessage
		}
		plan.Notes = reply.Notes
	} else {
		logger.Debug("Coding reply was not JSON; using fallbacks", "error", err)
	}

	plan.GitCommands = s.gitCommands(plan.BranchName, models.ProjectKeyOf(key))
	return plan, nil
}

// gitCommands returns checkout, the optional remote add, and push.
func (s *Service) gitCommands(branch, projectKey string) []string {
	cmds := []string{"git checkout -b " + branch}
	if s.git.SpaceID != "" && s.git.RepoName != "" && projectKey != "" {
		remoteURL := fmt.Sprintf("https://%s.git.backlog.com/%s/%s.git", s.git.SpaceID, projectKey, s.git.RepoName)
		cmds = append(cmds, fmt.Sprintf("git remote add %s %s", s.git.RemoteName, remoteURL))
	}
	return append(cmds, fmt.Sprintf("git push %s %s", s.git.RemoteName, branch))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
