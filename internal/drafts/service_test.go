package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

type fakeGenerator struct {
	text       string
	imageText  string
	err        error
	imageErr   error
	prompts    []string
	imageCalls int
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeGenerator) GenerateWithImages(_ context.Context, _ string, images []models.Image) (string, error) {
	f.imageCalls++
	return f.imageText, f.imageErr
}

type fakeTracker struct {
	issue     *models.Issue
	err       error
	created   []tracker.CreateIssueParams
	requested []string
}

func (f *fakeTracker) CreateIssue(_ context.Context, p tracker.CreateIssueParams) (*models.Issue, error) {
	f.created = append(f.created, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.issue, nil
}

func (f *fakeTracker) GetIssue(_ context.Context, key string) (*models.Issue, error) {
	f.requested = append(f.requested, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.issue, nil
}

type fakeRecorder struct {
	drafts int
	items  []string
	err    error
}

func (f *fakeRecorder) RecordDraftGenerated(context.Context) error {
	f.drafts++
	return f.err
}

func (f *fakeRecorder) RecordItemCreated(_ context.Context, key string) error {
	f.items = append(f.items, key)
	return f.err
}

func TestGenerateDraft_ParsesReply(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"title\":\"ログイン修正\",\"description\":\"- 原因調査\"}\n```"}
	rec := &fakeRecorder{}
	svc := NewService(gen, &fakeTracker{}, rec, GitSettings{})

	res, err := svc.GenerateDraft(context.Background(), DraftRequest{Text: "  ログインできない  "})
	require.NoError(t, err)

	assert.Equal(t, "ログイン修正", res.Draft.Title)
	assert.Equal(t, "- 原因調査", res.Draft.Description)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, rec.drafts)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "【Slack 投稿内容】\nログインできない\n")
	assert.Zero(t, gen.imageCalls)
}

func TestGenerateDraft_Fallbacks(t *testing.T) {
	text := strings.Repeat("あ", 60)
	gen := &fakeGenerator{text: "plain answer"}
	svc := NewService(gen, &fakeTracker{}, &fakeRecorder{}, GitSettings{})

	res, err := svc.GenerateDraft(context.Background(), DraftRequest{Text: text})
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("あ", 50), res.Draft.Title)
	assert.Equal(t, "plain answer", res.Draft.Description)
}

func TestGenerateDraft_ImagesAndSource(t *testing.T) {
	gen := &fakeGenerator{
		text:      `{"title":"t","description":"d"}`,
		imageText: "画面のエラー表示",
	}
	svc := NewService(gen, &fakeTracker{}, &fakeRecorder{}, GitSettings{})
	url := "https://acme.slack.com/archives/C01ABC/p1700000000"

	res, err := svc.GenerateDraft(context.Background(), DraftRequest{
		Text:      "message",
		SourceURL: url,
		Images:    []models.Image{{MIMEType: "image/png", Data: []byte{1}}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.imageCalls)
	assert.Equal(t, "d\n\n## 添付画像の内容\n画面のエラー表示\n\n## 参照元 Slack\n"+url, res.Draft.Description)
}

func TestGenerateDraft_InvalidSourceURL(t *testing.T) {
	gen := &fakeGenerator{text: `{"title":"t","description":"d"}`}
	svc := NewService(gen, &fakeTracker{}, &fakeRecorder{}, GitSettings{})

	res, err := svc.GenerateDraft(context.Background(), DraftRequest{
		Text:      "message",
		SourceURL: "https://example.com/thread",
	})
	require.NoError(t, err)

	assert.Equal(t, "d", res.Draft.Description)
	assert.Len(t, res.Warnings, 1)
}

func TestGenerateDraft_Errors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		rec := &fakeRecorder{}
		svc := NewService(&fakeGenerator{}, &fakeTracker{}, rec, GitSettings{})
		_, err := svc.GenerateDraft(context.Background(), DraftRequest{Text: "   "})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Zero(t, rec.drafts)
	})

	t.Run("generator failure", func(t *testing.T) {
		boom := errors.New("boom")
		rec := &fakeRecorder{}
		svc := NewService(&fakeGenerator{err: boom}, &fakeTracker{}, rec, GitSettings{})
		_, err := svc.GenerateDraft(context.Background(), DraftRequest{Text: "x"})
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, rec.drafts)
	})

	t.Run("image failure", func(t *testing.T) {
		boom := errors.New("vision down")
		gen := &fakeGenerator{text: "{}", imageErr: boom}
		svc := NewService(gen, &fakeTracker{}, &fakeRecorder{}, GitSettings{})
		_, err := svc.GenerateDraft(context.Background(), DraftRequest{
			Text:   "x",
			Images: []models.Image{{MIMEType: "image/png"}},
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("ledger failure is not fatal", func(t *testing.T) {
		gen := &fakeGenerator{text: "reply"}
		svc := NewService(gen, &fakeTracker{}, &fakeRecorder{err: errors.New("disk full")}, GitSettings{})
		res, err := svc.GenerateDraft(context.Background(), DraftRequest{Text: "x"})
		require.NoError(t, err)
		assert.Equal(t, "reply", res.Draft.Description)
	})
}

func TestSubmitDraft(t *testing.T) {
	tr := &fakeTracker{issue: &models.Issue{Key: "PRJ-12"}}
	rec := &fakeRecorder{}
	svc := NewService(&fakeGenerator{}, tr, rec, GitSettings{})

	issue, err := svc.SubmitDraft(context.Background(), tracker.CreateIssueParams{
		ProjectID:   7,
		IssueTypeID: 2,
		Summary:     "  件名  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "PRJ-12", issue.Key)
	assert.Equal(t, []string{"PRJ-12"}, rec.items)
	require.Len(t, tr.created, 1)
	assert.Equal(t, "件名", tr.created[0].Summary)
	assert.Equal(t, tracker.DefaultPriorityID, tr.created[0].PriorityID)
}

func TestSubmitDraft_TrackerError(t *testing.T) {
	tr := &fakeTracker{err: tracker.ErrRateLimited}
	rec := &fakeRecorder{}
	svc := NewService(&fakeGenerator{}, tr, rec, GitSettings{})

	_, err := svc.SubmitDraft(context.Background(), tracker.CreateIssueParams{ProjectID: 1, IssueTypeID: 1, Summary: "s"})
	assert.ErrorIs(t, err, tracker.ErrRateLimited)
	assert.Empty(t, rec.items)
}

func TestPrepareCoding_ParsesReply(t *testing.T) {
	gen := &fakeGenerator{text: `{"tasks":["a","b"],"branchName":"feature/prj-3-login","commitMessage":"[PRJ-3] fix: login","notes":"n"}`}
	tr := &fakeTracker{issue: &models.Issue{Key: "PRJ-3", Summary: "ログイン"}}
	svc := NewService(gen, tr, &fakeRecorder{}, GitSettings{SpaceID: "acme", RepoName: "web"})

	plan, err := svc.PrepareCoding(context.Background(), " prj-3 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"PRJ-3"}, tr.requested)
	assert.Equal(t, "PRJ-3", plan.IssueKey)
	assert.Equal(t, []string{"a", "b"}, plan.Tasks)
	assert.Equal(t, "n", plan.Notes)
	assert.Equal(t, []string{
		"git checkout -b feature/prj-3-login",
		"git remote add origin https://acme.git.backlog.com/PRJ/web.git",
		"git push origin feature/prj-3-login",
	}, plan.GitCommands)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "【課題説明】（説明なし）")
}

func TestPrepareCoding_Fallbacks(t *testing.T) {
	gen := &fakeGenerator{text: "do the thing"}
	tr := &fakeTracker{issue: &models.Issue{Key: "ABC-9", Summary: "s"}}
	svc := NewService(gen, tr, &fakeRecorder{}, GitSettings{RemoteName: "backlog"})

	plan, err := svc.PrepareCoding(context.Background(), "abc-9")
	require.NoError(t, err)

	assert.Equal(t, []string{"do the thing"}, plan.Tasks)
	assert.Equal(t, "feature/abc-9-task", plan.BranchName)
	assert.Equal(t, "[ABC-9] 機能実装", plan.CommitMessage)
	assert.Equal(t, []string{
		"git checkout -b feature/abc-9-task",
		"git push backlog feature/abc-9-task",
	}, plan.GitCommands)
}

func TestPrepareCoding_Errors(t *testing.T) {
	svc := NewService(&fakeGenerator{}, &fakeTracker{}, &fakeRecorder{}, GitSettings{})
	_, err := svc.PrepareCoding(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyIssueKey)

	svc = NewService(&fakeGenerator{}, &fakeTracker{err: tracker.ErrNotConfigured}, &fakeRecorder{}, GitSettings{})
	_, err = svc.PrepareCoding(context.Background(), "X-1")
	assert.ErrorIs(t, err, tracker.ErrNotConfigured)
}

func TestIsValidSlackURL(t *testing.T) {
	assert.True(t, IsValidSlackURL("https://my-team.slack.com/archives/C0123/p1234567890?thread_ts=1"))
	assert.False(t, IsValidSlackURL("http://my-team.slack.com/archives/C0123/p1"))
	assert.False(t, IsValidSlackURL("https://my-team.slack.com/archives/c0123/p1"))
	assert.False(t, IsValidSlackURL(""))
}
