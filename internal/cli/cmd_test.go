package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/config"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/drafts"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/genai"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/services"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

type silentNotifier struct{}

func (silentNotifier) Notify(string, string) error { return nil }

var fixedNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

// testApp wires an App against a temp database. Backlog is reachable only
// when spaceURL is set.
func testApp(t *testing.T, spaceURL string) *App {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:  filepath.Join(tmpDir, "test.db"),
		ExportDir:     filepath.Join(tmpDir, "exports"),
		CSVPrefix:     "backlog_daily",
		GeminiModel:   "gemini-2.0-flash",
		Location:      time.UTC,
		HTTPTimeout:   5 * time.Second,
		LogLevel:      "info",
		GitRemoteName: "origin",
	}
	if spaceURL != "" {
		cfg.SpaceURL = spaceURL
		cfg.BacklogAPIKey = "secret"
	}

	app := &App{
		Config: cfg,
		Options: []services.Option{
			services.WithNotifier(silentNotifier{}),
			services.WithClock(func() time.Time { return fixedNow }),
		},
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// backlogServer serves two March issues of project 7 (PRJ) and accepts
// issue creation.
func backlogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/v2/issues" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[
				{"id":1,"projectId":7,"issueKey":"PRJ-1","summary":"ログイン不具合",
				 "status":{"id":4,"name":"完了"},"assignee":{"id":3,"name":"佐藤"},
				 "created":"2026-03-04T01:00:00Z"},
				{"id":2,"projectId":7,"issueKey":"PRJ-2","summary":"検索が遅い",
				 "created":"2026-03-04T02:30:00Z"}
			]`))
		case r.URL.Path == "/api/v2/issues" && r.Method == http.MethodPost:
			assert.NoError(t, r.ParseForm())
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":        3,
				"projectId": 7,
				"issueKey":  "PRJ-3",
				"summary":   r.PostForm.Get("summary"),
				"created":   "2026-03-04T10:00:00Z",
			})
		case r.URL.Path == "/api/v2/projects":
			_, _ = w.Write([]byte(`[{"id":7,"projectKey":"PRJ","name":"Project"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	// A nil slice makes cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	err := root.Execute()
	return buf.String(), err
}

// --- Root command ---

func TestRootCmd_RunsDashboard(t *testing.T) {
	app := testApp(t, "")
	var got *services.Manager
	app.RunTUI = func(mgr *services.Manager) error {
		got = mgr
		return nil
	}

	_, err := executeCmd(t, app)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, app.mgr, got)

	got = nil
	_, err = executeCmd(t, app, "tui")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(t, ""), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bwd ")
}

// --- report ---

func TestReportDaily_WithoutBacklogShowsLedger(t *testing.T) {
	app := testApp(t, "")
	mgr, err := app.services(false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, mgr.Ledger().RecordDraftGenerated(ctx))
	require.NoError(t, mgr.Ledger().RecordDraftGenerated(ctx))
	require.NoError(t, mgr.Ledger().RecordItemCreated(ctx, "PRJ-9"))

	out, err := executeCmd(t, app, "report", "daily")
	require.NoError(t, err)

	assert.Contains(t, out, "Daily report 2026-03-04 (Failed)")
	assert.Regexp(t, `Drafts generated\s+2`, out)
	assert.Regexp(t, `Items recorded\s+1`, out)
	assert.Contains(t, out, "PRJ-9")
	assert.Contains(t, out, "Backlog の設定がありません")
}

func TestReportDaily_WithBacklog(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	out, err := executeCmd(t, app, "report", "daily", "2026-03-04")
	require.NoError(t, err)

	assert.Contains(t, out, "Daily report 2026-03-04 (Ready)")
	assert.Regexp(t, `Total\s+2`, out)
	assert.Regexp(t, `Incomplete\s+1`, out)
	assert.Contains(t, out, "PRJ-1")
	assert.Contains(t, out, "01:00")
	assert.Contains(t, out, "[佐藤]")
	assert.Contains(t, out, "[未割当]")
}

func TestReportDaily_InvalidDate(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "report", "daily", "2026/03/04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestReportMonthly_WithBacklog(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	out, err := executeCmd(t, app, "report", "monthly", "2026-03")
	require.NoError(t, err)

	assert.Contains(t, out, "Monthly report 2026-03 (Ready)")
	assert.Contains(t, out, "1 (50%)")
	assert.Contains(t, out, "By project")
	assert.Regexp(t, `PRJ\s+2`, out)
	assert.Contains(t, out, "2026-03 - issues vs recorded items")
}

func TestReportMonthly_InvalidMonth(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "report", "monthly", "2026-13")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid month")
}

// --- export ---

func TestExportDaily_WritesCSV(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	out, err := executeCmd(t, app, "export", "daily", "2026-03-04")
	require.NoError(t, err)

	path := filepath.Join(app.Config.ExportDir, "backlog_daily_2026-03-04.csv")
	assert.Contains(t, out, "Exported 2 rows to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")), "CSV should start with a BOM")
	assert.Contains(t, string(data), `"PRJ-2"`)

	exports, err := app.mgr.RecentExports(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "daily", exports[0].Kind)
}

func TestExportMonthly_WritesCSV(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	_, err := executeCmd(t, app, "export", "monthly", "2026-03")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(app.Config.ExportDir, "backlog_daily_2026-03.csv"))
	assert.NoError(t, err)
}

func TestExportDaily_WithoutBacklogFails(t *testing.T) {
	app := testApp(t, "")

	_, err := executeCmd(t, app, "export", "daily")
	require.ErrorIs(t, err, services.ErrNothingToExport)
	assert.Contains(t, err.Error(), "Backlog の設定がありません")

	_, statErr := os.Stat(app.Config.ExportDir)
	assert.True(t, os.IsNotExist(statErr), "no export directory should be created")
}

// --- draft / submit / prep ---

func TestSubmit_CreatesIssueAndRecordsIt(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	out, err := executeCmd(t, app, "submit",
		"--project", "7", "--type", "2", "--summary", "Fix login", "--due", "2026-03-31")
	require.NoError(t, err)

	assert.Contains(t, out, "Created PRJ-3 Fix login")
	assert.Contains(t, out, srv.URL+"/view/PRJ-3")

	summary := app.mgr.Ledger().GetDailySummary(context.Background(), app.mgr.Ledger().Today())
	assert.Equal(t, []string{"PRJ-3"}, summary.ItemsCreated)
}

func TestSubmit_InvalidDueDate(t *testing.T) {
	srv := backlogServer(t)
	app := testApp(t, srv.URL)

	_, err := executeCmd(t, app, "submit",
		"--project", "7", "--type", "2", "--summary", "Fix login", "--due", "31/03/2026")
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrInvalidParams)
}

func TestSubmit_RequiresFlags(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "submit", "--project", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestDraft_WithoutGeminiKey(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "draft", "--text", "ログインできない")
	require.Error(t, err)
	assert.ErrorIs(t, err, genai.ErrNotConfigured)
}

func TestDraft_EmptyText(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "draft", "--text", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, drafts.ErrInvalidRequest)
}

func TestDraft_ProjectNeedsType(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "draft", "--text", "x", "--project", "7")
	require.Error(t, err)
}

func TestReadImages(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "shot.png")
	// PNG signature followed by an IHDR chunk header.
	pngData := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	require.NoError(t, os.WriteFile(png, pngData, 0o600))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just text"), 0o600))

	images, err := readImages([]string{png})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "image/png", images[0].MIMEType)

	_, err = readImages([]string{txt})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an image")

	_, err = readImages([]string{filepath.Join(dir, "missing.png")})
	assert.Error(t, err)
}

func TestPrep_WithoutBacklog(t *testing.T) {
	_, err := executeCmd(t, testApp(t, ""), "prep", "PRJ-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrNotConfigured)

	_, err = executeCmd(t, testApp(t, ""), "prep")
	assert.Error(t, err)
}

// --- ledger ---

func TestLedgerShow(t *testing.T) {
	app := testApp(t, "")
	mgr, err := app.services(false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, mgr.Ledger().RecordDraftGenerated(ctx))
	require.NoError(t, mgr.Ledger().RecordItemCreated(ctx, "PRJ-1"))
	require.NoError(t, mgr.Ledger().RecordItemCreated(ctx, "PRJ-2"))

	out, err := executeCmd(t, app, "ledger", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger 2026-03-04")
	assert.Regexp(t, `Items recorded\s+2`, out)
	assert.Contains(t, out, "PRJ-1, PRJ-2")

	out, err = executeCmd(t, app, "ledger", "show", "2026-03-05")
	require.NoError(t, err)
	assert.Regexp(t, `Drafts generated\s+0`, out)

	out, err = executeCmd(t, app, "ledger", "show", "--month", "2026-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-04  drafts 1")
	assert.Regexp(t, `Items recorded\s+2`, out)

	out, err = executeCmd(t, app, "ledger", "show", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "PRJ-1,PRJ-2")
}

func TestLedgerShow_Empty(t *testing.T) {
	out, err := executeCmd(t, testApp(t, ""), "ledger", "show", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "No ledger records.")
}

func TestLedgerShow_FlagErrors(t *testing.T) {
	app := testApp(t, "")

	_, err := executeCmd(t, app, "ledger", "show", "--month", "March")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "ledger", "show", "--month", "2026-03", "--all")
	assert.Error(t, err)
}

func TestMonthFlag(t *testing.T) {
	var f monthFlag
	assert.Equal(t, "", f.String())
	assert.Equal(t, "YYYY-MM", f.Type())

	require.NoError(t, f.Set("2024-02"))
	assert.True(t, f.set)
	assert.Equal(t, "2024-02", f.String())
	assert.Equal(t, 29, f.ym.DaysInMonth())

	assert.Error(t, f.Set("2024-2-1"))
}
