package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/drafts"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

func newDraftCmd(app *App) *cobra.Command {
	var text, sourceURL string
	var imagePaths []string
	var projectID, issueTypeID int64

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate an issue draft from a chat message",
		Long: `Generate an issue title and description from a chat message.

Screenshots passed with --image are described and appended. When both
--project and --type are given the draft is submitted right away.

Examples:
  bwd draft --text "ログイン画面でエラーが出る"
  bwd draft --text "..." --url https://acme.slack.com/archives/C01/p123 --image shot.png
  bwd draft --text "..." --project 12 --type 34`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := readImages(imagePaths)
			if err != nil {
				return err
			}

			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			res, err := mgr.GenerateDraft(cmd.Context(), drafts.DraftRequest{
				Text:      text,
				SourceURL: sourceURL,
				Images:    images,
			})
			if err != nil {
				return err
			}

			p := newPrinter(cmd, app, mgr)
			p.draft(res)

			if projectID == 0 || issueTypeID == 0 {
				return nil
			}
			issue, err := mgr.SubmitDraft(cmd.Context(), tracker.CreateIssueParams{
				ProjectID:   projectID,
				IssueTypeID: issueTypeID,
				Summary:     res.Draft.Title,
				Description: res.Draft.Description,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, issue, mgr.Tracker().IssueURL(issue.Key))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Chat message to turn into a draft")
	cmd.Flags().StringVar(&sourceURL, "url", "", "Slack message link to reference")
	cmd.Flags().StringSliceVar(&imagePaths, "image", nil, "Screenshot to describe (repeatable)")
	cmd.Flags().Int64Var(&projectID, "project", 0, "Submit to this project ID")
	cmd.Flags().Int64Var(&issueTypeID, "type", 0, "Issue type ID used with --project")
	_ = cmd.MarkFlagRequired("text")
	cmd.MarkFlagsRequiredTogether("project", "type")

	return cmd
}

func newSubmitCmd(app *App) *cobra.Command {
	var p tracker.CreateIssueParams
	var assigneeID int64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("assignee") {
				p.AssigneeID = models.Int64Ptr(assigneeID)
			}

			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			issue, err := mgr.SubmitDraft(cmd.Context(), p)
			if err != nil {
				return err
			}
			printCreated(cmd, issue, mgr.Tracker().IssueURL(issue.Key))
			return nil
		},
	}

	cmd.Flags().Int64Var(&p.ProjectID, "project", 0, "Project ID")
	cmd.Flags().Int64Var(&p.IssueTypeID, "type", 0, "Issue type ID")
	cmd.Flags().StringVar(&p.Summary, "summary", "", "Issue title")
	cmd.Flags().StringVar(&p.Description, "description", "", "Issue description")
	cmd.Flags().Int64Var(&p.PriorityID, "priority", tracker.DefaultPriorityID, "Priority ID")
	cmd.Flags().StringVar(&p.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&assigneeID, "assignee", 0, "Assignee user ID")
	cmd.Flags().Int64SliceVar(&p.CategoryIDs, "category", nil, "Category ID (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}

func newPrepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prep ISSUE-KEY",
		Short: "Plan the coding work for an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.services(false)
			if err != nil {
				return err
			}
			plan, err := mgr.PrepareCoding(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			newPrinter(cmd, app, mgr).codingPlan(plan)
			return nil
		},
	}
}

func printCreated(cmd *cobra.Command, issue *models.Issue, url string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n%s\n", issue.Key, issue.Summary, url)
}

// readImages loads screenshots and checks that each one is an image.
func readImages(paths []string) ([]models.Image, error) {
	images := make([]models.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		mime := mimetype.Detect(data)
		if !strings.HasPrefix(mime.String(), "image/") {
			return nil, fmt.Errorf("%s is not an image (%s)", path, mime.String())
		}
		images = append(images, models.Image{MIMEType: mime.String(), Data: data})
	}
	return images, nil
}
