package models

// Image is an attachment sent alongside a draft prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Draft is a generated work item proposal.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CodingPlan is the preparation output for starting work on an issue.
type CodingPlan struct {
	IssueKey      string   `json:"-"`
	BranchName    string   `json:"branchName"`
	CommitMessage string   `json:"commitMessage"`
	Notes         string   `json:"notes"`
	Tasks         []string `json:"tasks"`
	GitCommands   []string `json:"-"`
}
