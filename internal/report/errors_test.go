package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/genai"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"TrackerNotConfigured", fmt.Errorf("wrap: %w", tracker.ErrNotConfigured), "Backlog の設定がありません (BACKLOG_SPACE_URL / BACKLOG_API_KEY)"},
		{"RateLimited", fmt.Errorf("%w: %w", tracker.ErrRateLimited, &tracker.APIError{StatusCode: 429, Message: "slow down"}), "API のレート制限に達しました。しばらく待ってから再試行してください"},
		{"UpstreamMessage", &tracker.APIError{StatusCode: 400, Message: "No such project."}, "No such project."},
		{"GenaiMessage", &genai.APIError{StatusCode: 400, Message: "API key not valid"}, "API key not valid"},
		{"Empty", genai.ErrEmptyResponse, "Gemini から空の応答が返されました"},
		{"Timeout", fmt.Errorf("%w: %w", tracker.ErrRequestFailed, context.DeadlineExceeded), "リクエストがタイムアウトしました"},
		{"Transport", fmt.Errorf("%w: dial tcp", tracker.ErrRequestFailed), "ネットワークエラー: サーバーに接続できません"},
		{"Other", errors.New("something"), "something"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
