package report

import (
	"context"
	"errors"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/genai"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/tracker"
)

// Describe turns a client error into a short message for the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var trackerErr *tracker.APIError
	var genaiErr *genai.APIError

	switch {
	case errors.Is(err, tracker.ErrNotConfigured):
		return "Backlog の設定がありません (BACKLOG_SPACE_URL / BACKLOG_API_KEY)"
	case errors.Is(err, genai.ErrNotConfigured):
		return "Gemini API キーが設定されていません (GEMINI_API_KEY)"
	case errors.Is(err, tracker.ErrRateLimited), errors.Is(err, genai.ErrRateLimited):
		return "API のレート制限に達しました。しばらく待ってから再試行してください"
	case errors.Is(err, genai.ErrEmptyResponse):
		return "Gemini から空の応答が返されました"
	case errors.As(err, &trackerErr):
		return trackerErr.Message
	case errors.As(err, &genaiErr):
		return genaiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "リクエストがタイムアウトしました"
	case errors.Is(err, tracker.ErrRequestFailed), errors.Is(err, genai.ErrRequestFailed):
		return "ネットワークエラー: サーバーに接続できません"
	default:
		return err.Error()
	}
}
