package drafts

import "fmt"

const draftPromptTemplate = `あなたは業務管理のアシスタントです。
以下の Slack 投稿内容から Backlog 課題を作成してください。

【Slack 投稿内容】
%s

以下の JSON 形式で出力してください。余分なテキストや markdown コードブロックは不要です。
{
  "title": "課題タイトル（簡潔に、50文字以内）",
  "description": "課題の詳細説明（箇条書きや見出しを使い、作業内容・背景・完了条件を含める）"
}`

const imagePrompt = `以下の画像はSlack投稿に添付されたスクリーンショット・資料です。
画像の内容を日本語で詳しく説明してください。
Backlog課題の説明文に含めるため、業務的な観点で重要な情報を中心に記述してください。`

const codingPromptTemplate = `あなたはソフトウェアエンジニアのアシスタントです。
以下の Backlog 課題に対するコーディング準備を手伝ってください。

【課題キー】%[1]s
【課題タイトル】%[2]s
【課題説明】%[3]s

以下の JSON 形式で出力してください（余分なテキスト・コードブロック不要）:
{
  "tasks": [
    "タスク1の説明",
    "タスク2の説明"
  ],
  "branchName": "feature/%[4]s-{summary-kebab-case}",
  "commitMessage": "[%[1]s] {動詞}: {簡潔な説明}",
  "notes": "実装上の注意点があれば記述（なければ空文字）"
}`

func draftPrompt(text string) string {
	return fmt.Sprintf(draftPromptTemplate, text)
}

func codingPrompt(key, summary, description, lowerKey string) string {
	if description == "" {
		description = "（説明なし）"
	}
	return fmt.Sprintf(codingPromptTemplate, key, summary, description, lowerKey)
}
