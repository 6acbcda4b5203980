package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/ui/styles"
)

const (
	gradientFrom = "#ff6b6b"
	gradientTo   = "#51cf66"
)

// CompletionBar shows how many of a period's issues are done.
type CompletionBar struct {
	progress progress.Model
}

// NewCompletionBar creates a completion bar with a red-to-green gradient.
func NewCompletionBar() CompletionBar {
	return CompletionBar{
		progress: progress.New(
			progress.WithScaledGradient(gradientFrom, gradientTo),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// Percent returns done/total as a percentage, 0 when total is 0.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// View renders the bar with a label and "done/total (pct%)".
func (c CompletionBar) View(done, total int, label string, width int) string {
	return c.ViewAt(Percent(done, total), done, total, label, width)
}

// ViewAt renders the bar filled to percent, which may lag behind done/total
// while it animates. The count always shows the real numbers.
func (c CompletionBar) ViewAt(percent float64, done, total int, label string, width int) string {
	c.progress.Width = max(width-40, 10)

	bar := c.progress.ViewAs(min(max(percent, 0), 100) / 100)

	pct := Percent(done, total)
	countStr := styles.GetRatioStyle(pct).
		Render(fmt.Sprintf("%d/%d (%.0f%%)", done, total, pct))
	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", countStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientFrom, gradientTo, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// SimpleCompletionBar renders "label [bar] pct%" without a bubbles model.
func SimpleCompletionBar(done, total int, label string, width int) string {
	const percentWidth = 6
	barWidth := max(width-len(label)-1-percentWidth-4, 5)

	pct := Percent(done, total)
	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	pctStr := styles.GetRatioStyle(pct).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", pct))

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(pct, barWidth), pctStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
