package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"clawdia/internal/processes"
	"clawdia/internal/tasks"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// RenderTaskBadge 渲染任务状态标记
// RenderTaskBadge renders the checkbox marker of a task status
func RenderTaskBadge(s tasks.Status, theme Theme) string {
	marker := "[" + string(tasks.MarkerFor(s)) + "]"
	switch s {
	case tasks.StatusDone:
		return theme.DoneStyle.Render(marker)
	case tasks.StatusInProgress:
		return theme.ProgressStyle.Render(marker)
	default:
		return theme.OpenStyle.Render(marker)
	}
}

// RenderProcessBadge 渲染进程状态
// RenderProcessBadge colors a process status
func RenderProcessBadge(status string, theme Theme) string {
	if status == processes.StatusRunning {
		return theme.DoneStyle.Render("● " + status)
	}
	return theme.IdleStyle.Render("○ " + status)
}

// renderProgressBar draws done/total as a bar of the given width.
func renderProgressBar(done, total, width int) string {
	if width < 4 {
		width = 4
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
