// Package tui is the terminal dashboard behind "clawdia watch".
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clawdia/internal/i18n"
	"clawdia/internal/processes"
	"clawdia/internal/skills"
	"clawdia/internal/status"
	"clawdia/internal/tasks"
)

// TabID 标签页标识
// TabID identifies a tab
type TabID int

const (
	TabStatus TabID = iota
	TabTasks
	TabProcesses
	TabSkills
	tabCount
)

type StatusSource interface {
	Snapshot(ctx context.Context) status.AgentStatus
}

type TaskSource interface {
	Parse() []tasks.Task
}

type ProcessSource interface {
	Resolve() processes.Result
}

type SkillSource interface {
	List() []skills.Skill
	Content(name string) (string, error)
}

// Sources 看板读取的数据源
// Sources are the readers polled by the dashboard
type Sources struct {
	Status    StatusSource
	Tasks     TaskSource
	Processes ProcessSource
	Skills    SkillSource
}

type Options struct {
	Locale  string
	Refresh time.Duration
}

// Snapshot 一次刷新得到的全部数据
// Snapshot is everything read in one refresh
type Snapshot struct {
	Status    status.AgentStatus
	Tasks     []tasks.Task
	Processes processes.Result
	Skills    []skills.Skill
}

// --- Tea Messages ---

// SnapshotMsg 刷新完成
// SnapshotMsg carries a completed refresh
type SnapshotMsg struct {
	Data Snapshot
	At   time.Time
}

// TickMsg 定时刷新
// TickMsg fires the periodic refresh
type TickMsg time.Time

// SkillContentMsg 技能文档加载完成
// SkillContentMsg carries a loaded SKILL.md
type SkillContentMsg struct {
	Name    string
	Content string
	Err     error
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int

	// 导航 / Navigation
	tab    TabID
	cursor [tabCount]int

	// 数据 / Data
	data      Snapshot
	loaded    bool
	refreshed time.Time

	// 技能详情 / Skill detail
	detailOpen bool
	detailName string
	detail     viewport.Model

	// 配置 / Config
	src     Sources
	ctx     context.Context
	refresh time.Duration
	theme   Theme
	keys    KeyMap
	locale  *i18n.I18n
}

// NewApp 创建看板
// NewApp creates the dashboard model
func NewApp(ctx context.Context, src Sources, opts Options) App {
	if ctx == nil {
		ctx = context.Background()
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return App{
		tab:     TabStatus,
		detail:  viewport.New(80, 20),
		src:     src,
		ctx:     ctx,
		refresh: refresh,
		theme:   DarkTheme(),
		keys:    DefaultKeyMap(),
		locale:  i18n.New(opts.Locale),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.fetch(), a.tick())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case TickMsg:
		return a, tea.Batch(a.fetch(), a.tick())

	case SnapshotMsg:
		a.data = msg.Data
		a.loaded = true
		a.refreshed = msg.At
		a.clampCursors()
		return a, nil

	case SkillContentMsg:
		a.detailOpen = true
		a.detailName = msg.Name
		body := a.locale.T("label.no_manifest")
		if msg.Err == nil {
			if rendered := RenderMarkdown(msg.Content, a.detail.Width); rendered != "" {
				body = rendered
			}
		}
		a.detail.SetContent(body)
		a.detail.GotoTop()
		return a, nil
	}

	if a.detailOpen {
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	if a.detailOpen {
		if key.Matches(msg, a.keys.Back) {
			a.detailOpen = false
			a.detailName = ""
			return a, nil
		}
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.NextTab):
		a.tab = (a.tab + 1) % tabCount
	case key.Matches(msg, a.keys.PrevTab):
		a.tab = (a.tab + tabCount - 1) % tabCount
	case key.Matches(msg, a.keys.Up):
		if a.cursor[a.tab] > 0 {
			a.cursor[a.tab]--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor[a.tab] < a.rowCount(a.tab)-1 {
			a.cursor[a.tab]++
		}
	case key.Matches(msg, a.keys.Refresh):
		return a, a.fetch()
	case key.Matches(msg, a.keys.Open):
		if a.tab == TabSkills && a.cursor[TabSkills] < len(a.data.Skills) {
			return a, a.openSkill(a.data.Skills[a.cursor[TabSkills]].Name)
		}
	}
	return a, nil
}

// --- 命令 / Commands ---

func (a App) fetch() tea.Cmd {
	src, ctx := a.src, a.ctx
	return func() tea.Msg {
		var snap Snapshot
		if src.Status != nil {
			snap.Status = src.Status.Snapshot(ctx)
		}
		if src.Tasks != nil {
			snap.Tasks = src.Tasks.Parse()
		}
		if src.Processes != nil {
			snap.Processes = src.Processes.Resolve()
		}
		if src.Skills != nil {
			snap.Skills = src.Skills.List()
		}
		return SnapshotMsg{Data: snap, At: time.Now()}
	}
}

func (a App) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (a App) openSkill(name string) tea.Cmd {
	src := a.src.Skills
	return func() tea.Msg {
		content, err := src.Content(name)
		return SkillContentMsg{Name: name, Content: content, Err: err}
	}
}

// --- 内部方法 / Internal methods ---

func (a *App) relayout() {
	h := a.height - 4
	if h < 3 {
		h = 3
	}
	a.detail.Width = a.width
	a.detail.Height = h
}

func (a App) rowCount(tab TabID) int {
	switch tab {
	case TabTasks:
		return len(a.data.Tasks)
	case TabProcesses:
		return len(a.data.Processes.Processes)
	case TabSkills:
		return len(a.data.Skills)
	}
	return 0
}

func (a *App) clampCursors() {
	for tab := TabID(0); tab < tabCount; tab++ {
		n := a.rowCount(tab)
		if a.cursor[tab] >= n {
			a.cursor[tab] = n - 1
		}
		if a.cursor[tab] < 0 {
			a.cursor[tab] = 0
		}
	}
}

// --- 渲染方法 / Render methods ---

func (a App) View() string {
	if !a.loaded {
		return a.locale.T("label.loading")
	}

	var body string
	if a.detailOpen {
		body = a.theme.TitleStyle.Render(" "+a.detailName) + "\n" + a.detail.View()
	} else {
		switch a.tab {
		case TabStatus:
			body = a.renderStatus()
		case TabTasks:
			body = a.renderTasks()
		case TabProcesses:
			body = a.renderProcesses()
		case TabSkills:
			body = a.renderSkills()
		}
	}

	panel := a.theme.PanelStyle
	if a.width > 0 {
		panel = panel.Width(a.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		panel.Render(body),
		a.renderStatusBar(),
	)
}

func (a App) renderTabs() string {
	names := []string{
		a.locale.T("tab.status"),
		a.locale.T("tab.tasks"),
		a.locale.T("tab.processes"),
		a.locale.T("tab.skills"),
	}
	parts := make([]string, 0, len(names))
	for i, name := range names {
		style := a.theme.InactiveTabStyle
		if TabID(i) == a.tab {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) field(label, value string) string {
	return " " + a.theme.LabelStyle.Render(label) + value
}

func (a App) renderStatus() string {
	st := a.data.Status
	current := a.theme.MutedStyle.Render(a.locale.T("label.none"))
	if st.CurrentTask != nil {
		current = a.theme.ProgressStyle.Render(*st.CurrentTask)
	}
	lines := []string{
		a.field(a.locale.T("label.agent"), a.theme.TitleStyle.Render(st.Name)),
		a.field(a.locale.T("label.version"), st.Version),
		a.field(a.locale.T("label.uptime"), st.Uptime),
		a.field(a.locale.T("label.current"), current),
		a.field(a.locale.T("label.memory"), st.MemorySize),
		a.field(a.locale.T("label.tasks"), fmt.Sprintf("%s  %s",
			renderProgressBar(st.CompletedTasks, st.TotalTasks, 20),
			a.locale.T("label.completed", st.CompletedTasks, st.TotalTasks))),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderTasks() string {
	if len(a.data.Tasks) == 0 {
		return a.theme.MutedStyle.Render("  " + a.locale.T("label.empty"))
	}
	lines := make([]string, 0, len(a.data.Tasks))
	lastDate := ""
	for i, t := range a.data.Tasks {
		if t.Date != lastDate {
			lines = append(lines, a.theme.TitleStyle.Render(" "+t.Date))
			lastDate = t.Date
		}
		title := t.Title
		if i == a.cursor[TabTasks] {
			title = a.theme.SelectedStyle.Render(title)
		}
		meta := a.theme.MutedStyle.Render(fmt.Sprintf("[%s] [%s]", t.Priority, t.Category))
		lines = append(lines, fmt.Sprintf("  %s %s %s", RenderTaskBadge(t.Status, a.theme), title, meta))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderProcesses() string {
	res := a.data.Processes
	header := a.theme.MutedStyle.Render(" " + a.locale.T("label.source", res.Source))
	if len(res.Processes) == 0 {
		return header + "\n" + a.theme.MutedStyle.Render("  "+a.locale.T("label.empty"))
	}
	lines := []string{header}
	for i, p := range res.Processes {
		name := p.Name
		if i == a.cursor[TabProcesses] {
			name = a.theme.SelectedStyle.Render(name)
		}
		line := fmt.Sprintf("  %s  %-14s %s", RenderProcessBadge(p.Status, a.theme), p.Schedule, name)
		if p.NextRun != nil {
			line += a.theme.MutedStyle.Render("  → " + *p.NextRun)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderSkills() string {
	if len(a.data.Skills) == 0 {
		return a.theme.MutedStyle.Render("  " + a.locale.T("label.empty"))
	}
	lines := make([]string, 0, len(a.data.Skills))
	for i, s := range a.data.Skills {
		name := s.Name
		prefix := "  "
		if i == a.cursor[TabSkills] {
			name = a.theme.SelectedStyle.Render(name)
			prefix = "› "
		}
		kind := a.theme.MutedStyle.Render(a.locale.T("label.skill_type", s.Type))
		lines = append(lines, fmt.Sprintf("%s%s  %s  %s", prefix, name, kind, s.Description))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	left := " " + a.locale.T("help.keys")
	right := ""
	if !a.refreshed.IsZero() {
		right = a.locale.T("label.refreshed", a.refreshed.Format("15:04:05")) + " "
	}
	if a.width <= 0 {
		return a.theme.StatusBarStyle.Render(left + "  " + right)
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(a.width).Render(bar)
}

// Run 启动 Bubble Tea 看板
// Run starts the Bubble Tea dashboard
func Run(ctx context.Context, src Sources, opts Options) error {
	app := NewApp(ctx, src, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
