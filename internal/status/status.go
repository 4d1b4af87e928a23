package status

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clawdia/internal/i18n"
	"clawdia/internal/tasks"
)

type AgentStatus struct {
	Name           string  `json:"name"`
	Version        string  `json:"version"`
	Uptime         string  `json:"uptime"`
	CurrentTask    *string `json:"currentTask"`
	MemorySize     string  `json:"memorySize"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
}

type TaskSource interface {
	Parse() []tasks.Task
}

// Files exposes the workspace reads the aggregator needs.
type Files interface {
	ReadText(rel string) string
	Size(path string) int64
}

// CommandRunner runs bin with args and returns its stdout.
type CommandRunner func(ctx context.Context, bin string, args ...string) (string, error)

type Options struct {
	Name           string
	PackagePath    string
	CLI            string
	ConfigDoc      string
	DefaultVersion string
	VersionTimeout time.Duration
	MemoryPaths    []string
	Started        time.Time
	Now            func() time.Time
	Locale         *i18n.I18n
	Run            CommandRunner
}

type Aggregator struct {
	files Files
	tasks TaskSource
	opts  Options
}

func New(files Files, src TaskSource, opts Options) *Aggregator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Started.IsZero() {
		opts.Started = opts.Now()
	}
	if opts.Locale == nil {
		opts.Locale = i18n.New("")
	}
	if opts.Run == nil {
		opts.Run = runCommand
	}
	if opts.VersionTimeout <= 0 {
		opts.VersionTimeout = 2 * time.Second
	}
	if strings.TrimSpace(opts.DefaultVersion) == "" {
		opts.DefaultVersion = "1.0.0"
	}
	if strings.TrimSpace(opts.ConfigDoc) == "" {
		opts.ConfigDoc = "AGENTS.md"
	}
	return &Aggregator{files: files, tasks: src, opts: opts}
}

func (a *Aggregator) Snapshot(ctx context.Context) AgentStatus {
	list := a.tasks.Parse()
	current, total, completed := Summarize(list)

	var mem int64
	for _, p := range a.opts.MemoryPaths {
		mem += a.files.Size(p)
	}

	return AgentStatus{
		Name:           a.opts.Name,
		Version:        a.Version(ctx),
		Uptime:         FormatUptime(a.opts.Now().Sub(a.opts.Started), a.opts.Locale),
		CurrentTask:    current,
		MemorySize:     FormatBytes(mem),
		TotalTasks:     total,
		CompletedTasks: completed,
	}
}

// Summarize returns the title of the first in-progress task (nil when none)
// and the total and done counts.
func Summarize(list []tasks.Task) (*string, int, int) {
	var current *string
	completed := 0
	for _, t := range list {
		if current == nil && t.Status == tasks.StatusInProgress {
			title := t.Title
			current = &title
		}
		if t.Status == tasks.StatusDone {
			completed++
		}
	}
	return current, len(list), completed
}

var versionPattern = regexp.MustCompile(`(?i)version[:\s]+([\d.]+)`)

// Version walks the fallback chain: package descriptor, CLI, config
// document, default.
func (a *Aggregator) Version(ctx context.Context) string {
	if v := packageVersion(a.opts.PackagePath); v != "" {
		return v
	}
	if bin := strings.TrimSpace(a.opts.CLI); bin != "" {
		cctx, cancel := context.WithTimeout(ctx, a.opts.VersionTimeout)
		out, err := a.opts.Run(cctx, bin, "--version")
		cancel()
		if v := strings.TrimSpace(out); err == nil && v != "" {
			return v
		}
	}
	if m := versionPattern.FindStringSubmatch(a.files.ReadText(a.opts.ConfigDoc)); m != nil {
		return m[1]
	}
	return a.opts.DefaultVersion
}

func packageVersion(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return strings.TrimSpace(pkg.Version)
}

func runCommand(ctx context.Context, bin string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, args...).Output()
	return string(out), err
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders n in 1024-based units with at most one decimal.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*10) / 10
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatUptime renders whole days, hours and minutes.
func FormatUptime(d time.Duration, loc *i18n.I18n) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return loc.T("uptime.format", s/86400, (s%86400)/3600, (s%3600)/60)
}
