// Package processes reports the agent's recurring jobs.
//
// The cron cache written by the agent is the primary source. When it is
// missing or unreadable the agent configuration document is scanned for
// cron-like lines instead. The two sources are never merged.
package processes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type Source int

const (
	SourceNone Source = iota
	SourceCache
	SourceHeuristic
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

const (
	StatusRunning = "running"
	StatusIdle    = "idle"
)

type Process struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Schedule    string  `json:"schedule"`
	Status      string  `json:"status"`
	LastRun     *string `json:"lastRun"`
	NextRun     *string `json:"nextRun"`
	Description string  `json:"description"`
}

// Result is a resolved process list tagged with where it came from.
type Result struct {
	Source    Source
	Processes []Process
}

// DocReader reads a workspace-relative document, returning "" when absent.
type DocReader interface {
	ReadText(rel string) string
}

type Options struct {
	// CachePath is the cron cache JSON file.
	CachePath string
	// ConfigDoc is the workspace-relative document scanned in fallback mode.
	ConfigDoc string
	// Force pins resolution to one tier; SourceNone means cache then fallback.
	Force  Source
	Logger *log.Logger
}

type Resolver struct {
	docs DocReader
	opts Options
}

func NewResolver(docs DocReader, opts Options) *Resolver {
	if strings.TrimSpace(opts.ConfigDoc) == "" {
		opts.ConfigDoc = "AGENTS.md"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Resolver{docs: docs, opts: opts}
}

func (r *Resolver) Resolve() Result {
	switch r.opts.Force {
	case SourceCache:
		list, err := r.fromCache()
		if err != nil {
			r.logCacheError(err)
			return Result{Source: SourceCache, Processes: []Process{}}
		}
		return Result{Source: SourceCache, Processes: list}
	case SourceHeuristic:
		return Result{Source: SourceHeuristic, Processes: r.fromConfigDoc()}
	}

	list, err := r.fromCache()
	if err == nil {
		return Result{Source: SourceCache, Processes: list}
	}
	if !errors.Is(err, os.ErrNotExist) {
		r.logCacheError(err)
	}
	return Result{Source: SourceHeuristic, Processes: r.fromConfigDoc()}
}

// List is Resolve without the source tag.
func (r *Resolver) List() []Process {
	return r.Resolve().Processes
}

func (r *Resolver) logCacheError(err error) {
	r.opts.Logger.Printf("cron cache %s: %v", r.opts.CachePath, err)
}

func (r *Resolver) fromCache() ([]Process, error) {
	path := strings.TrimSpace(r.opts.CachePath)
	if path == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := decodeCache(data)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(entries))
	for i, e := range entries {
		out = append(out, normalize(i, e))
	}
	return out, nil
}

// decodeCache accepts a bare array or a {"processes": [...]} envelope. Any
// other valid JSON yields an empty list.
func decodeCache(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["processes"].([]any)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry, _ := item.(map[string]any)
		if entry == nil {
			entry = map[string]any{}
		}
		out = append(out, entry)
	}
	return out, nil
}

func normalize(i int, e map[string]any) Process {
	name := field(e, "name")
	p := Process{
		ID:          orDefault(field(e, "id"), fmt.Sprintf("proc_%d", i+1)),
		Name:        orDefault(name, fmt.Sprintf("process-%d", i+1)),
		Type:        orDefault(field(e, "type"), "cron"),
		Schedule:    orDefault(field(e, "schedule"), "—"),
		Status:      normalizeStatus(e),
		Description: orDefault(field(e, "description"), name),
	}
	if v := field(e, "lastRun"); v != "" {
		p.LastRun = &v
	}
	if v := field(e, "nextRun"); v != "" {
		p.NextRun = &v
	}
	return p
}

// normalizeStatus maps a missing status, false, "disabled" and "idle" to
// idle and anything else to running.
func normalizeStatus(e map[string]any) string {
	v, ok := e["status"]
	if !ok || v == nil {
		return StatusIdle
	}
	switch s := v.(type) {
	case bool:
		if !s {
			return StatusIdle
		}
	case string:
		if s == "disabled" || s == StatusIdle {
			return StatusIdle
		}
	}
	return StatusRunning
}

// field stringifies a scalar cache value; zero values read as "".
func field(e map[string]any, key string) string {
	switch v := e[key].(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

var cronLinePattern = regexp.MustCompile(`([\d*/]+\s+[\d*/]+\s+[\d*/]+\s+[\d*/]+\s+[\d*/]+)\s*[—-]?\s*(.*)`)

func (r *Resolver) fromConfigDoc() []Process {
	if r.docs == nil {
		return []Process{}
	}
	return ScanCronLines(r.docs.ReadText(r.opts.ConfigDoc))
}

// ScanCronLines turns every line holding five cron fields into a running
// process without run timestamps.
func ScanCronLines(content string) []Process {
	out := []Process{}
	i := 0
	for _, line := range strings.Split(content, "\n") {
		m := cronLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		i++
		desc := strings.TrimSpace(m[2])
		out = append(out, Process{
			ID:          fmt.Sprintf("proc_%d", i),
			Name:        orDefault(slug(desc), fmt.Sprintf("process-%d", i)),
			Type:        "cron",
			Schedule:    m[1],
			Status:      StatusRunning,
			Description: desc,
		})
	}
	return out
}

// slug joins the first three space-separated words with "-", lowercased.
func slug(desc string) string {
	words := strings.Split(desc, " ")
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.ToLower(strings.Join(words, "-"))
}
