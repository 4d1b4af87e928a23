package processes

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type docs map[string]string

func (d docs) ReadText(rel string) string { return d[rel] }

func writeCache(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cron-cache.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const agentsDoc = "# Agents\n\n" +
	"Schedule:\n" +
	"*/15 * * * * — Check Email Inbox Quickly\n" +
	"no cron here\n" +
	"0 9 * * 1 - weekly\n" +
	"30 7 * * *\n"

func TestResolve_CacheEnvelope(t *testing.T) {
	path := writeCache(t, `{"processes":[{"name":"x","status":"idle"}]}`)
	res := NewResolver(docs{"AGENTS.md": agentsDoc}, Options{CachePath: path}).Resolve()

	if res.Source != SourceCache {
		t.Fatalf("source = %v, want cache", res.Source)
	}
	if len(res.Processes) != 1 {
		t.Fatalf("processes = %+v", res.Processes)
	}
	p := res.Processes[0]
	if p.Status != StatusIdle || p.Name != "x" || p.ID != "proc_1" || p.Type != "cron" || p.Schedule != "—" || p.Description != "x" {
		t.Fatalf("process = %+v", p)
	}
	if p.LastRun != nil || p.NextRun != nil {
		t.Fatalf("run timestamps = %v %v", p.LastRun, p.NextRun)
	}
}

func TestResolve_CacheArrayStatusNormalization(t *testing.T) {
	path := writeCache(t, `[
  {"id":"a","status":"ok","lastRun":"2026-10-14T08:00:00Z"},
  {"id":"b","status":false},
  {"id":"c","status":"disabled"},
  {"id":"d"},
  {"id":"e","status":true,"nextRun":"2026-10-15T08:00:00Z","description":"daily digest"}
]`)
	res := NewResolver(nil, Options{CachePath: path}).Resolve()
	want := map[string]string{"a": "running", "b": "idle", "c": "idle", "d": "idle", "e": "running"}
	if len(res.Processes) != len(want) {
		t.Fatalf("processes = %+v", res.Processes)
	}
	for _, p := range res.Processes {
		if p.Status != want[p.ID] {
			t.Fatalf("%s status = %q, want %q", p.ID, p.Status, want[p.ID])
		}
	}
	if got := res.Processes[0].LastRun; got == nil || *got != "2026-10-14T08:00:00Z" {
		t.Fatalf("lastRun = %v", got)
	}
	if got := res.Processes[4]; got.Description != "daily digest" || got.Name != "process-5" {
		t.Fatalf("process e = %+v", got)
	}
}

func TestResolve_FallbackWhenCacheAbsent(t *testing.T) {
	res := NewResolver(docs{"AGENTS.md": "*/5 * * * * — sync notes\n"}, Options{
		CachePath: filepath.Join(t.TempDir(), "missing.json"),
	}).Resolve()

	if res.Source != SourceHeuristic {
		t.Fatalf("source = %v, want heuristic", res.Source)
	}
	if len(res.Processes) != 1 {
		t.Fatalf("processes = %+v", res.Processes)
	}
	p := res.Processes[0]
	if p.Schedule != "*/5 * * * *" || p.Status != StatusRunning || p.LastRun != nil || p.NextRun != nil {
		t.Fatalf("process = %+v", p)
	}
	if p.Name != "sync-notes" || p.Description != "sync notes" {
		t.Fatalf("process = %+v", p)
	}
}

func TestResolve_MalformedCacheLogsAndFallsBack(t *testing.T) {
	var buf bytes.Buffer
	path := writeCache(t, `{"processes": [`)
	res := NewResolver(docs{"AGENTS.md": agentsDoc}, Options{
		CachePath: path,
		Logger:    log.New(&buf, "", 0),
	}).Resolve()

	if res.Source != SourceHeuristic {
		t.Fatalf("source = %v, want heuristic", res.Source)
	}
	if len(res.Processes) != 3 {
		t.Fatalf("processes = %+v", res.Processes)
	}
	if !strings.Contains(buf.String(), "cron cache") {
		t.Fatalf("expected log line, got %q", buf.String())
	}
}

func TestResolve_ForcedSources(t *testing.T) {
	path := writeCache(t, `[{"name":"cached","status":"running"}]`)
	d := docs{"AGENTS.md": agentsDoc}

	heur := NewResolver(d, Options{CachePath: path, Force: SourceHeuristic}).Resolve()
	if heur.Source != SourceHeuristic || len(heur.Processes) != 3 {
		t.Fatalf("forced heuristic = %+v", heur)
	}

	cached := NewResolver(d, Options{CachePath: filepath.Join(t.TempDir(), "none.json"), Force: SourceCache, Logger: log.New(&bytes.Buffer{}, "", 0)}).Resolve()
	if cached.Source != SourceCache || len(cached.Processes) != 0 {
		t.Fatalf("forced cache = %+v", cached)
	}
}

func TestScanCronLines(t *testing.T) {
	got := ScanCronLines(agentsDoc)
	if len(got) != 3 {
		t.Fatalf("len = %d: %+v", len(got), got)
	}
	if got[0].ID != "proc_1" || got[0].Name != "check-email-inbox" || got[0].Description != "Check Email Inbox Quickly" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Schedule != "0 9 * * 1" || got[1].Name != "weekly" {
		t.Fatalf("second = %+v", got[1])
	}
	if got[2].Name != "process-3" || got[2].Description != "" {
		t.Fatalf("third = %+v", got[2])
	}
}
