package memfiles

import (
	"errors"
	"testing"

	"clawdia/internal/security"
)

func newBrowser(t *testing.T, files map[string]string) *Browser {
	t.Helper()
	ws, err := security.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		if err := ws.WriteText(rel, content); err != nil {
			t.Fatal(err)
		}
	}
	return NewBrowser(ws)
}

func TestList(t *testing.T) {
	b := newBrowser(t, map[string]string{
		"AGENTS.md":             "# agents",
		"MEMORY.md":             "mem",
		"package.json":          "{}",
		"notes/tasks.md":        "- [ ] a",
		"notes/scratch.txt":     "skip",
		"learnings/go/tips.md":  "tips",
		"memory/2026-10-14.md":  "day",
		"memory/index.json":     "{}",
		"skills/x/SKILL.md":     "not listed",
	})

	got := b.List()
	want := []struct{ path, category string }{
		{"AGENTS.md", CategoryCore},
		{"MEMORY.md", CategoryCore},
		{"notes/tasks.md", CategoryNotes},
		{"learnings/go/tips.md", CategoryLearnings},
		{"memory/2026-10-14.md", CategoryMemory},
		{"memory/index.json", CategoryMemory},
	}
	if len(got) != len(want) {
		t.Fatalf("List() = %+v", got)
	}
	for i, w := range want {
		if got[i].Path != w.path || got[i].Category != w.category {
			t.Fatalf("List()[%d] = %+v, want %s (%s)", i, got[i], w.path, w.category)
		}
	}
	if got[1].Name != "MEMORY.md" || got[1].Size != "3 B" || got[1].Bytes != 3 {
		t.Fatalf("MEMORY.md entry = %+v", got[1])
	}
}

func TestContent(t *testing.T) {
	b := newBrowser(t, map[string]string{"notes/today.md": "hello"})

	got, err := b.Content("notes/today.md")
	if err != nil || got != "hello" {
		t.Fatalf("Content() = %q, %v", got, err)
	}
	for _, bad := range []string{"", "../etc/passwd", "notes", "missing.md"} {
		if _, err := b.Content(bad); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Content(%q) error = %v, want ErrNotFound", bad, err)
		}
	}
}
