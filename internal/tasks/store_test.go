package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clawdia/internal/security"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := security.NewWorkspace(root)
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	clock := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	return NewStore(ws, WithClock(func() time.Time { return clock })), ws.Root()
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestParse_FirstNonEmptyCandidateWins(t *testing.T) {
	s, root := newTestStore(t)
	writeFile(t, root, "notes/tasks.md", "")
	writeFile(t, root, "tasks.md", "- [ ] from tasks.md\n")
	writeFile(t, root, "TASKS.md", "- [ ] from TASKS.md\n- [ ] second\n")

	got := s.Parse()
	if len(got) != 1 || got[0].Title != "from tasks.md" {
		t.Fatalf("Parse() = %+v, want only tasks.md content", got)
	}
}

func TestParse_NoFiles(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.Parse(); len(got) != 0 {
		t.Fatalf("Parse() = %+v, want empty", got)
	}
}

func TestQuery_Filters(t *testing.T) {
	s, root := newTestStore(t)
	writeFile(t, root, "notes/tasks.md", strings.Join([]string{
		"## 2026-10-01",
		"- [x] a",
		"## 2026-10-05",
		"- [ ] b",
		"- [-] c",
		"## 2026-10-09",
		"- [ ] d",
	}, "\n"))

	if got := s.Query(Filter{Status: StatusOpen}); len(got) != 2 {
		t.Fatalf("status filter = %+v", got)
	}
	if got := s.Query(Filter{Date: "2026-10-05"}); len(got) != 2 {
		t.Fatalf("date filter = %+v", got)
	}
	got := s.Query(Filter{From: "2026-10-02", To: "2026-10-09"})
	if len(got) != 3 || got[0].Title != "b" || got[2].Title != "d" {
		t.Fatalf("range filter = %+v", got)
	}
	if got := s.Query(Filter{}); len(got) != 4 {
		t.Fatalf("empty filter = %+v", got)
	}
}

func TestSetStatus_RoundTrip(t *testing.T) {
	s, root := newTestStore(t)
	original := "# Tasks\n\n## 2026-10-01\n- [ ] [high] [work] Write report | id:task_007\n- [ ] other | id:task_008\n"
	writeFile(t, root, "notes/tasks.md", original)

	before := s.Parse()
	if err := s.SetStatus("task_007", StatusDone); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	after := s.Parse()

	if len(after) != len(before) {
		t.Fatalf("task count changed: %d -> %d", len(before), len(after))
	}
	want := before[0]
	want.Status = StatusDone
	if after[0] != want {
		t.Fatalf("after = %+v, want %+v", after[0], want)
	}
	if after[1] != before[1] {
		t.Fatalf("unrelated task changed: %+v -> %+v", before[1], after[1])
	}
	if got := readFile(t, root, "notes/tasks.md"); got != strings.Replace(original, "- [ ] [high]", "- [x] [high]", 1) {
		t.Fatalf("file = %q", got)
	}
}

func TestSetStatus_SearchesLaterCandidates(t *testing.T) {
	s, root := newTestStore(t)
	writeFile(t, root, "notes/tasks.md", "- [ ] a | id:one\n")
	writeFile(t, root, "notes/todo.md", "- [ ] b | id:two\n")

	if err := s.SetStatus("two", StatusInProgress); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if got := readFile(t, root, "notes/todo.md"); got != "- [-] b | id:two\n" {
		t.Fatalf("todo.md = %q", got)
	}
}

func TestSetStatus_NotFoundLeavesFilesUntouched(t *testing.T) {
	s, root := newTestStore(t)
	original := "## 2026-10-01\n- [ ] a | id:task_001\n"
	writeFile(t, root, "notes/tasks.md", original)
	info, err := os.Stat(filepath.Join(root, "notes/tasks.md"))
	if err != nil {
		t.Fatal(err)
	}

	err = s.SetStatus("task_099", StatusDone)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetStatus() error = %v, want ErrNotFound", err)
	}
	if got := readFile(t, root, "notes/tasks.md"); got != original {
		t.Fatalf("file changed: %q", got)
	}
	after, err := os.Stat(filepath.Join(root, "notes/tasks.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(info.ModTime()) {
		t.Fatalf("file was rewritten")
	}
}

func TestCreate_NewFileWithHeader(t *testing.T) {
	s, root := newTestStore(t)

	task, err := s.Create(NewTask{Title: "Call dentist", Priority: "low"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Date != "2026-10-14" || task.Status != StatusOpen || task.Category != "general" || task.Priority != "low" {
		t.Fatalf("Create() = %+v", task)
	}
	if !strings.HasPrefix(task.ID, "task_") {
		t.Fatalf("id = %q", task.ID)
	}

	want := "# Tasks\n\n\n## 2026-10-14\n- [ ] [low] [general] Call dentist | id:" + task.ID + "\n"
	if got := readFile(t, root, "notes/tasks.md"); got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}

	parsed := s.Parse()
	if len(parsed) != 1 {
		t.Fatalf("Parse() = %+v", parsed)
	}
	if parsed[0] != task {
		t.Fatalf("parsed = %+v, want %+v", parsed[0], task)
	}
}

func TestCreate_InsertsUnderExistingHeading(t *testing.T) {
	s, root := newTestStore(t)
	writeFile(t, root, "tasks.md", "## 2026-10-01\n- [ ] old | id:a\n## 2026-10-02\n- [ ] later | id:b\n")

	task, err := s.Create(NewTask{Title: "new", Date: "2026-10-01", Category: "home"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	want := "## 2026-10-01\n- [ ] [medium] [home] new | id:" + task.ID + "\n- [ ] old | id:a\n## 2026-10-02\n- [ ] later | id:b\n"
	if got := readFile(t, root, "tasks.md"); got != want {
		t.Fatalf("file = %q", got)
	}
}

func TestCreate_IgnoresTodoFile(t *testing.T) {
	s, root := newTestStore(t)
	writeFile(t, root, "notes/todo.md", "- [ ] legacy\n")

	if _, err := s.Create(NewTask{Title: "fresh"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := readFile(t, root, "notes/todo.md"); got != "- [ ] legacy\n" {
		t.Fatalf("todo.md changed: %q", got)
	}
	if !strings.Contains(readFile(t, root, "notes/tasks.md"), "fresh") {
		t.Fatalf("notes/tasks.md missing new task")
	}
}

func TestCreate_IDsAreUniqueWithinProcess(t *testing.T) {
	s, _ := newTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		task, err := s.Create(NewTask{Title: "same instant"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestCreate_RequiresTitle(t *testing.T) {
	s, root := newTestStore(t)
	if _, err := s.Create(NewTask{Title: "  "}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("Create() error = %v, want ErrInvalidTask", err)
	}
	if _, err := os.Stat(filepath.Join(root, "notes/tasks.md")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("task file created for invalid input")
	}
}
