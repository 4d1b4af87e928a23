package tasks

import "testing"

func TestTokenize(t *testing.T) {
	cases := []struct {
		in     string
		kind   LineKind
		date   string
		marker byte
		text   string
	}{
		{in: "## 2026-10-14", kind: LineHeading, date: "2026-10-14"},
		{in: "##   2026-01-02 (friday)", kind: LineHeading, date: "2026-01-02"},
		{in: "### 2026-01-02", kind: LineOther},
		{in: "- [ ] write", kind: LineItem, marker: ' ', text: "write"},
		{in: "  -[x]done", kind: LineItem, marker: 'x', text: "done"},
		{in: "- [-] busy", kind: LineItem, marker: '-', text: "busy"},
		{in: "- [~] other", kind: LineOther},
		{in: "# Tasks", kind: LineOther},
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if got.Kind != tc.kind {
			t.Fatalf("Tokenize(%q).Kind = %v, want %v", tc.in, got.Kind, tc.kind)
		}
		if got.Date != tc.date || got.Marker != tc.marker || got.Text != tc.text {
			t.Fatalf("Tokenize(%q) = %+v", tc.in, got)
		}
	}
}

func TestParseItemText_AllTags(t *testing.T) {
	f := ParseItemText("[high] [work] Write report | id:task_007")
	if f.Priority != "high" || f.Category != "work" || f.ID != "task_007" || f.Title != "Write report" {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestParseItemText_PriorityAnywhere(t *testing.T) {
	f := ParseItemText("[ops] Rotate keys [low]")
	if f.Priority != "low" || f.Category != "ops" || f.Title != "Rotate keys" {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestParseItemText_SecondBracketStaysInTitle(t *testing.T) {
	f := ParseItemText("[work] [urgent] Ship it")
	if f.Category != "work" {
		t.Fatalf("category = %q", f.Category)
	}
	if f.Title != "[urgent] Ship it" {
		t.Fatalf("title = %q", f.Title)
	}
}

func TestParseItemText_MalformedPriorityIsCategory(t *testing.T) {
	f := ParseItemText("[HIGH] Shout")
	if f.Priority != "" || f.Category != "HIGH" || f.Title != "Shout" {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestParseContent(t *testing.T) {
	content := "# Tasks\n\n" +
		"- [ ] before heading\n" +
		"## 2026-10-01\n" +
		"- [ ] [high] [work] Write report | id:task_007\n" +
		"- [-] Review draft\n" +
		"not a task\n" +
		"## 2026-10-02\n" +
		"- [x] [low] Call dentist\r\n"

	got := ParseContent(content, "2026-10-14")
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(got), got)
	}

	want := []Task{
		{ID: "task_001", Title: "before heading", Status: StatusOpen, Date: "2026-10-14", Priority: "medium", Category: "general"},
		{ID: "task_007", Title: "Write report", Status: StatusOpen, Date: "2026-10-01", Priority: "high", Category: "work"},
		{ID: "task_003", Title: "Review draft", Status: StatusInProgress, Date: "2026-10-01", Priority: "medium", Category: "general"},
		{ID: "task_004", Title: "Call dentist", Status: StatusDone, Date: "2026-10-02", Priority: "low", Category: "general"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("task[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseContent_NoHeadingUsesToday(t *testing.T) {
	got := ParseContent("- [ ] a\n- [x] b\n", "2026-10-14")
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	for _, task := range got {
		if task.Date != "2026-10-14" {
			t.Fatalf("date = %q, want today", task.Date)
		}
	}
}

func TestSetMarker(t *testing.T) {
	line := "- [ ] [high] [work] Write report | id:task_007"
	if got := SetMarker(line, StatusDone); got != "- [x] [high] [work] Write report | id:task_007" {
		t.Fatalf("SetMarker(done) = %q", got)
	}
	if got := SetMarker(line, StatusInProgress); got != "- [-] [high] [work] Write report | id:task_007" {
		t.Fatalf("SetMarker(in_progress) = %q", got)
	}
	if got := SetMarker("- [x] x", Status("reopen")); got != "- [ ] x" {
		t.Fatalf("SetMarker(other) = %q", got)
	}
}
