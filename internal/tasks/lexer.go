package tasks

import (
	"fmt"
	"regexp"
	"strings"
)

type LineKind int

const (
	LineOther LineKind = iota
	LineHeading
	LineItem
)

// Line is one classified source line.
type Line struct {
	Kind   LineKind
	Date   string // LineHeading
	Marker byte   // LineItem
	Text   string // LineItem, everything after the checkbox
}

var (
	headingPattern  = regexp.MustCompile(`^##\s+(\d{4}-\d{2}-\d{2})`)
	itemPattern     = regexp.MustCompile(`^\s*-\s*\[([ x\-])\]\s*(.*)`)
	markerPattern   = regexp.MustCompile(`\[([ x\-])\]`)
	priorityPattern = regexp.MustCompile(`\[(high|medium|low)\]`)
	categoryPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	idPattern       = regexp.MustCompile(`\|\s*id:(\S+)`)
)

func Tokenize(raw string) Line {
	if m := headingPattern.FindStringSubmatch(raw); m != nil {
		return Line{Kind: LineHeading, Date: m[1]}
	}
	if m := itemPattern.FindStringSubmatch(raw); m != nil {
		return Line{Kind: LineItem, Marker: m[1][0], Text: m[2]}
	}
	return Line{Kind: LineOther}
}

// ItemFields are the annotations extracted from an item's text.
// Empty Priority, Category or ID means the tag was absent.
type ItemFields struct {
	Priority string
	Category string
	ID       string
	Title    string
}

// ParseItemText applies the tag rules in order: priority, then the first
// remaining bracket tag as category, then the "| id:" suffix. Each rule
// removes only its first match, so a second category tag stays in the title.
func ParseItemText(text string) ItemFields {
	var f ItemFields
	f.Priority, text = cut(priorityPattern, text)
	f.Category, text = cut(categoryPattern, text)
	f.ID, text = cut(idPattern, text)
	f.Title = strings.TrimSpace(text)
	return f
}

func cut(re *regexp.Regexp, text string) (string, string) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text
	}
	return text[loc[2]:loc[3]], text[:loc[0]] + text[loc[1]:]
}

// ParseContent turns one task file into tasks. today seeds the running date
// until the first heading.
func ParseContent(content, today string) []Task {
	var out []Task
	date := today
	seq := 0
	for _, raw := range strings.Split(content, "\n") {
		line := Tokenize(raw)
		switch line.Kind {
		case LineHeading:
			date = line.Date
		case LineItem:
			seq++
			f := ParseItemText(line.Text)
			t := Task{
				ID:       fmt.Sprintf("task_%03d", seq),
				Title:    f.Title,
				Status:   StatusFromMarker(line.Marker),
				Date:     date,
				Priority: DefaultPriority,
				Category: DefaultCategory,
			}
			if f.Priority != "" {
				t.Priority = f.Priority
			}
			if f.Category != "" {
				t.Category = f.Category
			}
			if f.ID != "" {
				t.ID = f.ID
			}
			out = append(out, t)
		}
	}
	return out
}

// FormatItem renders a new open item line.
func FormatItem(t Task) string {
	return fmt.Sprintf("- [%c] [%s] [%s] %s | id:%s", MarkerFor(t.Status), t.Priority, t.Category, t.Title, t.ID)
}

// SetMarker rewrites the first checkbox marker of a line.
func SetMarker(line string, s Status) string {
	loc := markerPattern.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return line[:loc[0]] + "[" + string(MarkerFor(s)) + "]" + line[loc[1]:]
}
