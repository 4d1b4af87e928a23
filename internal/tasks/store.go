package tasks

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"clawdia/internal/security"
)

const dateLayout = "2006-01-02"

// Store reads and patches task files inside a workspace. It holds no task
// state: every call re-reads the files.
type Store struct {
	ws  *security.Workspace
	now func() time.Time

	mu     sync.Mutex
	lastID int64
}

type Option func(*Store)

// WithClock overrides the clock used for default dates and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(ws *security.Workspace, opts ...Option) *Store {
	s := &Store{ws: ws, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Today() string {
	return s.now().UTC().Format(dateLayout)
}

// Source returns the authoritative file for reads, or "" when every
// candidate is missing or empty.
func (s *Store) Source() (string, string) {
	for _, rel := range ReadCandidates {
		if content := s.ws.ReadText(rel); content != "" {
			return rel, content
		}
	}
	return "", ""
}

func (s *Store) Parse() []Task {
	_, content := s.Source()
	if content == "" {
		return nil
	}
	return ParseContent(content, s.Today())
}

func (s *Store) Query(f Filter) []Task {
	return Apply(s.Parse(), f)
}

// SetStatus patches the checkbox of the first line holding "id:<id>" across
// the read candidates. Only the marker character changes. An empty status
// rewrites the file unchanged.
func (s *Store) SetStatus(id string, status Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	needle := "id:" + id
	for _, rel := range ReadCandidates {
		if !s.ws.Exists(rel) {
			continue
		}
		lines := strings.Split(s.ws.ReadText(rel), "\n")
		for i, line := range lines {
			if !strings.Contains(line, needle) {
				continue
			}
			if status != "" {
				lines[i] = SetMarker(line, status)
			}
			if err := s.ws.WriteText(rel, strings.Join(lines, "\n")); err != nil {
				return fmt.Errorf("set status %s: %w", id, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create appends an open task to the authoritative write file, under the
// heading for its date. The returned task is built from the input, not
// re-parsed.
func (s *Store) Create(in NewTask) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}

	rel := ""
	for _, c := range WriteCandidates {
		if s.ws.Exists(c) {
			rel = c
			break
		}
	}
	if rel == "" {
		rel = defaultTaskFile
		if err := s.ws.WriteText(rel, defaultTaskHeader); err != nil {
			return Task{}, fmt.Errorf("create task file: %w", err)
		}
	}

	t := Task{
		ID:       s.nextID(),
		Title:    title,
		Status:   StatusOpen,
		Date:     firstNonEmpty(in.Date, s.Today()),
		Priority: firstNonEmpty(in.Priority, DefaultPriority),
		Category: firstNonEmpty(in.Category, DefaultCategory),
	}
	item := FormatItem(t)
	heading := "## " + t.Date

	content := s.ws.ReadText(rel)
	if strings.Contains(content, heading) {
		content = strings.Replace(content, heading, heading+"\n"+item, 1)
	} else {
		content += "\n" + heading + "\n" + item + "\n"
	}
	if err := s.ws.WriteText(rel, content); err != nil {
		return Task{}, fmt.Errorf("append task: %w", err)
	}
	return t, nil
}

// nextID returns task_<unix millis>, bumped so ids never repeat within the
// process.
func (s *Store) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.now().UnixMilli()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	s.lastID = n
	return fmt.Sprintf("task_%d", n)
}

func firstNonEmpty(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
