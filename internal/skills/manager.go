package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Type string

const (
	TypeSystem Type = "system"
	TypeCustom Type = "custom"
)

const manifestName = "SKILL.md"

var ErrNotFound = errors.New("skill not found")

// Root is one directory of skill subdirectories. An empty Type means the type
// is read from a "type: custom" marker inside each SKILL.md.
type Root struct {
	Dir  string
	Type Type
}

type Skill struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        Type    `json:"type"`
	Active      bool    `json:"active"`
	Description string  `json:"description"`
	AddedDate   *string `json:"addedDate"`
	UsageCount  *int    `json:"usageCount"`
	Path        string  `json:"-"`
}

type Manager struct {
	roots []Root
}

// NewManager scans roots in the given order; list results keep that order
// for equal names.
func NewManager(roots ...Root) *Manager {
	out := make([]Root, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r.Dir) == "" {
			continue
		}
		out = append(out, r)
	}
	return &Manager{roots: out}
}

func (m *Manager) Roots() []Root {
	if m == nil {
		return nil
	}
	return append([]Root(nil), m.roots...)
}

// List re-scans every root and sorts by name. Same-named skills from
// different roots are all kept.
func (m *Manager) List() []Skill {
	if m == nil {
		return nil
	}
	var out []Skill
	for _, root := range m.roots {
		out = append(out, readRoot(root)...)
	}
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// Content returns the raw SKILL.md of the first root holding name.
func (m *Manager) Content(name string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	for _, root := range m.roots {
		path := filepath.Join(root.Dir, name, manifestName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func readRoot(root Root) []Skill {
	entries, err := os.ReadDir(root.Dir)
	if err != nil {
		return nil
	}
	var out []Skill
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root.Dir, e.Name())
		manifest := filepath.Join(dir, manifestName)

		content := ""
		if data, err := os.ReadFile(manifest); err == nil {
			content = string(data)
		}

		typ := root.Type
		if typ == "" {
			typ = inferType(content)
		}

		var added *string
		if info, err := os.Stat(dir); err == nil {
			d := info.ModTime().UTC().Format("2006-01-02")
			added = &d
		}

		out = append(out, Skill{
			ID:          fmt.Sprintf("skill_%s_%s", typ, e.Name()),
			Name:        e.Name(),
			Type:        typ,
			Active:      true,
			Description: Describe(content),
			AddedDate:   added,
			Path:        manifest,
		})
	}
	return out
}

func inferType(content string) Type {
	if strings.Contains(content, "type: custom") {
		return TypeCustom
	}
	return TypeSystem
}

var (
	frontMatterPattern = regexp.MustCompile(`^---\s*\n([\s\S]*?)\n---`)
	descriptionPattern = regexp.MustCompile(`(?m)description:\s*["']?(.+?)["']?\s*$`)
)

// Describe extracts a one-line description from a SKILL.md: the raw rest
// of the front matter description line, else the first line that is not
// blank, a heading, or a delimiter, returned as written.
func Describe(content string) string {
	if m := frontMatterPattern.FindStringSubmatch(content); m != nil {
		if desc := frontMatterDescription(m[1]); desc != "" {
			return desc
		}
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		return line
	}
	return ""
}

// frontMatterDescription prefers the line rule; YAML decoding only covers
// keys the line rule cannot see, such as a quoted "description" key.
func frontMatterDescription(block string) string {
	if m := descriptionPattern.FindStringSubmatch(block); m != nil {
		return m[1]
	}
	var meta struct {
		Description any `yaml:"description"`
	}
	if err := yaml.Unmarshal([]byte(block), &meta); err == nil {
		if s, ok := meta.Description.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
