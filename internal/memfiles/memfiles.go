// Package memfiles lists the agent's markdown memory and note files.
package memfiles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clawdia/internal/security"
	"clawdia/internal/status"
)

const (
	CategoryCore      = "core"
	CategoryNotes     = "notes"
	CategoryLearnings = "learnings"
	CategoryMemory    = "memory"
)

var ErrNotFound = errors.New("file not found")

var categoryOrder = map[string]int{
	CategoryCore:      0,
	CategoryNotes:     1,
	CategoryLearnings: 2,
	CategoryMemory:    3,
}

// File is one listed document; Path is slash-separated and workspace-relative.
type File struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Bytes    int64  `json:"bytes"`
	Modified string `json:"modified"`
}

type Browser struct {
	ws *security.Workspace
}

func NewBrowser(ws *security.Workspace) *Browser {
	return &Browser{ws: ws}
}

// List collects root-level markdown (core) and everything under notes/,
// learnings/ and memory/. Markdown only, except memory/ which lists all
// files.
func (b *Browser) List() []File {
	var out []File

	entries, err := os.ReadDir(b.ws.Root())
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !isMarkdown(e.Name()) {
				continue
			}
			if f, ok := b.stat(e.Name(), CategoryCore); ok {
				out = append(out, f)
			}
		}
	}

	out = append(out, b.walk(CategoryNotes, true)...)
	out = append(out, b.walk(CategoryLearnings, true)...)
	out = append(out, b.walk(CategoryMemory, false)...)

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := categoryOrder[out[i].Category], categoryOrder[out[j].Category]
		if ci != cj {
			return ci < cj
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func (b *Browser) walk(dir string, markdownOnly bool) []File {
	root, err := b.ws.Resolve(dir)
	if err != nil {
		return nil
	}
	var out []File
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if markdownOnly && !isMarkdown(d.Name()) {
			return nil
		}
		rel, rerr := filepath.Rel(b.ws.Root(), path)
		if rerr != nil {
			return nil
		}
		if f, ok := b.stat(rel, dir); ok {
			out = append(out, f)
		}
		return nil
	})
	return out
}

func (b *Browser) stat(rel, category string) (File, bool) {
	path, err := b.ws.Resolve(rel)
	if err != nil {
		return File{}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, false
	}
	return File{
		Name:     filepath.Base(rel),
		Path:     filepath.ToSlash(rel),
		Category: category,
		Size:     status.FormatBytes(info.Size()),
		Bytes:    info.Size(),
		Modified: info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
	}, true
}

// Content reads one file by its workspace-relative path.
func (b *Browser) Content(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	path, err := b.ws.Resolve(filepath.FromSlash(rel))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
