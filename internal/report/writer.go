package report

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Paths are the two artifacts written for a run.
type Paths struct {
	Markdown string `json:"markdown"`
	JSON     string `json:"json"`
}

// Writer persists reports into a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger.With("component", "report_writer")}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Persist writes the Markdown report and then the JSON backup. filename
// overrides the Markdown name only; it is reduced to its base name and gets
// ".md" appended when missing. The two writes are independent: a Markdown
// file that was written is left in place if the JSON write fails.
func (w *Writer) Persist(r *types.TopicReport, filename string) (Paths, error) {
	var paths Paths

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return paths, &types.StorageError{Backend: "report", Path: w.dir, Err: err}
	}

	doc, err := RenderMarkdown(r)
	if err != nil {
		return paths, err
	}

	mdPath := filepath.Join(w.dir, w.markdownName(r, filename))
	if err := os.WriteFile(mdPath, []byte(doc), 0o644); err != nil {
		return paths, &types.StorageError{Backend: "report", Path: mdPath, Err: err}
	}
	paths.Markdown = mdPath
	w.logger.Info("report saved", "path", mdPath)

	jsonPath := filepath.Join(w.dir, DeriveFilename(r.Topic, r.GeneratedAt, KindJSON))
	if err := writeJSON(jsonPath, r); err != nil {
		return paths, &types.StorageError{Backend: "report", Path: jsonPath, Err: err}
	}
	paths.JSON = jsonPath
	w.logger.Info("JSON backup saved", "path", jsonPath)

	return paths, nil
}

func (w *Writer) markdownName(r *types.TopicReport, override string) string {
	name := strings.TrimSpace(override)
	if name != "" {
		name = filepath.Base(filepath.Clean("/" + name))
	}
	if name == "" || name == "/" || name == "." {
		return DeriveFilename(r.Topic, r.GeneratedAt, KindMarkdown)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// File describes a report on disk.
type File struct {
	Name    string    `json:"name"    yaml:"name"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	Size    int64     `json:"size"    yaml:"size"`
}

// Recent lists the newest n Markdown reports in dir. A missing directory
// yields no files.
func Recent(dir string, n int) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), ModTime: info.ModTime(), Size: info.Size()})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	if n > 0 && len(files) > n {
		files = files[:n]
	}
	return files, nil
}
