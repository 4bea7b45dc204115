// Package report turns a scan aggregate into the summary datescan writes out:
// the oldest, newest and median files followed by every file and its dates.
package report

import (
	_ "embed" // Required for //go:embed
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/dates"
)

//go:embed default.tmpl
var defaultTemplateContent string

// SchemaVersion is the version of the JSON and YAML report structure.
const SchemaVersion = "1.0"

// Format selects how a report is rendered.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Meta describes the run a report was produced by. Zero RunID and Timestamp are filled in by New.
type Meta struct {
	RunID       uuid.UUID
	Timestamp   time.Time
	Inputs      []string
	Concurrency int
}

// Summary contains run metadata and the scan accounting.
type Summary struct {
	RunID         string        `json:"runId" yaml:"runId"`
	Timestamp     time.Time     `json:"timestamp" yaml:"timestamp"`
	Inputs        []string      `json:"inputs" yaml:"inputs"`
	Concurrency   int           `json:"concurrency" yaml:"concurrency"`
	FileCount     int           `json:"fileCount" yaml:"fileCount"`
	Stats         collect.Stats `json:"stats" yaml:"stats"`
	SchemaVersion string        `json:"schemaVersion" yaml:"schemaVersion"`
}

// FileEntry is one file and its dates, oldest first. Dates marshal in ISO layout.
type FileEntry struct {
	Path  string       `json:"path" yaml:"path"`
	Dates []dates.Date `json:"dates" yaml:"dates"`
}

// Report is the rendered view of an aggregate.
type Report struct {
	Summary Summary     `json:"summary" yaml:"summary"`
	Oldest  FileEntry   `json:"oldest" yaml:"oldest"`
	Newest  FileEntry   `json:"newest" yaml:"newest"`
	Median  FileEntry   `json:"median" yaml:"median"`
	Files   []FileEntry `json:"files" yaml:"files"`
}

// New builds a report. It returns ErrNoData when agg holds no file records.
func New(agg *collect.Aggregate, meta Meta) (*Report, error) {
	if agg == nil || agg.IsEmpty() {
		return nil, ErrNoData
	}
	oldest, _ := agg.Oldest()
	newest, _ := agg.Newest()
	median, _ := agg.Median()

	if meta.RunID == uuid.Nil {
		meta.RunID = uuid.New()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	files := make([]FileEntry, 0, agg.Count())
	for f := range agg.All() {
		files = append(files, entry(f))
	}
	return &Report{
		Summary: Summary{
			RunID:         meta.RunID.String(),
			Timestamp:     meta.Timestamp,
			Inputs:        meta.Inputs,
			Concurrency:   meta.Concurrency,
			FileCount:     agg.Count(),
			Stats:         agg.Stats(),
			SchemaVersion: SchemaVersion,
		},
		Oldest: entry(oldest),
		Newest: entry(newest),
		Median: entry(median),
		Files:  files,
	}, nil
}

func entry(f collect.FileDates) FileEntry {
	return FileEntry{Path: f.Path(), Dates: f.Dates().Slice()}
}

// WriteOption configures Write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	styled bool
}

// WithStyle enables lipgloss styling of the text format headings.
// Colour is still only emitted when w is a terminal that supports it.
func WithStyle(enabled bool) WriteOption {
	return func(c *writeConfig) { c.styled = enabled }
}

// Write renders the report to w in the given format.
func (r *Report) Write(w io.Writer, format Format, opts ...WriteOption) error {
	var cfg writeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var err error
	switch format {
	case FormatText, "":
		err = r.writeText(w, cfg)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(r); err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w (%s): %w", ErrRender, format, err)
	}
	return nil
}

func (r *Report) writeText(w io.Writer, cfg writeConfig) error {
	heading := func(s string) string { return s }
	if cfg.styled {
		style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		heading = func(s string) string { return style.Render(s) }
	}
	tmpl, err := template.New("default").Funcs(template.FuncMap{"heading": heading}).Parse(defaultTemplateContent)
	if err != nil {
		return fmt.Errorf("parse default template: %w", err)
	}
	return tmpl.Execute(w, r)
}
