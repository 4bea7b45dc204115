package collect

import (
	"cmp"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/encoding"
)

// FileSystem is the read-only view of a filesystem used by a scan.
// testing/fstest.MapFS satisfies it, as does OSFileSystem.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFileSystem implements FileSystem on the host filesystem.
type OSFileSystem struct{}

// ReadFile implements FileSystem.
func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Stat implements FileSystem.
func (OSFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// ReadDir implements FileSystem. Entries are sorted by filename.
func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

// PathResolver is implemented by filesystems that can resolve symbolic links.
// The walker uses it to recognise a directory reached through more than one path.
type PathResolver interface {
	RealPath(name string) (string, error)
}

// RealPath implements PathResolver. The result is absolute with every link resolved.
func (OSFileSystem) RealPath(name string) (string, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// FileOptions configures the single-file pipeline.
type FileOptions struct {
	Extractor      dates.DateExtractor
	Decoder        encoding.Decoder
	KeepDuplicates bool // build a NewDateList instead of a NewDateSet
}

// FileDates pairs a file path with the dates found in it.
type FileDates struct {
	path  string
	dates SortedDates
}

// NewFileDates builds a record from a path and an already sorted collection.
func NewFileDates(path string, found SortedDates) FileDates {
	return FileDates{path: path, dates: found}
}

// FromFile reads path, decodes it as text, extracts every date and returns the sorted record.
// A file without dates yields a record with an empty collection, never an error.
// Failures are *ScanError values: ErrPathIsDirectory for a directory,
// ErrUndecodableContent for binary data, and the I/O kinds otherwise.
func FromFile(fsys FileSystem, path string, opts FileOptions) (FileDates, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return FileDates{}, Classify(path, err)
	}
	if info.IsDir() {
		return FileDates{}, NewScanError(path, ErrPathIsDirectory, nil)
	}
	content, err := fsys.ReadFile(path)
	if err != nil {
		return FileDates{}, Classify(path, err)
	}

	decoder := opts.Decoder
	if decoder == nil {
		decoder = encoding.NewCharsetHandler("")
	}
	text, err := decoder.Decode(content)
	if err != nil {
		return FileDates{}, NewScanError(path, ErrUndecodableContent, err)
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = dates.DefaultRecognizer()
	}
	found := extractor.ParseAll(text)
	if opts.KeepDuplicates {
		return NewFileDates(path, NewDateList(found)), nil
	}
	return NewFileDates(path, NewDateSet(found)), nil
}

// Path returns the file path.
func (f FileDates) Path() string { return f.path }

// Dates returns the sorted dates found in the file.
func (f FileDates) Dates() SortedDates { return f.dates }

// Compare orders records by their date collections, then by path.
func (f FileDates) Compare(other FileDates) int {
	if c := f.dates.Compare(other.dates); c != 0 {
		return c
	}
	return cmp.Compare(f.path, other.path)
}

// CompareFileDates is FileDates.Compare as a function, for slices.SortFunc.
func CompareFileDates(a, b FileDates) int {
	return a.Compare(b)
}
