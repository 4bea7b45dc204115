// Package testutil provides test helpers and testify mocks for the interfaces
// defined in the datescan packages (pkg/scanner, pkg/collect, pkg/dates and
// pkg/encoding).
package testutil

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/scanner"
)

// MockHooks provides a mock implementation of the scanner.Hooks interface.
// Configure expectations using testify/mock methods (e.g., .On("OnFileStatus", ...).Return(nil)).
type MockHooks struct {
	mock.Mock
}

// OnPathVisited mocks the OnPathVisited method.
func (m *MockHooks) OnPathVisited(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileStatus mocks the OnFileStatus method.
func (m *MockHooks) OnFileStatus(path string, status scanner.Status, message string) error {
	args := m.Called(path, status, message)
	return args.Error(0)
}

// OnScanComplete mocks the OnScanComplete method.
func (m *MockHooks) OnScanComplete(agg *collect.Aggregate) error {
	args := m.Called(agg)
	return args.Error(0)
}

// MockFileSystem provides a mock implementation of the collect.FileSystem interface.
type MockFileSystem struct {
	mock.Mock
}

// ReadFile mocks the ReadFile method.
func (m *MockFileSystem) ReadFile(name string) (content []byte, err error) {
	args := m.Called(name)
	content, _ = args.Get(0).([]byte)
	err = args.Error(1)
	return
}

// Stat mocks the Stat method.
func (m *MockFileSystem) Stat(name string) (info fs.FileInfo, err error) {
	args := m.Called(name)
	info, _ = args.Get(0).(fs.FileInfo)
	err = args.Error(1)
	return
}

// ReadDir mocks the ReadDir method.
func (m *MockFileSystem) ReadDir(name string) (entries []fs.DirEntry, err error) {
	args := m.Called(name)
	entries, _ = args.Get(0).([]fs.DirEntry)
	err = args.Error(1)
	return
}

// MockDecoder provides a mock implementation of the encoding.Decoder interface.
type MockDecoder struct {
	mock.Mock
}

// Decode mocks the Decode method.
func (m *MockDecoder) Decode(content []byte) (text string, err error) {
	args := m.Called(content)
	text, _ = args.Get(0).(string)
	err = args.Error(1)
	return
}

// MockExtractor provides a mock implementation of the dates.DateExtractor interface.
type MockExtractor struct {
	mock.Mock
}

// ParseAll mocks the ParseAll method.
func (m *MockExtractor) ParseAll(text string) []dates.Date {
	args := m.Called(text)
	found, _ := args.Get(0).([]dates.Date)
	return found
}

// MockLoggerHandler provides a mock implementation for slog.Handler.
// Generally, using slog.NewTextHandler with a buffer (see NewTestLogger) is preferred.
type MockLoggerHandler struct {
	mock.Mock
}

// Enabled mocks the Enabled method.
func (m *MockLoggerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	args := m.Called(ctx, level)
	enabled, _ := args.Get(0).(bool)
	return enabled
}

// Handle mocks the Handle method.
func (m *MockLoggerHandler) Handle(ctx context.Context, r slog.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// WithAttrs mocks the WithAttrs method.
func (m *MockLoggerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	args := m.Called(attrs)
	if h, ok := args.Get(0).(slog.Handler); ok && h != nil {
		return h
	}
	return m
}

// WithGroup mocks the WithGroup method.
func (m *MockLoggerHandler) WithGroup(name string) slog.Handler {
	args := m.Called(name)
	if h, ok := args.Get(0).(slog.Handler); ok && h != nil {
		return h
	}
	return m
}
