package collect

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/encoding"
)

func TestFromFile(t *testing.T) {
	fsys := fstest.MapFS{
		"notes.txt":     {Data: []byte("Started March 1, 1999. Shipped Dec. 25th, 2000. Again March 1st, 1999.")},
		"empty.txt":     {Data: []byte("nothing to see")},
		"zero.txt":      {Data: nil},
		"binary.png":    {Data: append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)},
		"latin1.txt":    {Data: []byte("caf\xe9 on March 1, 1999")},
		"dir/child.txt": {Data: []byte("January 2, 2003")},
	}

	t.Run("dates are sorted and deduplicated", func(t *testing.T) {
		rec, err := FromFile(fsys, "notes.txt", FileOptions{})
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", rec.Path())
		assert.Equal(t, []dates.Date{
			dates.MustNew(1, dates.March, 1999),
			dates.MustNew(25, dates.December, 2000),
		}, rec.Dates().Slice())
	})

	t.Run("keep duplicates", func(t *testing.T) {
		rec, err := FromFile(fsys, "notes.txt", FileOptions{KeepDuplicates: true})
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Dates().Len())
		assert.False(t, rec.Dates().Deduplicated())
	})

	t.Run("no dates is not an error", func(t *testing.T) {
		for _, name := range []string{"empty.txt", "zero.txt"} {
			rec, err := FromFile(fsys, name, FileOptions{})
			require.NoError(t, err, name)
			assert.True(t, rec.Dates().IsEmpty(), name)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := FromFile(fsys, "dir", FileOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPathIsDirectory))
		assert.True(t, IsRecoverable(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := FromFile(fsys, "missing.txt", FileOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPathNotFound))
		assert.True(t, errors.Is(err, fs.ErrNotExist), "the cause stays reachable")
		assert.False(t, IsRecoverable(err))

		var scanErr *ScanError
		require.True(t, errors.As(err, &scanErr))
		assert.Equal(t, "missing.txt", scanErr.Path)
	})

	t.Run("binary", func(t *testing.T) {
		_, err := FromFile(fsys, "binary.png", FileOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUndecodableContent))
		assert.True(t, errors.Is(err, encoding.ErrUndecodable))
		assert.True(t, IsRecoverable(err))
	})

	t.Run("configured decoder", func(t *testing.T) {
		_, err := FromFile(fsys, "latin1.txt", FileOptions{})
		assert.True(t, errors.Is(err, ErrUndecodableContent))

		rec, err := FromFile(fsys, "latin1.txt", FileOptions{Decoder: encoding.NewCharsetHandler("windows-1252")})
		require.NoError(t, err)
		assert.Equal(t, []dates.Date{dates.MustNew(1, dates.March, 1999)}, rec.Dates().Slice())
	})
}

func TestFileDates_Compare(t *testing.T) {
	early := NewDateSet([]dates.Date{dates.MustNew(1, dates.January, 1990)})
	late := NewDateSet([]dates.Date{dates.MustNew(1, dates.January, 2020)})
	records := []FileDates{
		NewFileDates("z.txt", late),
		NewFileDates("b.txt", early),
		NewFileDates("a.txt", early),
		NewFileDates("empty.txt", NewDateSet(nil)),
	}
	slices.SortFunc(records, CompareFileDates)

	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path())
	}
	assert.Equal(t, []string{"empty.txt", "a.txt", "b.txt", "z.txt"}, paths)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("x", nil))

	testCases := []struct {
		name  string
		cause error
		kind  error
	}{
		{"not exist", fs.ErrNotExist, ErrPathNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, ErrPermissionDenied},
		{"undecodable", encoding.ErrUndecodable, ErrUndecodableContent},
		{"other", errors.New("disk on fire"), ErrIO},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify("x", tc.cause)
			assert.True(t, errors.Is(err, tc.kind))
			assert.True(t, errors.Is(err, tc.cause))
			assert.Contains(t, err.Error(), "x: ")
		})
	}

	already := NewScanError("y", ErrIO, nil)
	assert.Same(t, already, Classify("x", already))
	assert.Equal(t, "y: general I/O error", already.Error())
}
