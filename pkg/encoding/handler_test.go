package encoding

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestDecode(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Due March 1, 1999")
	require.NoError(t, err)
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Café opened March 1, 1999")
	require.NoError(t, err)

	testCases := []struct {
		name            string
		defaultEncoding string
		content         []byte
		want            string
		wantErr         bool
	}{
		{name: "empty", content: nil, want: ""},
		{name: "plain utf8", content: []byte("Due March 1, 1999"), want: "Due March 1, 1999"},
		{name: "utf8 multibyte", content: []byte("Réunion le March 1, 1999"), want: "Réunion le March 1, 1999"},
		{name: "utf8 bom", content: append([]byte{0xEF, 0xBB, 0xBF}, "Due March 1, 1999"...), want: "Due March 1, 1999"},
		{name: "utf16le bom", content: []byte(utf16), want: "Due March 1, 1999"},
		{name: "latin1 with default encoding", defaultEncoding: "iso-8859-1", content: []byte(latin1), want: "Café opened March 1, 1999"},
		{name: "latin1 without default encoding", content: []byte(latin1), wantErr: true},
		{name: "unknown default encoding", defaultEncoding: "klingon", content: []byte(latin1), wantErr: true},
		{name: "png", content: append(append([]byte{}, pngHeader...), make([]byte, 64)...), wantErr: true},
		{name: "utf16le bom over null bytes", content: append([]byte{0xFF, 0xFE}, make([]byte, 64)...), wantErr: true},
		{name: "utf16be bom over lone surrogates", content: append([]byte{0xFE, 0xFF}, bytes.Repeat([]byte{0xD8, 0x00, 0xD8, 0x01}, 32)...), wantErr: true},
		{name: "utf8 bom over invalid bytes", content: append([]byte{0xEF, 0xBB, 0xBF}, bytes.Repeat([]byte{0xC3, 0x28, 0xFF}, 16)...), wantErr: true},
		{name: "mostly null bytes", content: append([]byte("abc"), make([]byte, 40)...), wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCharsetHandler(tc.defaultEncoding)
			got, err := h.Decode(tc.content)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUndecodable), "error should wrap ErrUndecodable: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsBinary(t *testing.T) {
	h := NewCharsetHandler("")
	assert.False(t, h.IsBinary(nil))
	assert.False(t, h.IsBinary([]byte("plain text\n")))
	assert.False(t, h.IsBinary([]byte(`{"when": "March 1, 1999"}`)))
	assert.False(t, h.IsBinary([]byte("hello world\x00")), "a single null byte stays under the threshold")
	assert.True(t, h.IsBinary(append(append([]byte{}, pngHeader...), "trailing"...)))
	assert.True(t, h.IsBinary(bytes.Repeat([]byte{'a', 0, 0, 0}, 64)))
}

func TestValidateEncodingName(t *testing.T) {
	for _, name := range []string{"", "utf-8", "windows-1252", "latin1", "ISO-8859-1", "shift_jis"} {
		assert.NoError(t, ValidateEncodingName(name), name)
	}
	assert.Error(t, ValidateEncodingName("klingon"))
}
