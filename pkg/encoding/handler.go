// Package encoding turns raw file bytes into UTF-8 text for date extraction and
// classifies content that cannot be treated as text.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// sniffLen is the number of bytes used by http.DetectContentType
	sniffLen = 512
	// checkLen is a buffer size used for null byte checks.
	checkLen = 1024
	// Null byte threshold percentage to consider a file binary.
	nullThreshold = 0.15 // 15%
)

// ErrUndecodable is returned by Decode for binary content and for text that is
// neither valid UTF-8 nor in a recognised or configured encoding.
var ErrUndecodable = errors.New("content is not decodable text")

// Map of common text-based MIME type prefixes for quick lookup in IsBinary.
var knownTextMIMEPrefixes = map[string]bool{
	"text/":                  true,
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/ecmascript": true,
	"application/yaml":       true,
	"application/toml":       true,
	"application/csv":        true,
	"application/sql":        true,
	"application/rtf":        true,
	"application/ld+json":    true,
	"application/markdown":   true,
	"image/svg+xml":          true, // SVG is text
}

// Map of common text-based MIME type suffixes for quick lookup in IsBinary.
var knownTextMIMESuffixes = map[string]bool{
	"+xml":  true,
	"+json": true,
}

var byteOrderMarks = [][]byte{
	{0xEF, 0xBB, 0xBF}, // UTF-8
	{0xFE, 0xFF},       // UTF-16BE
	{0xFF, 0xFE},       // UTF-16LE
}

// Decoder converts file content to UTF-8 text.
type Decoder interface {
	// Decode returns the content as UTF-8 text, or an error wrapping ErrUndecodable.
	Decode(content []byte) (string, error)
}

// EncodingHandler is a Decoder that also exposes its binary classification.
type EncodingHandler interface {
	Decoder

	// IsBinary checks if the content is likely binary data based on MIME type sniffing
	// (http.DetectContentType on first 512 bytes) and null byte percentage
	// (in first 1024 bytes).
	IsBinary(content []byte) bool
}

// charsetHandler implements EncodingHandler using golang.org/x/net/html/charset
// and golang.org/x/text.
type charsetHandler struct {
	defaultEncoding string
}

// NewCharsetHandler creates a new encoding handler. defaultEncoding names the
// charset (IANA name, e.g. "windows-1252") used for content that is not valid
// UTF-8; when empty such content is reported as undecodable.
func NewCharsetHandler(defaultEncoding string) EncodingHandler {
	return &charsetHandler{defaultEncoding: strings.TrimSpace(defaultEncoding)}
}

// ValidateEncodingName reports whether name is a charset known to the handler.
func ValidateEncodingName(name string) error {
	if name == "" {
		return nil
	}
	if e, _ := charset.Lookup(name); e == nil {
		return fmt.Errorf("unknown encoding %q", name)
	}
	return nil
}

// Decode implements the Decoder interface.
//
// Order: byte order mark, binary check, plain UTF-8, charset declared in the
// content (HTML meta), configured default encoding.
func (h *charsetHandler) Decode(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	if hasBOM(content) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUndecodable, err)
		}
		if h.decodedBinary(decoded) {
			return "", fmt.Errorf("%w: binary data behind byte order mark", ErrUndecodable)
		}
		return string(decoded), nil
	}
	if h.IsBinary(content) {
		return "", fmt.Errorf("%w: binary data", ErrUndecodable)
	}
	if utf8.Valid(content) {
		return string(content), nil
	}

	// DetermineEncoding is only certain here when the content declares its charset.
	if enc, name, certain := charset.DetermineEncoding(content, ""); certain && enc != nil {
		return decodeWith(content, enc.NewDecoder(), name)
	}
	if h.defaultEncoding != "" {
		enc, name := charset.Lookup(h.defaultEncoding)
		if enc == nil {
			return "", fmt.Errorf("%w: unknown default encoding %q", ErrUndecodable, h.defaultEncoding)
		}
		return decodeWith(content, enc.NewDecoder(), name)
	}
	return "", fmt.Errorf("%w: invalid UTF-8", ErrUndecodable)
}

func decodeWith(content []byte, t transform.Transformer, name string) (string, error) {
	decoded, _, err := transform.Bytes(t, content)
	if err != nil {
		return "", fmt.Errorf("%w: failed to convert from '%s': %w", ErrUndecodable, name, err)
	}
	return string(decoded), nil
}

// decodedBinary reports whether text decoded through a byte order mark still
// looks binary: mostly NULs, or too many replacement characters.
func (h *charsetHandler) decodedBinary(decoded []byte) bool {
	if h.IsBinary(decoded) {
		return true
	}
	window := decoded[:min(len(decoded), checkLen)]
	runes, replaced := 0, 0
	for len(window) > 0 {
		r, size := utf8.DecodeRune(window)
		if r == utf8.RuneError {
			replaced++
		}
		runes++
		window = window[size:]
	}
	return runes > 0 && float64(replaced)/float64(runes) > nullThreshold
}

func hasBOM(content []byte) bool {
	for _, bom := range byteOrderMarks {
		if bytes.HasPrefix(content, bom) {
			return true
		}
	}
	return false
}

// isMIMETextBased checks if a detected MIME type is likely text-based.
func isMIMETextBased(contentType string) bool {
	mimeType := strings.SplitN(contentType, ";", 2)[0]
	mimeType = strings.TrimSpace(mimeType)

	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	if _, ok := knownTextMIMEPrefixes[mimeType]; ok {
		return true
	}
	for suffix := range knownTextMIMESuffixes {
		if strings.HasSuffix(mimeType, suffix) {
			return true
		}
	}
	// Allow octet-stream to potentially be text, rely on null check
	return mimeType == "application/octet-stream"
}

// IsBinary implements the EncodingHandler interface.
func (h *charsetHandler) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	contentType := http.DetectContentType(content[:min(len(content), sniffLen)])
	if !isMIMETextBased(contentType) {
		return true
	}

	window := content[:min(len(content), checkLen)]
	nullCount := bytes.Count(window, []byte{0x00})
	return float64(nullCount)/float64(len(window)) > nullThreshold
}
