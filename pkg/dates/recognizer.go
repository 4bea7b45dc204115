package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// DefaultPattern matches "Month Day[st|nd|rd|th][,] Year[ BCE]", e.g. "March 1, 1999",
// "Dec. 25th, 2000" or "March 15th, 44 BCE". Month text is validated by ParseMonth,
// so "Octember 40, 2000" matches the pattern but yields no date.
const DefaultPattern = `(?i)\b(?P<month>[a-z]+\.?)\s*(?P<day>\d{1,2})(?:st|nd|rd|th)?\b\s*,*\s*(?P<year>\d+)(?:\s*(?P<era>BCE|BC|CE|AD))?\b`

// Capture group names looked up in a recognizer pattern. Patterns without
// named groups use positional groups 1 (month), 2 (day) and 3 (year).
const (
	groupMonth = "month"
	groupDay   = "day"
	groupYear  = "year"
	groupEra   = "era"
)

// DateExtractor extracts every date found in a text blob, in extraction order.
type DateExtractor interface {
	ParseAll(text string) []Date
}

// Recognizer is a compiled date pattern. It is safe for concurrent use and is
// meant to be built once at startup and passed to whatever needs to extract dates.
type Recognizer struct {
	source   string
	pattern  *regexp.Regexp
	anchored *regexp.Regexp
	monthIdx int
	dayIdx   int
	yearIdx  int
	eraIdx   int
}

// NewRecognizer compiles pattern into a Recognizer.
func NewRecognizer(pattern string) (*Recognizer, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile date pattern: %w", err)
	}
	anchored, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile anchored date pattern: %w", err)
	}
	r := &Recognizer{
		source:   pattern,
		pattern:  re,
		anchored: anchored,
		monthIdx: groupIndex(re, groupMonth, 1),
		dayIdx:   groupIndex(re, groupDay, 2),
		yearIdx:  groupIndex(re, groupYear, 3),
		eraIdx:   groupIndex(re, groupEra, -1),
	}
	if r.monthIdx > re.NumSubexp() || r.dayIdx > re.NumSubexp() || r.yearIdx > re.NumSubexp() {
		return nil, fmt.Errorf("date pattern %q needs month, day and year capture groups", pattern)
	}
	return r, nil
}

// NewDefaultRecognizer returns a Recognizer for DefaultPattern.
func NewDefaultRecognizer() *Recognizer {
	r, err := NewRecognizer(DefaultPattern)
	if err != nil {
		panic(err) // DefaultPattern is a constant
	}
	return r
}

var sharedDefault = sync.OnceValue(NewDefaultRecognizer)

// DefaultRecognizer returns a process-wide Recognizer for DefaultPattern.
func DefaultRecognizer() *Recognizer {
	return sharedDefault()
}

func groupIndex(re *regexp.Regexp, name string, fallback int) int {
	if idx := re.SubexpIndex(name); idx >= 0 {
		return idx
	}
	return fallback
}

// Pattern returns the source pattern.
func (r *Recognizer) Pattern() string {
	return r.source
}

// ParseSingle parses text that consists of exactly one date, ignoring surrounding whitespace.
func (r *Recognizer) ParseSingle(text string) (Date, error) {
	text = strings.TrimSpace(text)
	match := r.anchored.FindStringSubmatch(text)
	if match == nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormatting, text)
	}
	return r.fromMatch(match)
}

// ParseAll returns every valid date in text in the order it appears.
// Matches that fail validation are dropped.
func (r *Recognizer) ParseAll(text string) []Date {
	matches := r.pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	found := make([]Date, 0, len(matches))
	for _, match := range matches {
		d, err := r.fromMatch(match)
		if err != nil {
			continue
		}
		found = append(found, d)
	}
	return found
}

func (r *Recognizer) fromMatch(match []string) (Date, error) {
	month, err := ParseMonth(match[r.monthIdx])
	if err != nil {
		return Date{}, err
	}
	day, err := strconv.Atoi(match[r.dayIdx])
	if err != nil {
		return Date{}, fmt.Errorf("%w: day %q", ErrInvalidFormatting, match[r.dayIdx])
	}
	year, err := strconv.Atoi(match[r.yearIdx])
	if err != nil {
		return Date{}, fmt.Errorf("%w: year %q", ErrInvalidFormatting, match[r.yearIdx])
	}
	if r.eraIdx > 0 {
		switch strings.ToUpper(match[r.eraIdx]) {
		case "BCE", "BC":
			year = -year
		}
	}
	return New(day, month, year)
}
