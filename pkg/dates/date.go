// Package dates provides the calendar date value type used throughout datescan,
// together with the pattern recognizer that extracts dates from free text.
//
// Negative years are Before Common Era (BCE), non-negative years are Common Era (CE).
// A Date can only be built through New, which validates the day of the month,
// or through Trusted for data that has already been validated elsewhere.
package dates

import (
	"fmt"
	"strconv"
	"strings"
)

// Date is an immutable day/month/year triple.
type Date struct {
	day   int
	month Month
	year  int
}

// Trusted carries the fields of an already-validated Date across a trust boundary,
// e.g. when re-hydrating dates that New accepted earlier. Trusted.Date performs no
// validation and must never be fed with parsed or user supplied input.
type Trusted struct {
	Day   int
	Month Month
	Year  int
}

// Date builds the Date without validation.
func (t Trusted) Date() Date {
	return Date{day: t.Day, month: t.Month, year: t.Year}
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// New returns a validated Date. It fails with ErrInvalidDayOfMonth when day is
// outside 1..month.Days(IsLeapYear(year)), and with ErrInvalidMonth for an unknown month.
func New(day int, month Month, year int) (Date, error) {
	if !month.Valid() {
		return Date{}, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}
	if day < 1 || day > month.Days(IsLeapYear(year)) {
		return Date{}, fmt.Errorf("%w: %s %d in %d", ErrInvalidDayOfMonth, month, day, year)
	}
	return Trusted{Day: day, Month: month, Year: year}.Date(), nil
}

// MustNew is like New but panics on error. It is meant for constants and tests.
func MustNew(day int, month Month, year int) Date {
	d, err := New(day, month, year)
	if err != nil {
		panic(err)
	}
	return d
}

// Day returns the day of the month.
func (d Date) Day() int { return d.day }

// Month returns the month.
func (d Date) Month() Month { return d.month }

// Year returns the signed year; negative years are BCE.
func (d Date) Year() int { return d.year }

// IsBCE reports whether the date lies before the Common Era.
func (d Date) IsBCE() bool { return d.year < 0 }

// IsZero reports whether d is the zero Date, which New never returns.
func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or +1 ordering d before, equal to or after other,
// by year, then month, then day.
func (d Date) Compare(other Date) int {
	return Compare(d, other)
}

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool { return d == other }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return Compare(d, other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return Compare(d, other) > 0 }

// Compare orders two dates. It is suitable for slices.SortFunc.
func Compare(a, b Date) int {
	switch {
	case a.year != b.year:
		return cmpInt(a.year, b.year)
	case a.month != b.month:
		return cmpInt(int(a.month), int(b.month))
	default:
		return cmpInt(a.day, b.day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// OrdinalSuffix returns the English ordinal suffix for day ("st", "nd", "rd" or "th").
func OrdinalSuffix(day int) string {
	if n := day % 100; n >= 11 && n <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// String renders the date as "<Month> <day><suffix>, <year>[ BCE]",
// e.g. "January 1st, 2000" or "March 15th, 44 BCE".
func (d Date) String() string {
	var b strings.Builder
	year := d.year
	era := ""
	if year < 0 {
		year = -year
		era = " BCE"
	}
	fmt.Fprintf(&b, "%s %d%s, %d%s", d.month, d.day, OrdinalSuffix(d.day), year, era)
	return b.String()
}

// ISO renders the date as YYYY-MM-DD, with a leading minus sign for BCE years.
func (d Date) ISO() string {
	if d.year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -d.year, int(d.month), d.day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler using the ISO layout.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The value is validated through New.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseISO(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseISO parses the layout produced by Date.ISO.
func ParseISO(s string) (Date, error) {
	s = strings.TrimSpace(s)
	sign := 1
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign = -1
		s = rest
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormatting, s)
	}
	fields := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormatting, s)
		}
		fields[i] = n
	}
	return New(fields[2], Month(fields[1]), sign*fields[0])
}
