package dates

import (
	"fmt"
	"strings"
)

// Month is a month of the Gregorian calendar. The zero value is invalid.
type Month int

// Months in calendar order.
const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthLookup maps every accepted lowercase spelling to its month.
// Full names, three-letter abbreviations and abbreviations with a trailing dot are accepted.
var monthLookup = func() map[string]Month {
	lookup := make(map[string]Month, 12*3)
	for m := January; m <= December; m++ {
		full := strings.ToLower(monthNames[m])
		lookup[full] = m
		if m == May {
			continue // "may" is both the full name and the abbreviation
		}
		abbr := full[:3]
		lookup[abbr] = m
		lookup[abbr+"."] = m
	}
	return lookup
}()

// Valid reports whether m is one of the twelve months.
func (m Month) Valid() bool {
	return m >= January && m <= December
}

// Days returns the number of days in the month, accounting for leap years.
// It returns 0 for an invalid month.
func (m Month) Days(isLeapYear bool) int {
	switch m {
	case January, March, May, July, August, October, December:
		return 31
	case April, June, September, November:
		return 30
	case February:
		if isLeapYear {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// String returns the English name of the month.
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// ParseMonth parses a month name or abbreviation, ignoring case.
func ParseMonth(s string) (Month, error) {
	if m, ok := monthLookup[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNoMatchingMonth, s)
}
