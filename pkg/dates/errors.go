package dates

import "errors"

var (
	// ErrNoMatchingMonth indicates that the text does not name a month.
	ErrNoMatchingMonth = errors.New("no matching month")

	// ErrInvalidMonth indicates a Month value outside January..December.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidFormatting indicates that the text is not formatted as a date,
	// or that one of its numeric fields could not be parsed.
	ErrInvalidFormatting = errors.New("text is not a date")

	// ErrInvalidDayOfMonth indicates that the day does not exist in the given month and year.
	ErrInvalidDayOfMonth = errors.New("invalid day of month")
)
