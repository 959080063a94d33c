package api

import (
	"errors"

	"github.com/go-openapi/strfmt"
)

// ValidateDate accepts only strict yyyy-mm-dd strings naming a real
// calendar day and returns the date in that same form.
func ValidateDate(input string) (string, error) {
	if input == "" {
		return "", &DateFormatError{Input: input, Err: errors.New("empty date")}
	}

	var d strfmt.Date
	if err := d.UnmarshalText([]byte(input)); err != nil {
		return "", &DateFormatError{Input: input, Err: err}
	}

	normalized := d.String()
	if normalized != input {
		return "", &DateFormatError{Input: input, Err: errors.New("date is not in canonical form")}
	}
	return normalized, nil
}

// DateRange is a pair of validated yyyy-mm-dd dates.
type DateRange struct {
	Start string
	End   string
}

// NewDateRange validates both ends before anything else happens. Order is
// not checked; the API decides what an inverted range means.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := ValidateDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ValidateDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}
