package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate_AcceptsRealDates(t *testing.T) {
	for _, in := range []string{"2023-02-28", "2024-02-29", "2023-12-31", "2000-01-01"} {
		got, err := ValidateDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, got)
	}
}

func TestValidateDate_RejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"2023-02-30",
		"2023-04-31",
		"2023-02-29",
		"2023-13-01",
		"2023-2-28",
		"23-02-28",
		"2023/02/28",
		"28-02-2023",
		"2023-02-28T00:00:00Z",
		" 2023-02-28",
		"yesterday",
	}
	for _, in := range cases {
		_, err := ValidateDate(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidDateFormat), "%q should match ErrInvalidDateFormat", in)

		var dfe *DateFormatError
		require.True(t, errors.As(err, &dfe))
		assert.Equal(t, in, dfe.Input)
	}
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange("2023-12-18", "2023-12-19")
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2023-12-18", End: "2023-12-19"}, r)

	_, err = NewDateRange("2023-02-30", "2023-12-19")
	var dfe *DateFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, "2023-02-30", dfe.Input)

	_, err = NewDateRange("2023-12-18", "2023-12-32")
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, "2023-12-32", dfe.Input)
}
