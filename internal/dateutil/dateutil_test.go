package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 15, d.Day())

	for _, bad := range []string{"invalid", "2024-03", "2024-03-15-extra", "abc-03-15", "2024-13-01"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDayOfWeek(t *testing.T) {
	cases := map[string]int{
		"2024-01-01": 1, // Monday
		"2024-01-07": 0, // Sunday
		"2024-03-15": 5, // Friday
		"2024-12-25": 3, // Wednesday
		"2000-02-29": 2, // Tuesday, leap day
	}
	for date, want := range cases {
		got, err := DayOfWeek(date)
		require.NoError(t, err, date)
		assert.Equal(t, want, got, date)
	}

	_, err := DayOfWeek("not-a-date")
	assert.Error(t, err)
}

// Zeller's congruence must agree with the standard library across a
// long span of dates.
func TestDayOfWeekMatchesStdlib(t *testing.T) {
	d := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		date := FormatDate(d)
		got, err := DayOfWeek(date)
		require.NoError(t, err)
		assert.Equal(t, int(d.Weekday()), got, date)
		d = d.AddDate(0, 0, 1)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-03-15", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", got)

	got, err = AddDays("2024-02-28", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got) // leap year

	got, err = AddDays("2024-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got)

	_, err = AddDays("garbage", 1)
	assert.Error(t, err)
}

func TestStartOfWeek(t *testing.T) {
	got, err := StartOfWeek("2024-03-15") // Friday
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", got) // Monday

	got, err = StartOfWeek("2024-03-17") // Sunday belongs to the prior Monday
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", got)

	got, err = StartOfWeek("2024-03-11") // Monday maps to itself
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", got)
}

func TestStartAndEndOfMonth(t *testing.T) {
	got, err := StartOfMonth("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got)

	got, err = EndOfMonth("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", got)

	got, err = EndOfMonth("2024-02-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	got, err = EndOfMonth("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", got)
}

func TestTimeToMinutes(t *testing.T) {
	assert.Equal(t, 0, TimeToMinutes("00:00"))
	assert.Equal(t, 60, TimeToMinutes("01:00"))
	assert.Equal(t, 570, TimeToMinutes("09:30"))
	assert.Equal(t, 1439, TimeToMinutes("23:59"))
	assert.Equal(t, 0, TimeToMinutes("invalid"))
}

func TestAddMinutes(t *testing.T) {
	assert.Equal(t, "09:30", AddMinutes("09:00", 30))
	assert.Equal(t, "10:30", AddMinutes("09:30", 60))
	assert.Equal(t, "00:30", AddMinutes("23:30", 60)) // wraps past midnight
	assert.Equal(t, "09:30", AddMinutes("10:00", -30))
	assert.Equal(t, "23:30", AddMinutes("00:00", -30)) // wraps backwards
	assert.Equal(t, "invalid", AddMinutes("invalid", 30))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "9:30 AM", FormatTime("09:30"))
	assert.Equal(t, "1:45 PM", FormatTime("13:45"))
	assert.Equal(t, "12:00 AM", FormatTime("00:00"))
	assert.Equal(t, "12:00 PM", FormatTime("12:00"))
	assert.Equal(t, "11:59 PM", FormatTime("23:59"))
	assert.Equal(t, "invalid", FormatTime("invalid"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "January", MonthName(1))
	assert.Equal(t, "December", MonthName(12))
	assert.Equal(t, "Unknown", MonthName(0))
	assert.Equal(t, "Unknown", MonthName(13))

	assert.Equal(t, "Sunday", DayName(0))
	assert.Equal(t, "Saturday", DayName(6))
	assert.Equal(t, "Unknown", DayName(7))
}
