package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateFormats(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2024-01-02":          "2024-01-02",
		"2024/01/02":          "2024-01-02",
		"01/02/2024":          "2024-01-02",
		"2024-01-02 15:04:05": "2024-01-02",
		"":                    "",
	}
	for input, want := range cases {
		got, err := NormalizeDate(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := NormalizeDate("January 2nd")
	assert.Error(t, err)
}

func TestNormalizeTime(t *testing.T) {
	t.Parallel()

	got, err := NormalizeTime("")
	require.NoError(t, err)
	assert.Equal(t, "00:00:00", got)

	got, err = NormalizeTime("9:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", got)

	got, err = NormalizeTime("16:03:19")
	require.NoError(t, err)
	assert.Equal(t, "16:03:19", got)
}

func TestMonthOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01", MonthOf("2024-01-02"))
	assert.Equal(t, "", MonthOf(""))
}

func TestRoundPct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, RoundPct(1, 0))
	assert.Equal(t, 50, RoundPct(2, 4))
	assert.Equal(t, 33, RoundPct(1, 3))
	assert.Equal(t, 67, RoundPct(2, 3))
	assert.Equal(t, 100, RoundPct(3, 3))
}
