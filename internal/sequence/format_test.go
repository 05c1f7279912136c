package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	issued := time.Date(2026, time.August, 15, 9, 30, 0, 0, time.UTC)

	number := FormatNumber(12, "SKTM", "DS-SUKAMAJU", issued)
	assert.Equal(t, "012/SKTM/DS-SUKAMAJU/VIII/2026", number)

	// Deterministic: same inputs, same output.
	assert.Equal(t, number, FormatNumber(12, "SKTM", "DS-SUKAMAJU", issued))
}

func TestRomanMonth(t *testing.T) {
	cases := map[time.Month]string{
		time.January:  "I",
		time.April:    "IV",
		time.August:   "VIII",
		time.December: "XII",
	}
	for month, want := range cases {
		assert.Equal(t, want, RomanMonth(month))
	}
}
