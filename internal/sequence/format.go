package sequence

import (
	"fmt"
	"time"
)

// romanMonths indexes January at 0. Village certificates carry the issuing
// month in roman numerals.
var romanMonths = [12]string{
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII",
}

// RomanMonth returns the roman-numeral form of a calendar month.
func RomanMonth(month time.Month) string {
	return romanMonths[int(month)-1]
}

// FormatNumber renders the human-readable document number. It is a pure
// function of its inputs; uniqueness comes entirely from the ordinal.
//
// Example: 012/SKTM/DS-SUKAMAJU/VIII/2026
func FormatNumber(ordinal int, typeCode, localityCode string, issuedAt time.Time) string {
	return fmt.Sprintf("%03d/%s/%s/%s/%d",
		ordinal, typeCode, localityCode, RomanMonth(issuedAt.Month()), issuedAt.Year())
}
