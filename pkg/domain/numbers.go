package domain

import "fmt"

// nationalIDLength is the fixed length of a national identity number (NIK).
const nationalIDLength = 16

// householdNumberLength is the fixed length of a household number (nomor KK).
const householdNumberLength = 16

// NationalID is a resident's national identity number. Valid values are
// exactly 16 numeric digits.
type NationalID string

// ParseNationalID validates and returns a NationalID.
func ParseNationalID(s string) (NationalID, error) {
	if err := validateDigits(s, nationalIDLength); err != nil {
		return "", fmt.Errorf("national id: %w", err)
	}
	return NationalID(s), nil
}

func (n NationalID) String() string { return string(n) }
func (n NationalID) IsNil() bool    { return n == "" }

// HouseholdNumber is a household's registered number. Valid values are exactly
// 16 numeric digits.
type HouseholdNumber string

// ParseHouseholdNumber validates and returns a HouseholdNumber.
func ParseHouseholdNumber(s string) (HouseholdNumber, error) {
	if err := validateDigits(s, householdNumberLength); err != nil {
		return "", fmt.Errorf("household number: %w", err)
	}
	return HouseholdNumber(s), nil
}

func (n HouseholdNumber) String() string { return string(n) }
func (n HouseholdNumber) IsNil() bool    { return n == "" }

func validateDigits(s string, length int) error {
	if len(s) != length {
		return fmt.Errorf("must be exactly %d digits, got %d characters", length, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("must contain only digits")
		}
	}
	return nil
}
