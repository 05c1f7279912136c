package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNationalID(t *testing.T) {
	t.Run("accepts 16 digits", func(t *testing.T) {
		nik, err := ParseNationalID("1234567890123456")
		require.NoError(t, err)
		assert.Equal(t, "1234567890123456", nik.String())
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseNationalID("12345")
		assert.Error(t, err)
	})

	t.Run("rejects non-digits", func(t *testing.T) {
		_, err := ParseNationalID("12345678901234ab")
		assert.Error(t, err)
	})
}

func TestParseHouseholdNumber(t *testing.T) {
	t.Run("accepts 16 digits", func(t *testing.T) {
		num, err := ParseHouseholdNumber("9876543210987654")
		require.NoError(t, err)
		assert.Equal(t, "9876543210987654", num.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseHouseholdNumber("")
		assert.Error(t, err)
	})
}

func TestParseDocumentType(t *testing.T) {
	t.Run("accepts known types", func(t *testing.T) {
		for _, s := range []string{
			"INCOME_CERTIFICATE",
			"DOMICILE_CERTIFICATE",
			"BUSINESS_CERTIFICATE",
			"BIRTH_CERTIFICATE",
			"DEATH_CERTIFICATE",
		} {
			dt, err := ParseDocumentType(s)
			require.NoError(t, err)
			assert.Equal(t, s, dt.String())
			assert.NotEmpty(t, dt.Code())
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := ParseDocumentType("MARRIAGE_CERTIFICATE")
		assert.Error(t, err)
	})
}

func TestTypedIDs(t *testing.T) {
	t.Run("round-trips through string form", func(t *testing.T) {
		rid := NewResidentID()
		parsed, err := ParseResidentID(rid.String())
		require.NoError(t, err)
		assert.Equal(t, rid, parsed)
	})

	t.Run("zero value is nil", func(t *testing.T) {
		assert.True(t, ResidentID{}.IsNil())
		assert.False(t, NewResidentID().IsNil())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseActorID("not-a-uuid")
		assert.Error(t, err)
	})
}
