package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
)

func TestDecodePayloadMatchesVariant(t *testing.T) {
	raw := []byte(`{"monthly_income": 800000, "dependents": 2, "purpose": "school fees"}`)

	payload, err := DecodePayload(id.DocumentTypeIncome, raw)
	require.NoError(t, err)
	require.Equal(t, IncomeParticulars{MonthlyIncome: 800_000, Dependents: 2, Purpose: "school fees"}, payload)
}

func TestDecodePayloadRejectsUnknownFields(t *testing.T) {
	raw := []byte(`{"monthly_income": 800000, "purpose": "school fees", "extra_field": true}`)

	_, err := DecodePayload(id.DocumentTypeIncome, raw)
	require.Error(t, err, "keys outside the variant's field set must not pass silently")
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestDecodePayloadRejectsForeignVariantShape(t *testing.T) {
	// A domicile payload carries residing_since, which no income variant has.
	raw := []byte(`{"residing_since": 2019, "purpose": "bank account"}`)

	_, err := DecodePayload(id.DocumentTypeIncome, raw)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestDecodePayloadRejectsUnknownType(t *testing.T) {
	_, err := DecodePayload(id.DocumentType("MARRIAGE_CERTIFICATE"), []byte(`{}`))
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
