package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
)

// Payload is the type-specific content of a certificate request. Each document
// type has exactly one variant, validated at construction time instead of
// riding along as an untyped JSON bag.
type Payload interface {
	DocumentType() id.DocumentType
	Validate() error
}

// IncomeParticulars backs INCOME_CERTIFICATE requests (income statements for
// assistance programmes).
type IncomeParticulars struct {
	MonthlyIncome int64  `json:"monthly_income"`
	Dependents    int    `json:"dependents"`
	Purpose       string `json:"purpose"`
}

func (p IncomeParticulars) DocumentType() id.DocumentType { return id.DocumentTypeIncome }

func (p IncomeParticulars) Validate() error {
	if p.MonthlyIncome < 0 {
		return dErrors.New(dErrors.CodeValidation, "monthly income must not be negative")
	}
	if p.Purpose == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	return nil
}

// DomicileParticulars backs DOMICILE_CERTIFICATE requests.
type DomicileParticulars struct {
	ResidingSince int    `json:"residing_since"`
	Purpose       string `json:"purpose"`
}

func (p DomicileParticulars) DocumentType() id.DocumentType { return id.DocumentTypeDomicile }

func (p DomicileParticulars) Validate() error {
	if p.ResidingSince <= 0 {
		return dErrors.New(dErrors.CodeValidation, "residing_since year is required")
	}
	if p.Purpose == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	return nil
}

// BusinessParticulars backs BUSINESS_CERTIFICATE requests.
type BusinessParticulars struct {
	BusinessName  string `json:"business_name"`
	BusinessField string `json:"business_field"`
	SinceYear     int    `json:"since_year"`
}

func (p BusinessParticulars) DocumentType() id.DocumentType { return id.DocumentTypeBusiness }

func (p BusinessParticulars) Validate() error {
	if p.BusinessName == "" {
		return dErrors.New(dErrors.CodeValidation, "business name is required")
	}
	if p.BusinessField == "" {
		return dErrors.New(dErrors.CodeValidation, "business field is required")
	}
	return nil
}

// BirthParticulars backs BIRTH_CERTIFICATE requests.
type BirthParticulars struct {
	ChildName  string    `json:"child_name"`
	BirthDate  time.Time `json:"birth_date"`
	BirthPlace string    `json:"birth_place"`
	FatherName string    `json:"father_name"`
	MotherName string    `json:"mother_name"`
}

func (p BirthParticulars) DocumentType() id.DocumentType { return id.DocumentTypeBirth }

func (p BirthParticulars) Validate() error {
	if p.ChildName == "" {
		return dErrors.New(dErrors.CodeValidation, "child name is required")
	}
	if p.BirthDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "birth date is required")
	}
	if p.MotherName == "" {
		return dErrors.New(dErrors.CodeValidation, "mother name is required")
	}
	return nil
}

// DeathParticulars backs DEATH_CERTIFICATE requests.
type DeathParticulars struct {
	DateOfDeath  time.Time `json:"date_of_death"`
	PlaceOfDeath string    `json:"place_of_death"`
	Cause        string    `json:"cause"`
}

func (p DeathParticulars) DocumentType() id.DocumentType { return id.DocumentTypeDeath }

func (p DeathParticulars) Validate() error {
	if p.DateOfDeath.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date of death is required")
	}
	if p.PlaceOfDeath == "" {
		return dErrors.New(dErrors.CodeValidation, "place of death is required")
	}
	return nil
}

// DecodePayload decodes raw JSON into the variant for the given document type.
// The document type is the tag; data that does not fit the variant's shape is
// rejected here, before any state is touched.
func DecodePayload(docType id.DocumentType, data []byte) (Payload, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	var payload Payload
	var err error
	switch docType {
	case id.DocumentTypeIncome:
		payload, err = decodeVariant[IncomeParticulars](data)
	case id.DocumentTypeDomicile:
		payload, err = decodeVariant[DomicileParticulars](data)
	case id.DocumentTypeBusiness:
		payload, err = decodeVariant[BusinessParticulars](data)
	case id.DocumentTypeBirth:
		payload, err = decodeVariant[BirthParticulars](data)
	case id.DocumentTypeDeath:
		payload, err = decodeVariant[DeathParticulars](data)
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown document type: %s", docType)
	}
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func decodeVariant[T Payload](data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var variant T
	if err := dec.Decode(&variant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed payload")
	}
	return variant, nil
}

// EncodePayload serializes a payload for storage. The document type column is
// the tag used by DecodePayload on the way back out.
func EncodePayload(payload Payload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}
