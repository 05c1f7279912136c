package domain

import "fmt"

// DocumentType enumerates the certificate kinds the registry can issue.
// This is a domain primitive that enforces validity at parse time.
type DocumentType string

const (
	DocumentTypeIncome   DocumentType = "INCOME_CERTIFICATE"
	DocumentTypeDomicile DocumentType = "DOMICILE_CERTIFICATE"
	DocumentTypeBusiness DocumentType = "BUSINESS_CERTIFICATE"
	DocumentTypeBirth    DocumentType = "BIRTH_CERTIFICATE"
	DocumentTypeDeath    DocumentType = "DEATH_CERTIFICATE"
)

// documentTypeCodes maps each type to the short code printed on issued
// document numbers.
var documentTypeCodes = map[DocumentType]string{
	DocumentTypeIncome:   "SKTM",
	DocumentTypeDomicile: "SKD",
	DocumentTypeBusiness: "SKU",
	DocumentTypeBirth:    "SKL",
	DocumentTypeDeath:    "SKM",
}

// ParseDocumentType validates and returns a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if _, ok := documentTypeCodes[t]; !ok {
		return "", fmt.Errorf("unknown document type: %s", s)
	}
	return t, nil
}

// Code returns the short code used in issued document numbers.
func (t DocumentType) Code() string {
	return documentTypeCodes[t]
}

// String returns the string representation of the document type.
func (t DocumentType) String() string {
	return string(t)
}

// IsNil returns true if the document type is empty.
func (t DocumentType) IsNil() bool {
	return t == ""
}
