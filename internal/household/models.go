package household

import (
	"time"

	id "warga/pkg/domain"
)

// Household is an administrative grouping of residents sharing one registered
// household number. HeadID mirrors the member whose family role is HEAD; the
// service layer keeps the two sides consistent.
type Household struct {
	ID        id.HouseholdID
	Number    id.HouseholdNumber
	Address   string
	Hamlet    string
	RT        string
	RW        string
	HeadID    *id.ResidentID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasHead reports whether the household currently has a designated head.
func (h *Household) HasHead() bool {
	return h.HeadID != nil
}
