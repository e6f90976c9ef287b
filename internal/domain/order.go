package domain

import "strings"

// Order statuses eligible for route planning.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPacked    = "packed"
)

// Structured shipping address. Individual fields may be empty;
// legacy orders carry only the free-form Raw string.
type Address struct {
	Raw     string
	Street  string
	City    string
	State   string
	Pincode string
}

// Format joins the populated address fields into a single geocodable line.
// Returns "" when no field carries usable text.
func (a Address) Format() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Raw, a.Street, a.City, a.State, a.Pincode} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Represents a single pending delivery owned by the upstream
// order-management system. Read-only to the planning core.
type Order struct {
	OrderID    string
	MerchantID string
	Address    Address
	Status     string
}
