package types

import "strings"

// Address is the postal address shape shared by order shipping/billing groups
// and customer address books. Stored as JSONB on the owning row.
type Address struct {
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// MissingShippingFields lists the required shipping fields that are blank.
// Country is optional on input and defaults downstream.
func (a Address) MissingShippingFields() []string {
	missing := []string{}
	if strings.TrimSpace(a.Address1) == "" {
		missing = append(missing, "address1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	return missing
}

// IsZero reports whether no field is populated.
func (a Address) IsZero() bool {
	return a == Address{}
}

// BillingAddress carries the optional billing form, which can defer to the
// shipping address wholesale.
type BillingAddress struct {
	Address
	SameAsShipping bool `json:"sameAsShipping"`
}
