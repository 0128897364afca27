package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductRef accepts the three shapes storefront payloads use for a product
// reference: a bare string id, a bare numeric id, or an expanded object
// carrying at least an id field.
type ProductRef struct {
	ID       string
	Expanded json.RawMessage
}

// UnmarshalJSON decodes string, number, or object forms.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		p.ID = asString
		p.Expanded = nil
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		p.ID = asNumber.String()
		p.Expanded = nil
		return nil
	}

	var asObject struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("product ref: unsupported shape: %w", err)
	}
	if len(asObject.ID) == 0 {
		p.ID = ""
		p.Expanded = append(json.RawMessage{}, data...)
		return nil
	}

	var idString string
	if err := json.Unmarshal(asObject.ID, &idString); err == nil {
		p.ID = idString
	} else {
		var idNumber json.Number
		if err := json.Unmarshal(asObject.ID, &idNumber); err != nil {
			return fmt.Errorf("product ref: unsupported id shape")
		}
		p.ID = idNumber.String()
	}
	p.Expanded = append(json.RawMessage{}, data...)
	return nil
}

// MarshalJSON re-emits the expanded object when present, else the id string.
func (p ProductRef) MarshalJSON() ([]byte, error) {
	if len(p.Expanded) > 0 {
		return p.Expanded, nil
	}
	return []byte(strconv.Quote(p.ID)), nil
}

// IsZero reports whether no product id could be resolved.
func (p ProductRef) IsZero() bool {
	return p.ID == ""
}
