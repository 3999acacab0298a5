package models

import (
	"fmt"
	"strings"
)

// TaxpayerIdentity carries the reporting party's identification fields that
// go into the eDavki document header. It is collected by the onboarding
// collaborator and validated there; the generators render whatever they are
// given and fall back to empty strings for absent optional fields.
type TaxpayerIdentity struct {
	TaxNumber  string `json:"tax_number"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostNumber string `json:"post_number"`
	PostName   string `json:"post_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Validate is a pure predicate returning one message per missing or invalid
// field. An empty slice means the identity is ready for the report header.
func (ti TaxpayerIdentity) Validate() []string {
	var problems []string

	taxNumber := strings.TrimSpace(ti.TaxNumber)
	if taxNumber == "" {
		problems = append(problems, "tax number is required")
	} else if len(taxNumber) != 8 || !isAllDigits(taxNumber) {
		problems = append(problems, fmt.Sprintf("tax number must be 8 digits, got %q", taxNumber))
	}

	required := []struct {
		value, label string
	}{
		{ti.Name, "name"},
		{ti.Address, "address"},
		{ti.City, "city"},
		{ti.PostNumber, "postal code"},
		{ti.PostName, "postal district"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.label+" is required")
		}
	}
	return problems
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
