package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/mkamenev/storefront/internal/models"
)

// ValidateContact checks the checkout-info form: every shipping field is
// required and the email must parse. Field names in the error match the JSON
// form fields.
func ValidateContact(info models.ContactInfo) error {
	required := []struct {
		name, value string
	}{
		{"full_name", info.FullName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
		{"state", info.State},
		{"postal_code", info.PostalCode},
		{"country", info.Country},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if _, err := mail.ParseAddress(info.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}
