package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContact(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateContact(testContact()))
}

func TestValidateContact_MissingFields(t *testing.T) {
	t.Parallel()

	info := testContact()
	info.Address = ""
	info.City = ""

	err := ValidateContact(info)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "address")
	assert.Contains(t, err.Error(), "city")
	assert.NotContains(t, err.Error(), "phone")
}

func TestValidateContact_WhitespaceIsMissing(t *testing.T) {
	t.Parallel()

	info := testContact()
	info.FullName = "   "

	err := ValidateContact(info)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "full_name")
}

func TestValidateContact_BadEmail(t *testing.T) {
	t.Parallel()

	info := testContact()
	info.Email = "not-an-email"

	err := ValidateContact(info)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email")
}
