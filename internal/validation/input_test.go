package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"bob@example.com",
		"first.last+tag@sub.example.co.uk",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"bob@localhost",
		"bob!@example.com",
		"@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("bob"))
	assert.NoError(t, ValidateUsername("bob the builder"))
	assert.NoError(t, ValidateUsername("worker_42"))

	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("42bob"))
	assert.Error(t, ValidateUsername("bob!"))
	assert.Error(t, ValidateUsername("this username is way way way too long for an account"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sup3rSecret"))

	assert.Error(t, ValidatePassword("short1A"))
	assert.Error(t, ValidatePassword("alllowercase1"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, ValidatePassword("NoDigitsHere"))
}

func TestValidateLength_CountsRunes(t *testing.T) {
	assert.NoError(t, ValidateLength("title", "grüß", 1, 4))
	assert.Error(t, ValidateLength("title", "grüße", 1, 4))
}
