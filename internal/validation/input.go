package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MaxTitleLength       = 255
	MaxDescriptionLength = 4095
	MaxAddressLength     = 511
	MaxCommentLength     = 1023
	MaxKeywordsLength    = 255
)

// ValidateLength checks the rune count of a string field.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty rejects blank strings.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	return nil
}

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_ ]+$`)
)

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}
	local, domain := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("email local part must be between 1 and 64 characters")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("email domain must be between 1 and 255 characters")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("email local part contains invalid characters")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("invalid email domain")
	}
	return nil
}

// IsValidEmail reports whether the email passes format checks.
func IsValidEmail(email string) bool {
	return ValidateEmail(email) == nil
}

// ValidateUsername checks the account name.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	username = strings.TrimSpace(username)

	if err := ValidateLength("username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits, spaces and underscores")
	}
	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("username must not start with a digit")
	}
	return nil
}
