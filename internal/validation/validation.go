package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateWordText checks the display text of a vocabulary word
func ValidateWordText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ValidationError{Field: "text", Message: "word text is required"}
	}
	if utf8.RuneCountInString(text) > 100 {
		return ValidationError{Field: "text", Message: "word text must be at most 100 characters"}
	}
	return nil
}

// ValidateVoice checks a TTS voice identifier. An empty voice is valid
// and selects the server default.
func ValidateVoice(voice string) error {
	switch voice {
	case "", "alloy", "echo", "fable", "onyx", "nova", "shimmer":
		return nil
	}
	return ValidationError{Field: "voice", Message: "unknown voice"}
}
