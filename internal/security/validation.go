package security

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/caiofrota/migoculto/internal/models"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// ValidationService provides centralized input validation functions.
// All validation methods return descriptive errors that are safe to show to users.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a new validation service with the given limits.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{config: config}
}

// ValidateEmail validates email address format according to RFC 5322.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > v.config.MaxEmailLength {
		return fmt.Errorf("email must be %d characters or less", v.config.MaxEmailLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates an account password against the length limits.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < v.config.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", v.config.MinPasswordLength)
	}
	if len(password) > v.config.MaxPasswordLength {
		return fmt.Errorf("password must be %d characters or less", v.config.MaxPasswordLength)
	}
	return nil
}

// ValidatePersonName validates a first or last name.
func (v *ValidationService) ValidatePersonName(fieldName, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if utf8.RuneCountInString(name) > v.config.MaxNameLength {
		return fmt.Errorf("%s must be %d characters or less", fieldName, v.config.MaxNameLength)
	}
	return nil
}

// ValidateRegisterForm validates all fields of a registration request.
func (v *ValidationService) ValidateRegisterForm(form models.RegisterForm) error {
	if err := v.ValidateEmail(form.Email); err != nil {
		return err
	}
	if err := v.ValidatePassword(form.Password); err != nil {
		return err
	}
	if err := v.ValidatePersonName("first name", form.FirstName); err != nil {
		return err
	}
	return v.ValidatePersonName("last name", form.LastName)
}

// ValidateGroupName validates group name length and content.
func (v *ValidationService) ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("group name is required")
	}
	if utf8.RuneCountInString(name) > v.config.MaxGroupNameLength {
		return fmt.Errorf("group name must be %d characters or less", v.config.MaxGroupNameLength)
	}
	return nil
}

// ValidateCreateGroupForm validates all fields of a group creation request.
// The group password is optional; when present only the upper bound applies.
func (v *ValidationService) ValidateCreateGroupForm(form models.CreateGroupForm) error {
	if err := v.ValidateGroupName(form.Name); err != nil {
		return err
	}
	if utf8.RuneCountInString(form.Description) > v.config.MaxGroupDescription {
		return fmt.Errorf("group description must be %d characters or less", v.config.MaxGroupDescription)
	}
	if len(form.Password) > v.config.MaxPasswordLength {
		return fmt.Errorf("group password must be %d characters or less", v.config.MaxPasswordLength)
	}
	return nil
}

// ValidateMessageContent validates a message body.
func (v *ValidationService) ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content is required")
	}
	if utf8.RuneCountInString(content) > v.config.MaxMessageLength {
		return fmt.Errorf("message must be %d characters or less", v.config.MaxMessageLength)
	}
	return nil
}

// ValidateWishlistItemForm validates a wishlist item. The URL, when present,
// must be absolute http or https.
func (v *ValidationService) ValidateWishlistItemForm(form models.WishlistItemForm) error {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return fmt.Errorf("item name is required")
	}
	if utf8.RuneCountInString(name) > v.config.MaxWishNameLength {
		return fmt.Errorf("item name must be %d characters or less", v.config.MaxWishNameLength)
	}
	if utf8.RuneCountInString(form.Description) > v.config.MaxWishDetailLength {
		return fmt.Errorf("item description must be %d characters or less", v.config.MaxWishDetailLength)
	}
	if form.URL != "" {
		if len(form.URL) > v.config.MaxURLLength {
			return fmt.Errorf("item URL must be %d characters or less", v.config.MaxURLLength)
		}
		u, err := url.Parse(form.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("item URL must be a valid http or https address")
		}
	}
	return nil
}

// SanitizeString removes control characters (except newline and tab) and
// trims surrounding whitespace.
func (v *ValidationService) SanitizeString(input string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(input, ""))
}
