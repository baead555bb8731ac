// Package security provides centralized input validation for all
// user-supplied fields before they reach the business layer.
package security

// SecurityConfig holds validation limits for user-supplied input.
type SecurityConfig struct {
	MaxEmailLength      int // Maximum characters in an email address
	MaxNameLength       int // Maximum characters in a first or last name
	MaxGroupNameLength  int // Maximum characters in a group name
	MaxPasswordLength   int // Maximum characters in any password
	MinPasswordLength   int // Minimum characters in an account password
	MaxMessageLength    int // Maximum characters in a message body
	MaxWishNameLength   int // Maximum characters in a wishlist item name
	MaxWishDetailLength int // Maximum characters in a wishlist description
	MaxURLLength        int // Maximum characters in a wishlist item URL
	MaxGroupDescription int // Maximum characters in a group description
}

// DefaultSecurityConfig returns validation limits with recommended defaults.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxEmailLength:      255,
		MaxNameLength:       80,
		MaxGroupNameLength:  100,
		MaxPasswordLength:   128,
		MinPasswordLength:   8,
		MaxMessageLength:    2000,
		MaxWishNameLength:   120,
		MaxWishDetailLength: 500,
		MaxURLLength:        500,
		MaxGroupDescription: 1000,
	}
}
