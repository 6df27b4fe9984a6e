package models

import "strings"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

const (
	// EmailDomain is appended to roll numbers to derive a login identifier.
	EmailDomain = "klh.edu.in"

	// DefaultPassword is assigned to student records created through the
	// registry. Credentials are stored and compared in plaintext; existing
	// user records hold plaintext passwords.
	DefaultPassword = "klh@1234"
)

// StudentProfile is embedded by value into alerts and complaints at creation
// time, so later registry edits never rewrite historical records.
type StudentProfile struct {
	Name       string `json:"name" binding:"required"`
	RollNumber string `json:"rollNumber" binding:"required"`
	Branch     string `json:"branch"`
	Year       string `json:"year"`
	Phone      string `json:"phone"`
}

// User is the record stored at users/{sanitizedEmail}. The key is not echoed
// inside the value. Admin records carry no profile.
type User struct {
	Role     UserRole        `json:"role"`
	Password string          `json:"password"`
	Profile  *StudentProfile `json:"profile,omitempty"`
}

// LoginResult is returned on a successful credential match.
type LoginResult struct {
	Role    UserRole        `json:"role"`
	Profile *StudentProfile `json:"profile,omitempty"`
}

// SanitizeEmail rewrites an email for use as a store path segment: the path
// syntax treats "." as a separator, so every "." becomes ",".
func SanitizeEmail(email string) string {
	return strings.ReplaceAll(email, ".", ",")
}

// DerivedEmail returns the sanitized login identifier for a roll number.
func DerivedEmail(rollNumber string) string {
	return SanitizeEmail(rollNumber + "@" + EmailDomain)
}
