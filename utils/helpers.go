package utils

import (
	"strings"
	"time"

	"routeerp_go/models"

	"golang.org/x/crypto/bcrypt"
)

// DateLayout is the wire format of calendar dates (excuse and work-log days).
const DateLayout = "2006-01-02"

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsValidRole checks if a role is valid for the user directory
func IsValidRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleInstructor, models.RoleMentor, models.RoleStudent:
		return true
	}
	return false
}

// IsReviewStatus checks if a status is a valid review decision
func IsReviewStatus(status string) bool {
	return status == models.StatusApproved || status == models.StatusRejected
}

// ParseDate parses a YYYY-MM-DD day in the local time zone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.Local)
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// NormalizeEmail lowercases and trims an email address for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(SanitizeString(email))
}
