package domain

import (
	"regexp"
	"strings"
)

type UsernameValidationCode string

const (
	UsernameRequired UsernameValidationCode = "REQUIRED"
	UsernameFormat   UsernameValidationCode = "FORMAT"
	UsernameReserved UsernameValidationCode = "RESERVED"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

var reservedUsernames = map[string]bool{
	"admin":       true,
	"api":         true,
	"app":         true,
	"auth":        true,
	"categories":  true,
	"collections": true,
	"explore":     true,
	"followers":   true,
	"following":   true,
	"help":        true,
	"home":        true,
	"loadouts":    true,
	"login":       true,
	"me":          true,
	"new":         true,
	"onboarding":  true,
	"profile":     true,
	"profiles":    true,
	"saved":       true,
	"search":      true,
	"settings":    true,
	"signup":      true,
	"support":     true,
	"user":        true,
	"users":       true,
}

type UsernameValidation struct {
	OK                 bool
	NormalizedUsername string
	Code               UsernameValidationCode
	Message            string
}

func NormalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func IsReservedUsername(username string) bool {
	return reservedUsernames[username]
}

func ValidateUsername(value string) UsernameValidation {
	normalized := NormalizeUsername(value)
	switch {
	case normalized == "":
		return UsernameValidation{
			NormalizedUsername: normalized,
			Code:               UsernameRequired,
			Message:            "Username is required.",
		}
	case !usernamePattern.MatchString(normalized):
		return UsernameValidation{
			NormalizedUsername: normalized,
			Code:               UsernameFormat,
			Message:            "Use 3-30 lowercase letters, numbers, or underscores only.",
		}
	case IsReservedUsername(normalized):
		return UsernameValidation{
			NormalizedUsername: normalized,
			Code:               UsernameReserved,
			Message:            "This username is reserved.",
		}
	}
	return UsernameValidation{OK: true, NormalizedUsername: normalized}
}
