package domain

import (
	"net/url"
	"strings"
)

// Profile is the identity row shared by every signed-in user. Handle and
// DisplayName stay nil until onboarding completes.
type Profile struct {
	ID          string      `json:"id"`
	Handle      *string     `json:"handle"`
	DisplayName *string     `json:"displayName"`
	AvatarURL   *string     `json:"avatarUrl"`
	Bio         *string     `json:"bio"`
	Interests   Set[string] `json:"interests"`
}

func IsProfileComplete(profile *Profile) bool {
	if profile == nil {
		return false
	}
	return profile.Handle != nil && *profile.Handle != "" &&
		profile.DisplayName != nil && *profile.DisplayName != ""
}

type ProfileStats struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

type PublicProfile struct {
	ID          string      `json:"id"`
	Handle      string      `json:"handle"`
	DisplayName string      `json:"displayName"`
	AvatarURL   *string     `json:"avatarUrl"`
	Bio         string      `json:"bio"`
	Interests   Set[string] `json:"interests"`
}

type ProfilePage struct {
	Profile           PublicProfile        `json:"profile"`
	Stats             ProfileStats         `json:"stats"`
	Loadouts          []CollectionListItem `json:"loadouts"`
	ViewerIsFollowing bool                 `json:"viewerIsFollowing"`
	IsOwnProfile      bool                 `json:"isOwnProfile"`
}

type ProfileSetup struct {
	UserID      string
	Username    string
	DisplayName string
}

type ProfileUpdate struct {
	UserID      string
	DisplayName string
	Bio         string
	AvatarURL   string
	Interests   Set[string]
}

// AuthInfo is the caller identity carried by a verified bearer token.
type AuthInfo struct {
	UserID             string
	Email              string
	PendingHandle      string
	PendingDisplayName string
}

const (
	maxInterests   = 10
	onboardingPath = "/onboarding/profile"
)

// SanitizeInterests trims, lowercases and deduplicates interests, keeping at
// most the first ten.
func SanitizeInterests(values []string) Set[string] {
	interests := make([]string, 0, maxInterests)
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		interests = append(interests, normalized)
		if len(interests) == maxInterests {
			break
		}
	}
	return NewSet(interests...)
}

// SanitizeRedirectPath returns path and query of a same-origin absolute path,
// or "" when value could send the user elsewhere.
func SanitizeRedirectPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, `/\`) {
		return ""
	}
	parsed, err := ParseURL(trimmed)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return ""
	}
	target := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}

// OnboardingPath is where an incomplete profile is sent, remembering next so
// the user can resume afterwards.
func OnboardingPath(next string) string {
	safeNext := SanitizeRedirectPath(next)
	if safeNext == "" || strings.HasPrefix(safeNext, onboardingPath) {
		return onboardingPath
	}
	target, _ := ParseURL(onboardingPath)
	withNext := target.ModifyQuery(func(query *url.Values) {
		query.Set("next", safeNext)
	})
	return withNext.String()
}
