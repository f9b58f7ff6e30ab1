package mutation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/feral-file/ff-social/internal/domain"
)

// ValidateContent trims a post or comment body and checks its length
func ValidateContent(content string) (string, error) {
	body := strings.TrimSpace(content)
	if body == "" {
		return "", domain.NewValidationError("content", "must not be empty")
	}
	if n := utf8.RuneCountInString(body); n > domain.ContentMaxChars {
		return "", domain.NewValidationError("content", fmt.Sprintf("%d characters exceeds the limit of %d", n, domain.ContentMaxChars))
	}
	return body, nil
}

// ValidateUsername trims a username and checks it is 3 to 24 characters long
func ValidateUsername(username string) (string, error) {
	s := strings.TrimSpace(username)
	n := utf8.RuneCountInString(s)
	if n < domain.UsernameMinChars || n > domain.UsernameMaxChars {
		return "", domain.NewValidationError("username", fmt.Sprintf("must be %d to %d characters", domain.UsernameMinChars, domain.UsernameMaxChars))
	}
	return s, nil
}

// ValidateDescription trims a profile description and checks it is 1 to 250 characters long
func ValidateDescription(description string) (string, error) {
	s := strings.TrimSpace(description)
	n := utf8.RuneCountInString(s)
	if n == 0 || n > domain.DescriptionMaxChars {
		return "", domain.NewValidationError("description", fmt.Sprintf("must be 1 to %d characters", domain.DescriptionMaxChars))
	}
	return s, nil
}

// ValidateAvatarURL accepts an empty URL or one of at most 128 characters
func ValidateAvatarURL(url string) (string, error) {
	s := strings.TrimSpace(url)
	if len(s) > domain.AvatarURLMaxChars {
		return "", domain.NewValidationError("avatar_url", fmt.Sprintf("longer than %d characters", domain.AvatarURLMaxChars))
	}
	return s, nil
}

// RequireID checks that an identifier is present and identifier-shaped
func RequireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(field, "is required")
	}
	if !domain.IsIdentifierShaped(strings.TrimSpace(id)) {
		return domain.NewValidationError(field, fmt.Sprintf("%q is not an identifier", id))
	}
	return nil
}
