package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("owner identity required")
)

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthorized
	}
	return nil
}

// NormalizeURL trims raw and prepends https:// when it carries no scheme.
// The result is a validated absolute http or https URL.
func NormalizeURL(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	lower := strings.ToLower(normalized)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(normalized, "://") {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, title.ErrUnsupportedScheme)
		}
		normalized = "https://" + normalized
	}

	if _, err := title.Validate(normalized); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return normalized, nil
}
