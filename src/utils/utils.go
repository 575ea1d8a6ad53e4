package utils

import (
	"net/url"
	"strings"
)

// -----------------------------------------------------------------------------

// MaskAPIKey hides credential-looking query parameters of an endpoint URL so
// it can be logged safely. The endpoint is returned unchanged when it does
// not parse as a URL.
func MaskAPIKey(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}

	query := parsed.Query()
	masked := false
	for key := range query {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "key") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			query.Set(key, "****")
			masked = true
		}
	}

	if !masked {
		return endpoint
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}
