package logging

import "regexp"

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches API key query parameters in provider request URLs.
	apiKeyParamPattern = regexp.MustCompile(`(?i)(key|api[_-]?key|apikey)=[^&\s]+`)

	// Matches bearer tokens in header dumps.
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]+`)

	// Matches connection string credentials (user:pass@host format).
	connStringPattern = regexp.MustCompile(`://[^:/]+:[^@]+@[^/\s]+`)
)

// SanitizeURL removes API keys from a provider request URL so it can be
// logged safely.
func SanitizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	return apiKeyParamPattern.ReplaceAllString(rawURL, "${1}="+RedactedText)
}

// SanitizeConnectionString removes credentials from a database URL before
// logging.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return connStringPattern.ReplaceAllString(connStr, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError redacts bearer tokens and API keys from an error message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := apiKeyParamPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	return bearerPattern.ReplaceAllString(msg, "Bearer "+RedactedText)
}
