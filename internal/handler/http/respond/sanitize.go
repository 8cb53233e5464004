package respond

import (
	"regexp"
)

var (
	// Telegram bot token: "<bot id>:<35 char secret>", optionally after "/bot".
	botTokenPattern = regexp.MustCompile(`\b(bot)?\d{6,}:[A-Za-z0-9_-]{30,}`)

	// Discord webhook: the id and token path segments are the credential.
	webhookPattern = regexp.MustCompile(`(/api/webhooks/)[^\s/"']+/[^\s/"'?]+`)

	// userinfo in any URL
	userinfoPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns err's message with provider credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks bot tokens, webhook paths and URL passwords in s.
func SanitizeString(s string) string {
	s = webhookPattern.ReplaceAllString(s, "${1}****")
	s = botTokenPattern.ReplaceAllString(s, "${1}****")
	s = userinfoPattern.ReplaceAllString(s, "://$1:****@")
	return s
}
