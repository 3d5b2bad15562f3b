package email

import (
	"regexp"
	"strings"

	"rfpflow/internal/apperr"
)

// MaxEmailSize caps inbound email payloads at 5MB.
const MaxEmailSize = 5 * 1024 * 1024

var (
	scriptTagRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeTagRe  = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsProtocolRe = regexp.MustCompile(`(?i)javascript:`)
)

// ValidateSize rejects inbound content over the size limit.
func ValidateSize(content string) error {
	if len(content) > MaxEmailSize {
		return apperr.TooLarge("email size %.2fMB exceeds limit of %dMB",
			float64(len(content))/1024/1024, MaxEmailSize/1024/1024)
	}
	return nil
}

// Sanitize strips script and iframe blocks and javascript: URLs from email
// content before it is stored or fed to the model.
func Sanitize(content string) string {
	content = scriptTagRe.ReplaceAllString(content, "")
	content = iframeTagRe.ReplaceAllString(content, "")
	content = jsProtocolRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
