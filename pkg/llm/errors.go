package llm

import "strings"

// ErrorKind classifies an upstream provider failure from its message text.
// Providers speak plain HTTP, so this is the only signal we get.
type ErrorKind string

const (
	ErrorKindQuota        ErrorKind = "quota"
	ErrorKindConnectivity ErrorKind = "connectivity"
	ErrorKindUnknown      ErrorKind = "unknown"
)

var quotaPatterns = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"resource_exhausted",
	"too many requests",
	"status 429",
	"usage limit",
}

var connectivityPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"status 502",
	"status 503",
	"status 504",
	"unexpected eof",
	"broken pipe",
}

// Classify pattern-matches the failure text of an upstream call.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, p := range quotaPatterns {
		if strings.Contains(msg, p) {
			return ErrorKindQuota
		}
	}
	for _, p := range connectivityPatterns {
		if strings.Contains(msg, p) {
			return ErrorKindConnectivity
		}
	}
	return ErrorKindUnknown
}

// UserMessage translates an upstream failure into one of the two
// user-facing messages. Unknown failures read as connectivity.
func UserMessage(err error) string {
	switch Classify(err) {
	case ErrorKindQuota:
		return "The AI service has hit its usage limit. Please wait a moment and try again."
	default:
		return "The AI service could not be reached. Please check the connection and try again."
	}
}
