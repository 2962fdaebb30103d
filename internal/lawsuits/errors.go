package lawsuits

import "errors"

// Domain errors for provider lookups. ErrAuthRejected and ErrNoData are
// terminal; the remainder are retryable up to the configured budget.
var (
	ErrAuthRejected = errors.New("provider rejected credentials")
	ErrRateLimited  = errors.New("provider rate limit exceeded")
	ErrUnavailable  = errors.New("provider unavailable")
	ErrProvider     = errors.New("provider request failed")
	ErrNoData       = errors.New("no records found for subject")
)

// Retryable reports whether a lookup failure is worth retrying. Credential
// rejections and empty result sets never recover within a run.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthRejected) || errors.Is(err, ErrNoData) {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrProvider)
}
