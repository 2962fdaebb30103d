package classify

import "errors"

// ErrMalformedResponse is returned when the completion service produces
// output that cannot be parsed into a valid judgment: non-JSON content, an
// unrecognized acquittal value, or a confidence outside [0, 100]. It is
// retryable; malformed output is never silently defaulted or clamped.
var ErrMalformedResponse = errors.New("malformed classifier response")
