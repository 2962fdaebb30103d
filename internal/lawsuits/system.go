package lawsuits

import "context"

// System defines the public contract for case-record lookups. The input CPF
// must already be normalized to 11 digits.
type System interface {
	Fetch(ctx context.Context, cpf string) (*Subject, error)
}
