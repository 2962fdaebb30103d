// Package classify implements the acquittal classification domain for Themis.
// Two interchangeable strategies satisfy the Classifier contract: a
// deterministic pattern matcher over decision text and a semantic classifier
// backed by a language-model completion service.
package classify

import (
	"context"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
)

// Variant identifies a classification strategy. It selects defaults for the
// batch orchestrator and the column schema of the output report.
type Variant string

const (
	VariantPattern  Variant = "pattern"
	VariantSemantic Variant = "semantic"
)

// Outcome is the tri-state acquittal conclusion for one subject.
type Outcome string

const (
	OutcomeAcquitted    Outcome = "acquitted"
	OutcomeNotAcquitted Outcome = "not_acquitted"
	OutcomeUnknown      Outcome = "unknown"
)

// Acquittal references one case in which an acquittal indicator was found.
type Acquittal struct {
	Case     string `json:"processo"`
	Category string `json:"tipo_decisao"`
	Date     string `json:"data"`
	Court    string `json:"orgao"`
	District string `json:"comarca"`
	Excerpt  string `json:"trecho_decisao"`
}

// Verdict is the classification result for one subject. Confidence,
// Justification, and CaseSummary are populated by the semantic variant only.
// A Verdict is produced exactly once per ID and never mutated afterward.
type Verdict struct {
	Outcome            Outcome
	TotalCriminalCases int
	TotalAcquittals    int
	Details            []Acquittal
	Confidence         *int
	Justification      string
	CaseSummary        string
}

// Classifier is the strategy contract shared by both variants: criminal case
// records in, acquittal verdict out. Implementations never mutate the
// subject's records.
type Classifier interface {
	Variant() Variant
	Classify(ctx context.Context, cpf string, subject *lawsuits.Subject) (*Verdict, error)
}
