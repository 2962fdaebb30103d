package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/completion"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/formatting"
)

// judgmentResponse mirrors the JSON contract the prompt demands from the
// completion service. FoiAbsolvido is a pointer so null survives as a
// recognized indeterminate state rather than collapsing to false.
type judgmentResponse struct {
	FoiAbsolvido  *bool           `json:"foi_absolvido"`
	Confianca     json.RawMessage `json:"confianca_analise"`
	Justificativa string          `json:"justificativa"`
	DetalhesIA    string          `json:"detalhes_ia"`
}

type semanticClassifier struct {
	completions completion.System
	logger      *slog.Logger
}

// NewSemantic creates the language-model classification strategy. Acquittal
// counts and case details still come from the deterministic indicator scan;
// the model contributes the verdict, confidence, and rationale.
func NewSemantic(completions completion.System, logger *slog.Logger) Classifier {
	return &semanticClassifier{
		completions: completions,
		logger:      logger.With("system", "classify", "variant", VariantSemantic),
	}
}

func (s *semanticClassifier) Variant() Variant {
	return VariantSemantic
}

func (s *semanticClassifier) Classify(ctx context.Context, cpf string, subject *lawsuits.Subject) (*Verdict, error) {
	suits := subject.CriminalDefendantSuits()
	details := scanAcquittals(suits)

	verdict := &Verdict{
		TotalCriminalCases: len(suits),
		TotalAcquittals:    len(details),
		Details:            details,
	}

	if len(suits) == 0 {
		verdict.Outcome = OutcomeNotAcquitted
		verdict.Justification = "Nenhum processo criminal como réu"
		return verdict, nil
	}

	if strings.TrimSpace(caseNarrative(suits)) == "" {
		verdict.Outcome = OutcomeUnknown
		verdict.Justification = "Nenhuma decisão disponível para análise"
		verdict.CaseSummary = "Sem dados suficientes"
		return verdict, nil
	}

	content, err := s.completions.Complete(ctx, completion.Request{
		System: systemInstructions,
		User:   ComposePrompt(cpf, subject, suits),
	})
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}

	judgment, err := parseJudgment(content)
	if err != nil {
		return nil, err
	}

	verdict.Outcome = judgment.outcome()
	verdict.Confidence = &judgment.confidence
	verdict.Justification = judgment.Justificativa
	verdict.CaseSummary = judgment.DetalhesIA

	s.logger.DebugContext(
		ctx, "semantic verdict",
		"criminal_cases", verdict.TotalCriminalCases,
		"outcome", verdict.Outcome,
		"confidence", judgment.confidence,
	)

	return verdict, nil
}

// parsedJudgment is a validated judgmentResponse.
type parsedJudgment struct {
	judgmentResponse
	confidence int
}

func (j *parsedJudgment) outcome() Outcome {
	switch {
	case j.FoiAbsolvido == nil:
		return OutcomeUnknown
	case *j.FoiAbsolvido:
		return OutcomeAcquitted
	default:
		return OutcomeNotAcquitted
	}
}

// parseJudgment extracts and validates the model's judgment. Any malformation
// surfaces as ErrMalformedResponse so the retry controller treats the call as
// failed; out-of-range confidence is rejected, never clamped.
func parseJudgment(content string) (*parsedJudgment, error) {
	resp, err := formatting.Parse[judgmentResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	confidence, err := parseConfidence(resp.Confianca)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &parsedJudgment{judgmentResponse: resp, confidence: confidence}, nil
}

func parseConfidence(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("confianca_analise missing")
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("confianca_analise is not numeric: %s", raw)
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("confianca_analise %v outside [0, 100]", value)
	}

	return int(math.Round(value)), nil
}
