package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/formatting"
)

// acquittalIndicators are the lowercase stems that mark an acquittal in
// Brazilian decision text. Stems rather than full words so inflections match
// (absolvo, absolvido, absolvição all hit "absolv").
var acquittalIndicators = []string{
	"absolv",
	"improcedent",
	"arquiv",
	"extinç",
	"não procede",
	"nao procede",
	"não há elementos",
	"nao ha elementos",
	"ausência de provas",
	"ausencia de provas",
	"insuficiência de provas",
	"insuficiencia de provas",
}

// negatingIndicators suppress an acquittal match when they occur near it:
// "absolvição afastada, mantida a condenação" must not count as an acquittal.
var negatingIndicators = []string{
	"condena",
	"culpado",
	"julgo procedente",
}

// negationWindow is the maximum distance, in bytes of lowercase text, at
// which a negating indicator suppresses an acquittal indicator.
const negationWindow = 100

// excerptLimit caps the decision excerpt carried into acquittal details.
const excerptLimit = 200

type patternClassifier struct {
	logger *slog.Logger
}

// NewPattern creates the keyword/pattern classification strategy. It is
// deterministic: identical case records always produce identical verdicts.
func NewPattern(logger *slog.Logger) Classifier {
	return &patternClassifier{
		logger: logger.With("system", "classify", "variant", VariantPattern),
	}
}

func (p *patternClassifier) Variant() Variant {
	return VariantPattern
}

func (p *patternClassifier) Classify(ctx context.Context, cpf string, subject *lawsuits.Subject) (*Verdict, error) {
	suits := subject.CriminalDefendantSuits()
	details := scanAcquittals(suits)

	verdict := &Verdict{
		Outcome:            OutcomeNotAcquitted,
		TotalCriminalCases: len(suits),
		TotalAcquittals:    len(details),
		Details:            details,
	}
	if verdict.TotalAcquittals > 0 {
		verdict.Outcome = OutcomeAcquitted
	}

	p.logger.DebugContext(
		ctx, "pattern verdict",
		"criminal_cases", verdict.TotalCriminalCases,
		"acquittals", verdict.TotalAcquittals,
	)

	return verdict, nil
}

// scanAcquittals applies the indicator scan to every decision text of every
// suit. A suit contributes at most one acquittal: the first decision field
// containing an unsuppressed indicator.
func scanAcquittals(suits []lawsuits.Lawsuit) []Acquittal {
	var details []Acquittal

	for i := range suits {
		suit := &suits[i]
		for _, text := range suit.DecisionTexts() {
			if !matchesAcquittal(text) {
				continue
			}

			details = append(details, Acquittal{
				Case:     suit.Ref(),
				Category: acquittalCategory(text),
				Date:     suit.DecisionDate(),
				Court:    suit.CourtName,
				District: suit.CourtDistrict,
				Excerpt:  formatting.Truncate(text, excerptLimit),
			})
			break
		}
	}

	return details
}

// matchesAcquittal reports whether text contains an acquittal indicator with
// no negating indicator inside the proximity window. Every occurrence of
// every indicator is considered; a single suppressed occurrence does not
// disqualify the text.
func matchesAcquittal(text string) bool {
	lower := strings.ToLower(text)

	for _, indicator := range acquittalIndicators {
		from := 0
		for {
			found := strings.Index(lower[from:], indicator)
			if found < 0 {
				break
			}
			pos := from + found
			if !negatedNear(lower, pos) {
				return true
			}
			from = pos + len(indicator)
		}
	}

	return false
}

// negatedNear reports whether any negating indicator occurs within
// negationWindow bytes of the acquittal indicator at idx.
func negatedNear(lower string, idx int) bool {
	for _, negation := range negatingIndicators {
		from := 0
		for {
			found := strings.Index(lower[from:], negation)
			if found < 0 {
				break
			}
			pos := from + found
			if distance(pos, idx) <= negationWindow {
				return true
			}
			from = pos + len(negation)
		}
	}
	return false
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// acquittalCategory tags the decision category for a matched text, using the
// same precedence the analysts apply when reading decisions by hand.
func acquittalCategory(text string) string {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "absolv"):
		return "Absolvição"
	case strings.Contains(lower, "improcedent"),
		strings.Contains(lower, "não procede"),
		strings.Contains(lower, "nao procede"):
		return "Improcedência"
	case strings.Contains(lower, "arquiv"):
		return "Arquivamento"
	case strings.Contains(lower, "extinç"):
		return "Extinção"
	default:
		return "Outra forma de absolvição"
	}
}
