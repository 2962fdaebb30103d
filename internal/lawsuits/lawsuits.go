// Package lawsuits implements the case-records domain for Themis.
// It provides the types returned by the legal-records provider, the HTTP
// client that retrieves them, and the filtering rules that select criminal
// proceedings where the subject appears as a defendant.
package lawsuits

import "strings"

// Subject is the provider's view of one individual: the resolved name and
// the lawsuits associated with the queried CPF. Immutable once fetched;
// owned by a single worker for the duration of one classification.
type Subject struct {
	Name     string
	Lawsuits []Lawsuit
}

// Lawsuit represents one legal proceeding returned by the provider.
type Lawsuit struct {
	CaseNumber       string     `json:"CaseNumber"`
	Number           string     `json:"Number"`
	CourtType        string     `json:"CourtType"`
	CourtName        string     `json:"CourtName"`
	CourtDistrict    string     `json:"CourtDistrict"`
	Status           string     `json:"Status"`
	CloseDate        string     `json:"CloseDate"`
	LastMovementDate string     `json:"LastMovementDate"`
	Decision         string     `json:"Decision"`
	Content          string     `json:"Content"`
	Description      string     `json:"Description"`
	Summary          string     `json:"Summary"`
	Parties          []Party    `json:"Parties"`
	Decisions        []Decision `json:"Decisions"`
}

// Party is one participant in a lawsuit.
type Party struct {
	Type    string       `json:"Type"`
	Name    string       `json:"Name"`
	Details PartyDetails `json:"PartyDetails"`
}

// PartyDetails carries provider-specific party metadata.
type PartyDetails struct {
	SpecificType string `json:"SpecificType"`
}

// Decision is one recorded judicial decision within a lawsuit.
type Decision struct {
	DecisionContent string `json:"DecisionContent"`
	DecisionDate    string `json:"DecisionDate"`
}

// Ref returns the lawsuit's case identifier, preferring CaseNumber over the
// legacy Number field.
func (l *Lawsuit) Ref() string {
	if l.CaseNumber != "" {
		return l.CaseNumber
	}
	return l.Number
}

// DecisionDate returns the best available decision date for the lawsuit:
// CloseDate when present, otherwise the last movement date.
func (l *Lawsuit) DecisionDate() string {
	if l.CloseDate != "" {
		return l.CloseDate
	}
	return l.LastMovementDate
}

// DecisionTexts gathers every field of the lawsuit that may carry decision
// language: the top-level Decision, Content, Description, and Summary fields
// followed by each entry of the Decisions list. Empty fields are skipped.
// Order is stable so classification over the same lawsuit is deterministic.
func (l *Lawsuit) DecisionTexts() []string {
	texts := make([]string, 0, 4+len(l.Decisions))
	for _, field := range []string{l.Decision, l.Content, l.Description, l.Summary} {
		if strings.TrimSpace(field) != "" {
			texts = append(texts, field)
		}
	}
	for _, d := range l.Decisions {
		if strings.TrimSpace(d.DecisionContent) != "" {
			texts = append(texts, d.DecisionContent)
		}
	}
	return texts
}

// CriminalDefendantSuits returns the subject's lawsuits that are criminal
// proceedings in which the subject appears as a defendant. The provider query
// already filters by polarity and court type, but the result is re-checked
// here so upstream filter changes cannot silently widen the count.
func (s *Subject) CriminalDefendantSuits() []Lawsuit {
	var criminal []Lawsuit
	for _, suit := range s.Lawsuits {
		if suit.CourtType != "CRIMINAL" {
			continue
		}
		if s.isDefendant(&suit) {
			criminal = append(criminal, suit)
		}
	}
	return criminal
}

// isDefendant reports whether the subject is listed among the lawsuit's
// parties with a defendant role. The party name must contain the subject's
// resolved name to avoid counting homonymous co-defendants.
func (s *Subject) isDefendant(suit *Lawsuit) bool {
	subjectName := strings.ToUpper(strings.TrimSpace(s.Name))
	if subjectName == "" {
		return false
	}

	for _, party := range suit.Parties {
		role := strings.ToUpper(party.Type)
		specific := strings.ToUpper(party.Details.SpecificType)
		if role != "DEFENDANT" && role != "RÉU" && specific != "RÉU" {
			continue
		}

		partyName := strings.ToUpper(strings.TrimSpace(party.Name))
		if strings.Contains(partyName, subjectName) {
			return true
		}
	}

	return false
}
