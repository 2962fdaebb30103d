package classify

import (
	"fmt"
	"strings"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
)

// systemInstructions frames the completion service as a legal analyst that
// must answer in valid JSON. Kept in Portuguese to match the decision texts.
const systemInstructions = `Você é um analista jurídico especializado em análise de absolvições. Responda sempre em JSON válido.`

const judgmentInstructions = `Você é um especialista jurídico. Analise as decisões judiciais abaixo e determine se a pessoa foi ABSOLVIDA em processos criminais.

INSTRUÇÃO ESPECÍFICA:
1. Determine se houve ABSOLVIÇÃO em algum processo criminal
2. Considere: absolvições, improcedências, arquivamentos, extinções
3. Ignore processos onde a pessoa não seja réu/investigado
4. Seja preciso: só retorne true se houver absolvição clara

RESPONDA APENAS EM JSON:
{
  "foi_absolvido": true/false/null,
  "confianca_analise": 0-100,
  "justificativa": "Explicação clara da análise",
  "detalhes_ia": "Resumo dos processos relevantes"
}`

// ComposePrompt builds the user prompt for one subject: identity data,
// the judgment instructions, and the consolidated decision narrative for
// every criminal suit.
func ComposePrompt(cpf string, subject *lawsuits.Subject, suits []lawsuits.Lawsuit) string {
	var sb strings.Builder

	sb.WriteString("DADOS DA PESSOA:\n")
	fmt.Fprintf(&sb, "Nome: %s\n", valueOr(subject.Name, "Não informado"))
	fmt.Fprintf(&sb, "CPF: %s\n\n", cpf)

	sb.WriteString("DECISÕES JUDICIAIS:\n")
	sb.WriteString(caseNarrative(suits))
	sb.WriteString("\n\n")
	sb.WriteString(judgmentInstructions)

	return sb.String()
}

// caseNarrative renders one labeled block per suit so the model can tie each
// decision back to its case number and court.
func caseNarrative(suits []lawsuits.Lawsuit) string {
	var sb strings.Builder

	for i := range suits {
		suit := &suits[i]

		var fields []string
		if suit.Content != "" {
			fields = append(fields, "Conteúdo: "+suit.Content)
		}
		if suit.Decision != "" {
			fields = append(fields, "Decisão: "+suit.Decision)
		}
		if suit.Description != "" {
			fields = append(fields, "Descrição: "+suit.Description)
		}
		for j, d := range suit.Decisions {
			if d.DecisionContent == "" {
				continue
			}
			fields = append(fields, fmt.Sprintf("Decisão %d (%s): %s", j+1, d.DecisionDate, d.DecisionContent))
		}

		if len(fields) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\nPROCESSO %s - %s:\n", suit.Ref(), suit.CourtName)
		sb.WriteString(strings.Join(fields, "\n"))
		sb.WriteString("\n---\n")
	}

	return sb.String()
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
