// Package report turns the stream of batch results into the CSV deliverable.
// Workers finish out of order, so the writer buffers records and flushes them
// back in input order, keeping running totals for the end-of-run summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/batch"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

var baseColumns = []string{
	"cpf",
	"nome",
	"foi_absolvido",
	"total_processos_criminais",
	"total_absolvicoes",
	"detalhes_absolvicoes",
}

var semanticColumns = []string{
	"confianca_analise",
	"justificativa",
	"detalhes_ia",
}

// Writer emits one CSV row per batch result, restoring input order. Records
// arriving ahead of their turn are held until the gap before them closes;
// Flush drains whatever is still held, which matters when an aborted run
// leaves permanent gaps in the sequence.
type Writer struct {
	csv     *csv.Writer
	variant classify.Variant
	next    int
	pending map[int]batch.Result
	stats   Stats
}

func NewWriter(w io.Writer, variant classify.Variant) (*Writer, error) {
	out := &Writer{
		csv:     csv.NewWriter(w),
		variant: variant,
		pending: make(map[int]batch.Result),
	}

	if err := out.csv.Write(out.header()); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return out, nil
}

func (w *Writer) header() []string {
	columns := append([]string{}, baseColumns...)

	if w.variant == classify.VariantSemantic {
		columns = append(columns, semanticColumns...)
	}

	return append(columns, "status")
}

// Write buffers res and flushes every record whose predecessors have all
// arrived.
func (w *Writer) Write(res batch.Result) error {
	w.pending[res.Seq] = res

	for {
		next, ok := w.pending[w.next]
		if !ok {
			return nil
		}

		if err := w.emit(next); err != nil {
			return err
		}

		delete(w.pending, w.next)
		w.next++
	}
}

// Flush writes any records stranded behind sequence gaps, in ascending
// order, then flushes the underlying CSV writer.
func (w *Writer) Flush() error {
	for len(w.pending) > 0 {
		seq := -1
		for s := range w.pending {
			if seq < 0 || s < seq {
				seq = s
			}
		}

		if err := w.emit(w.pending[seq]); err != nil {
			return err
		}

		delete(w.pending, seq)
		w.next = seq + 1
	}

	w.csv.Flush()
	return w.csv.Error()
}

func (w *Writer) emit(res batch.Result) error {
	w.stats.observe(res)

	row := []string{
		res.CPF,
		res.Name,
		renderOutcome(res.Verdict),
		renderInt(res.Verdict, func(v *classify.Verdict) int { return v.TotalCriminalCases }),
		renderInt(res.Verdict, func(v *classify.Verdict) int { return v.TotalAcquittals }),
		renderDetails(res.Verdict),
	}

	if w.variant == classify.VariantSemantic {
		row = append(row,
			renderConfidence(res.Verdict),
			renderField(res.Verdict, func(v *classify.Verdict) string { return v.Justification }),
			renderField(res.Verdict, func(v *classify.Verdict) string { return v.CaseSummary }),
		)
	}

	row = append(row, renderStatus(res))

	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("writing row for %s: %w", res.CPF, err)
	}

	return nil
}

func (w *Writer) Stats() Stats {
	return w.stats
}

func renderOutcome(v *classify.Verdict) string {
	if v == nil {
		return ""
	}

	switch v.Outcome {
	case classify.OutcomeAcquitted:
		return "true"
	case classify.OutcomeNotAcquitted:
		return "false"
	default:
		return ""
	}
}

func renderInt(v *classify.Verdict, field func(*classify.Verdict) int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(field(v))
}

func renderField(v *classify.Verdict, field func(*classify.Verdict) string) string {
	if v == nil {
		return ""
	}

	return field(v)
}

func renderDetails(v *classify.Verdict) string {
	if v == nil || len(v.Details) == 0 {
		return ""
	}

	encoded, err := json.Marshal(v.Details)
	if err != nil {
		return ""
	}

	return string(encoded)
}

func renderConfidence(v *classify.Verdict) string {
	if v == nil || v.Confidence == nil {
		return ""
	}

	return strconv.Itoa(*v.Confidence)
}

func renderStatus(res batch.Result) string {
	if res.Status == batch.StatusError && res.Reason != "" {
		return fmt.Sprintf("%s: %s", res.Status, res.Reason)
	}

	return string(res.Status)
}
