package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/batch"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

func intPtr(n int) *int {
	return &n
}

func successResult(seq int, cpf string) batch.Result {
	return batch.Result{
		Seq:    seq,
		CPF:    cpf,
		Name:   "FULANO DE TAL",
		Status: batch.StatusSuccess,
		Verdict: &classify.Verdict{
			Outcome:            classify.OutcomeAcquitted,
			TotalCriminalCases: 2,
			TotalAcquittals:    1,
			Details: []classify.Acquittal{
				{Case: "0001234-56.2020.8.26.0050", Category: "Absolvição"},
			},
		},
	}
}

func readRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()

	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}

	return rows
}

func TestWriterPatternSchema(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantPattern)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.Write(successResult(0, "52998224725")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rows := readRows(t, &buf)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}

	wantHeader := "cpf,nome,foi_absolvido,total_processos_criminais,total_absolvicoes,detalhes_absolvicoes,status"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}

	row := rows[1]
	if row[0] != "52998224725" || row[2] != "true" || row[3] != "2" || row[4] != "1" {
		t.Errorf("unexpected row: %v", row)
	}
	if !strings.Contains(row[5], "0001234-56.2020.8.26.0050") {
		t.Errorf("details column missing case number: %q", row[5])
	}
	if row[6] != "success" {
		t.Errorf("status = %q, want success", row[6])
	}
}

func TestWriterSemanticSchema(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantSemantic)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	res := successResult(0, "52998224725")
	res.Verdict.Confidence = intPtr(92)
	res.Verdict.Justification = "Sentença absolutória transitada em julgado."
	res.Verdict.CaseSummary = "1 processo criminal analisado."

	if err := w.Write(res); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rows := readRows(t, &buf)

	wantHeader := []string{
		"cpf", "nome", "foi_absolvido",
		"total_processos_criminais", "total_absolvicoes", "detalhes_absolvicoes",
		"confianca_analise", "justificativa", "detalhes_ia",
		"status",
	}
	if len(rows[0]) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	for i := range wantHeader {
		if rows[0][i] != wantHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], wantHeader[i])
		}
	}

	row := rows[1]
	if row[6] != "92" {
		t.Errorf("confidence = %q, want 92", row[6])
	}
	if row[7] == "" || row[8] == "" {
		t.Errorf("justification/summary empty: %v", row)
	}
}

func TestWriterRestoresInputOrder(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantPattern)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	// Adversarial arrival order: last first, first last.
	for _, seq := range []int{3, 1, 0, 2} {
		res := successResult(seq, "5299822472"+string(rune('0'+seq)))
		if err := w.Write(res); err != nil {
			t.Fatalf("Write(seq=%d) error = %v", seq, err)
		}
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rows := readRows(t, &buf)
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header + 4", len(rows))
	}

	for i, row := range rows[1:] {
		want := "5299822472" + string(rune('0'+i))
		if row[0] != want {
			t.Errorf("row %d cpf = %q, want %q", i, row[0], want)
		}
	}
}

func TestWriterFlushDrainsGaps(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantPattern)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	// Seq 1 never arrives, as happens when a run aborts mid-flight.
	if err := w.Write(successResult(0, "52998224720")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(successResult(2, "52998224722")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rows := readRows(t, &buf)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][0] != "52998224720" || rows[2][0] != "52998224722" {
		t.Errorf("rows out of order after gap flush: %v", rows[1:])
	}
}

func TestWriterErrorRow(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantPattern)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	res := batch.Result{
		Seq:    0,
		CPF:    "123",
		Status: batch.StatusError,
		Reason: "invalid cpf",
	}

	if err := w.Write(res); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rows := readRows(t, &buf)
	row := rows[1]

	if row[2] != "" || row[3] != "" || row[4] != "" {
		t.Errorf("verdict columns should be empty on error: %v", row)
	}
	if row[6] != "error: invalid cpf" {
		t.Errorf("status = %q, want error with reason", row[6])
	}
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewWriter(&buf, classify.VariantSemantic)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	acquitted := successResult(0, "52998224720")
	acquitted.Verdict.Confidence = intPtr(90)

	notAcquitted := successResult(1, "52998224721")
	notAcquitted.Verdict = &classify.Verdict{
		Outcome:    classify.OutcomeNotAcquitted,
		Confidence: intPtr(60),
	}

	noData := batch.Result{
		Seq:     2,
		CPF:     "52998224722",
		Status:  batch.StatusNoData,
		Verdict: &classify.Verdict{Outcome: classify.OutcomeUnknown},
	}

	failed := batch.Result{
		Seq:    3,
		CPF:    "52998224723",
		Status: batch.StatusError,
		Reason: "fetch failed",
	}

	for _, res := range []batch.Result{acquitted, notAcquitted, noData, failed} {
		if err := w.Write(res); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	stats := w.Stats()

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Acquitted != 1 || stats.NotAcquitted != 1 || stats.Unknown != 1 {
		t.Errorf("outcome counts = %d/%d/%d, want 1/1/1",
			stats.Acquitted, stats.NotAcquitted, stats.Unknown)
	}
	if stats.NoData != 1 || stats.Errors != 1 {
		t.Errorf("NoData = %d, Errors = %d, want 1/1", stats.NoData, stats.Errors)
	}
	if got := stats.AcquittedPercent(); got != 25 {
		t.Errorf("AcquittedPercent() = %v, want 25", got)
	}
	if got := stats.MeanConfidence(); math.Abs(got-75) > 1e-9 {
		t.Errorf("MeanConfidence() = %v, want 75", got)
	}
	if stats.HighConfidence != 1 {
		t.Errorf("HighConfidence = %d, want 1", stats.HighConfidence)
	}
}
