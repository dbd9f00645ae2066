package session

import (
	"strings"
	"testing"
	"time"

	"github.com/saluslab/escriba/internal/record"
)

func TestBuildExportText_StructuredRecord(t *testing.T) {
	rec := &record.SessionRecord{
		ID:             "rec-1",
		Title:          "Consulta José",
		Status:         record.StatusStructured,
		TranscriptText: "paciente relata dor",
		StructuredNotes: &record.StructuredNotes{
			Anamnesis:            "dor de cabeça",
			PhysicalExam:         "sem alterações",
			DiagnosticHypothesis: "cefaleia",
			CarePlan:             "repouso",
		},
		CreatedAt: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}

	got := string(buildExportText(rec))

	wantOrder := []string{
		"Consulta José",
		"Data: 10/03/2026",
		"ANAMNESE:",
		"dor de cabeça",
		"EXAME FÍSICO:",
		"sem alterações",
		"HIPÓTESE DIAGNÓSTICA:",
		"cefaleia",
		"CONDUTA:",
		"repouso",
		"--- TRANSCRIÇÃO COMPLETA ---",
		"paciente relata dor",
	}
	idx := 0
	for _, want := range wantOrder {
		pos := strings.Index(got[idx:], want)
		if pos < 0 {
			t.Fatalf("missing or misordered section %q in:\n%s", want, got)
		}
		idx += pos + len(want)
	}
}

func TestBuildExportText_TranscribedOnlySkipsSections(t *testing.T) {
	rec := &record.SessionRecord{
		Title:          "Consulta",
		Status:         record.StatusTranscribed,
		TranscriptText: "texto",
		CreatedAt:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}

	got := string(buildExportText(rec))
	if strings.Contains(got, "ANAMNESE:") {
		t.Fatalf("expected no structured sections for transcribed record:\n%s", got)
	}
	if !strings.Contains(got, "texto") {
		t.Fatalf("expected transcript in export:\n%s", got)
	}
}

func TestBuildExportText_EmptySectionGetsPlaceholder(t *testing.T) {
	rec := &record.SessionRecord{
		Title:           "Consulta",
		Status:          record.StatusStructured,
		TranscriptText:  "texto",
		StructuredNotes: &record.StructuredNotes{Anamnesis: "dor"},
		CreatedAt:       time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}

	got := string(buildExportText(rec))
	if !strings.Contains(got, "CONDUTA:\nN/A") {
		t.Fatalf("expected placeholder for empty care plan:\n%s", got)
	}
}
