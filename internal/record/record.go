package record

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusCaptured    Status = "captured"
	StatusTranscribed Status = "transcribed"
	StatusStructured  Status = "structured"
)

// StructuredNotes holds the four clinical sections produced by the
// structuring service. Wire names follow the remote API.
type StructuredNotes struct {
	Anamnesis            string `json:"anamnese"`
	PhysicalExam         string `json:"exame_fisico"`
	DiagnosticHypothesis string `json:"hipotese_diagnostica"`
	CarePlan             string `json:"conduta"`
}

// SessionRecord is one consultation recording as known to the remote
// service. The ID is server-assigned; it does not exist before the
// transcribe phase succeeds. StructuredNotes is non-nil only when Status
// is structured.
type SessionRecord struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Status          Status           `json:"status"`
	TranscriptText  string           `json:"transcript_text"`
	StructuredNotes *StructuredNotes `json:"structured_notes"`
	CreatedAt       time.Time        `json:"created_at"`
}

// DefaultTitle is used when the user leaves the title empty.
func DefaultTitle(now time.Time) string {
	return fmt.Sprintf("Consulta %s", now.Format("02/01/2006"))
}
