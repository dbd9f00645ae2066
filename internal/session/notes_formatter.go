package session

import (
	"fmt"
	"strings"

	"github.com/saluslab/escriba/internal/record"
)

const exportDateLayout = "02/01/2006"

// buildExportText renders a record as the downloadable consultation note:
// title, date, the four structured sections when present, then the full
// transcript.
func buildExportText(rec *record.SessionRecord) []byte {
	lines := []string{
		rec.Title,
		fmt.Sprintf("Data: %s", rec.CreatedAt.Format(exportDateLayout)),
		"",
	}
	if rec.StructuredNotes != nil {
		n := rec.StructuredNotes
		lines = append(lines,
			sectionAnamnesis, orPlaceholder(n.Anamnesis), "",
			sectionPhysicalExam, orPlaceholder(n.PhysicalExam), "",
			sectionDiagnosticHypothesis, orPlaceholder(n.DiagnosticHypothesis), "",
			sectionCarePlan, orPlaceholder(n.CarePlan), "",
		)
	}
	lines = append(lines, "", exportTranscriptHeader, rec.TranscriptText)
	return []byte(strings.Join(lines, "\n"))
}

func orPlaceholder(section string) string {
	if strings.TrimSpace(section) == "" {
		return sectionEmptyPlaceholder
	}
	return section
}
