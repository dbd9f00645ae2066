package session

const (
	sectionAnamnesis            = "ANAMNESE:"
	sectionPhysicalExam         = "EXAME FÍSICO:"
	sectionDiagnosticHypothesis = "HIPÓTESE DIAGNÓSTICA:"
	sectionCarePlan             = "CONDUTA:"
	sectionEmptyPlaceholder     = "N/A"

	exportTranscriptHeader = "--- TRANSCRIÇÃO COMPLETA ---"
)
