package archive

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saluslab/escriba/internal/archive"
	"github.com/saluslab/escriba/internal/record"
)

type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(pool *pgxpool.Pool) archive.Archive {
	return &PostgresArchive{pool: pool}
}

func (a *PostgresArchive) SaveRecord(ctx context.Context, rec *record.SessionRecord) error {
	notes := rec.StructuredNotes
	if notes == nil {
		notes = &record.StructuredNotes{}
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO consultations (id, title, status, transcript_text, anamnese, exame_fisico, hipotese_diagnostica, conduta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   status = EXCLUDED.status,
		   transcript_text = EXCLUDED.transcript_text,
		   anamnese = EXCLUDED.anamnese,
		   exame_fisico = EXCLUDED.exame_fisico,
		   hipotese_diagnostica = EXCLUDED.hipotese_diagnostica,
		   conduta = EXCLUDED.conduta,
		   synced_at = NOW()`,
		rec.ID, rec.Title, rec.Status, rec.TranscriptText,
		notes.Anamnesis, notes.PhysicalExam, notes.DiagnosticHypothesis, notes.CarePlan,
		rec.CreatedAt)
	return err
}

func (a *PostgresArchive) SetStructuredNotes(ctx context.Context, recordID string, notes *record.StructuredNotes) error {
	_, err := a.pool.Exec(ctx,
		`UPDATE consultations
		 SET status = $2, anamnese = $3, exame_fisico = $4, hipotese_diagnostica = $5, conduta = $6, synced_at = NOW()
		 WHERE id = $1`,
		recordID, record.StatusStructured,
		notes.Anamnesis, notes.PhysicalExam, notes.DiagnosticHypothesis, notes.CarePlan)
	return err
}

func (a *PostgresArchive) ListRecords(ctx context.Context) ([]record.SessionRecord, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT id, title, status, transcript_text, anamnese, exame_fisico, hipotese_diagnostica, conduta, created_at
		 FROM consultations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []record.SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func (a *PostgresArchive) GetRecord(ctx context.Context, recordID string) (*record.SessionRecord, error) {
	row := a.pool.QueryRow(ctx,
		`SELECT id, title, status, transcript_text, anamnese, exame_fisico, hipotese_diagnostica, conduta, created_at
		 FROM consultations WHERE id = $1`,
		recordID)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (a *PostgresArchive) DeleteRecord(ctx context.Context, recordID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM consultations WHERE id = $1`, recordID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*record.SessionRecord, error) {
	var rec record.SessionRecord
	var notes record.StructuredNotes
	err := row.Scan(&rec.ID, &rec.Title, &rec.Status, &rec.TranscriptText,
		&notes.Anamnesis, &notes.PhysicalExam, &notes.DiagnosticHypothesis, &notes.CarePlan,
		&rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if rec.Status == record.StatusStructured {
		rec.StructuredNotes = &notes
	}
	return &rec, nil
}
