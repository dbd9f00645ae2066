package archive

import (
	"context"

	"github.com/saluslab/escriba/internal/record"
)

// Archive is the local mirror of remote session records. It exists so the
// dashboard listing keeps working without refetching every record; the
// remote service stays the source of truth and the mirror is updated only
// after a remote mutation succeeded.
type Archive interface {
	SaveRecord(ctx context.Context, rec *record.SessionRecord) error
	SetStructuredNotes(ctx context.Context, recordID string, notes *record.StructuredNotes) error
	ListRecords(ctx context.Context) ([]record.SessionRecord, error)
	GetRecord(ctx context.Context, recordID string) (*record.SessionRecord, error)
	DeleteRecord(ctx context.Context, recordID string) error
}
