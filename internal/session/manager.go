package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/archive"
	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/config"
	"github.com/saluslab/escriba/internal/pipeline"
	"github.com/saluslab/escriba/internal/record"
	"github.com/saluslab/escriba/internal/subscription"
)

// Manager ties the gate, the capture session and the upload pipeline
// together and mirrors successful remote mutations into the local
// archive. All operations are single-caller; the mutex only protects the
// cached gate decision.
type Manager struct {
	cfg      *config.Config
	api      api.Client
	archive  archive.Archive
	capture  *capture.Session
	pipeline *pipeline.Pipeline

	mu      sync.Mutex
	gate    subscription.Decision
	pending *capture.Artifact
}

func NewManager(cfg *config.Config, client api.Client, arc archive.Archive, mic capture.Microphone) *Manager {
	return &Manager{
		cfg:      cfg,
		api:      client,
		archive:  arc,
		capture:  capture.NewSession(mic),
		pipeline: pipeline.New(client),
	}
}

// RefreshGate polls the account service and re-derives the access
// decision for the current instant.
func (m *Manager) RefreshGate(ctx context.Context) (subscription.Decision, error) {
	account, err := m.api.GetAccount(ctx)
	if err != nil {
		return subscription.Decision{}, fmt.Errorf("fetch account: %w", err)
	}
	decision := subscription.Evaluate(account.Snapshot(), time.Now())
	m.mu.Lock()
	m.gate = decision
	m.mu.Unlock()
	slog.Info("subscription gate evaluated", "status", decision.Status, "days_remaining", decision.DaysRemaining, "can_create_new", decision.CanCreateNew)
	if decision.Banner != "" {
		slog.Warn("subscription notice", "banner", decision.Banner)
	}
	return decision, nil
}

func (m *Manager) Gate() subscription.Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gate
}

// StartRecording consults the gate before touching the microphone: a
// read-only account never acquires the device.
func (m *Manager) StartRecording(ctx context.Context) error {
	if !m.Gate().CanCreateNew {
		return &pipeline.Error{Kind: pipeline.KindNotPermitted, Detail: m.Gate().Banner}
	}
	return m.capture.Start(ctx)
}

func (m *Manager) StopRecording() int {
	m.capture.Stop()
	return m.capture.Elapsed()
}

// DiscardRecording drops the finished take, pending or not, so the user
// can re-record.
func (m *Manager) DiscardRecording() {
	m.capture.Reset()
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
}

func (m *Manager) CaptureState() capture.State {
	return m.capture.State()
}

func (m *Manager) Elapsed() int {
	return m.capture.Elapsed()
}

func (m *Manager) PipelineState() pipeline.State {
	return m.pipeline.State()
}

// Submit hands the finished take to the upload pipeline and mirrors the
// resulting record locally. The artifact ownership moves to the pipeline;
// the capture session returns to Idle on success.
func (m *Manager) Submit(ctx context.Context, title string) (*record.SessionRecord, error) {
	// Once taken from the capture session the artifact stays pending in
	// the manager, so a failed upload can be retried without re-recording.
	if art, ok := m.capture.Take(); ok {
		m.mu.Lock()
		m.pending = &art
		m.mu.Unlock()
	}
	m.mu.Lock()
	artifact := m.pending
	m.mu.Unlock()
	if artifact == nil {
		return nil, fmt.Errorf("no recorded audio to submit")
	}

	rec, err := m.pipeline.SubmitForTranscription(ctx, *artifact, title, m.Gate())
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	if saveErr := m.archive.SaveRecord(ctx, rec); saveErr != nil {
		slog.Error("failed to mirror record locally", "error", saveErr, "record_id", rec.ID)
	}
	m.capture.Reset()
	return rec, nil
}

// Structure requests the four clinical sections for a transcribed record
// and applies them to the local mirror. A failure leaves the transcript
// untouched.
func (m *Manager) Structure(ctx context.Context, recordID string) (*record.SessionRecord, error) {
	notes, err := m.pipeline.RequestStructuring(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if saveErr := m.archive.SetStructuredNotes(ctx, recordID, notes); saveErr != nil {
		slog.Error("failed to mirror structured notes locally", "error", saveErr, "record_id", recordID)
	}

	rec, err := m.archive.GetRecord(ctx, recordID)
	if err != nil || rec == nil {
		rec = &record.SessionRecord{ID: recordID}
	}
	rec.Status = record.StatusStructured
	rec.StructuredNotes = notes
	return rec, nil
}

// List fetches the dashboard listing, refreshing the local mirror; if the
// remote service is unreachable it falls back to the mirror.
func (m *Manager) List(ctx context.Context) ([]record.SessionRecord, error) {
	records, err := m.api.ListRecords(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, err
		}
		slog.Warn("remote listing failed; serving local mirror", "error", err)
		return m.archive.ListRecords(ctx)
	}
	for i := range records {
		if saveErr := m.archive.SaveRecord(ctx, &records[i]); saveErr != nil {
			slog.Error("failed to mirror record locally", "error", saveErr, "record_id", records[i].ID)
		}
	}
	return records, nil
}

// Show fetches a single record, preferring the remote copy.
func (m *Manager) Show(ctx context.Context, recordID string) (*record.SessionRecord, error) {
	rec, err := m.api.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, err
		}
		slog.Warn("remote fetch failed; serving local mirror", "error", err, "record_id", recordID)
		return m.archive.GetRecord(ctx, recordID)
	}
	if saveErr := m.archive.SaveRecord(ctx, rec); saveErr != nil {
		slog.Error("failed to mirror record locally", "error", saveErr, "record_id", recordID)
	}
	return rec, nil
}

// Delete removes the record remotely first; the mirror entry goes only
// after the remote delete succeeded.
func (m *Manager) Delete(ctx context.Context, recordID string) error {
	if err := m.api.DeleteRecord(ctx, recordID); err != nil {
		return err
	}
	if err := m.archive.DeleteRecord(ctx, recordID); err != nil {
		slog.Error("failed to delete local mirror entry", "error", err, "record_id", recordID)
	}
	return nil
}

// Export renders the record as the plain-text consultation note and
// returns it with its download filename.
func (m *Manager) Export(ctx context.Context, recordID string) ([]byte, string, error) {
	rec, err := m.Show(ctx, recordID)
	if err != nil {
		return nil, "", err
	}
	if rec == nil {
		return nil, "", fmt.Errorf("record %s not found", recordID)
	}
	return buildExportText(rec), rec.Title + ".txt", nil
}
