package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/record"
	"github.com/saluslab/escriba/internal/subscription"
)

type Phase string

const (
	PhaseTranscribe Phase = "transcribe"
	PhaseStructure  Phase = "structure"
)

type ErrorKind string

const (
	KindNotPermitted        ErrorKind = "not_permitted"
	KindTranscriptionFailed ErrorKind = "transcription_failed"
	KindStructuringFailed   ErrorKind = "structuring_failed"
	KindUnauthorized        ErrorKind = "unauthorized"
)

type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("pipeline: %s", e.Kind)
	}
	return fmt.Sprintf("pipeline: %s: %s", e.Kind, e.Detail)
}

type StateKind string

const (
	StateCaptured     StateKind = "captured"
	StateTranscribing StateKind = "transcribing"
	StateTranscribed  StateKind = "transcribed"
	StateStructuring  StateKind = "structuring"
	StateStructured   StateKind = "structured"
	StateFailed       StateKind = "failed"
)

// State is the tagged pipeline phase value. RecordID is set once the
// transcribe phase assigned one; FailedPhase/Reason only when Kind is
// failed.
type State struct {
	Kind        StateKind
	RecordID    string
	FailedPhase Phase
	Reason      string
}

// Pipeline drives one captured artifact through the two remote phases.
// Between phases it is stateless apart from the server-assigned record
// id, so structuring may target a record produced by an earlier run.
type Pipeline struct {
	api api.Client

	mu    sync.Mutex
	state State
}

func New(client api.Client) *Pipeline {
	return &Pipeline{api: client, state: State{Kind: StateCaptured}}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SubmitForTranscription sends the artifact to the transcription service.
// The gate decision is checked first: a forbidden caller never reaches
// the remote service. Single attempt, no automatic retry.
func (p *Pipeline) SubmitForTranscription(ctx context.Context, artifact capture.Artifact, title string, decision subscription.Decision) (*record.SessionRecord, error) {
	if !decision.CanCreateNew {
		slog.Warn("transcription refused by subscription gate", "status", decision.Status)
		return nil, &Error{Kind: KindNotPermitted, Detail: decision.Banner}
	}
	if title == "" {
		title = record.DefaultTitle(time.Now())
	}

	p.setState(State{Kind: StateTranscribing})
	slog.Info("submitting artifact for transcription", "title", title, "artifact_bytes", len(artifact.Data), "content_type", artifact.ContentType)

	rec, err := p.api.Transcribe(ctx, artifact, title)
	if err != nil {
		kind := KindTranscriptionFailed
		if errors.Is(err, api.ErrUnauthorized) {
			kind = KindUnauthorized
		}
		p.setState(State{Kind: StateFailed, FailedPhase: PhaseTranscribe, Reason: err.Error()})
		return nil, &Error{Kind: kind, Detail: err.Error()}
	}

	p.setState(State{Kind: StateTranscribed, RecordID: rec.ID})
	slog.Info("transcription completed", "record_id", rec.ID, "status", rec.Status)
	return rec, nil
}

// RequestStructuring asks the structuring service to add the four
// clinical sections to an existing transcribed record. A failure leaves
// the persisted transcript untouched; re-invocation overwrites prior
// structured notes without confirmation.
func (p *Pipeline) RequestStructuring(ctx context.Context, recordID string) (*record.StructuredNotes, error) {
	if recordID == "" {
		return nil, &Error{Kind: KindStructuringFailed, Detail: "no record id"}
	}

	p.setState(State{Kind: StateStructuring, RecordID: recordID})
	slog.Info("requesting structuring", "record_id", recordID)

	notes, err := p.api.Structure(ctx, recordID)
	if err != nil {
		kind := KindStructuringFailed
		if errors.Is(err, api.ErrUnauthorized) {
			kind = KindUnauthorized
		}
		p.setState(State{Kind: StateFailed, RecordID: recordID, FailedPhase: PhaseStructure, Reason: err.Error()})
		return nil, &Error{Kind: kind, Detail: err.Error()}
	}

	p.setState(State{Kind: StateStructured, RecordID: recordID})
	slog.Info("structuring completed", "record_id", recordID)
	return notes, nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
