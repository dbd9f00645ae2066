package api

import (
	"context"
	"errors"
	"time"

	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/record"
	"github.com/saluslab/escriba/internal/subscription"
)

// ErrUnauthorized reports a transport-level credential rejection. Callers
// invalidate the whole session on it instead of offering a retry.
var ErrUnauthorized = errors.New("api: unauthorized")

// Account is the remote account view returned by the auth endpoint.
type Account struct {
	Email               string
	Name                string
	SubscriptionStatus  subscription.Status
	SubscriptionEndDate *time.Time
	IsAdmin             bool
}

// Snapshot adapts the account to the gate's input.
func (a *Account) Snapshot() subscription.Snapshot {
	return subscription.Snapshot{
		Status:  a.SubscriptionStatus,
		EndDate: a.SubscriptionEndDate,
		IsAdmin: a.IsAdmin,
	}
}

// Client is the authenticated remote consultation service. Every call is
// single-attempt; retry is a caller decision.
type Client interface {
	GetAccount(ctx context.Context) (*Account, error)
	Transcribe(ctx context.Context, artifact capture.Artifact, title string) (*record.SessionRecord, error)
	Structure(ctx context.Context, recordID string) (*record.StructuredNotes, error)
	ListRecords(ctx context.Context) ([]record.SessionRecord, error)
	GetRecord(ctx context.Context, recordID string) (*record.SessionRecord, error)
	DeleteRecord(ctx context.Context, recordID string) error
}
