// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/vybrant-care/chat-widget/internal/model"
)

// Repository defines the interface for persisting transcripts and leads.
type Repository interface {
	// LoadTranscript retrieves the saved transcript for a session.
	// Returns (nil, nil) when no transcript has been saved yet.
	LoadTranscript(ctx context.Context, sessionID string) (model.Transcript, error)

	// SaveTranscript stores the full transcript under the session key.
	// Idempotent: saving the same transcript twice is a no-op.
	SaveTranscript(ctx context.Context, sessionID string, t model.Transcript) error

	// InsertLead appends a lead record. Lead rows are never updated.
	InsertLead(ctx context.Context, lead *model.Lead) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
