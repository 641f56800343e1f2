package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/internal/notify"
	"github.com/vybrant-care/chat-widget/internal/store"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

// Lead acknowledgment lines appended to the transcript by the caller.
const (
	// LeadFailedMessage is shown when the insert fails; the form stays
	// open for retry.
	LeadFailedMessage = "⚠️ Sorry, something went wrong saving your details."

	leadThanksFormat = "✅ Thanks %s! Your details have been saved."
)

// LeadThanksMessage builds the personalized acknowledgment.
func LeadThanksMessage(name string) string {
	return fmt.Sprintf(leadThanksFormat, name)
}

// LeadService is the persistence gateway for captured leads: a durable
// insert followed by a best-effort notification dispatch.
type LeadService struct {
	repo     store.Repository
	notifier notify.Notifier
	logger   *logger.Logger
}

// NewLeadService creates a lead service.
func NewLeadService(repo store.Repository, notifier notify.Notifier, log *logger.Logger) *LeadService {
	return &LeadService{
		repo:     repo,
		notifier: notifier,
		logger:   log,
	}
}

// CommitLead runs the two-phase commit. The insert failing returns an
// error and skips the notification. The notification is fire-and-forget
// after a successful insert: its failure is logged and counted but
// never reported to the caller, and it does not roll back the insert.
func (s *LeadService) CommitLead(ctx context.Context, pending model.PendingLead) (*model.Lead, error) {
	lead := &model.Lead{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      pending.Name,
		Email:     pending.Email,
		Phone:     pending.Phone,
		Message:   model.LeadAnnotation,
		Source:    model.LeadSource,
		Subscribe: true,
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertLead(ctx, lead); err != nil {
		metrics.LeadCommitsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}
	metrics.LeadCommitsTotal.WithLabelValues("success").Inc()

	s.logger.Info("lead committed", "lead_id", lead.ID, "source", lead.Source)

	if s.notifier != nil {
		go s.dispatchNotification(lead)
	}

	return lead, nil
}

// dispatchNotification runs detached from the request so a slow
// endpoint never delays the commit acknowledgment.
func (s *LeadService) dispatchNotification(lead *model.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.notifier.NotifyLead(ctx, lead); err != nil {
		s.logger.Warn("lead notification dispatch failed",
			"lead_id", lead.ID, "error", err)
	}
}
