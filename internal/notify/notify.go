// Package notify dispatches lead notifications to the contact-email
// function endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vybrant-care/chat-widget/internal/model"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/metrics"
)

// Notifier delivers a lead notification. Implementations are
// best-effort: the caller fires and forgets.
type Notifier interface {
	NotifyLead(ctx context.Context, lead *model.Lead) error
}

// HTTPNotifier posts lead details to a fixed HTTPS endpoint with a
// bearer token. The response body is not inspected; only the status
// code decides success, and that outcome surfaces in logs and metrics
// rather than to the user.
type HTTPNotifier struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHTTPNotifier creates a notifier for the given endpoint.
func NewHTTPNotifier(url, token string, log *logger.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

type notifyPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// NotifyLead posts the lead's contact details to the endpoint.
func (n *HTTPNotifier) NotifyLead(ctx context.Context, lead *model.Lead) error {
	body, err := json.Marshal(notifyPayload{
		Name:  lead.Name,
		Email: lead.Email,
		Phone: lead.Phone,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		metrics.NotifyDispatchTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("notification dispatch failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		metrics.NotifyDispatchTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	metrics.NotifyDispatchTotal.WithLabelValues("success").Inc()
	return nil
}
