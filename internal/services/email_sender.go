package services

import (
	"context"
	"strings"

	"github.com/canvistapp/canvist/internal/email"
	"github.com/canvistapp/canvist/internal/models"
)

// WorkflowEmailSender sends the notifications triggered by workflow actions.
// Implementations must never block the workflow: callers treat errors as
// log-only.
type WorkflowEmailSender interface {
	SendOrderPaid(ctx context.Context, order *models.Order) error
	SendRevisionRequested(ctx context.Context, order *models.Order, itemPublicID, notes string) error
	SendPreviewReady(ctx context.Context, order *models.Order) error
}

// NotificationSender implements WorkflowEmailSender on top of the email
// provider.
type NotificationSender struct {
	provider   email.Provider
	adminEmail string
	baseURL    string
}

func NewNotificationSender(provider email.Provider, adminEmail, baseURL string) *NotificationSender {
	if provider == nil {
		provider = email.NoopProvider{}
	}
	return &NotificationSender{
		provider:   provider,
		adminEmail: adminEmail,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (s *NotificationSender) SendOrderPaid(ctx context.Context, order *models.Order) error {
	if s.adminEmail == "" {
		return nil
	}
	return s.provider.SendEmail(ctx, email.OrderPaidNotification(s.adminEmail, order.PublicID, len(order.Items), order.TotalBani))
}

func (s *NotificationSender) SendRevisionRequested(ctx context.Context, order *models.Order, itemPublicID, notes string) error {
	if s.adminEmail == "" {
		return nil
	}
	return s.provider.SendEmail(ctx, email.RevisionRequestedNotification(s.adminEmail, order.PublicID, itemPublicID, notes))
}

func (s *NotificationSender) SendPreviewReady(ctx context.Context, order *models.Order) error {
	if order.Email == "" {
		return nil
	}
	return s.provider.SendEmail(ctx, email.PreviewReadyNotification(order.Email, order.PublicID, s.orderURL(order.PublicID)))
}

func (s *NotificationSender) orderURL(publicID string) string {
	if s.baseURL == "" {
		return "/orders/" + publicID
	}
	return s.baseURL + "/orders/" + publicID
}

type noopEmailSender struct{}

func (noopEmailSender) SendOrderPaid(context.Context, *models.Order) error { return nil }

func (noopEmailSender) SendRevisionRequested(context.Context, *models.Order, string, string) error {
	return nil
}

func (noopEmailSender) SendPreviewReady(context.Context, *models.Order) error { return nil }
