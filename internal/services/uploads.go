package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/observability"
	"github.com/canvistapp/canvist/internal/storage"
	"github.com/canvistapp/canvist/internal/workflow"
)

// MaxCustomerPhotosPerItem caps the number of customer photos per item.
const MaxCustomerPhotosPerItem = 8

// UploadService manages customer photos and admin preview images on top of
// the configured storage provider.
type UploadService struct {
	orders      orderRepo
	uploads     uploadRepo
	store       storage.Provider
	emailSender WorkflowEmailSender
	logger      *slog.Logger
}

func NewUploadService(orders orderRepo, uploads uploadRepo, store storage.Provider, emailSender WorkflowEmailSender, logger *slog.Logger) *UploadService {
	if emailSender == nil {
		emailSender = noopEmailSender{}
	}
	return &UploadService{
		orders:      orders,
		uploads:     uploads,
		store:       store,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *UploadService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// UploadCustomerPhoto streams a customer photo into storage and records it.
// The order must still be editable and the item below its photo cap.
func (s *UploadService) UploadCustomerPhoto(ctx context.Context, orderPublicID, itemPublicID, fileName, contentType string, size int64, r io.Reader, viewer Viewer) (*models.Upload, error) {
	span := sentry.StartSpan(
		ctx,
		"service.upload.customer_photo",
		sentry.WithOpName("service.upload"),
		sentry.WithDescription("UploadCustomerPhoto"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	order, item, err := s.loadEditableTarget(ctx, orderPublicID, itemPublicID, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhotoInput(contentType, size, item.PhotoCount); err != nil {
		return nil, err
	}

	key, err := storage.ObjectKey(order.PublicID, item.PublicID, string(models.UploadCustomerPhoto), contentType)
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}
	if err := s.store.Put(ctx, key, contentType, r); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	upload := &models.Upload{
		OrderID:     order.ID,
		ItemID:      &item.ID,
		Kind:        models.UploadCustomerPhoto,
		StorageKey:  key,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		// Best effort: don't leave an orphaned object behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.loggerFromContext(ctx).Warn("failed to delete orphaned object", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	observability.MeterFromContext(ctx).Count("upload.created", 1, sentry.WithAttributes(
		attribute.String("kind", string(models.UploadCustomerPhoto)),
	))
	return upload, nil
}

// SignCustomerPhotoUpload hands the client a pre-signed URL for a direct
// upload. Only providers with signed upload support allow this path.
func (s *UploadService) SignCustomerPhotoUpload(ctx context.Context, orderPublicID, itemPublicID, contentType string, viewer Viewer) (uploadURL, key string, err error) {
	order, item, err := s.loadEditableTarget(ctx, orderPublicID, itemPublicID, viewer)
	if err != nil {
		return "", "", err
	}
	if !storage.AllowedContentType(contentType) {
		return "", "", validationErrorf("unsupported content type: %s", contentType)
	}
	if item.PhotoCount >= MaxCustomerPhotosPerItem {
		return "", "", validationErrorf("item already has the maximum of %d photos", MaxCustomerPhotosPerItem)
	}

	key, err = storage.ObjectKey(order.PublicID, item.PublicID, string(models.UploadCustomerPhoto), contentType)
	if err != nil {
		return "", "", validationErrorf("%s", err.Error())
	}
	uploadURL, err = s.store.SignedUploadURL(ctx, key, contentType, storage.SignedURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrSignedUploadsUnsupported) {
			return "", "", validationErrorf("direct uploads are not available, use the upload endpoint")
		}
		return "", "", fmt.Errorf("failed to sign upload: %w", err)
	}
	return uploadURL, key, nil
}

// ConfirmCustomerPhotoUpload records a direct upload after the client
// finished it. The key must belong to the order and the object must exist.
func (s *UploadService) ConfirmCustomerPhotoUpload(ctx context.Context, orderPublicID, itemPublicID, key, fileName, contentType string, size int64, viewer Viewer) (*models.Upload, error) {
	order, item, err := s.loadEditableTarget(ctx, orderPublicID, itemPublicID, viewer)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhotoInput(contentType, size, item.PhotoCount); err != nil {
		return nil, err
	}
	if !storage.KeyWithinOrder(key, order.PublicID) {
		return nil, validationErrorf("storage key does not belong to this order")
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check object: %w", err)
	}
	if !exists {
		return nil, validationErrorf("no uploaded object found for key")
	}

	upload := &models.Upload{
		OrderID:     order.ID,
		ItemID:      &item.ID,
		Kind:        models.UploadCustomerPhoto,
		StorageKey:  key,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	return upload, nil
}

// DeleteCustomerPhoto removes a customer photo while the order is editable.
// The database row is the source of truth; the object delete is best effort.
func (s *UploadService) DeleteCustomerPhoto(ctx context.Context, orderPublicID string, uploadID uuid.UUID, viewer Viewer) error {
	order, err := s.loadOrder(ctx, orderPublicID, viewer)
	if err != nil {
		return err
	}
	if err := workflow.CheckUpload(order.Status); err != nil {
		return err
	}

	key, err := s.uploads.DeleteCustomerPhoto(ctx, order.ID, uploadID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, db.ErrStateConflict):
			return workflow.ErrUploadsClosed
		}
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	if delErr := s.store.Delete(ctx, key); delErr != nil {
		s.loggerFromContext(ctx).Warn("failed to delete stored object", "error", delErr, "key", key)
	}
	observability.MeterFromContext(ctx).Count("upload.deleted", 1)
	return nil
}

// UploadPreview stores an admin-produced preview image for an item and marks
// the item PREVIEW_READY, notifying the customer.
func (s *UploadService) UploadPreview(ctx context.Context, orderPublicID, itemPublicID, fileName, contentType string, size int64, r io.Reader) (*models.Upload, error) {
	span := sentry.StartSpan(
		ctx,
		"service.upload.preview",
		sentry.WithOpName("service.upload"),
		sentry.WithDescription("UploadPreview"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	order, err := s.loadOrder(ctx, orderPublicID, Viewer{Admin: true})
	if err != nil {
		return nil, err
	}
	item, err := s.findItem(order, itemPublicID)
	if err != nil {
		return nil, err
	}
	if !storage.AllowedContentType(contentType) {
		return nil, validationErrorf("unsupported content type: %s", contentType)
	}
	if size <= 0 || size > storage.MaxUploadBytes {
		return nil, validationErrorf("file size must be between 1 byte and %d bytes", storage.MaxUploadBytes)
	}

	key, err := storage.ObjectKey(order.PublicID, item.PublicID, string(models.UploadPreviewImage), contentType)
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}
	if err := s.store.Put(ctx, key, contentType, r); err != nil {
		return nil, fmt.Errorf("failed to store preview: %w", err)
	}

	upload := &models.Upload{
		OrderID:     order.ID,
		ItemID:      &item.ID,
		Kind:        models.UploadPreviewImage,
		StorageKey:  key,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.loggerFromContext(ctx).Warn("failed to delete orphaned object", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to record preview: %w", err)
	}

	if err := s.orders.MarkPreviewReady(ctx, order.ID, item.ID); err != nil {
		return nil, fmt.Errorf("failed to mark preview ready: %w", err)
	}
	observability.MeterFromContext(ctx).Count("upload.created", 1, sentry.WithAttributes(
		attribute.String("kind", string(models.UploadPreviewImage)),
	))

	if emailErr := s.emailSender.SendPreviewReady(ctx, order); emailErr != nil {
		s.loggerFromContext(ctx).Warn("failed to send preview-ready email", "error", emailErr, "order_id", order.PublicID)
	}
	return upload, nil
}

// AttachURLs fills in download URLs for every upload on an order's items.
// URL generation failures degrade to uploads without a URL.
func (s *UploadService) AttachURLs(ctx context.Context, order *models.Order) {
	logger := s.loggerFromContext(ctx)
	for _, item := range order.Items {
		for _, upload := range item.Uploads {
			url, err := s.store.SignedDownloadURL(ctx, upload.StorageKey, storage.SignedURLTTL)
			if err != nil {
				logger.Warn("failed to sign download url", "error", err, "upload_id", upload.ID)
				continue
			}
			upload.URL = url
		}
	}
}

func (s *UploadService) checkPhotoInput(contentType string, size int64, photoCount int) error {
	if !storage.AllowedContentType(contentType) {
		return validationErrorf("unsupported content type: %s", contentType)
	}
	if size <= 0 || size > storage.MaxUploadBytes {
		return validationErrorf("file size must be between 1 byte and %d bytes", storage.MaxUploadBytes)
	}
	if photoCount >= MaxCustomerPhotosPerItem {
		return validationErrorf("item already has the maximum of %d photos", MaxCustomerPhotosPerItem)
	}
	return nil
}

func (s *UploadService) loadEditableTarget(ctx context.Context, orderPublicID, itemPublicID string, viewer Viewer) (*models.Order, *models.OrderItem, error) {
	order, err := s.loadOrder(ctx, orderPublicID, viewer)
	if err != nil {
		return nil, nil, err
	}
	if err := workflow.CheckUpload(order.Status); err != nil {
		return nil, nil, err
	}
	item, err := s.findItem(order, itemPublicID)
	if err != nil {
		return nil, nil, err
	}
	return order, item, nil
}

func (s *UploadService) loadOrder(ctx context.Context, publicID string, viewer Viewer) (*models.Order, error) {
	order, err := s.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !canAccessOrder(order, viewer) {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *UploadService) findItem(order *models.Order, itemPublicID string) (*models.OrderItem, error) {
	for _, item := range order.Items {
		if item.PublicID == itemPublicID {
			return item, nil
		}
	}
	return nil, ErrNotFound
}
