package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/workflow"
)

func TestOverrideStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		target       string
		previewCount int
		tracking     string
		wantErr      error
		wantValid    bool
	}{
		{"forward into production", "IN_PRODUCTION", 0, "", nil, false},
		{"backward to draft", "draft", 0, "", nil, false},
		{"shipped with tracking", "SHIPPED", 0, "TRK-12345", nil, false},
		{"preview ready without preview upload", "PREVIEW_READY", 0, "", workflow.ErrPreviewUploadsMissing, false},
		{"preview ready with preview upload", "PREVIEW_READY", 1, "", nil, false},
		{"unknown status", "EXPLODED", 0, "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item := &models.OrderItem{
				PublicID:     "cv-item000001",
				Status:       workflow.ItemPaidAwaitingPreview,
				PreviewCount: tt.previewCount,
			}
			order := draftOrder(item)
			order.Status = workflow.OrderPaidAwaitingPreview
			repo := newFakeOrderRepo(order)
			svc := NewAdminService(repo, newFakeUploadRepo(), &fakeEventRepo{}, testLogger())

			_, err := svc.OverrideStatus(context.Background(), order.PublicID, item.PublicID, tt.target, tt.tracking)
			switch {
			case tt.wantValid:
				if !IsValidation(err) {
					t.Fatalf("OverrideStatus() error = %v, want validation error", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("OverrideStatus() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("OverrideStatus: %v", err)
				}
				if repo.overrideCalls != 1 {
					t.Fatalf("overrideCalls = %d, want 1", repo.overrideCalls)
				}
				if tt.tracking != "" && repo.lastTracking != tt.tracking {
					t.Fatalf("tracking = %q, want %q", repo.lastTracking, tt.tracking)
				}
			}
		})
	}
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	order := draftOrder()
	repo := newFakeOrderRepo(order)
	svc := NewAdminService(repo, newFakeUploadRepo(), &fakeEventRepo{}, testLogger())

	if _, err := svc.Cancel(context.Background(), order.PublicID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if repo.cancelCalls != 1 {
		t.Fatalf("cancelCalls = %d, want 1", repo.cancelCalls)
	}

	repo.forcedMutation = errStateConflictForTest()
	if _, err := svc.Cancel(context.Background(), order.PublicID); !IsValidation(err) {
		t.Fatalf("Cancel() error = %v, want validation error for repeat cancel", err)
	}
}

func TestAssignUpload(t *testing.T) {
	t.Parallel()

	item := &models.OrderItem{PublicID: "cv-item000001", Status: workflow.ItemDraft}
	order := draftOrder(item)
	repo := newFakeOrderRepo(order)
	uploads := newFakeUploadRepo()
	svc := NewAdminService(repo, uploads, &fakeEventRepo{}, testLogger())

	loose := &models.Upload{OrderID: order.ID, Kind: models.UploadCustomerPhoto, StorageKey: "orders/cv-order00001/a.jpg"}
	if err := uploads.Create(context.Background(), loose); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.AssignUpload(context.Background(), order.PublicID, loose.ID, item.PublicID); err != nil {
		t.Fatalf("AssignUpload: %v", err)
	}
	if uploads.assigned[loose.ID] != item.ID {
		t.Fatalf("upload assigned to %v, want %v", uploads.assigned[loose.ID], item.ID)
	}

	taken := &models.Upload{OrderID: order.ID, ItemID: &item.ID, Kind: models.UploadCustomerPhoto, StorageKey: "orders/cv-order00001/b.jpg"}
	if err := uploads.Create(context.Background(), taken); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.AssignUpload(context.Background(), order.PublicID, taken.ID, item.PublicID); !IsValidation(err) {
		t.Fatalf("AssignUpload() error = %v, want validation error for already-assigned upload", err)
	}

	if err := svc.AssignUpload(context.Background(), order.PublicID, uuid.New(), item.PublicID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AssignUpload() error = %v, want ErrNotFound for unknown upload", err)
	}
}

func TestAdminGetOrderUnknown(t *testing.T) {
	t.Parallel()

	svc := NewAdminService(newFakeOrderRepo(), newFakeUploadRepo(), &fakeEventRepo{}, testLogger())
	if _, err := svc.GetOrder(context.Background(), "cv-missing001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetOrder() error = %v, want ErrNotFound", err)
	}
}
