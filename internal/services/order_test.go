package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/catalog"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testThemes(t *testing.T) *catalog.Themes {
	t.Helper()
	themes, err := catalog.LoadDefaultThemes()
	if err != nil {
		t.Fatalf("LoadDefaultThemes: %v", err)
	}
	return themes
}

func firstThemeSlug(t *testing.T) string {
	t.Helper()
	return testThemes(t).All()[0].Slug
}

func draftOrder(items ...*models.OrderItem) *models.Order {
	return &models.Order{
		PublicID: "cv-order00001",
		Status:   workflow.OrderDraft,
		Items:    items,
	}
}

func TestGetOrderAccess(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	owned := draftOrder()
	owned.PublicID = "cv-owned00001"
	owned.UserID = &owner

	guest := draftOrder()
	guest.PublicID = "cv-guest00001"

	repo := newFakeOrderRepo(owned, guest)
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	tests := []struct {
		name     string
		publicID string
		viewer   Viewer
		wantErr  error
	}{
		{"owner sees own order", "cv-owned00001", Viewer{UserID: owner}, nil},
		{"admin sees any order", "cv-owned00001", Viewer{Admin: true}, nil},
		{"stranger denied without existence leak", "cv-owned00001", Viewer{UserID: stranger}, ErrNotFound},
		{"guest order reachable by public id", "cv-guest00001", Viewer{}, nil},
		{"unknown order", "cv-missing001", Viewer{Admin: true}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.GetOrder(context.Background(), tt.publicID, tt.viewer)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetOrder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddItemAppliesDefaults(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder())
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	item, err := svc.AddItem(context.Background(), "cv-order00001", firstThemeSlug(t), Viewer{})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Size != catalog.DefaultSize {
		t.Errorf("Size = %q, want %q", item.Size, catalog.DefaultSize)
	}
	if item.FrameColor != catalog.DefaultFrameColor || item.FrameModel != catalog.DefaultFrameModel {
		t.Errorf("frame = %q/%q, want defaults", item.FrameColor, item.FrameModel)
	}
	if item.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", item.Quantity)
	}
	if item.BasePriceBani != 8999 {
		t.Errorf("BasePriceBani = %d, want 8999", item.BasePriceBani)
	}
	if item.Status != workflow.ItemDraft {
		t.Errorf("Status = %q, want DRAFT", item.Status)
	}
}

func TestAddItemRejectsLockedOrder(t *testing.T) {
	t.Parallel()

	order := draftOrder()
	order.Status = workflow.OrderPaidAwaitingPreview
	repo := newFakeOrderRepo(order)
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.AddItem(context.Background(), order.PublicID, firstThemeSlug(t), Viewer{})
	if !errors.Is(err, workflow.ErrOrderNotEditable) {
		t.Fatalf("AddItem() error = %v, want ErrOrderNotEditable", err)
	}
	if len(repo.addedItems) != 0 {
		t.Fatalf("item was added despite locked order")
	}
}

func TestAddItemRejectsUnknownTheme(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder())
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.AddItem(context.Background(), "cv-order00001", "no-such-theme", Viewer{})
	if !IsValidation(err) {
		t.Fatalf("AddItem() error = %v, want validation error", err)
	}
}

func TestConfigureItemValidatesCatalog(t *testing.T) {
	t.Parallel()

	item := &models.OrderItem{PublicID: "cv-item000001", Status: workflow.ItemDraft}
	repo := newFakeOrderRepo(draftOrder(item))
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())
	slug := firstThemeSlug(t)

	tests := []struct {
		name  string
		input ConfigureItemInput
	}{
		{"unknown size", ConfigureItemInput{ThemeSlug: slug, Size: "A5", FrameColor: "OAK", FrameModel: "CLASSIC_BEVEL", Quantity: 1}},
		{"unknown frame color", ConfigureItemInput{ThemeSlug: slug, Size: "A4", FrameColor: "NEON", FrameModel: "CLASSIC_BEVEL", Quantity: 1}},
		{"zero quantity", ConfigureItemInput{ThemeSlug: slug, Size: "A4", FrameColor: "OAK", FrameModel: "CLASSIC_BEVEL", Quantity: 0}},
		{"quantity above cap", ConfigureItemInput{ThemeSlug: slug, Size: "A4", FrameColor: "OAK", FrameModel: "CLASSIC_BEVEL", Quantity: 11}},
		{"unknown theme", ConfigureItemInput{ThemeSlug: "no-such-theme", Size: "A4", FrameColor: "OAK", FrameModel: "CLASSIC_BEVEL", Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.ConfigureItem(context.Background(), "cv-order00001", "cv-item000001", tt.input, Viewer{})
			if !IsValidation(err) {
				t.Fatalf("ConfigureItem() error = %v, want validation error", err)
			}
		})
	}
}

func TestConfigureItemSnapshotsPrice(t *testing.T) {
	t.Parallel()

	item := &models.OrderItem{PublicID: "cv-item000001", Status: workflow.ItemDraft, BasePriceBani: 8999}
	repo := newFakeOrderRepo(draftOrder(item))
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	updated, err := svc.ConfigureItem(context.Background(), "cv-order00001", "cv-item000001", ConfigureItemInput{
		ThemeSlug:  firstThemeSlug(t),
		Size:       "A3",
		FrameColor: "WALNUT",
		FrameModel: "GALLERY_DEEP",
		Quantity:   2,
	}, Viewer{})
	if err != nil {
		t.Fatalf("ConfigureItem: %v", err)
	}
	if updated.BasePriceBani != 12999 {
		t.Errorf("BasePriceBani = %d, want 12999", updated.BasePriceBani)
	}
	if updated.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", updated.Quantity)
	}
}

func TestSetShippingAddressPricesZone(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder())
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.SetShippingAddress(context.Background(), "cv-order00001", &models.ShippingAddress{
		Name:       "Ana Pop",
		Line1:      "Str. Florilor 3",
		City:       "Cluj-Napoca",
		PostalCode: "400001",
		Country:    "ro",
	}, Viewer{})
	if err != nil {
		t.Fatalf("SetShippingAddress: %v", err)
	}
	if repo.lastShipping != 4900 {
		t.Errorf("shipping = %d bani, want 4900", repo.lastShipping)
	}
}

func TestSetShippingAddressRequiresFields(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder())
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.SetShippingAddress(context.Background(), "cv-order00001", &models.ShippingAddress{
		Name: "Ana Pop",
	}, Viewer{})
	if !IsValidation(err) {
		t.Fatalf("SetShippingAddress() error = %v, want validation error", err)
	}
}

func TestPayRejectsItemsShortOnPhotos(t *testing.T) {
	t.Parallel()

	ready := &models.OrderItem{PublicID: "cv-itemready1", Status: workflow.ItemDraft, PhotoCount: 2}
	short := &models.OrderItem{PublicID: "cv-itemshort1", Status: workflow.ItemDraft, PhotoCount: 1}
	repo := newFakeOrderRepo(draftOrder(ready, short))
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.Pay(context.Background(), "cv-order00001", Viewer{})

	var insufficient *workflow.InsufficientPhotosError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Pay() error = %v, want InsufficientPhotosError", err)
	}
	if len(insufficient.Items) != 1 || insufficient.Items[0].ItemPublicID != "cv-itemshort1" {
		t.Fatalf("blocking items = %+v, want only cv-itemshort1", insufficient.Items)
	}
	if repo.payCalls != 0 {
		t.Fatalf("payment ran despite missing photos")
	}
}

func TestPayIsIdempotentWhenAlreadyPaid(t *testing.T) {
	t.Parallel()

	order := draftOrder(&models.OrderItem{PublicID: "cv-item000001", Status: workflow.ItemPaidAwaitingPreview, PhotoCount: 2})
	order.Status = workflow.OrderPaidAwaitingPreview
	repo := newFakeOrderRepo(order)
	sender := &recordingEmailSender{}
	svc := NewOrderService(repo, testThemes(t), sender, testLogger())

	alreadyPaid, err := svc.Pay(context.Background(), order.PublicID, Viewer{})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if !alreadyPaid {
		t.Fatalf("alreadyPaid = false, want true")
	}
	if repo.payCalls != 0 {
		t.Fatalf("payment ran again on an already-paid order")
	}
	if len(sender.orderPaid) != 0 {
		t.Fatalf("duplicate payment sent a notification")
	}
}

func TestPayNotifiesAdmin(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder(
		&models.OrderItem{PublicID: "cv-item000001", Status: workflow.ItemDraft, PhotoCount: 2},
	))
	sender := &recordingEmailSender{}
	svc := NewOrderService(repo, testThemes(t), sender, testLogger())

	alreadyPaid, err := svc.Pay(context.Background(), "cv-order00001", Viewer{})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if alreadyPaid {
		t.Fatalf("alreadyPaid = true on first payment")
	}
	if repo.payCalls != 1 {
		t.Fatalf("payCalls = %d, want 1", repo.payCalls)
	}
	if len(sender.orderPaid) != 1 {
		t.Fatalf("orderPaid notifications = %d, want 1", len(sender.orderPaid))
	}
}

func TestPayRejectsEmptyOrder(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo(draftOrder())
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	_, err := svc.Pay(context.Background(), "cv-order00001", Viewer{})
	if !IsValidation(err) {
		t.Fatalf("Pay() error = %v, want validation error", err)
	}
}

func TestApproveItemGuardsStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  workflow.ItemStatus
		wantErr error
	}{
		{"preview ready approves", workflow.ItemPreviewReady, nil},
		{"draft rejected", workflow.ItemDraft, workflow.ErrItemNotApprovable},
		{"already approved rejected", workflow.ItemApprovedInProduction, workflow.ErrItemNotApprovable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item := &models.OrderItem{PublicID: "cv-item000001", Status: tt.status}
			order := draftOrder(item)
			order.Status = workflow.OrderPreviewReady
			repo := newFakeOrderRepo(order)
			svc := NewOrderService(repo, testThemes(t), nil, testLogger())

			err := svc.ApproveItem(context.Background(), order.PublicID, item.PublicID, Viewer{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ApproveItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestRevisionIsOneShot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       workflow.ItemStatus
		revisionUsed bool
		notes        string
		wantErr      error
	}{
		{"first revision accepted", workflow.ItemPreviewReady, false, "make the frame darker", nil},
		{"second revision rejected", workflow.ItemPreviewReady, true, "one more change", workflow.ErrRevisionAlreadyUsed},
		{"wrong status rejected", workflow.ItemDraft, false, "make the frame darker", workflow.ErrItemNotRevisable},
		{"notes too short", workflow.ItemPreviewReady, false, "  a ", workflow.ErrRevisionNotesTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item := &models.OrderItem{PublicID: "cv-item000001", Status: tt.status, RevisionUsed: tt.revisionUsed}
			order := draftOrder(item)
			order.Status = workflow.OrderPreviewReady
			repo := newFakeOrderRepo(order)
			sender := &recordingEmailSender{}
			svc := NewOrderService(repo, testThemes(t), sender, testLogger())

			err := svc.RequestRevision(context.Background(), order.PublicID, item.PublicID, tt.notes, Viewer{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RequestRevision() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if repo.revisionCalls != 1 {
					t.Fatalf("revisionCalls = %d, want 1", repo.revisionCalls)
				}
				if len(sender.revisionRequests) != 1 {
					t.Fatalf("revision notifications = %d, want 1", len(sender.revisionRequests))
				}
			} else if repo.revisionCalls != 0 {
				t.Fatalf("revision ran despite guard failure")
			}
		})
	}
}

func TestCreateOrderOwnership(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, testThemes(t), nil, testLogger())

	userID := uuid.New()
	owned, err := svc.CreateOrder(context.Background(), Viewer{UserID: userID}, "ana@example.com")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if owned.UserID == nil || *owned.UserID != userID {
		t.Fatalf("UserID = %v, want %s", owned.UserID, userID)
	}

	guest, err := svc.CreateOrder(context.Background(), Viewer{}, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if guest.UserID != nil {
		t.Fatalf("guest order has an owner: %v", guest.UserID)
	}
	if guest.PublicID == "" || guest.PublicID == owned.PublicID {
		t.Fatalf("public ids not unique: %q vs %q", guest.PublicID, owned.PublicID)
	}
}
