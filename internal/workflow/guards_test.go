package workflow

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckPay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		orderStatus OrderStatus
		counts      []ItemPhotoCount
		wantAlready bool
		wantShort   []string
		wantErr     error
	}{
		{
			name:        "already paid is an idempotent no-op",
			orderStatus: OrderPaidAwaitingPreview,
			counts:      []ItemPhotoCount{{ItemPublicID: "cv-a", Count: 0}},
			wantAlready: true,
		},
		{
			name:        "shipped order counts as already paid",
			orderStatus: OrderShipped,
			counts:      []ItemPhotoCount{{ItemPublicID: "cv-a", Count: 0}},
			wantAlready: true,
		},
		{
			name:        "cancelled order rejects payment",
			orderStatus: OrderCancelled,
			counts:      []ItemPhotoCount{{ItemPublicID: "cv-a", Count: 2}},
			wantErr:     ErrOrderNotEditable,
		},
		{
			name:        "all items have enough photos",
			orderStatus: OrderDraft,
			counts: []ItemPhotoCount{
				{ItemPublicID: "cv-a", Count: 2},
				{ItemPublicID: "cv-b", Count: 5},
			},
		},
		{
			name:        "one short item blocks the whole order",
			orderStatus: OrderDraft,
			counts: []ItemPhotoCount{
				{ItemPublicID: "cv-a", Count: 2},
				{ItemPublicID: "cv-b", Count: 1},
			},
			wantShort: []string{"cv-b"},
		},
		{
			name:        "multiple short items are all reported",
			orderStatus: OrderSubmitted,
			counts: []ItemPhotoCount{
				{ItemPublicID: "cv-a", Count: 0},
				{ItemPublicID: "cv-b", Count: 1},
			},
			wantShort: []string{"cv-a", "cv-b"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			already, err := CheckPay(tc.orderStatus, tc.counts)
			if already != tc.wantAlready {
				t.Fatalf("CheckPay() alreadyPaid = %v, want %v", already, tc.wantAlready)
			}
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("CheckPay() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if len(tc.wantShort) == 0 {
				if err != nil {
					t.Fatalf("CheckPay() unexpected error: %v", err)
				}
				return
			}

			var insufficient *InsufficientPhotosError
			if !errors.As(err, &insufficient) {
				t.Fatalf("CheckPay() error = %v, want InsufficientPhotosError", err)
			}
			if len(insufficient.Items) != len(tc.wantShort) {
				t.Fatalf("short items = %v, want ids %v", insufficient.Items, tc.wantShort)
			}
			for i, id := range tc.wantShort {
				if insufficient.Items[i].ItemPublicID != id {
					t.Fatalf("short item %d = %q, want %q", i, insufficient.Items[i].ItemPublicID, id)
				}
				if !strings.Contains(err.Error(), id) {
					t.Fatalf("error %q does not mention item %q", err.Error(), id)
				}
			}
		})
	}
}

func TestCheckApprove(t *testing.T) {
	t.Parallel()

	for _, status := range ItemStatusValues() {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			err := CheckApprove(status)
			if status == ItemPreviewReady {
				if err != nil {
					t.Fatalf("CheckApprove(%q) = %v, want nil", status, err)
				}
				return
			}
			if !errors.Is(err, ErrItemNotApprovable) {
				t.Fatalf("CheckApprove(%q) = %v, want ErrItemNotApprovable", status, err)
			}
		})
	}
}

func TestCheckRequestRevision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       ItemStatus
		revisionUsed bool
		notes        string
		wantErr      error
	}{
		{
			name:   "valid request",
			status: ItemPreviewReady,
			notes:  "More contrast please",
		},
		{
			name:    "wrong status",
			status:  ItemPaidAwaitingPreview,
			notes:   "More contrast please",
			wantErr: ErrItemNotRevisable,
		},
		{
			name:         "revision already used stays used even after cycling back",
			status:       ItemPreviewReady,
			revisionUsed: true,
			notes:        "Again please",
			wantErr:      ErrRevisionAlreadyUsed,
		},
		{
			name:    "notes too short",
			status:  ItemPreviewReady,
			notes:   "  a ",
			wantErr: ErrRevisionNotesTooShort,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckRequestRevision(tc.status, tc.revisionUsed, tc.notes)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CheckRequestRevision() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckAdminOverride(t *testing.T) {
	t.Parallel()

	if err := CheckAdminOverride(ItemPreviewReady, 0); !errors.Is(err, ErrPreviewUploadsMissing) {
		t.Fatalf("CheckAdminOverride(PREVIEW_READY, 0) = %v, want ErrPreviewUploadsMissing", err)
	}
	if err := CheckAdminOverride(ItemPreviewReady, 1); err != nil {
		t.Fatalf("CheckAdminOverride(PREVIEW_READY, 1) = %v, want nil", err)
	}
	if err := CheckAdminOverride(ItemShipped, 0); err != nil {
		t.Fatalf("CheckAdminOverride(SHIPPED, 0) = %v, want nil", err)
	}
}

func TestOrderEditable(t *testing.T) {
	t.Parallel()

	editable := map[OrderStatus]bool{
		OrderDraft:               true,
		OrderSubmitted:           true,
		OrderPaidAwaitingPreview: false,
		OrderPreviewReady:        false,
		OrderCancelled:           false,
		OrderDelivered:           false,
	}
	for status, want := range editable {
		if got := OrderEditable(status); got != want {
			t.Fatalf("OrderEditable(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestParseItemStatus(t *testing.T) {
	t.Parallel()

	for _, status := range ItemStatusValues() {
		got, err := ParseItemStatus(string(status))
		if err != nil || got != status {
			t.Fatalf("ParseItemStatus(%q) = %q, %v", status, got, err)
		}
	}

	for _, bad := range []string{"", "draft", "SHIPPED ", "CANCELLED", "garbage"} {
		if _, err := ParseItemStatus(bad); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("ParseItemStatus(%q) = %v, want ErrInvalidStatus", bad, err)
		}
	}
}

func TestTimestampColumn(t *testing.T) {
	t.Parallel()

	want := map[ItemStatus]string{
		ItemDraft:                "",
		ItemPaidAwaitingPreview:  "",
		ItemPreviewReady:         "preview_ready_at",
		ItemRevisionRequested:    "",
		ItemApprovedInProduction: "approved_at",
		ItemInProduction:         "production_started_at",
		ItemShipped:              "shipped_at",
		ItemDelivered:            "",
	}
	for status, column := range want {
		if got := TimestampColumn(status); got != column {
			t.Fatalf("TimestampColumn(%q) = %q, want %q", status, got, column)
		}
	}
}
