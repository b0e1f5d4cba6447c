package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestValidateKeyRejectsTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{name: "normal key", key: "orders/cv-abc123defg/items/cv-1234567890/customer_photo/aa.jpg", ok: true},
		{name: "empty", key: "", ok: false},
		{name: "absolute", key: "/etc/passwd", ok: false},
		{name: "dotdot segment", key: "orders/../secrets", ok: false},
		{name: "hidden dotdot", key: "orders/cv-abc/../../secrets", ok: false},
		{name: "dot segment", key: "orders/./file", ok: false},
		{name: "backslash", key: "orders\\file", ok: false},
		{name: "empty segment", key: "orders//file", ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateKey(tc.key)
			if tc.ok && err != nil {
				t.Fatalf("ValidateKey(%q) = %v, want nil", tc.key, err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("ValidateKey(%q) = %v, want ErrInvalidKey", tc.key, err)
			}
		})
	}
}

func TestLocalProviderRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p, err := NewLocalProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalProvider() error: %v", err)
	}

	key := "orders/cv-abc123defg/items/cv-1234567890/customer_photo/deadbeef.jpg"
	if err := p.Put(ctx, key, "image/jpeg", strings.NewReader("photo-bytes")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	exists, err := p.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v, want true, nil", exists, err)
	}

	rc, err := p.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != "photo-bytes" {
		t.Fatalf("Open() read %q, %v", data, err)
	}

	if err := p.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	exists, err = p.Exists(ctx, key)
	if err != nil || exists {
		t.Fatalf("Exists() after delete = %v, %v, want false, nil", exists, err)
	}

	// Deleting a missing key is not an error.
	if err := p.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() of missing key error: %v", err)
	}
}

func TestLocalProviderRejectsEscapingKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p, err := NewLocalProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalProvider() error: %v", err)
	}

	if err := p.Put(ctx, "../outside.txt", "image/png", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Put(escaping key) = %v, want ErrInvalidKey", err)
	}
	if _, err := p.Open(ctx, "/abs/path"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Open(absolute key) = %v, want ErrInvalidKey", err)
	}
}

func TestObjectKeyShape(t *testing.T) {
	t.Parallel()

	key, err := ObjectKey("cv-abc123defg", "cv-1234567890", "CUSTOMER_PHOTO", "image/webp")
	if err != nil {
		t.Fatalf("ObjectKey() error: %v", err)
	}
	if !strings.HasPrefix(key, "orders/cv-abc123defg/items/cv-1234567890/customer_photo/") {
		t.Fatalf("ObjectKey() = %q, wrong prefix", key)
	}
	if !strings.HasSuffix(key, ".webp") {
		t.Fatalf("ObjectKey() = %q, wrong extension", key)
	}
	if !KeyWithinOrder(key, "cv-abc123defg") {
		t.Fatalf("KeyWithinOrder(%q) = false, want true", key)
	}
	if KeyWithinOrder(key, "cv-otherorder") {
		t.Fatal("KeyWithinOrder() accepted a foreign order")
	}

	if _, err := ObjectKey("cv-abc123defg", "cv-1234567890", "CUSTOMER_PHOTO", "application/pdf"); !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("ObjectKey(pdf) = %v, want ErrUnsupportedContentType", err)
	}
}
