package publicid

import "testing"

func TestNew(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := New()
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if !Valid(id) {
			t.Fatalf("New() produced invalid id %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("New() produced duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want bool
	}{
		{id: "cv-abc123xyz0", want: true},
		{id: "cv-0123456789", want: true},
		{id: "", want: false},
		{id: "cv-", want: false},
		{id: "cv-short", want: false},
		{id: "cv-toolongtoolong", want: false},
		{id: "xx-abc123xyz0", want: false},
		{id: "cv-ABC123XYZ0", want: false},
		{id: "cv-abc123xyz!", want: false},
	}

	for _, tc := range tests {
		if got := Valid(tc.id); got != tc.want {
			t.Fatalf("Valid(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
