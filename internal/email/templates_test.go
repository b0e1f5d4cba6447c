package email

import (
	"strings"
	"testing"
)

func TestOrderPaidNotification(t *testing.T) {
	t.Parallel()

	mail := OrderPaidNotification("ops@canvist.example", "cv-abc123defg", 3, 31897)
	if mail.To != "ops@canvist.example" {
		t.Fatalf("To = %q", mail.To)
	}
	if !strings.Contains(mail.Subject, "cv-abc123defg") {
		t.Fatalf("Subject = %q, missing order id", mail.Subject)
	}
	if !strings.Contains(mail.Text, "318.97") {
		t.Fatalf("Text = %q, missing formatted total", mail.Text)
	}
}

func TestPasswordResetEmailCarriesLink(t *testing.T) {
	t.Parallel()

	mail := PasswordResetEmail("ana@example.com", "https://canvist.example/reset?token=abc")
	if !strings.Contains(mail.Text, "https://canvist.example/reset?token=abc") {
		t.Fatalf("Text = %q, missing reset link", mail.Text)
	}
	if !strings.Contains(mail.Text, "15 minutes") {
		t.Fatalf("Text = %q, missing validity note", mail.Text)
	}
}
