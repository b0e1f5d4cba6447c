package email

import (
	"fmt"
	"strings"
)

// OrderPaidNotification tells the back office a mock payment came in and
// preview work is due.
func OrderPaidNotification(adminEmail, orderPublicID string, itemCount int, totalBani int) *Email {
	return &Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("New paid order %s", orderPublicID),
		Text: strings.Join([]string{
			fmt.Sprintf("Order %s has been paid.", orderPublicID),
			fmt.Sprintf("Items awaiting preview: %d", itemCount),
			fmt.Sprintf("Total: %.2f RON", float64(totalBani)/100),
			"",
			"Upload previews from the admin dashboard.",
		}, "\n"),
	}
}

// RevisionRequestedNotification tells the back office a customer used their
// revision.
func RevisionRequestedNotification(adminEmail, orderPublicID, itemPublicID, notes string) *Email {
	return &Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("Revision requested on order %s", orderPublicID),
		Text: strings.Join([]string{
			fmt.Sprintf("Item %s of order %s needs a new preview.", itemPublicID, orderPublicID),
			"",
			"Customer notes:",
			notes,
		}, "\n"),
	}
}

// PreviewReadyNotification tells the customer a preview is waiting for
// approval.
func PreviewReadyNotification(customerEmail, orderPublicID, orderURL string) *Email {
	return &Email{
		To:      customerEmail,
		Subject: "Your preview is ready",
		Text: strings.Join([]string{
			fmt.Sprintf("A preview for your order %s is ready.", orderPublicID),
			"",
			"Review it and approve, or request one revision:",
			orderURL,
		}, "\n"),
	}
}

// PasswordResetEmail carries the short-lived reset link.
func PasswordResetEmail(customerEmail, resetURL string) *Email {
	return &Email{
		To:      customerEmail,
		Subject: "Reset your Canvist password",
		Text: strings.Join([]string{
			"We received a request to reset your password.",
			"",
			"The link below is valid for 15 minutes:",
			resetURL,
			"",
			"If you did not request this, you can ignore this email.",
		}, "\n"),
	}
}
