package service

import (
	"strings"

	"github.com/google/uuid"
)

// bookingNamespace scopes the shipment IDs derived from draft IDs.
var bookingNamespace = uuid.MustParse("6f1c1b8e-2d4a-4b7e-9a53-0c6f1e2b7d10")

// shipmentIDForDraft is stable for a draft, so a confirmation that is
// retried after a partial failure charges and stores the same shipment.
func shipmentIDForDraft(draftID string) string {
	return uuid.NewSHA1(bookingNamespace, []byte(draftID)).String()
}

// trackingNumberFor derives "GE" plus 10 upper-case hex characters from the shipment ID.
func trackingNumberFor(shipmentID string) string {
	hex := strings.ReplaceAll(shipmentID, "-", "")
	if len(hex) < 10 {
		hex = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return "GE" + strings.ToUpper(hex[:10])
}

// NormalizeTrackingNumber makes lookups tolerant of case and surrounding spaces.
func NormalizeTrackingNumber(tn string) string {
	return strings.ToUpper(strings.TrimSpace(tn))
}
