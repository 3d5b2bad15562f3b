package model

import "time"

// Email dispatch statuses for an RFP-vendor link.
const (
	EmailStatusPending = "pending"
	EmailStatusSending = "sending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// RFPVendor records that an RFP was dispatched to a vendor. The message id
// correlates inbound replies back to this pair.
type RFPVendor struct {
	ID             int       `json:"id"`
	RFPID          int       `json:"rfp_id"`
	VendorID       int       `json:"vendor_id"`
	SentAt         time.Time `json:"sent_at"`
	EmailStatus    string    `json:"email_status"`
	EmailMessageID string    `json:"email_message_id"`

	VendorName  string `json:"vendor_name,omitempty"`
	VendorEmail string `json:"vendor_email,omitempty"`
}
