package mq

import "time"

// Routing keys published on the events exchange.
const (
	RoutingKeyProposalProcess = "proposal.process"
)

// ProposalProcessPayload asks the worker to run AI parsing and scoring for a
// proposal that was just created (manually or from an inbound email).
type ProposalProcessPayload struct {
	ProposalID int       `json:"proposal_id"`
	RFPID      int       `json:"rfp_id"`
	VendorID   int       `json:"vendor_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
