package model

import (
	"encoding/json"
	"time"
)

// Proposal processing statuses. received/pending are pre-processing states
// (manual submission vs. inbound email), processing is transient, and
// completed/failed are terminal until an explicit reprocess.
const (
	ProposalStatusReceived   = "received"
	ProposalStatusPending    = "pending"
	ProposalStatusProcessing = "processing"
	ProposalStatusCompleted  = "completed"
	ProposalStatusFailed     = "failed"
)

type Proposal struct {
	ID                 int             `json:"id"`
	RFPID              int             `json:"rfp_id"`
	VendorID           int             `json:"vendor_id"`
	RawEmailContent    string          `json:"raw_email_content"`
	EmailSubject       string          `json:"email_subject"`
	StructuredProposal json.RawMessage `json:"structured_proposal"`
	AIScores           json.RawMessage `json:"ai_scores"`
	ProcessingStatus   string          `json:"processing_status"`
	Archived           bool            `json:"archived"`
	ReceivedAt         time.Time       `json:"received_at"`
	ProcessedAt        *time.Time      `json:"processed_at"`

	// Joined vendor identity, populated by list queries.
	VendorName  string `json:"vendor_name,omitempty"`
	VendorEmail string `json:"vendor_email,omitempty"`
}

// StructuredProposalDoc mirrors the structured_proposal JSON document.
type StructuredProposalDoc struct {
	Pricing        Pricing          `json:"pricing"`
	Timeline       ProposalTimeline `json:"timeline"`
	Terms          Terms            `json:"terms"`
	Specifications map[string]any   `json:"specifications"`
	Notes          string           `json:"notes"`
}

type Pricing struct {
	Total     float64   `json:"total"`
	PerUnit   float64   `json:"per_unit"`
	Breakdown []float64 `json:"breakdown"`
}

type ProposalTimeline struct {
	DeliveryDate string `json:"delivery_date"`
	LeadTime     string `json:"lead_time"`
}

// Scores mirrors the ai_scores JSON document.
type Scores struct {
	PriceScore    float64 `json:"price_score"`
	TimelineScore float64 `json:"timeline_score"`
	TermsScore    float64 `json:"terms_score"`
	OverallScore  float64 `json:"overall_score"`
	Analysis      string  `json:"analysis"`
}
