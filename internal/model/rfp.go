package model

import (
	"encoding/json"
	"time"
)

// RFP statuses.
const (
	RFPStatusDraft     = "draft"
	RFPStatusSent      = "sent"
	RFPStatusClosed    = "closed"
	RFPStatusCancelled = "cancelled"
)

type RFP struct {
	ID                      int             `json:"id"`
	UserID                  int             `json:"user_id"`
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	StructuredRequirements  json.RawMessage `json:"structured_requirements"`
	Status                  string          `json:"status"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// RFPPatch is a partial update; nil fields are left untouched.
type RFPPatch struct {
	Title                  *string
	Description            *string
	StructuredRequirements *string
	Status                 *string
}

// Requirements mirrors the structured_requirements JSON document generated from
// the free-text description. Field names are part of the stored data contract.
type Requirements struct {
	Items    []RequirementItem `json:"items"`
	Budget   Budget            `json:"budget"`
	Timeline ReqTimeline       `json:"timeline"`
	Terms    Terms             `json:"terms"`
}

type RequirementItem struct {
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Specifications string  `json:"specifications"`
}

type Budget struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type ReqTimeline struct {
	Deadline       string `json:"deadline"`
	DeliveryWindow string `json:"delivery_window"`
}

type Terms struct {
	Payment  string `json:"payment"`
	Warranty string `json:"warranty"`
	Support  string `json:"support"`
}

// ParseRequirements normalizes a stored structured_requirements value. Older
// rows may hold a JSON string wrapping the document; malformed content degrades
// to an empty document instead of failing the whole operation.
func ParseRequirements(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	data := []byte(raw)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(s)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return map[string]any{}
	}
	return doc
}
