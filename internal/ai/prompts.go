package ai

import (
	"fmt"
	"time"
)

const systemPrompt = "You are a procurement assistant. You convert RFP and vendor proposal text into structured data. Follow the requested output format exactly."

func requirementsPrompt(description string) string {
	return fmt.Sprintf(`Convert this RFP description into structured JSON format:
"%s"

Return only valid JSON with this structure:
{
  "items": [{"name": "string", "quantity": number, "specifications": "string"}],
  "budget": {"min": number, "max": number, "currency": "USD"},
  "timeline": {"deadline": "YYYY-MM-DD", "delivery_window": "string"},
  "terms": {"payment": "string", "warranty": "string", "support": "string"}
}`, description)
}

func titlePrompt(description string) string {
	return fmt.Sprintf(`Generate a short title (at most 10 words) for an RFP with this description:
"%s"

Return only the title text, with no quotes and no explanation.`, description)
}

func parseProposalPrompt(emailContent, requirementsJSON string) string {
	today := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`Parse this vendor email into structured proposal data:
Email: "%s"
RFP Requirements: %s

Rules:
- Today's date is %s. Resolve relative dates ("tomorrow", "next week", "in N days") against it.
- If only a per-unit price is given, total = per_unit multiplied by the requested quantity.
- If only a total price is given, per_unit = total divided by the requested quantity.
- Leave fields null or empty when the email does not state them. Never invent data.

Return only valid JSON:
{
  "pricing": {"total": number, "per_unit": number, "breakdown": []},
  "timeline": {"delivery_date": "YYYY-MM-DD", "lead_time": "string"},
  "terms": {"payment": "string", "warranty": "string", "support": "string"},
  "specifications": {},
  "notes": "string"
}`, emailContent, requirementsJSON, today)
}

func scoreProposalPrompt(proposalJSON, requirementsJSON string) string {
	return fmt.Sprintf(`Score this proposal against RFP requirements (0-10 scale):
Proposal: %s
Requirements: %s

Scoring guide:
- price_score: 9 when the total price is within the budget maximum, lower as it exceeds the budget.
- timeline_score: 9 when the delivery date is on or before the deadline.
- terms_score: 8 when both payment and warranty terms are present.
- overall_score: the mean of price_score, timeline_score and terms_score.

Return only valid JSON:
{
  "price_score": number,
  "timeline_score": number,
  "terms_score": number,
  "overall_score": number,
  "analysis": "brief explanation"
}`, proposalJSON, requirementsJSON)
}

func comparePrompt(proposalsJSON, requirementsJSON string) string {
	return fmt.Sprintf(`Compare these proposals and recommend the best one:
Proposals: %s
Requirements: %s

The recommendation reason must reference concrete figures: price against budget, delivery speed, and terms. Rankings must cover every proposal exactly once with ranks 1..N.

Return only valid JSON:
{
  "summary": "comparison summary",
  "recommendation": {"vendor_id": number, "reason": "string"},
  "rankings": [{"vendor_id": number, "rank": number, "score": number}]
}`, proposalsJSON, requirementsJSON)
}
