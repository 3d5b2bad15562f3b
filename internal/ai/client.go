package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/config"
	"rfpflow/pkg/metrics"
)

// Sampling temperatures. Structured tasks lean deterministic; title generation
// is allowed slightly more freedom.
const (
	structuredTemperature = 0.1
	titleTemperature      = 0.3
)

// Client calls a Groq/OpenAI-compatible chat completions endpoint and turns
// free-form model output into the structured documents the rest of the system
// stores. All JSON extraction and validation happens here; callers only ever
// see schema-conforming documents or a typed error.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete sends one system+user prompt pair and returns the raw text of the
// first choice. forceJSON asks the endpoint for its JSON output mode; the
// response is still extracted and validated locally.
func (c *Client) complete(ctx context.Context, task, system, user string, temperature float64, forceJSON bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}
	if forceJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAICallLatency(task, "transport_error", time.Since(start))
		return "", apperr.AIUnavailable("completion request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAICallLatency(task, "transport_error", time.Since(start))
		return "", apperr.AIUnavailable("failed to read completion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordAICallLatency(task, fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))
		return "", apperr.AIUnavailable(
			fmt.Sprintf("completion endpoint returned status %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(respBody))),
		)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		metrics.RecordAICallLatency(task, "malformed", time.Since(start))
		return "", apperr.AIMalformed("completion response is not valid JSON", err)
	}
	if parsed.Error != nil {
		metrics.RecordAICallLatency(task, "api_error", time.Since(start))
		return "", apperr.AIUnavailable("completion endpoint error", fmt.Errorf("%s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		metrics.RecordAICallLatency(task, "malformed", time.Since(start))
		return "", apperr.AIMalformed("completion response has no choices", nil)
	}

	metrics.RecordAICallLatency(task, "ok", time.Since(start))

	c.logger.Debug("Completion finished",
		zap.String("task", task),
		zap.Duration("latency", time.Since(start)),
	)

	return parsed.Choices[0].Message.Content, nil
}

// completeJSON runs a structured task and unmarshals the extracted JSON object
// into out.
func (c *Client) completeJSON(ctx context.Context, task, system, user string, out any) error {
	content, err := c.complete(ctx, task, system, user, structuredTemperature, true)
	if err != nil {
		return err
	}

	extracted := ExtractJSON(content)
	if extracted == "" {
		return apperr.AIMalformed(fmt.Sprintf("%s output contains no JSON object", task), nil)
	}
	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return apperr.AIMalformed(fmt.Sprintf("%s output is not valid JSON", task), err)
	}
	return nil
}

// GenerateRequirements converts a free-text RFP description into the
// structured_requirements document.
func (c *Client) GenerateRequirements(ctx context.Context, description string) (json.RawMessage, error) {
	var doc map[string]any
	if err := c.completeJSON(ctx, "generate_requirements", systemPrompt, requirementsPrompt(description), &doc); err != nil {
		return nil, err
	}
	if err := validateRequirementsDoc(doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// GenerateTitle produces a short display title for an RFP description. The
// caller truncates to its display limit.
func (c *Client) GenerateTitle(ctx context.Context, description string) (string, error) {
	content, err := c.complete(ctx, "generate_title", systemPrompt, titlePrompt(description), titleTemperature, false)
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(content)
	title = strings.Trim(title, `"`)
	if title == "" {
		return "", apperr.AIMalformed("generate_title output is empty", nil)
	}
	return title, nil
}

// ParseProposal turns a raw vendor email into the structured_proposal
// document, using the RFP requirements for quantity and deadline context.
func (c *Client) ParseProposal(ctx context.Context, emailContent string, requirements map[string]any) (json.RawMessage, error) {
	reqJSON, _ := json.Marshal(requirements)
	var doc map[string]any
	if err := c.completeJSON(ctx, "parse_proposal", systemPrompt, parseProposalPrompt(emailContent, string(reqJSON)), &doc); err != nil {
		return nil, err
	}
	if err := validateProposalDoc(doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ScoreProposal scores a structured proposal against the RFP requirements.
// A missing overall_score is defaulted to the mean of the three component
// scores.
func (c *Client) ScoreProposal(ctx context.Context, structuredProposal json.RawMessage, requirements map[string]any) (json.RawMessage, error) {
	reqJSON, _ := json.Marshal(requirements)
	var doc map[string]any
	if err := c.completeJSON(ctx, "score_proposal", systemPrompt, scoreProposalPrompt(string(structuredProposal), string(reqJSON)), &doc); err != nil {
		return nil, err
	}
	if err := validateScoresDoc(doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ProposalSummary is the reduced view of a proposal handed to the comparison
// task: identity plus the already-structured pricing/timeline/terms and scores.
type ProposalSummary struct {
	ID          int             `json:"id"`
	VendorID    int             `json:"vendor_id"`
	VendorName  string          `json:"vendor_name,omitempty"`
	VendorEmail string          `json:"vendor_email,omitempty"`
	Proposal    json.RawMessage `json:"structured_proposal,omitempty"`
	Scores      json.RawMessage `json:"ai_scores,omitempty"`
}

// Comparison is the result of the compare-proposals task.
type Comparison struct {
	Summary        string          `json:"summary"`
	Recommendation *Recommendation `json:"recommendation"`
	Rankings       []Ranking       `json:"rankings"`
}

type Recommendation struct {
	VendorID int    `json:"vendor_id"`
	Reason   string `json:"reason"`
}

type Ranking struct {
	VendorID int     `json:"vendor_id"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
}

// CompareProposals ranks all proposals for an RFP and names a recommended
// vendor. The rankings must cover every compared vendor exactly once with
// ranks 1..N; anything else is rejected as malformed output.
func (c *Client) CompareProposals(ctx context.Context, proposals []ProposalSummary, requirements map[string]any) (*Comparison, error) {
	propJSON, _ := json.Marshal(proposals)
	reqJSON, _ := json.Marshal(requirements)

	var cmp Comparison
	if err := c.completeJSON(ctx, "compare_proposals", systemPrompt, comparePrompt(string(propJSON), string(reqJSON)), &cmp); err != nil {
		return nil, err
	}

	vendorIDs := make([]int, 0, len(proposals))
	for _, p := range proposals {
		vendorIDs = append(vendorIDs, p.VendorID)
	}
	if err := validateComparison(&cmp, vendorIDs); err != nil {
		return nil, err
	}
	return &cmp, nil
}
