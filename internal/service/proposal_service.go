package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/email"
	"rfpflow/internal/model"
	"rfpflow/internal/mq"
	"rfpflow/pkg/metrics"
)

// ProposalStore is the persistence surface ProposalService needs.
type ProposalStore interface {
	Create(ctx context.Context, p *model.Proposal) error
	FindByID(ctx context.Context, id int) (*model.Proposal, error)
	ListByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error)
	ListByStatus(ctx context.Context, status string) ([]model.Proposal, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	SaveResults(ctx context.Context, id int, structuredProposal, aiScores string) error
	Delete(ctx context.Context, id int) error
}

// ProposalAI is the model-backed parsing and scoring surface.
type ProposalAI interface {
	ParseProposal(ctx context.Context, emailContent string, requirements map[string]any) (json.RawMessage, error)
	ScoreProposal(ctx context.Context, structuredProposal json.RawMessage, requirements map[string]any) (json.RawMessage, error)
}

// RFPReader resolves the RFP a proposal answers.
type RFPReader interface {
	FindByID(ctx context.Context, id int) (*model.RFP, error)
}

// VendorReader resolves the vendor a proposal came from.
type VendorReader interface {
	FindByID(ctx context.Context, id int) (*model.Vendor, error)
}

// ProcessLocker is the single-flight lock over one proposal's AI run.
type ProcessLocker interface {
	Acquire(ctx context.Context, proposalID int) bool
	Release(ctx context.Context, proposalID int)
}

// EventPublisher publishes events on the message exchange.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type ProposalService struct {
	proposals ProposalStore
	rfps      RFPReader
	vendors   VendorReader
	ai        ProposalAI
	lock      ProcessLocker
	publisher EventPublisher
	poolSize  int
	logger    *zap.Logger
}

func NewProposalService(
	proposals ProposalStore,
	rfps RFPReader,
	vendors VendorReader,
	ai ProposalAI,
	lock ProcessLocker,
	publisher EventPublisher,
	poolSize int,
	logger *zap.Logger,
) *ProposalService {
	if poolSize < 1 {
		poolSize = 1
	}
	return &ProposalService{
		proposals: proposals,
		rfps:      rfps,
		vendors:   vendors,
		ai:        ai,
		lock:      lock,
		publisher: publisher,
		poolSize:  poolSize,
		logger:    logger,
	}
}

type ProposalInput struct {
	RFPID           int    `json:"rfp_id"`
	VendorID        int    `json:"vendor_id"`
	RawEmailContent string `json:"raw_email_content"`
	EmailSubject    string `json:"email_subject"`
	Status          string `json:"processing_status"`
}

// Create records a new proposal submission. Content is size-checked and
// sanitized on the way in, for manual submissions as well as inbound email.
func (s *ProposalService) Create(ctx context.Context, in ProposalInput) (*model.Proposal, error) {
	if in.RFPID == 0 || in.VendorID == 0 || in.RawEmailContent == "" {
		return nil, apperr.Validation("rfp_id, vendor_id and raw_email_content are required")
	}
	if err := email.ValidateSize(in.RawEmailContent); err != nil {
		return nil, err
	}
	if _, err := s.rfps.FindByID(ctx, in.RFPID); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	if _, err := s.vendors.FindByID(ctx, in.VendorID); err != nil {
		return nil, apperr.FromDB(err, "vendor")
	}

	status := in.Status
	if status == "" {
		status = model.ProposalStatusReceived
	}
	if status != model.ProposalStatusReceived && status != model.ProposalStatusPending {
		return nil, apperr.Validation("processing_status must be received or pending")
	}

	p := &model.Proposal{
		RFPID:            in.RFPID,
		VendorID:         in.VendorID,
		RawEmailContent:  email.Sanitize(in.RawEmailContent),
		EmailSubject:     in.EmailSubject,
		ProcessingStatus: status,
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, apperr.FromDB(err, "proposal")
	}
	return p, nil
}

// Enqueue publishes a processing request for the proposal. The API side never
// runs AI work in-line; the worker picks the message up from the queue.
func (s *ProposalService) Enqueue(p *model.Proposal) error {
	return s.publisher.Publish(mq.RoutingKeyProposalProcess, mq.ProposalProcessPayload{
		ProposalID: p.ID,
		RFPID:      p.RFPID,
		VendorID:   p.VendorID,
		EnqueuedAt: time.Now(),
	})
}

// EnqueuePending publishes a processing request for every pending proposal
// and returns how many were queued.
func (s *ProposalService) EnqueuePending(ctx context.Context) (int, error) {
	pending, err := s.proposals.ListByStatus(ctx, model.ProposalStatusPending)
	if err != nil {
		return 0, err
	}
	for i := range pending {
		if err := s.Enqueue(&pending[i]); err != nil {
			return i, err
		}
	}
	return len(pending), nil
}

// ListByRFP returns the active proposals submitted against one RFP.
func (s *ProposalService) ListByRFP(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	if _, err := s.rfps.FindByID(ctx, rfpID); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return s.proposals.ListByRFPID(ctx, rfpID)
}

func (s *ProposalService) Get(ctx context.Context, id int) (*model.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "proposal")
	}
	return p, nil
}

// Process runs the AI pipeline for one proposal: parse the raw email into a
// structured document, score it against the RFP requirements, persist both.
// Any failure lands the proposal in failed with the error returned to the
// caller; a proposal is never left stuck in processing.
func (s *ProposalService) Process(ctx context.Context, proposalID int) (*model.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, apperr.FromDB(err, "proposal")
	}
	if p.Archived {
		return nil, apperr.Validation("proposal %d is archived", proposalID)
	}

	if !s.lock.Acquire(ctx, proposalID) {
		return nil, apperr.Duplicate("proposal %d is already being processed", proposalID)
	}
	defer s.lock.Release(ctx, proposalID)

	return s.run(ctx, p)
}

// Reprocess resets a proposal to pending and runs the pipeline again,
// overwriting earlier results. The lock is taken before the status reset so
// a concurrent run never observes a completed proposal marked pending.
func (s *ProposalService) Reprocess(ctx context.Context, proposalID int) (*model.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, apperr.FromDB(err, "proposal")
	}
	if p.Archived {
		return nil, apperr.Validation("proposal %d is archived", proposalID)
	}

	if !s.lock.Acquire(ctx, proposalID) {
		return nil, apperr.Duplicate("proposal %d is already being processed", proposalID)
	}
	defer s.lock.Release(ctx, proposalID)

	if err := s.proposals.UpdateStatus(ctx, proposalID, model.ProposalStatusPending); err != nil {
		return nil, err
	}
	return s.run(ctx, p)
}

// run executes parse and score for one proposal. The caller holds the
// single-flight lock. Every failure past the processing transition, including
// a failed result write, moves the row to failed.
func (s *ProposalService) run(ctx context.Context, p *model.Proposal) (*model.Proposal, error) {
	rfp, err := s.rfps.FindByID(ctx, p.RFPID)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}

	if err := s.proposals.UpdateStatus(ctx, p.ID, model.ProposalStatusProcessing); err != nil {
		return nil, err
	}

	requirements := model.ParseRequirements(rfp.StructuredRequirements)

	structured, aiErr := s.ai.ParseProposal(ctx, p.RawEmailContent, requirements)
	var scores json.RawMessage
	if aiErr == nil {
		scores, aiErr = s.ai.ScoreProposal(ctx, structured, requirements)
	}
	if aiErr != nil {
		s.markFailed(ctx, p.ID)
		s.logger.Error("proposal processing failed",
			zap.Int("proposal_id", p.ID), zap.Error(aiErr))
		return nil, aiErr
	}

	if err := s.proposals.SaveResults(ctx, p.ID, string(structured), string(scores)); err != nil {
		s.markFailed(ctx, p.ID)
		s.logger.Error("failed to persist processing results",
			zap.Int("proposal_id", p.ID), zap.Error(err))
		return nil, err
	}
	metrics.IncrementProposalProcessed(model.ProposalStatusCompleted)

	s.logger.Info("proposal processed",
		zap.Int("proposal_id", p.ID),
		zap.Int("rfp_id", p.RFPID))
	return s.proposals.FindByID(ctx, p.ID)
}

func (s *ProposalService) markFailed(ctx context.Context, proposalID int) {
	if err := s.proposals.UpdateStatus(ctx, proposalID, model.ProposalStatusFailed); err != nil {
		s.logger.Error("failed to mark proposal failed",
			zap.Int("proposal_id", proposalID), zap.Error(err))
	}
	metrics.IncrementProposalProcessed(model.ProposalStatusFailed)
}

// BatchResult reports one proposal's outcome in a batch run.
type BatchResult struct {
	ProposalID int    `json:"proposal_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// ProcessPending drains the pending backlog through a bounded worker pool.
// Each proposal settles independently; one failure never stops the batch.
func (s *ProposalService) ProcessPending(ctx context.Context) ([]BatchResult, error) {
	pending, err := s.proposals.ListByStatus(ctx, model.ProposalStatusPending)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []BatchResult{}, nil
	}

	results := make([]BatchResult, len(pending))
	sem := make(chan struct{}, s.poolSize)
	var wg sync.WaitGroup

	for i, p := range pending {
		wg.Add(1)
		go func(i, proposalID int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			_, err := s.Process(ctx, proposalID)
			if err != nil {
				results[i] = BatchResult{ProposalID: proposalID, Success: false, Error: err.Error()}
				return
			}
			results[i] = BatchResult{ProposalID: proposalID, Success: true}
		}(i, p.ID)
	}
	wg.Wait()

	return results, nil
}

func (s *ProposalService) Delete(ctx context.Context, id int) error {
	if _, err := s.proposals.FindByID(ctx, id); err != nil {
		return apperr.FromDB(err, "proposal")
	}
	return s.proposals.Delete(ctx, id)
}
