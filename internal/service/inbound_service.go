package service

import (
	"context"

	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/email"
	"rfpflow/internal/model"
)

// InboundEmailService turns inbound vendor email into proposals. Resolution
// to an RFP and vendor is done by the classifier; unrelated mail is rejected
// without touching the database.
type InboundEmailService struct {
	proposals *ProposalService
	logger    *zap.Logger
}

func NewInboundEmailService(proposals *ProposalService, logger *zap.Logger) *InboundEmailService {
	return &InboundEmailService{proposals: proposals, logger: logger}
}

// Handle classifies an inbound email, records the proposal as pending, and
// enqueues it for AI processing.
func (s *InboundEmailService) Handle(ctx context.Context, msg email.InboundEmail) (*model.Proposal, error) {
	if msg.Body == "" {
		return nil, apperr.Validation("email body is required")
	}
	if err := email.ValidateSize(msg.Body); err != nil {
		return nil, err
	}

	rfpID, vendorID := email.Classify(msg)
	if rfpID == nil || vendorID == nil {
		s.logger.Info("inbound email not related to any rfp, skipping",
			zap.String("from", msg.From),
			zap.String("subject", msg.Subject))
		return nil, apperr.Validation("email could not be matched to an rfp and vendor")
	}

	p, err := s.proposals.Create(ctx, ProposalInput{
		RFPID:           *rfpID,
		VendorID:        *vendorID,
		RawEmailContent: msg.Body,
		EmailSubject:    msg.Subject,
		Status:          model.ProposalStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if err := s.proposals.Enqueue(p); err != nil {
		s.logger.Error("failed to enqueue proposal processing",
			zap.Int("proposal_id", p.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("inbound proposal recorded",
		zap.Int("proposal_id", p.ID),
		zap.Int("rfp_id", *rfpID),
		zap.Int("vendor_id", *vendorID))
	return p, nil
}
