package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/mq"
	"rfpflow/internal/service"
	"rfpflow/pkg/metrics"
)

// ProposalProcessHandler consumes proposal.process messages and runs the AI
// pipeline for each one.
type ProposalProcessHandler struct {
	proposalService *service.ProposalService
	logger          *zap.Logger
}

func NewProposalProcessHandler(proposalService *service.ProposalService, logger *zap.Logger) *ProposalProcessHandler {
	return &ProposalProcessHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// HandleProposalProcess decodes the payload and processes the proposal.
// Processing failures are persisted by the service as a terminal failed
// status; only a vanished proposal or a duplicate in-flight run is treated
// as already settled here.
func (h *ProposalProcessHandler) HandleProposalProcess(ctx context.Context, raw json.RawMessage) error {
	var p mq.ProposalProcessPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal proposal process payload", zap.Error(err))
		return fmt.Errorf("%w: %v", mq.ErrBadPayload, err)
	}

	h.logger.Info("Processing proposal",
		zap.Int("proposal_id", p.ProposalID),
		zap.Int("rfp_id", p.RFPID),
		zap.Int("vendor_id", p.VendorID),
	)

	start := time.Now()
	_, err := h.proposalService.Process(ctx, p.ProposalID)
	metrics.RecordMQConsumeLatency(mq.RoutingKeyProposalProcess, "proposal.process.q", time.Since(start))

	if err != nil {
		if apperr.IsNotFound(err) || apperr.IsDuplicate(err) {
			h.logger.Warn("Proposal processing skipped",
				zap.Int("proposal_id", p.ProposalID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	h.logger.Info("Proposal processed from queue",
		zap.Int("proposal_id", p.ProposalID),
	)
	return nil
}
