package service

import (
	"context"

	"go.uber.org/zap"

	"rfpflow/internal/ai"
	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
)

// Comparer is the model-backed comparison surface.
type Comparer interface {
	CompareProposals(ctx context.Context, proposals []ai.ProposalSummary, requirements map[string]any) (*ai.Comparison, error)
}

type ComparisonService struct {
	rfps      RFPReader
	proposals ProposalLister
	ai        Comparer
	logger    *zap.Logger
}

func NewComparisonService(rfps RFPReader, proposals ProposalLister, cmp Comparer, logger *zap.Logger) *ComparisonService {
	return &ComparisonService{
		rfps:      rfps,
		proposals: proposals,
		ai:        cmp,
		logger:    logger,
	}
}

// ComparisonResult is the comparison payload returned to callers: the model's
// verdict plus the proposals it was computed over.
type ComparisonResult struct {
	Summary        string             `json:"summary"`
	Recommendation *ai.Recommendation `json:"recommendation"`
	Rankings       []ai.Ranking       `json:"rankings"`
	Proposals      []model.Proposal   `json:"proposals"`
}

const noProposalsSummary = "No proposals have been received yet for this RFP."

// Compare ranks the active proposals of an RFP. With no proposals it returns
// a fixed empty verdict instead of calling the model.
func (s *ComparisonService) Compare(ctx context.Context, rfpID int) (*ComparisonResult, error) {
	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}

	proposals, err := s.proposals.ListByRFPID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return &ComparisonResult{
			Summary:        noProposalsSummary,
			Recommendation: nil,
			Rankings:       []ai.Ranking{},
			Proposals:      []model.Proposal{},
		}, nil
	}

	summaries := make([]ai.ProposalSummary, 0, len(proposals))
	for _, p := range proposals {
		summaries = append(summaries, ai.ProposalSummary{
			ID:          p.ID,
			VendorID:    p.VendorID,
			VendorName:  p.VendorName,
			VendorEmail: p.VendorEmail,
			Proposal:    p.StructuredProposal,
			Scores:      p.AIScores,
		})
	}

	requirements := model.ParseRequirements(rfp.StructuredRequirements)
	cmp, err := s.ai.CompareProposals(ctx, summaries, requirements)
	if err != nil {
		return nil, err
	}

	s.logger.Info("proposals compared",
		zap.Int("rfp_id", rfpID),
		zap.Int("count", len(proposals)))
	return &ComparisonResult{
		Summary:        cmp.Summary,
		Recommendation: cmp.Recommendation,
		Rankings:       cmp.Rankings,
		Proposals:      proposals,
	}, nil
}
