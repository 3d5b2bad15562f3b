package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rfpflow/internal/ai"
	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
)

func newComparisonFixture(t *testing.T) (*ComparisonService, *fakeRFPStore, *fakeProposalStore, *stubComparer) {
	t.Helper()
	rfps := newFakeRFPStore()
	proposals := newFakeProposalStore()
	cmp := &stubComparer{
		compareFn: func(ps []ai.ProposalSummary, requirements map[string]any) (*ai.Comparison, error) {
			t.Fatal("comparer must not be called")
			return nil, nil
		},
	}
	svc := NewComparisonService(rfps, proposals, cmp, zap.NewNop())
	return svc, rfps, proposals, cmp
}

func TestCompareNoProposals(t *testing.T) {
	svc, rfps, _, _ := newComparisonFixture(t)
	rfp := &model.RFP{UserID: 1, Title: "Laptops", Description: "d", Status: model.RFPStatusSent}
	require.NoError(t, rfps.Create(context.Background(), rfp))

	result, err := svc.Compare(context.Background(), rfp.ID)
	require.NoError(t, err)

	assert.Equal(t, "No proposals have been received yet for this RFP.", result.Summary)
	assert.Nil(t, result.Recommendation)
	assert.Empty(t, result.Rankings)
	assert.Empty(t, result.Proposals)
}

func TestCompareRankedResult(t *testing.T) {
	svc, rfps, proposals, cmp := newComparisonFixture(t)
	rfp := &model.RFP{
		UserID:                 1,
		Title:                  "Laptops",
		Description:            "d",
		StructuredRequirements: json.RawMessage(`{"budget":{"max":10000}}`),
		Status:                 model.RFPStatusSent,
	}
	require.NoError(t, rfps.Create(context.Background(), rfp))

	for vendorID := 1; vendorID <= 2; vendorID++ {
		p := &model.Proposal{
			RFPID:              rfp.ID,
			VendorID:           vendorID,
			RawEmailContent:    "offer",
			ProcessingStatus:   model.ProposalStatusCompleted,
			StructuredProposal: json.RawMessage(`{"pricing":{"total":9500}}`),
			AIScores:           json.RawMessage(`{"overall_score":8}`),
		}
		require.NoError(t, proposals.Create(context.Background(), p))
	}

	cmp.compareFn = func(ps []ai.ProposalSummary, requirements map[string]any) (*ai.Comparison, error) {
		assert.Len(t, ps, 2)
		assert.Equal(t, 10000.0, requirements["budget"].(map[string]any)["max"])
		return &ai.Comparison{
			Summary:        "vendor 2 wins on price",
			Recommendation: &ai.Recommendation{VendorID: 2, Reason: "cheapest"},
			Rankings: []ai.Ranking{
				{VendorID: 2, Rank: 1, Score: 8.7},
				{VendorID: 1, Rank: 2, Score: 7.2},
			},
		}, nil
	}

	result, err := svc.Compare(context.Background(), rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, "vendor 2 wins on price", result.Summary)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, 2, result.Recommendation.VendorID)
	assert.Len(t, result.Rankings, 2)
	assert.Len(t, result.Proposals, 2)
}

func TestCompareExcludesArchived(t *testing.T) {
	svc, rfps, proposals, _ := newComparisonFixture(t)
	rfp := &model.RFP{UserID: 1, Title: "Laptops", Description: "d", Status: model.RFPStatusSent}
	require.NoError(t, rfps.Create(context.Background(), rfp))

	p := &model.Proposal{RFPID: rfp.ID, VendorID: 1, RawEmailContent: "offer", ProcessingStatus: model.ProposalStatusCompleted}
	require.NoError(t, proposals.Create(context.Background(), p))
	_, err := proposals.ArchiveByRFPID(context.Background(), rfp.ID)
	require.NoError(t, err)

	result, err := svc.Compare(context.Background(), rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, "No proposals have been received yet for this RFP.", result.Summary)
}

func TestCompareRFPNotFound(t *testing.T) {
	svc, _, _, _ := newComparisonFixture(t)
	_, err := svc.Compare(context.Background(), 99)
	assert.True(t, apperr.IsNotFound(err))
}

func TestComparePropagatesAIError(t *testing.T) {
	svc, rfps, proposals, cmp := newComparisonFixture(t)
	rfp := &model.RFP{UserID: 1, Title: "Laptops", Description: "d", Status: model.RFPStatusSent}
	require.NoError(t, rfps.Create(context.Background(), rfp))
	p := &model.Proposal{RFPID: rfp.ID, VendorID: 1, RawEmailContent: "offer", ProcessingStatus: model.ProposalStatusCompleted}
	require.NoError(t, proposals.Create(context.Background(), p))

	cmp.compareFn = func([]ai.ProposalSummary, map[string]any) (*ai.Comparison, error) {
		return nil, apperr.AIMalformed("ranks are not a permutation", nil)
	}

	_, err := svc.Compare(context.Background(), rfp.ID)
	assert.True(t, apperr.IsAIMalformed(err))
}
