package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
)

const testRequirements = `{"items":[{"name":"laptop","quantity":10,"specifications":"16GB"}],"budget":{"min":0,"max":10000,"currency":"USD"},"timeline":{"deadline":"2026-10-01","delivery_window":""},"terms":{"payment":"net 30","warranty":"1 year","support":""}}`

type rfpFixture struct {
	svc       *RFPService
	rfps      *fakeRFPStore
	links     *fakeLinkStore
	vendors   *fakeVendorStore
	proposals *fakeProposalStore
	gen       *stubGenerator
	mailer    *fakeMailer
}

func newRFPFixture(t *testing.T) *rfpFixture {
	t.Helper()
	f := &rfpFixture{
		rfps:      newFakeRFPStore(),
		links:     newFakeLinkStore(),
		vendors:   newFakeVendorStore(),
		proposals: newFakeProposalStore(),
		mailer:    newFakeMailer(),
	}
	f.gen = &stubGenerator{
		requirementsFn: func(string) (json.RawMessage, error) {
			return json.RawMessage(testRequirements), nil
		},
		titleFn: func(string) (string, error) {
			return "Office Laptop Procurement", nil
		},
	}
	f.svc = NewRFPService(f.rfps, f.links, f.vendors, f.proposals, f.gen, f.mailer, zap.NewNop())
	return f
}

func TestRFPCreate(t *testing.T) {
	f := newRFPFixture(t)

	rfp, err := f.svc.Create(context.Background(), 1, "10 laptops with 16GB RAM")
	require.NoError(t, err)

	assert.Equal(t, "Office Laptop Procurement", rfp.Title)
	assert.Equal(t, model.RFPStatusDraft, rfp.Status)
	assert.JSONEq(t, testRequirements, string(rfp.StructuredRequirements))
	assert.NotZero(t, rfp.ID)
}

func TestRFPCreateEmptyDescription(t *testing.T) {
	f := newRFPFixture(t)
	_, err := f.svc.Create(context.Background(), 1, "")
	assert.True(t, apperr.IsValidation(err))
}

func TestRFPCreateTruncatesTitle(t *testing.T) {
	f := newRFPFixture(t)
	f.gen.titleFn = func(string) (string, error) {
		return strings.Repeat("x", 150), nil
	}

	rfp, err := f.svc.Create(context.Background(), 1, "something long")
	require.NoError(t, err)
	assert.Len(t, []rune(rfp.Title), 100)
}

func TestRFPCreateGenerationFailureAborts(t *testing.T) {
	f := newRFPFixture(t)
	f.gen.requirementsFn = func(string) (json.RawMessage, error) {
		return nil, apperr.AIUnavailable("down", nil)
	}

	_, err := f.svc.Create(context.Background(), 1, "laptops")
	require.Error(t, err)
	assert.True(t, apperr.IsAIUnavailable(err))

	rfps, _ := f.rfps.ListByUserID(context.Background(), 1)
	assert.Empty(t, rfps)
}

func TestRFPUpdateTitleOnlyKeepsRequirements(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	regenerated := false
	f.gen.requirementsFn = func(string) (json.RawMessage, error) {
		regenerated = true
		return json.RawMessage(`{}`), nil
	}

	title := "Renamed"
	updated, err := f.svc.Update(context.Background(), rfp.ID, RFPUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, regenerated)
	assert.JSONEq(t, testRequirements, string(updated.StructuredRequirements))
}

func TestRFPUpdateDescriptionRegenerates(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	newReq := `{"items":[{"name":"desktop","quantity":5,"specifications":""}],"budget":{},"timeline":{},"terms":{}}`
	f.gen.requirementsFn = func(description string) (json.RawMessage, error) {
		assert.Equal(t, "5 desktops instead", description)
		return json.RawMessage(newReq), nil
	}

	desc := "5 desktops instead"
	updated, err := f.svc.Update(context.Background(), rfp.ID, RFPUpdate{Description: &desc})
	require.NoError(t, err)
	assert.JSONEq(t, newReq, string(updated.StructuredRequirements))
	assert.Equal(t, desc, updated.Description)
}

func TestRFPUpdateSameDescriptionSkipsRegeneration(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	f.gen.requirementsFn = func(string) (json.RawMessage, error) {
		t.Fatal("requirements must not be regenerated for an unchanged description")
		return nil, nil
	}

	desc := "laptops"
	_, err = f.svc.Update(context.Background(), rfp.ID, RFPUpdate{Description: &desc})
	require.NoError(t, err)
}

func TestRFPUpdateArchivesProposals(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p := &model.Proposal{RFPID: rfp.ID, VendorID: 1, RawEmailContent: "offer", ProcessingStatus: model.ProposalStatusCompleted}
		require.NoError(t, f.proposals.Create(context.Background(), p))
	}

	desc := "a different set of requirements"
	_, err = f.svc.Update(context.Background(), rfp.ID, RFPUpdate{
		Description:      &desc,
		ArchiveProposals: true,
	})
	require.NoError(t, err)

	active, err := f.svc.Proposals(context.Background(), rfp.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.svc.ArchivedProposals(context.Background(), rfp.ID)
	require.NoError(t, err)
	assert.Len(t, archived, 3)
}

func TestRFPUpdateNotFound(t *testing.T) {
	f := newRFPFixture(t)
	title := "x"
	_, err := f.svc.Update(context.Background(), 99, RFPUpdate{Title: &title})
	assert.True(t, apperr.IsNotFound(err))
}

func TestSendToVendorsSettlesPerVendor(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	good := &model.Vendor{UserID: 1, Name: "Acme", Email: "sales@acme.test"}
	bad := &model.Vendor{UserID: 1, Name: "Broken", Email: "bounce@broken.test"}
	require.NoError(t, f.vendors.Create(context.Background(), good))
	require.NoError(t, f.vendors.Create(context.Background(), bad))
	f.mailer.failTo[bad.Email] = errors.New("mailbox unavailable")

	results, err := f.svc.SendToVendors(context.Background(), rfp.ID, []int{good.ID, bad.ID, 99})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.NotEmpty(t, results[0].MessageID)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "mailbox unavailable")
	assert.False(t, results[2].Success)

	// Link statuses reflect outcomes.
	links, err := f.svc.Vendors(context.Background(), rfp.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	statuses := map[int]string{}
	for _, l := range links {
		statuses[l.VendorID] = l.EmailStatus
	}
	assert.Equal(t, model.EmailStatusSent, statuses[good.ID])
	assert.Equal(t, model.EmailStatusFailed, statuses[bad.ID])

	// RFP moves to sent even with partial failures.
	stored, err := f.svc.Get(context.Background(), rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RFPStatusSent, stored.Status)
}

func TestSendToVendorsValidation(t *testing.T) {
	f := newRFPFixture(t)
	_, err := f.svc.SendToVendors(context.Background(), 1, nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.SendToVendors(context.Background(), 99, []int{1})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRFPDelete(t *testing.T) {
	f := newRFPFixture(t)
	rfp, err := f.svc.Create(context.Background(), 1, "laptops")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), rfp.ID))
	assert.True(t, apperr.IsNotFound(f.svc.Delete(context.Background(), rfp.ID)))
}
