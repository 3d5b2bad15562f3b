package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
)

// RFPStore is the persistence surface RFPService needs.
type RFPStore interface {
	Create(ctx context.Context, rfp *model.RFP) error
	FindByID(ctx context.Context, id int) (*model.RFP, error)
	ListByUserID(ctx context.Context, userID int) ([]model.RFP, error)
	Update(ctx context.Context, id int, patch model.RFPPatch) (*model.RFP, error)
	Delete(ctx context.Context, id int) error
}

// LinkStore persists RFP-vendor dispatch records.
type LinkStore interface {
	Create(ctx context.Context, link *model.RFPVendor) error
	ListByRFPID(ctx context.Context, rfpID int) ([]model.RFPVendor, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

// RFPGenerator is the model-backed drafting surface.
type RFPGenerator interface {
	GenerateRequirements(ctx context.Context, description string) (json.RawMessage, error)
	GenerateTitle(ctx context.Context, description string) (string, error)
}

// RFPMailer delivers RFP invitations to vendors.
type RFPMailer interface {
	NewMessageID(rfpID, vendorID int) string
	SendRFP(rfp *model.RFP, vendor *model.Vendor, messageID string) error
}

// ProposalLister is the proposal read/archive surface RFPService needs.
type ProposalLister interface {
	ListByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error)
	ListArchivedByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error)
	ArchiveByRFPID(ctx context.Context, rfpID int) (int, error)
}

// Display limit for generated titles.
const maxTitleLen = 100

type RFPService struct {
	rfps      RFPStore
	links     LinkStore
	vendors   VendorStore
	proposals ProposalLister
	gen       RFPGenerator
	mailer    RFPMailer
	logger    *zap.Logger
}

func NewRFPService(
	rfps RFPStore,
	links LinkStore,
	vendors VendorStore,
	proposals ProposalLister,
	gen RFPGenerator,
	mailer RFPMailer,
	logger *zap.Logger,
) *RFPService {
	return &RFPService{
		rfps:      rfps,
		links:     links,
		vendors:   vendors,
		proposals: proposals,
		gen:       gen,
		mailer:    mailer,
		logger:    logger,
	}
}

// Create drafts a new RFP from a free-text description. Title and structured
// requirements are generated concurrently; if either fails the whole draft
// fails and nothing is persisted.
func (s *RFPService) Create(ctx context.Context, userID int, description string) (*model.RFP, error) {
	if description == "" {
		return nil, apperr.Validation("description is required")
	}

	var (
		wg           sync.WaitGroup
		requirements json.RawMessage
		title        string
		reqErr       error
		titleErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		requirements, reqErr = s.gen.GenerateRequirements(ctx, description)
	}()
	go func() {
		defer wg.Done()
		title, titleErr = s.gen.GenerateTitle(ctx, description)
	}()
	wg.Wait()

	if reqErr != nil {
		return nil, reqErr
	}
	if titleErr != nil {
		return nil, titleErr
	}

	rfp := &model.RFP{
		UserID:                 userID,
		Title:                  truncate(title, maxTitleLen),
		Description:            description,
		StructuredRequirements: requirements,
		Status:                 model.RFPStatusDraft,
	}
	if err := s.rfps.Create(ctx, rfp); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}

	s.logger.Info("rfp created",
		zap.Int("rfp_id", rfp.ID),
		zap.Int("user_id", userID))
	return rfp, nil
}

func (s *RFPService) List(ctx context.Context, userID int) ([]model.RFP, error) {
	return s.rfps.ListByUserID(ctx, userID)
}

func (s *RFPService) Get(ctx context.Context, id int) (*model.RFP, error) {
	rfp, err := s.rfps.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return rfp, nil
}

// RFPUpdate is a caller-supplied partial update. When the description changes
// the structured requirements are regenerated; ArchiveProposals additionally
// retires existing proposals so stale submissions never mix with ones scored
// against the new requirements.
type RFPUpdate struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Status           *string `json:"status"`
	ArchiveProposals bool    `json:"archive_proposals"`
}

func (s *RFPService) Update(ctx context.Context, id int, in RFPUpdate) (*model.RFP, error) {
	rfp, err := s.rfps.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}

	patch := model.RFPPatch{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}

	if in.Description != nil && *in.Description != rfp.Description {
		requirements, err := s.gen.GenerateRequirements(ctx, *in.Description)
		if err != nil {
			return nil, err
		}
		reqStr := string(requirements)
		patch.StructuredRequirements = &reqStr

		if in.ArchiveProposals {
			archived, err := s.proposals.ArchiveByRFPID(ctx, id)
			if err != nil {
				return nil, err
			}
			s.logger.Info("archived proposals after requirements change",
				zap.Int("rfp_id", id),
				zap.Int("count", archived))
		}
	}

	updated, err := s.rfps.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return updated, nil
}

func (s *RFPService) Delete(ctx context.Context, id int) error {
	if _, err := s.rfps.FindByID(ctx, id); err != nil {
		return apperr.FromDB(err, "rfp")
	}
	return s.rfps.Delete(ctx, id)
}

// DispatchResult reports one vendor's send outcome in a bulk dispatch.
type DispatchResult struct {
	VendorID    int    `json:"vendor_id"`
	VendorEmail string `json:"vendor_email,omitempty"`
	Success     bool   `json:"success"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SendToVendors dispatches an RFP to each vendor in turn. Failures are
// per-vendor: one bad address never aborts the rest of the batch. The RFP
// moves to sent once the batch has been attempted.
func (s *RFPService) SendToVendors(ctx context.Context, rfpID int, vendorIDs []int) ([]DispatchResult, error) {
	if len(vendorIDs) == 0 {
		return nil, apperr.Validation("vendor_ids is required")
	}

	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}

	results := make([]DispatchResult, 0, len(vendorIDs))
	for _, vendorID := range vendorIDs {
		results = append(results, s.dispatchOne(ctx, rfp, vendorID))
	}

	sent := model.RFPStatusSent
	if _, err := s.rfps.Update(ctx, rfpID, model.RFPPatch{Status: &sent}); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return results, nil
}

func (s *RFPService) dispatchOne(ctx context.Context, rfp *model.RFP, vendorID int) DispatchResult {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return DispatchResult{VendorID: vendorID, Success: false, Error: apperr.FromDB(err, "vendor").Error()}
	}

	messageID := s.mailer.NewMessageID(rfp.ID, vendorID)
	link := &model.RFPVendor{
		RFPID:          rfp.ID,
		VendorID:       vendorID,
		EmailStatus:    model.EmailStatusSending,
		EmailMessageID: messageID,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return DispatchResult{VendorID: vendorID, VendorEmail: vendor.Email, Success: false, Error: err.Error()}
	}

	if err := s.mailer.SendRFP(rfp, vendor, messageID); err != nil {
		if uerr := s.links.UpdateStatus(ctx, link.ID, model.EmailStatusFailed); uerr != nil {
			s.logger.Error("failed to mark dispatch failed",
				zap.Int("link_id", link.ID), zap.Error(uerr))
		}
		return DispatchResult{VendorID: vendorID, VendorEmail: vendor.Email, Success: false, MessageID: messageID, Error: err.Error()}
	}

	if err := s.links.UpdateStatus(ctx, link.ID, model.EmailStatusSent); err != nil {
		s.logger.Error("failed to mark dispatch sent",
			zap.Int("link_id", link.ID), zap.Error(err))
	}
	return DispatchResult{VendorID: vendorID, VendorEmail: vendor.Email, Success: true, MessageID: messageID}
}

// Vendors returns the dispatch records for an RFP.
func (s *RFPService) Vendors(ctx context.Context, rfpID int) ([]model.RFPVendor, error) {
	if _, err := s.rfps.FindByID(ctx, rfpID); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return s.links.ListByRFPID(ctx, rfpID)
}

// Proposals returns the active proposals for an RFP.
func (s *RFPService) Proposals(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	if _, err := s.rfps.FindByID(ctx, rfpID); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return s.proposals.ListByRFPID(ctx, rfpID)
}

// ArchivedProposals returns proposals retired by a requirements change.
func (s *RFPService) ArchivedProposals(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	if _, err := s.rfps.FindByID(ctx, rfpID); err != nil {
		return nil, apperr.FromDB(err, "rfp")
	}
	return s.proposals.ListArchivedByRFPID(ctx, rfpID)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
