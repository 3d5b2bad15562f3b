package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"rfpflow/internal/ai"
	"rfpflow/internal/model"
)

// In-memory stores standing in for the pgx repositories.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

type fakeRFPStore struct {
	mu     sync.Mutex
	nextID int
	rfps   map[int]*model.RFP
}

func newFakeRFPStore() *fakeRFPStore {
	return &fakeRFPStore{nextID: 1, rfps: map[int]*model.RFP{}}
}

func (s *fakeRFPStore) Create(ctx context.Context, rfp *model.RFP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rfp.ID = s.nextID
	s.nextID++
	rfp.CreatedAt = time.Now()
	rfp.UpdatedAt = rfp.CreatedAt
	cp := *rfp
	s.rfps[rfp.ID] = &cp
	return nil
}

func (s *fakeRFPStore) FindByID(ctx context.Context, id int) (*model.RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rfp, ok := s.rfps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *rfp
	return &cp, nil
}

func (s *fakeRFPStore) ListByUserID(ctx context.Context, userID int) ([]model.RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.RFP{}
	for _, rfp := range s.rfps {
		if rfp.UserID == userID {
			out = append(out, *rfp)
		}
	}
	return out, nil
}

func (s *fakeRFPStore) Update(ctx context.Context, id int, patch model.RFPPatch) (*model.RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rfp, ok := s.rfps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Title != nil {
		rfp.Title = *patch.Title
	}
	if patch.Description != nil {
		rfp.Description = *patch.Description
	}
	if patch.StructuredRequirements != nil {
		rfp.StructuredRequirements = json.RawMessage(*patch.StructuredRequirements)
	}
	if patch.Status != nil {
		rfp.Status = *patch.Status
	}
	rfp.UpdatedAt = time.Now()
	cp := *rfp
	return &cp, nil
}

func (s *fakeRFPStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rfps, id)
	return nil
}

type fakeVendorStore struct {
	mu      sync.Mutex
	nextID  int
	vendors map[int]*model.Vendor
}

func newFakeVendorStore() *fakeVendorStore {
	return &fakeVendorStore{nextID: 1, vendors: map[int]*model.Vendor{}}
}

func (s *fakeVendorStore) Create(ctx context.Context, v *model.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID
	s.nextID++
	cp := *v
	s.vendors[v.ID] = &cp
	return nil
}

func (s *fakeVendorStore) FindByID(ctx context.Context, id int) (*model.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (s *fakeVendorStore) ListByUserID(ctx context.Context, userID int) ([]model.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Vendor{}
	for _, v := range s.vendors {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeVendorStore) ListByCategory(ctx context.Context, userID int, category string) ([]model.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Vendor{}
	for _, v := range s.vendors {
		if v.UserID == userID && v.Category == category {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeVendorStore) Update(ctx context.Context, v *model.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.vendors[v.ID] = &cp
	return nil
}

func (s *fakeVendorStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vendors, id)
	return nil
}

type fakeProposalStore struct {
	mu        sync.Mutex
	nextID    int
	proposals map[int]*model.Proposal
	saveErr   error
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{nextID: 1, proposals: map[int]*model.Proposal{}}
}

func (s *fakeProposalStore) Create(ctx context.Context, p *model.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.ReceivedAt = time.Now()
	cp := *p
	s.proposals[p.ID] = &cp
	return nil
}

func (s *fakeProposalStore) FindByID(ctx context.Context, id int) (*model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProposalStore) ListByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Proposal{}
	for _, p := range s.proposals {
		if p.RFPID == rfpID && !p.Archived {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeProposalStore) ListArchivedByRFPID(ctx context.Context, rfpID int) ([]model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Proposal{}
	for _, p := range s.proposals {
		if p.RFPID == rfpID && p.Archived {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeProposalStore) ListByStatus(ctx context.Context, status string) ([]model.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Proposal{}
	for _, p := range s.proposals {
		if p.ProcessingStatus == status && !p.Archived {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeProposalStore) UpdateStatus(ctx context.Context, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.ProcessingStatus = status
	return nil
}

func (s *fakeProposalStore) SaveResults(ctx context.Context, id int, structuredProposal, aiScores string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	p, ok := s.proposals[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.StructuredProposal = json.RawMessage(structuredProposal)
	p.AIScores = json.RawMessage(aiScores)
	p.ProcessingStatus = model.ProposalStatusCompleted
	now := time.Now()
	p.ProcessedAt = &now
	return nil
}

func (s *fakeProposalStore) ArchiveByRFPID(ctx context.Context, rfpID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, p := range s.proposals {
		if p.RFPID == rfpID && !p.Archived {
			p.Archived = true
			count++
		}
	}
	return count, nil
}

func (s *fakeProposalStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.proposals, id)
	return nil
}

type fakeLinkStore struct {
	mu     sync.Mutex
	nextID int
	links  map[int]*model.RFPVendor
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{nextID: 1, links: map[int]*model.RFPVendor{}}
}

func (s *fakeLinkStore) Create(ctx context.Context, link *model.RFPVendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link.ID = s.nextID
	s.nextID++
	link.SentAt = time.Now()
	cp := *link
	s.links[link.ID] = &cp
	return nil
}

func (s *fakeLinkStore) ListByRFPID(ctx context.Context, rfpID int) ([]model.RFPVendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.RFPVendor{}
	for _, l := range s.links {
		if l.RFPID == rfpID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeLinkStore) UpdateStatus(ctx context.Context, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	if !ok {
		return pgx.ErrNoRows
	}
	l.EmailStatus = status
	return nil
}

// Stubs for the AI, lock, publisher and mailer surfaces.

type stubGenerator struct {
	requirementsFn func(description string) (json.RawMessage, error)
	titleFn        func(description string) (string, error)
}

func (g *stubGenerator) GenerateRequirements(ctx context.Context, description string) (json.RawMessage, error) {
	return g.requirementsFn(description)
}

func (g *stubGenerator) GenerateTitle(ctx context.Context, description string) (string, error) {
	return g.titleFn(description)
}

type stubProposalAI struct {
	parseFn func(emailContent string) (json.RawMessage, error)
	scoreFn func(structured json.RawMessage) (json.RawMessage, error)
}

func (a *stubProposalAI) ParseProposal(ctx context.Context, emailContent string, requirements map[string]any) (json.RawMessage, error) {
	return a.parseFn(emailContent)
}

func (a *stubProposalAI) ScoreProposal(ctx context.Context, structured json.RawMessage, requirements map[string]any) (json.RawMessage, error) {
	return a.scoreFn(structured)
}

type stubComparer struct {
	compareFn func(proposals []ai.ProposalSummary, requirements map[string]any) (*ai.Comparison, error)
}

func (c *stubComparer) CompareProposals(ctx context.Context, proposals []ai.ProposalSummary, requirements map[string]any) (*ai.Comparison, error) {
	return c.compareFn(proposals, requirements)
}

type fakeLock struct {
	mu   sync.Mutex
	held map[int]bool
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: map[int]bool{}}
}

func (l *fakeLock) Acquire(ctx context.Context, proposalID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[proposalID] {
		return false
	}
	l.held[proposalID] = true
	return true
}

func (l *fakeLock) Release(ctx context.Context, proposalID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, proposalID)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
	err       error
}

type publishedEvent struct {
	routingKey string
	payload    any
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *fakePublisher) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent{}, p.published...)
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failTo: map[string]error{}}
}

func (m *fakeMailer) NewMessageID(rfpID, vendorID int) string {
	return fmt.Sprintf("rfp-%d-vendor-%d-test@rfpflow.local", rfpID, vendorID)
}

func (m *fakeMailer) SendRFP(rfp *model.RFP, vendor *model.Vendor, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failTo[vendor.Email]; ok {
		return err
	}
	m.sent = append(m.sent, messageID)
	return nil
}
