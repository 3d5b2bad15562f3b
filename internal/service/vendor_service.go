package service

import (
	"context"

	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
)

// VendorStore is the persistence surface VendorService needs.
type VendorStore interface {
	Create(ctx context.Context, v *model.Vendor) error
	FindByID(ctx context.Context, id int) (*model.Vendor, error)
	ListByUserID(ctx context.Context, userID int) ([]model.Vendor, error)
	ListByCategory(ctx context.Context, userID int, category string) ([]model.Vendor, error)
	Update(ctx context.Context, v *model.Vendor) error
	Delete(ctx context.Context, id int) error
}

type VendorService struct {
	vendors VendorStore
}

func NewVendorService(vendors VendorStore) *VendorService {
	return &VendorService{vendors: vendors}
}

type VendorInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

func (s *VendorService) Create(ctx context.Context, userID int, in VendorInput) (*model.Vendor, error) {
	if in.Name == "" || in.Email == "" {
		return nil, apperr.Validation("vendor name and email are required")
	}

	v := &model.Vendor{
		UserID:   userID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Category: in.Category,
	}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, apperr.FromDB(err, "vendor")
	}
	return v, nil
}

// List returns the caller's vendors, optionally narrowed to one category.
func (s *VendorService) List(ctx context.Context, userID int, category string) ([]model.Vendor, error) {
	if category != "" {
		return s.vendors.ListByCategory(ctx, userID, category)
	}
	return s.vendors.ListByUserID(ctx, userID)
}

func (s *VendorService) Get(ctx context.Context, id int) (*model.Vendor, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "vendor")
	}
	return v, nil
}

func (s *VendorService) Update(ctx context.Context, id int, in VendorInput) (*model.Vendor, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "vendor")
	}

	if in.Name != "" {
		v.Name = in.Name
	}
	if in.Email != "" {
		v.Email = in.Email
	}
	if in.Phone != "" {
		v.Phone = in.Phone
	}
	if in.Category != "" {
		v.Category = in.Category
	}

	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, apperr.FromDB(err, "vendor")
	}
	return v, nil
}

func (s *VendorService) Delete(ctx context.Context, id int) error {
	if _, err := s.vendors.FindByID(ctx, id); err != nil {
		return apperr.FromDB(err, "vendor")
	}
	return s.vendors.Delete(ctx, id)
}
