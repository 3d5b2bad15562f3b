package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rfpflow/internal/model"
)

type VendorRepository struct {
	db *pgxpool.Pool
}

func NewVendorRepository(db *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create inserts a new vendor. The (user_id, email) pair is unique; violations
// surface as pg unique-constraint errors for the service layer to translate.
func (r *VendorRepository) Create(ctx context.Context, v *model.Vendor) error {
	query := `
        INSERT INTO vendors (user_id, name, email, phone, category)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		v.UserID, v.Name, v.Email, v.Phone, v.Category,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// FindByID returns a vendor by id.
func (r *VendorRepository) FindByID(ctx context.Context, id int) (*model.Vendor, error) {
	query := `
        SELECT id, user_id, name, email, phone, category, created_at, updated_at
        FROM vendors
        WHERE id = $1
    `
	var v model.Vendor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.UserID, &v.Name, &v.Email, &v.Phone, &v.Category, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByUserID returns all vendors for an owner, newest first.
func (r *VendorRepository) ListByUserID(ctx context.Context, userID int) ([]model.Vendor, error) {
	query := `
        SELECT id, user_id, name, email, phone, category, created_at, updated_at
        FROM vendors
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.scanVendors(ctx, query, userID)
}

// ListByCategory returns an owner's vendors in a category.
func (r *VendorRepository) ListByCategory(ctx context.Context, userID int, category string) ([]model.Vendor, error) {
	query := `
        SELECT id, user_id, name, email, phone, category, created_at, updated_at
        FROM vendors
        WHERE user_id = $1 AND category = $2
        ORDER BY created_at DESC
    `
	return r.scanVendors(ctx, query, userID, category)
}

// Update replaces the mutable vendor fields.
func (r *VendorRepository) Update(ctx context.Context, v *model.Vendor) error {
	query := `
        UPDATE vendors
        SET name = $1, email = $2, phone = $3, category = $4, updated_at = NOW()
        WHERE id = $5
        RETURNING updated_at
    `
	return r.db.QueryRow(ctx, query, v.Name, v.Email, v.Phone, v.Category, v.ID).Scan(&v.UpdatedAt)
}

// Delete removes a vendor permanently.
func (r *VendorRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	return err
}

func (r *VendorRepository) scanVendors(ctx context.Context, query string, args ...any) ([]model.Vendor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := []model.Vendor{}
	for rows.Next() {
		var v model.Vendor
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Name, &v.Email, &v.Phone, &v.Category, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
