package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rfpflow/internal/model"
)

type RFPRepository struct {
	db *pgxpool.Pool
}

func NewRFPRepository(db *pgxpool.Pool) *RFPRepository {
	return &RFPRepository{db: db}
}

// Create inserts a new RFP and fills in the generated id and timestamps.
func (r *RFPRepository) Create(ctx context.Context, rfp *model.RFP) error {
	query := `
        INSERT INTO rfps (user_id, title, description, structured_requirements, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		rfp.UserID, rfp.Title, rfp.Description, string(rfp.StructuredRequirements), rfp.Status,
	).Scan(&rfp.ID, &rfp.CreatedAt, &rfp.UpdatedAt)
}

// FindByID returns an RFP by id.
func (r *RFPRepository) FindByID(ctx context.Context, id int) (*model.RFP, error) {
	query := `
        SELECT id, user_id, title, description, structured_requirements, status, created_at, updated_at
        FROM rfps
        WHERE id = $1
    `
	var rfp model.RFP
	var requirements []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rfp.ID,
		&rfp.UserID,
		&rfp.Title,
		&rfp.Description,
		&requirements,
		&rfp.Status,
		&rfp.CreatedAt,
		&rfp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rfp.StructuredRequirements = requirements
	return &rfp, nil
}

// ListByUserID returns all RFPs for an owner, newest first.
func (r *RFPRepository) ListByUserID(ctx context.Context, userID int) ([]model.RFP, error) {
	query := `
        SELECT id, user_id, title, description, structured_requirements, status, created_at, updated_at
        FROM rfps
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rfps := []model.RFP{}
	for rows.Next() {
		var rfp model.RFP
		var requirements []byte
		err := rows.Scan(
			&rfp.ID,
			&rfp.UserID,
			&rfp.Title,
			&rfp.Description,
			&requirements,
			&rfp.Status,
			&rfp.CreatedAt,
			&rfp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		rfp.StructuredRequirements = requirements
		rfps = append(rfps, rfp)
	}
	return rfps, rows.Err()
}

// Update applies a partial update. Nil fields are left untouched.
func (r *RFPRepository) Update(ctx context.Context, id int, patch model.RFPPatch) (*model.RFP, error) {
	query := `
        UPDATE rfps
        SET title = COALESCE($1, title),
            description = COALESCE($2, description),
            structured_requirements = COALESCE($3, structured_requirements),
            status = COALESCE($4, status),
            updated_at = NOW()
        WHERE id = $5
        RETURNING id, user_id, title, description, structured_requirements, status, created_at, updated_at
    `
	var rfp model.RFP
	var requirements []byte
	err := r.db.QueryRow(ctx, query,
		patch.Title, patch.Description, patch.StructuredRequirements, patch.Status, id,
	).Scan(
		&rfp.ID,
		&rfp.UserID,
		&rfp.Title,
		&rfp.Description,
		&requirements,
		&rfp.Status,
		&rfp.CreatedAt,
		&rfp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rfp.StructuredRequirements = requirements
	return &rfp, nil
}

// Delete removes an RFP permanently.
func (r *RFPRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM rfps WHERE id = $1`, id)
	return err
}
