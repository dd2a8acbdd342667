package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aulaflow/agenda-api/internal/models"
)

// ProfileRepository reads student/teacher display data. Profiles are owned
// by the identity provider, so this repository never writes.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, tenant_id, full_name, role, module, avatar_url`

// FindByID loads one profile by id.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByIDs loads profiles in bulk, keyed by id for denormalization.
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	if len(ids) == 0 {
		return map[string]models.Profile{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM profiles WHERE id IN (?)`, profileColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}
	query = r.db.Rebind(query)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID, nil
}
