package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darslik/core/provider"
)

type providerRow struct {
	ID        string    `db:"id"`
	TeacherID string    `db:"teacher_id"`
	Name      string    `db:"name"`
	Vendor    string    `db:"provider_type"`
	Model     string    `db:"model_name"`
	APIKey    string    `db:"api_key"`
	BaseURL   string    `db:"base_url"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row providerRow) toProvider() provider.Provider {
	return provider.Provider{
		ID:        row.ID,
		TeacherID: row.TeacherID,
		Name:      row.Name,
		Vendor:    provider.Vendor(row.Vendor),
		Model:     row.Model,
		APIKey:    row.APIKey,
		BaseURL:   row.BaseURL,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

const providerColumns = `id, teacher_id, name, provider_type, model_name, api_key, base_url, is_active, created_at, updated_at`

type providerRepository struct {
	db *sqlx.DB
}

var _ provider.Repository = (*providerRepository)(nil)

func NewProviderRepository(db *sqlx.DB) provider.Repository {
	return &providerRepository{db: db}
}

func (repo *providerRepository) CreateProvider(ctx context.Context, p provider.Provider) (provider.Provider, error) {
	p.ID = newID(p.ID)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO ai_providers (`+providerColumns+`)
		VALUES (:id, :teacher_id, :name, :provider_type, :model_name, :api_key, :base_url, :is_active, :created_at, :updated_at)`,
		providerRow{
			ID:        p.ID,
			TeacherID: p.TeacherID,
			Name:      p.Name,
			Vendor:    string(p.Vendor),
			Model:     p.Model,
			APIKey:    p.APIKey,
			BaseURL:   p.BaseURL,
			IsActive:  p.IsActive,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
	)
	if err != nil {
		return provider.Provider{}, err
	}
	return p, nil
}

func (repo *providerRepository) GetProviderByID(ctx context.Context, id string) (provider.Provider, error) {
	var row providerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+providerColumns+` FROM ai_providers WHERE id = $1`, id); err != nil {
		return provider.Provider{}, notFound(err, provider.ErrNotFound)
	}
	return row.toProvider(), nil
}

func (repo *providerRepository) QueryProviders(ctx context.Context, filter provider.QueryFilter) ([]provider.Provider, error) {
	var rows []providerRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+providerColumns+` FROM ai_providers
		WHERE ($1 = '' OR teacher_id::text = $1) AND (NOT $2 OR is_active)
		ORDER BY created_at DESC`,
		filter.TeacherID, filter.ActiveOnly,
	)
	if err != nil {
		return nil, err
	}
	providers := make([]provider.Provider, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, row.toProvider())
	}
	return providers, nil
}

func (repo *providerRepository) SetProviderActive(ctx context.Context, id string, active bool) (provider.Provider, error) {
	var row providerRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE ai_providers SET is_active = $2, updated_at = $3 WHERE id = $1
		RETURNING `+providerColumns,
		id, active, time.Now().UTC(),
	)
	if err != nil {
		return provider.Provider{}, notFound(err, provider.ErrNotFound)
	}
	return row.toProvider(), nil
}

// DeleteProvider also detaches the provider from the courses using it (ON DELETE SET NULL).
func (repo *providerRepository) DeleteProvider(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM ai_providers WHERE id = $1`, id)
	return checkAffected(res, err, provider.ErrNotFound)
}
