package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/darslik/core/provider"
)

type providerRepository struct {
	db *DB
}

var _ provider.Repository = (*providerRepository)(nil)

func NewProviderRepository(db *DB) provider.Repository {
	return &providerRepository{db: db}
}

func (repo *providerRepository) CreateProvider(_ context.Context, p provider.Provider) (provider.Provider, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = newID(p.ID)
	cp := p
	repo.db.providers[p.ID] = &cp
	return p, nil
}

func (repo *providerRepository) GetProviderByID(_ context.Context, id string) (provider.Provider, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.providers[id]; ok {
		return *p, nil
	}
	return provider.Provider{}, provider.ErrNotFound
}

func (repo *providerRepository) QueryProviders(_ context.Context, filter provider.QueryFilter) ([]provider.Provider, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	providers := make([]provider.Provider, 0)
	for _, p := range repo.db.providers {
		if filter.TeacherID != "" && p.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		providers = append(providers, *p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].CreatedAt.After(providers[j].CreatedAt) })
	return providers, nil
}

func (repo *providerRepository) SetProviderActive(_ context.Context, id string, active bool) (provider.Provider, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.providers[id]
	if !ok {
		return provider.Provider{}, provider.ErrNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

// DeleteProvider also detaches the provider from the courses using it.
func (repo *providerRepository) DeleteProvider(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.providers[id]; !ok {
		return provider.ErrNotFound
	}
	delete(repo.db.providers, id)
	for _, c := range repo.db.courses {
		if c.ProviderID == id {
			c.ProviderID = ""
		}
	}
	return nil
}
