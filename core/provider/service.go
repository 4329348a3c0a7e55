package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("AI provider not found")
)

type (
	QueryFilter struct {
		TeacherID  string
		ActiveOnly bool
	}

	Repository interface {
		CreateProvider(ctx context.Context, p Provider) (Provider, error)
		GetProviderByID(ctx context.Context, id string) (Provider, error)
		QueryProviders(ctx context.Context, filter QueryFilter) ([]Provider, error)
		SetProviderActive(ctx context.Context, id string, active bool) (Provider, error)
		DeleteProvider(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, teacherID string, np NewProvider) (Provider, error) {
	now := time.Now().UTC()
	p := Provider{
		TeacherID: teacherID,
		Name:      np.Name,
		Vendor:    np.Vendor,
		Model:     np.Model,
		APIKey:    np.APIKey,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Vendor == VendorCustom {
		p.BaseURL = np.BaseURL
	}
	return svc.repo.CreateProvider(ctx, p)
}

func (svc *Service) Query(ctx context.Context, teacherID string, activeOnly bool) ([]Provider, error) {
	return svc.repo.QueryProviders(ctx, QueryFilter{TeacherID: teacherID, ActiveOnly: activeOnly})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Provider, error) {
	return svc.repo.GetProviderByID(ctx, id)
}

// GetOwned returns the Provider only if it belongs to the teacher; ErrNotFound otherwise.
func (svc *Service) GetOwned(ctx context.Context, id, teacherID string) (Provider, error) {
	p, err := svc.repo.GetProviderByID(ctx, id)
	if err != nil {
		return Provider{}, err
	}
	if p.TeacherID != teacherID {
		return Provider{}, ErrNotFound
	}
	return p, nil
}

func (svc *Service) SetActive(ctx context.Context, id, teacherID string, active bool) (Provider, error) {
	if _, err := svc.GetOwned(ctx, id, teacherID); err != nil {
		return Provider{}, err
	}
	return svc.repo.SetProviderActive(ctx, id, active)
}

func (svc *Service) Delete(ctx context.Context, id, teacherID string) error {
	if _, err := svc.GetOwned(ctx, id, teacherID); err != nil {
		return err
	}
	return svc.repo.DeleteProvider(ctx, id)
}

// FromTest builds the transient Provider a TestRequest describes.
func FromTest(teacherID string, tr TestRequest) Provider {
	return Provider{
		TeacherID: teacherID,
		Name:      tr.Name,
		Vendor:    tr.Vendor,
		Model:     tr.Model,
		APIKey:    tr.APIKey,
		BaseURL:   tr.BaseURL,
		IsActive:  true,
	}
}
