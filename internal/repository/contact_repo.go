package repository

import (
	"Mentora/internal/model"
	"context"

	"gorm.io/gorm"
)

type ContactRepo interface {
	ListAll(ctx context.Context) ([]*model.ContactProfile, error)
	GetByContactIds(ctx context.Context, contactIDs []string) ([]*model.ContactProfile, error)
}

type ContactRepoImpl struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepo {
	return &ContactRepoImpl{db: db}
}

func (s *ContactRepoImpl) ListAll(ctx context.Context) ([]*model.ContactProfile, error) {
	contacts := make([]*model.ContactProfile, 0)
	result := s.db.WithContext(ctx).
		Order("name asc").
		Find(&contacts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contacts, nil
}

func (s *ContactRepoImpl) GetByContactIds(ctx context.Context, contactIDs []string) ([]*model.ContactProfile, error) {
	contacts := make([]*model.ContactProfile, 0)
	result := s.db.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Find(&contacts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contacts, nil
}
