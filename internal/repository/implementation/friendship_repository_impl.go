package implementation

import (
	"context"
	"errors"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/mapper"
	"oxbow-be/internal/model"
	"oxbow-be/internal/repository/contract"
	"oxbow-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FriendshipMapper
}

func NewFriendshipRepository(db *gorm.DB) contract.FriendshipRepository {
	return &FriendshipRepositoryImpl{
		db:     db,
		mapper: mapper.NewFriendshipMapper(),
	}
}

func (r *FriendshipRepositoryImpl) Create(ctx context.Context, f *entity.Friendship) error {
	m := r.mapper.ToModel(f)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*f = *r.mapper.ToEntity(m)
	return nil
}

func (r *FriendshipRepositoryImpl) Update(ctx context.Context, f *entity.Friendship) error {
	m := r.mapper.ToModel(f)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*f = *r.mapper.ToEntity(m)
	return nil
}

func (r *FriendshipRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Friendship{}, "id = ?", id).Error
}

func (r *FriendshipRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Friendship, error) {
	var m model.Friendship
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FriendshipRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Friendship, error) {
	var models []*model.Friendship
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type MirrorShareRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FriendshipMapper
}

func NewMirrorShareRepository(db *gorm.DB) contract.MirrorShareRepository {
	return &MirrorShareRepositoryImpl{
		db:     db,
		mapper: mapper.NewFriendshipMapper(),
	}
}

func (r *MirrorShareRepositoryImpl) Create(ctx context.Context, share *entity.MirrorShare) error {
	m := r.mapper.ShareToModel(share)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*share = *r.mapper.ShareToEntity(m)
	return nil
}

func (r *MirrorShareRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorShare, error) {
	var m model.MirrorShare
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ShareToEntity(&m), nil
}

func (r *MirrorShareRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MirrorShare, error) {
	var models []*model.MirrorShare
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	shares := make([]*entity.MirrorShare, len(models))
	for i, m := range models {
		shares[i] = r.mapper.ShareToEntity(m)
	}
	return shares, nil
}
