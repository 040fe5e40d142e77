package implementation

import (
	"context"
	"errors"
	"time"

	"oxbow-be/internal/entity"
	"oxbow-be/internal/mapper"
	"oxbow-be/internal/model"
	"oxbow-be/internal/repository/contract"
	"oxbow-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MirrorRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MirrorRequestMapper
}

func NewMirrorRequestRepository(db *gorm.DB) contract.MirrorRequestRepository {
	return &MirrorRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewMirrorRequestMapper(),
	}
}

func (r *MirrorRequestRepositoryImpl) Create(ctx context.Context, req *entity.MirrorRequest) error {
	m := r.mapper.ToModel(req)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*req = *r.mapper.ToEntity(m)
	return nil
}

func (r *MirrorRequestRepositoryImpl) Update(ctx context.Context, req *entity.MirrorRequest) error {
	m := r.mapper.ToModel(req)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*req = *r.mapper.ToEntity(m)
	return nil
}

func (r *MirrorRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MirrorRequest, error) {
	var m model.MirrorRequest
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MirrorRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.MirrorRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MirrorRequestRepositoryImpl) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.MirrorRequest{}).
		Where("id = ? AND status = ?", id, string(entity.MirrorRequestPending)).
		Updates(map[string]interface{}{
			"status":     string(entity.MirrorRequestProcessing),
			"started_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

type MirrorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MirrorMapper
}

func NewMirrorRepository(db *gorm.DB) contract.MirrorRepository {
	return &MirrorRepositoryImpl{
		db:     db,
		mapper: mapper.NewMirrorMapper(),
	}
}

func (r *MirrorRepositoryImpl) Create(ctx context.Context, mirror *entity.Mirror) error {
	m := r.mapper.ToModel(mirror)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*mirror = *r.mapper.ToEntity(m)
	return nil
}

func (r *MirrorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Mirror, error) {
	var m model.Mirror
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MirrorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Mirror, error) {
	var models []*model.Mirror
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MirrorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Mirror{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MirrorRepositoryImpl) MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Mirror{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"has_been_viewed": true,
			"viewed_at":       at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
