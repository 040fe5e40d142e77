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

type JournalEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JournalEntryMapper
}

func NewJournalEntryRepository(db *gorm.DB) contract.JournalEntryRepository {
	return &JournalEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewJournalEntryMapper(),
	}
}

func (r *JournalEntryRepositoryImpl) Create(ctx context.Context, entry *entity.JournalEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *JournalEntryRepositoryImpl) Update(ctx context.Context, entry *entity.JournalEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *JournalEntryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.JournalEntry{}, "id = ?", id).Error
}

func (r *JournalEntryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JournalEntry, error) {
	var m model.JournalEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JournalEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEntry, error) {
	var models []*model.JournalEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JournalEntryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.JournalEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *JournalEntryRepositoryImpl) BindToMirror(ctx context.Context, ids []uuid.UUID, mirrorId uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.JournalEntry{}).
		Where("id IN ? AND mirror_id IS NULL", ids).
		Update("mirror_id", mirrorId)
	return result.RowsAffected, result.Error
}
